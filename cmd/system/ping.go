package system

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/biomatrix/cmd/cmdutil"
	"github.com/Alijeyrad/biomatrix/pkg/database"
)

func NewPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the configured store is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdutil.ReadConfig(cmd)
			if err != nil {
				return err
			}

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			params := database.FromCentralConfig(cfg.Database)
			conn := database.NewConnector()
			defer conn.Close()

			start := time.Now()
			if err := conn.Connect(ctx, params); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s reachable in %s\n", params, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}
