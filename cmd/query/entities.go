package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/biomatrix/cmd/cmdutil"
	"github.com/Alijeyrad/biomatrix/internal/app"
)

func NewEntitiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List entities with their relations and columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdutil.ReadConfig(cmd)
			if err != nil {
				return err
			}

			return app.Exec(cmd.Context(), cfg, func(ctx context.Context, d app.Deps) error {
				out := cmd.OutOrStdout()
				for _, e := range d.Interpreter.Model().Entities() {
					fmt.Fprintf(out, "%s (%s, key %s)\n", e.Name, e.Table, e.Key)
					for _, name := range e.Relations() {
						rel, _ := e.Relation(name)
						fmt.Fprintf(out, "  %-12s %s -> %s\n", rel.Name, rel.Kind, rel.Target)
					}
					if attrs := e.Attributes(); len(attrs) > 0 {
						fmt.Fprintf(out, "  computed: %s\n", strings.Join(attrs, ", "))
					}
					if e.Bound() {
						fmt.Fprintf(out, "  columns: %s\n", strings.Join(e.Columns(), ", "))
					} else {
						fmt.Fprintln(out, "  columns: (not bound)")
					}
				}
				return nil
			})
		},
	}
}
