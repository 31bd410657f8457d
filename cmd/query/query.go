package query

import "github.com/spf13/cobra"

func NewQueryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run query strings and inspect the schema",
	}

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewEntitiesCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
