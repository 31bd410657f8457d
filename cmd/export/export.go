package export

import "github.com/spf13/cobra"

func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export exam reports and cohorts",
	}

	cmd.AddCommand(NewReportsCommand())
	cmd.AddCommand(NewCohortCommand())

	return cmd
}
