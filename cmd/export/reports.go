package export

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/biomatrix/cmd/cmdutil"
	"github.com/Alijeyrad/biomatrix/internal/app"
	"github.com/Alijeyrad/biomatrix/internal/pull"
)

func NewReportsCommand() *cobra.Command {
	var (
		taskFile string
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Write the reports of the exams named in a task list",
		Long: `Reads a task list of "CADPatID StudyDate Accession" lines, pairs every
accession with the latest one of the same patient and writes the original
report of each exam involved to the configured sink.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdutil.ReadConfig(cmd)
			if err != nil {
				return err
			}
			if taskFile == "" {
				taskFile = cfg.Export.TaskFile
			}
			if taskFile == "" {
				return errors.New("no task list: pass --tasks or set export.task_file")
			}
			if outDir != "" {
				cfg.Export.Sink = "dir"
				cfg.Export.OutputDir = outDir
			}

			f, err := os.Open(taskFile)
			if err != nil {
				return err
			}
			defer f.Close()

			tasks, err := pull.ParseTaskList(f)
			if err != nil {
				return err
			}

			return app.Exec(cmd.Context(), cfg, func(ctx context.Context, d app.Deps) error {
				names, err := d.Exporter.Run(ctx, nil, tasks)
				for _, n := range names {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return err
			})
		},
	}

	cmd.Flags().StringVar(&taskFile, "tasks", "", "Task list file (default export.task_file)")
	cmd.Flags().StringVar(&outDir, "out", "", "Write reports to this directory instead of the configured sink")

	return cmd
}
