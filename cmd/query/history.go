package query

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/biomatrix/cmd/cmdutil"
	"github.com/Alijeyrad/biomatrix/internal/app"
	"github.com/Alijeyrad/biomatrix/internal/history"
	"github.com/Alijeyrad/biomatrix/internal/model"
)

func NewHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history <pt_id>",
		Short: "Print a patient's exams and procedures in date order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("patient id %q is not an integer", args[0])
			}
			cfg, err := cmdutil.ReadConfig(cmd)
			if err != nil {
				return err
			}

			return app.Exec(cmd.Context(), cfg, func(ctx context.Context, d app.Deps) error {
				sess, err := d.Interpreter.Session()
				if err != nil {
					return err
				}
				defer sess.Close()

				m := d.Interpreter.Model()
				e, err := m.Entity("Patient")
				if err != nil {
					return err
				}
				patient, err := m.Get(ctx, sess, e, id)
				if err != nil {
					return err
				}
				entries, err := history.ForPatient(ctx, m, sess, patient)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				for _, en := range entries {
					date := "None"
					if en.Date != nil {
						date = en.Date.Format(model.TimeLayout)
					}
					fmt.Fprintf(out, "%-19s  %-9s  %v\n", date, en.Kind, en.Record.Key())
				}
				return nil
			})
		},
	}
}
