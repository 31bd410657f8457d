package query

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/biomatrix/cmd/cmdutil"
	"github.com/Alijeyrad/biomatrix/internal/app"
)

func NewRunCommand() *cobra.Command {
	var (
		asJSON  bool
		summary bool
	)

	cmd := &cobra.Command{
		Use:   "run <query>",
		Short: "Print every record matching a query string",
		Example: `  biomatrix query run Patient
  biomatrix query run "CAD.cad_pt_no_txt=='0042'"
  biomatrix query run "Exam.exam_tp_int=='MRI',Exam.sty_indicator_high_risk_yn==True"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdutil.ReadConfig(cmd)
			if err != nil {
				return err
			}

			return app.Exec(cmd.Context(), cfg, func(ctx context.Context, d app.Deps) error {
				recs, err := d.Interpreter.Run(ctx, args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(recs)
				}
				for _, r := range recs {
					if !summary {
						fmt.Fprintln(out, r.Text())
						continue
					}
					line, err := r.Summary()
					if err != nil {
						return err
					}
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	cmd.Flags().BoolVar(&summary, "summary", false, "Print one summary line per record")

	return cmd
}
