package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/biomatrix/cmd/cmdutil"
	"github.com/Alijeyrad/biomatrix/internal/app"
	"github.com/Alijeyrad/biomatrix/internal/cohort"
	"github.com/Alijeyrad/biomatrix/internal/model"
	"github.com/Alijeyrad/biomatrix/pkg/database"
)

var cohorts = map[string]func(ctx context.Context, s *cohort.Selector, sess *database.Session, w io.Writer, gap time.Duration) error{
	"bba": func(ctx context.Context, s *cohort.Selector, sess *database.Session, w io.Writer, _ time.Duration) error {
		exams, err := s.BenignByAssumption(ctx, sess)
		return printRecords(w, exams, err)
	},
	"malignant": func(ctx context.Context, s *cohort.Selector, sess *database.Session, w io.Writer, _ time.Duration) error {
		exams, err := s.MalignantFindingExams(ctx, sess)
		return printRecords(w, exams, err)
	},
	"pairs": func(ctx context.Context, s *cohort.Selector, sess *database.Session, w io.Writer, gap time.Duration) error {
		pairs, err := s.PriorPairs(ctx, sess, gap)
		if err != nil {
			return err
		}
		for _, p := range pairs {
			acc, _ := p.Exam.String("a_number_txt")
			prior, _ := p.Prior.String("a_number_txt")
			fmt.Fprintf(w, "%s %s %s\n", p.CADPatient, acc, prior)
		}
		return nil
	},
	"pathology": func(ctx context.Context, s *cohort.Selector, sess *database.Session, w io.Writer, _ time.Duration) error {
		listing, err := s.PathologyListing(ctx, sess)
		if err != nil {
			return err
		}
		for _, p := range listing {
			if err := printSummary(w, "", p.Patient); err != nil {
				return err
			}
			for _, proc := range p.Procedures {
				if err := printSummary(w, "  ", proc.Procedure); err != nil {
					return err
				}
				for _, path := range proc.Pathologies {
					if err := printSummary(w, "    ", path); err != nil {
						return err
					}
				}
			}
		}
		return nil
	},
}

func printRecords(w io.Writer, recs []*model.Record, err error) error {
	if err != nil {
		return err
	}
	for _, r := range recs {
		fmt.Fprintln(w, r.Text())
	}
	return nil
}

func printSummary(w io.Writer, indent string, r *model.Record) error {
	line, err := r.Summary()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, indent+line)
	return err
}

func NewCohortCommand() *cobra.Command {
	var gap time.Duration

	cmd := &cobra.Command{
		Use:       "cohort <bba|malignant|pairs|pathology>",
		Short:     "Print a study cohort",
		ValidArgs: []string{"bba", "malignant", "pairs", "pathology"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdutil.ReadConfig(cmd)
			if err != nil {
				return err
			}
			run := cohorts[args[0]]

			return app.Exec(cmd.Context(), cfg, func(ctx context.Context, d app.Deps) error {
				sess, err := d.Interpreter.Session()
				if err != nil {
					return err
				}
				defer sess.Close()
				return run(ctx, d.Cohorts, sess, cmd.OutOrStdout(), gap)
			})
		},
	}

	cmd.Flags().DurationVar(&gap, "gap", cohort.DefaultPriorGap, "Minimum time between a paired exam and its prior")

	return cmd
}
