package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abhisek/gradebook/internal/gradebook"
	"github.com/abhisek/gradebook/internal/grading"
	"github.com/abhisek/gradebook/internal/loader"
	"github.com/abhisek/gradebook/internal/policy"
	"github.com/abhisek/gradebook/internal/report"
	"github.com/abhisek/gradebook/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var gradeCmd = &cobra.Command{
	Use:   "grade <gradebook.csv|xlsx>",
	Short: "Compute weighted totals and letter grades",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		csvPath, _ := cmd.Flags().GetString("csv")
		chartPath, _ := cmd.Flags().GetString("chart")
		save, _ := cmd.Flags().GetBool("save")

		pol, err := loadPolicy()
		if err != nil {
			return err
		}
		calc, err := pol.Calculator()
		if err != nil {
			return err
		}
		gb, err := readGradebook(args[0])
		if err != nil {
			return err
		}

		res, err := calc.Compute(gb)
		if err != nil {
			return fmt.Errorf("compute totals: %w", err)
		}
		logIncomplete(res)

		out := cmd.OutOrStdout()
		if err := report.Totals(out, res, pol.Scale); err != nil {
			return err
		}
		shares := pol.Scale.Distribution(res.Totals)
		if err := report.Distribution(out, shares); err != nil {
			return err
		}

		if csvPath != "" {
			if err := writeOutput(csvPath, func(f *os.File) error {
				return report.WriteTotalsCSV(f, res, pol.Scale)
			}); err != nil {
				return err
			}
		}
		if chartPath != "" {
			if err := writeOutput(chartPath, func(f *os.File) error {
				return report.DistributionChart(f, filepath.Base(args[0]), pol.Scale, shares)
			}); err != nil {
				return err
			}
		}
		if save {
			run := &store.Run{Kind: store.KindGrade, Source: args[0]}
			return archive(cmd.Context(), run, pol, report.GradeResults(res, pol.Scale))
		}
		return nil
	},
}

func init() {
	gradeCmd.Flags().String("csv", "", "Also write per-student results to this CSV file")
	gradeCmd.Flags().String("chart", "", "Also write an HTML grade distribution chart to this file")
	gradeCmd.Flags().Bool("save", false, "Archive this run in the SQLite database")
}

// readGradebook loads and validates a gradebook export.
func readGradebook(path string) (*gradebook.Gradebook, error) {
	tbl, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	gb, err := gradebook.New(tbl)
	if err != nil {
		return nil, err
	}
	for _, c := range gb.Schema().Ambiguous() {
		logger.Warn("column matches several categories",
			zap.String("column", c.Name), zap.Any("categories", c.Categories))
	}
	logger.Info("loaded gradebook", zap.String("path", path), zap.Int("students", gb.Len()))
	return gb, nil
}

func logIncomplete(res *grading.Result) {
	for i, total := range res.Totals {
		if grading.IsUndefined(total) {
			logger.Warn("total is undefined", zap.String("pid", res.PIDs[i]))
		}
	}
}

func writeOutput(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("wrote file", zap.String("path", path))
	return nil
}

func archive(ctx context.Context, run *store.Run, pol policy.Policy, results []store.StudentResult) error {
	raw, err := pol.Encode()
	if err != nil {
		return fmt.Errorf("encode policy: %w", err)
	}
	run.Policy = string(raw)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.RunRepo().SaveRun(ctx, run, results); err != nil {
		return err
	}
	logger.Info("archived run", zap.String("id", run.ID), zap.String("kind", string(run.Kind)))
	return nil
}
