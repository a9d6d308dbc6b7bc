package cmd

import (
	"fmt"
	"os"

	"github.com/abhisek/gradebook/internal/loader"
	"github.com/abhisek/gradebook/internal/redemption"
	"github.com/abhisek/gradebook/internal/report"
	"github.com/abhisek/gradebook/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var redemptionCmd = &cobra.Command{
	Use:   "redemption <gradebook.csv|xlsx> <breakdown.csv|xlsx>",
	Short: "Rescale redemption scores onto the midterm and report grade changes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		questions, _ := cmd.Flags().GetIntSlice("questions")
		csvPath, _ := cmd.Flags().GetString("csv")
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

		sheet, err := loader.Load(args[1])
		if err != nil {
			return fmt.Errorf("load %s: %w", args[1], err)
		}
		bd, err := redemption.LoadBreakdown(sheet)
		if err != nil {
			return err
		}
		if len(questions) == 0 {
			for _, q := range bd.Questions() {
				questions = append(questions, q.Number)
			}
		}
		raw, err := redemption.RawScores(bd, questions)
		if err != nil {
			return err
		}

		combined, err := redemption.Combine(gb, raw)
		if err != nil {
			return err
		}
		if n := combined.Report.Dropped(); n > 0 {
			logger.Warn("students dropped by PID join",
				zap.Strings("gradebook_only", combined.Report.LeftOnly),
				zap.Strings("breakdown_only", combined.Report.RightOnly))
		}

		adj, err := redemption.NewAdjuster(calc, pol.Scale).Adjust(combined)
		if err != nil {
			return err
		}
		logger.Info("redemption computed",
			zap.Ints("questions", questions),
			zap.Int("students", len(adj.Students)),
			zap.Float64("proportion_improved", adj.ProportionImproved()))

		if err := report.Redemption(cmd.OutOrStdout(), adj, combined.Report); err != nil {
			return err
		}
		if csvPath != "" {
			if err := writeOutput(csvPath, func(f *os.File) error {
				return report.WriteRedemptionCSV(f, adj)
			}); err != nil {
				return err
			}
		}
		if save {
			run := &store.Run{
				Kind:               store.KindRedemption,
				Source:             args[1],
				Dropped:            combined.Report.Dropped(),
				ProportionImproved: adj.ProportionImproved(),
			}
			return archive(cmd.Context(), run, pol, report.RedemptionResults(adj))
		}
		return nil
	},
}

func init() {
	redemptionCmd.Flags().IntSlice("questions", nil, "Question numbers that count toward redemption (default: all)")
	redemptionCmd.Flags().String("csv", "", "Also write per-student results to this CSV file")
	redemptionCmd.Flags().Bool("save", false, "Archive this run in the SQLite database")
}
