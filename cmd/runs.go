package cmd

import (
	"github.com/abhisek/gradebook/internal/report"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List archived grading runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.RunRepo().ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return report.Runs(cmd.OutOrStdout(), runs)
	},
}

var runsExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Write an archived run's student results as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		results, err := st.RunRepo().Results(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return report.WriteResultsCSV(cmd.OutOrStdout(), results)
	},
}

func init() {
	runsCmd.Flags().Int("limit", 20, "Maximum number of runs to show (0 = all)")

	runsCmd.AddCommand(runsExportCmd)
}
