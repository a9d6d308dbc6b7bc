package cmd

import (
	"fmt"

	"github.com/abhisek/gradebook/internal/gradebook"
	"github.com/abhisek/gradebook/internal/loader"
	"github.com/abhisek/gradebook/internal/report"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <gradebook.csv|xlsx>",
	Short: "Show how gradebook columns map to categories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl, err := loader.Load(args[0])
		if err != nil {
			return fmt.Errorf("load %s: %w", args[0], err)
		}
		schema := gradebook.Classify(tbl.Names())
		if err := report.Schema(cmd.OutOrStdout(), schema); err != nil {
			return err
		}
		return schema.Validate(tbl)
	},
}
