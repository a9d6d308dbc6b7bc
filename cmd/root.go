package cmd

import (
	"fmt"

	"github.com/abhisek/gradebook/internal/config"
	"github.com/abhisek/gradebook/internal/logging"
	"github.com/abhisek/gradebook/internal/policy"
	"github.com/abhisek/gradebook/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "gradebook",
	Short: "Course grade calculator",
	Long:  "Gradebook computes weighted course grades from LMS exports and evaluates midterm redemption.",

	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite run archive (overrides GRADEBOOK_DB env var)")
	rootCmd.PersistentFlags().String("policy", "", "Path to a JSON or YAML grading policy (overrides GRADEBOOK_POLICY env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides GRADEBOOK_LOG_LEVEL env var)")

	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(redemptionCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup reads the environment, applies flag overrides and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.FromEnv(config.DotEnvFile)
	if err != nil {
		return err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		c.DBPath = p
	}
	if p, _ := cmd.Flags().GetString("policy"); p != "" {
		c.PolicyFile = p
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		c.Log.Level = l
	}
	if err := c.Validate(); err != nil {
		return err
	}

	l, err := logging.New(c.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	cfg, logger = c, l
	return nil
}

// loadPolicy returns the configured grading policy, or the default one.
func loadPolicy() (policy.Policy, error) {
	if cfg.PolicyFile == "" {
		return policy.Default(), nil
	}
	p, err := policy.Load(cfg.PolicyFile)
	if err != nil {
		return policy.Policy{}, err
	}
	logger.Debug("loaded grading policy", zap.String("path", cfg.PolicyFile))
	return p, nil
}

// openStore opens the run archive at --db, GRADEBOOK_DB or the default
// XDG path, in that order.
func openStore() (*store.Store, error) {
	dbPath := cfg.DBPath
	if dbPath != "" {
		if err := store.EnsureDir(dbPath); err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
	} else {
		var err error
		if dbPath, err = store.DefaultDBPath(); err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("opened run archive", zap.String("path", dbPath))
	return st, nil
}
