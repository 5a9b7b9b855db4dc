package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/kioku/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "kioku",
	Short: "Spaced-repetition trainer for true/false question banks",
	Long: "kioku schedules true/false questions with spaced repetition, tracks accuracy\n" +
		"and streaks, and critiques your reasoning with an optional LLM.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, nil)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides KIOKU_DB env var)")
	pf.String("config", "", "Path to config file (overrides KIOKU_CONFIG env var)")
	pf.String("catalog", "", "Path to a JSON or YAML question bank (overrides config)")
	pf.BoolP("verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(weaknessCmd)
	rootCmd.AddCommand(memoCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// setupLogger routes slog to stderr. Warnings only, unless --verbose.
func setupLogger(cmd *cobra.Command) {
	level := slog.LevelWarn
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file, then KIOKU_DB env var and the default XDG path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if configured != "" && os.Getenv("KIOKU_DB") == "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}
