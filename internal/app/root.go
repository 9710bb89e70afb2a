// Package app contains the Cobra command tree for pydash.
package app

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pydash/internal/config"
	"pydash/internal/git"
	"pydash/internal/output"
	"pydash/internal/runner"
	"pydash/internal/scanner"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "pydash",
	Short: "Local dashboard for Python projects",
	Long: `pydash discovers the Python projects under your projects directory,
reconciles each against its virtual environment and git repository, and
presents the result as a terminal table or a local web dashboard.

Run 'pydash' with no arguments for a quick scan summary.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			logrus.SetLevel(logrus.DebugLevel)
		} else {
			logrus.SetLevel(logrus.WarnLevel)
		}
		output.Init(flagNoColor)
	},
	RunE: runScan,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/pydash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}

// newScanner builds the production scanner from configuration: a real
// command runner and the process's active virtual environment.
func newScanner(cfg *config.Config) *scanner.Scanner {
	s := scanner.New(runner.Exec{}, os.Getenv("VIRTUAL_ENV"))
	if cfg.Scan.MaxEntries > 0 {
		s.Limits.MaxEntries = cfg.Scan.MaxEntries
	}
	if cfg.Scan.WalkBudgetSec > 0 {
		s.Limits.WalkBudget = cfg.Scan.WalkBudget()
	}
	if cfg.Scan.EntryBudgetSec > 0 {
		s.Limits.EntryBudget = cfg.Scan.EntryBudget()
	}
	return s
}

// newGitService builds the git service with the configured identity and
// GitHub credentials.
func newGitService(cfg *config.Config) *git.Service {
	svc := git.NewService(runner.Exec{})
	svc.UserName = cfg.GitHub.GitName
	svc.UserEmail = cfg.GitHub.GitEmail
	svc.GitHubUser = cfg.GitHub.Username
	svc.GitHubToken = cfg.GitHub.Token
	return svc
}
