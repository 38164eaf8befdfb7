package cmd

import (
	"errors"
	"os"

	"milestones/internal/dependency"
	"milestones/internal/milestone"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments, storage failure).
	ExitCodeError = 1
	// ExitCodeRejected indicates the requested change breaks a dependency rule.
	ExitCodeRejected = 2
	// ExitCodeCorrupted indicates the stored dependency graph already contains a cycle.
	ExitCodeCorrupted = 3
)

var (
	configPath   string
	projectID    int64
	outputFormat string
)

// rootCmd represents the base command for the milestones application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "milestones",
	Short: "Validate and order solar-installation project milestones",
	Long: `milestones keeps the milestone dependencies of solar-installation
projects consistent. Every edit is checked for self-dependencies, references
to unknown milestones and circular dependencies before it is stored, and the
stored graph can be listed in a legal execution order.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "milestones version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if milestone.IsRejected(err) {
		return ExitCodeRejected
	}

	var corrupted *dependency.CorruptedGraphError
	if errors.As(err, &corrupted) {
		return ExitCodeCorrupted
	}

	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", "", "Configuration directory (default is $HOME/.config/milestones)")
	rootCmd.PersistentFlags().Int64VarP(&projectID, "project", "p", 0, "Project id")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, yaml)")

	rootCmd.AddCommand(newVersionCmd())
}
