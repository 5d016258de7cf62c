package cmd

import (
	"errors"
	"os"

	"chatcheck/internal/auth"
	"chatcheck/internal/registry"
	"chatcheck/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error.
	ExitCodeError = 1
	// ExitCodeAuthFailed indicates credential resolution failed.
	ExitCodeAuthFailed = 2
	// ExitCodeConfigInvalid indicates the identity source or environment is
	// missing or malformed.
	ExitCodeConfigInvalid = 3
)

var (
	appsFile string
	logLevel string
)

// rootCmd represents the base command for the chatcheck harness.
var rootCmd = &cobra.Command{
	Use:   "chatcheck",
	Short: "Integration harness tooling for the chatbot API",
	Long: `chatcheck drives the chatbot / CRM API integration suite: it loads
the application identity source, resolves OAuth credentials per identity,
and issues authenticated probe requests against the configured target.

The subcommands expose the harness's building blocks for inspection:
listing identities, checking credential resolution, and deriving
mutualization pairs.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logging.ParseLevel(logLevel), os.Stderr)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&appsFile, "apps", "",
		"path to the identity source (default apps.yaml, or APPS_FILE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")

	rootCmd.AddCommand(newAppsCmd())
	rootCmd.AddCommand(newPairsCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// SetVersion sets the version for the root command. Called from the main
// package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command and exits with a semantic exit code.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "chatcheck version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps error types to exit codes for scripting and CI use.
func getExitCode(err error) int {
	var authErr *auth.AuthenticationError
	if errors.As(err, &authErr) {
		return ExitCodeAuthFailed
	}

	var confErr *registry.ConfigurationError
	if errors.As(err, &confErr) {
		return ExitCodeConfigInvalid
	}

	var valErr *registry.ValidationError
	if errors.As(err, &valErr) {
		return ExitCodeConfigInvalid
	}

	return ExitCodeError
}

// openRegistry builds the identity registry from the --apps flag, falling
// back to the APPS_FILE environment variable.
func openRegistry() *registry.Registry {
	path := appsFile
	if path == "" {
		path = os.Getenv("APPS_FILE")
	}
	return registry.New(path)
}
