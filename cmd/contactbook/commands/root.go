package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyluth/contactbook/internal/config"
	"github.com/dyluth/contactbook/internal/printer"
)

var (
	version string
	commit  string
	date    string

	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "contactbook",
	Short: "contactbook - a small web contact book",
	Long: `contactbook serves a browser-facing phonebook backed by SQLite or PostgreSQL.

Contacts are numbered 1..N without gaps: deleting a contact moves every later
contact up one place. Deletes require HTTP Basic credentials taken from
CONTACTBOOK_USERNAME and CONTACTBOOK_PASSWORD.

When events.redis_url is configured, every change is published to Redis and
can be followed live with 'contactbook watch'.`,
	Version: version,
	// Prevent silent success when unknown flags are passed to root command
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to contactbook.yml")
}

// loadConfig reads --config plus the environment and reports problems through
// the printer.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, printer.ErrorWithContext(
			"invalid configuration",
			err.Error(),
			map[string]string{"Config file": configPath},
			[]string{"Create a starter file:\n  contactbook init"},
		)
	}
	return cfg, nil
}
