package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dyluth/contactbook/internal/printer"
	"github.com/dyluth/contactbook/internal/watch"
)

var watchOutputFormat string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream contact changes as they happen",
	Long: `Stream contact creations, edits and deletes published by 'contactbook serve'.

Requires events.redis_url (or REDIS_URL) and the same events.instance as the server.
Delivery is best-effort: events published while watch is not connected are not replayed.

Output Formats:
  default - Human-readable output with timestamps and emojis
  json    - Line-delimited JSON for programmatic processing

Examples:
  contactbook watch
  contactbook watch --output=json > changes.jsonl`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutputFormat, "output", "o", "default", "Output format (default or json)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	outputFormat, err := watch.ParseOutputFormat(watchOutputFormat)
	if err != nil {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", watchOutputFormat),
			[]string{"Valid formats: default, json"},
		)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.Events.RedisURL == "" {
		return printer.Error(
			"change feed not configured",
			"No Redis URL is set, so the server is not publishing contact changes.",
			[]string{"Set events.redis_url in contactbook.yml or export REDIS_URL, then restart 'contactbook serve'"},
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := connectEvents(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	sub, err := client.Subscribe(ctx)
	if err != nil {
		return printer.Error("subscription failed", err.Error(), nil)
	}
	defer sub.Close()

	return watch.StreamEvents(ctx, sub, outputFormat, cmd.OutOrStdout())
}
