package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dyluth/contactbook/internal/format"
	"github.com/dyluth/contactbook/internal/printer"
	"github.com/dyluth/contactbook/internal/store"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every contact",
	Long: `Print every contact in id order, straight from the database.

Output Formats:
  default - Aligned table
  --json  - Line-delimited JSON, one contact per line

Examples:
  contactbook list
  contactbook list --json | jq -r .email`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as line-delimited JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(ctx, cfg.Database.URL)
	if err != nil {
		return printer.ErrorWithContext(
			"database connection failed",
			err.Error(),
			map[string]string{"Database": cfg.Database.URL},
			nil,
		)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return printer.Error("database migration failed", err.Error(), nil)
	}

	contacts, err := st.List(ctx)
	if err != nil {
		return printer.Error("failed to list contacts", err.Error(), nil)
	}

	if listJSON {
		return format.FormatJSONL(cmd.OutOrStdout(), contacts)
	}
	format.FormatTable(cmd.OutOrStdout(), contacts, st.Dialect())
	return nil
}
