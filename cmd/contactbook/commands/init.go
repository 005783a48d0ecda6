package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyluth/contactbook/internal/printer"
	"github.com/dyluth/contactbook/internal/scaffold"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter contactbook.yml",
	Long: `Write a starter contactbook.yml in the current directory.

The file documents every setting and the environment variable that overrides it.
Use --force to overwrite an existing file.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing contactbook.yml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if !forceInit {
		if err := scaffold.CheckExisting("."); err != nil {
			return printer.Error("project already initialized", err.Error(), nil)
		}
	}

	path, err := scaffold.Initialize(".", forceInit)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	scaffold.PrintSuccess(path)
	return nil
}
