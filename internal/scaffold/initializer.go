// Package scaffold writes a starter contactbook.yml.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dyluth/contactbook/internal/config"
	"github.com/dyluth/contactbook/internal/printer"
)

//go:embed templates/*
var templatesFS embed.FS

// CheckExisting returns an error if dir already holds a contactbook.yml.
func CheckExisting(dir string) error {
	path := filepath.Join(dir, config.DefaultPath)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists\n\nUse 'contactbook init --force' to overwrite it", path)
	}
	return nil
}

// Initialize writes contactbook.yml into dir and returns its path.
// Without force an existing file is left alone and reported as an error.
func Initialize(dir string, force bool) (string, error) {
	path := filepath.Join(dir, config.DefaultPath)

	if force {
		if _, err := os.Stat(path); err == nil {
			printer.Warning("Overwriting existing %s...\n", path)
		}
	} else if err := CheckExisting(dir); err != nil {
		return "", err
	}

	content, err := templatesFS.ReadFile("templates/contactbook.yml.tmpl")
	if err != nil {
		return "", fmt.Errorf("failed to read contactbook.yml template: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := validateCreatedFile(path); err != nil {
		return "", err
	}

	return path, nil
}

// validateCreatedFile checks that the written file decodes strictly into a
// valid Config.
func validateCreatedFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read created %s: %w", path, err)
	}

	cfg := config.Default()
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("created %s is not valid YAML: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("created %s is not a valid configuration: %w", path, err)
	}

	return nil
}

// PrintSuccess prints what was created and how to continue.
func PrintSuccess(path string) {
	printer.Success("Created %s\n", path)
	printer.Println("\nNext steps:")
	printer.Println("  1. Export CONTACTBOOK_USERNAME and CONTACTBOOK_PASSWORD to enable deletes")
	printer.Println("  2. Point database.url at PostgreSQL if you need more than one writer")
	printer.Println("  3. Run 'contactbook serve' and open http://localhost:8000")
}
