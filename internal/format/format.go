// Package format renders contacts for the terminal: an aligned table for
// people and JSONL for scripts.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dyluth/contactbook/pkg/contact"
)

// FormatTable writes contacts as a table with columns ID, NAME, PHONE and EMAIL.
// source names the database in the header. Returns the number of contacts
// formatted.
func FormatTable(w io.Writer, contacts []contact.Contact, source string) int {
	if len(contacts) == 0 {
		fmt.Fprintf(w, "No contacts found in %s\n", source)
		return 0
	}

	fmt.Fprintf(w, "Contacts in %s:\n\n", source)

	fmt.Fprintf(w, "%-5s %-30s %-16s %s\n", "ID", "NAME", "PHONE", "EMAIL")
	fmt.Fprintf(w, "%-5s %-30s %-16s %s\n",
		"-----", "------------------------------", "----------------", "------------------------------")

	for _, c := range contacts {
		fmt.Fprintf(w, "%-5d %-30s %-16s %s\n",
			c.ID,
			truncate(c.FullName(), 30),
			truncate(c.PhoneNumber, 16),
			c.Email,
		)
	}

	countMsg := "contact"
	if len(contacts) != 1 {
		countMsg = "contacts"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(contacts), countMsg)

	return len(contacts)
}

// FormatJSONL writes one compact JSON object per contact, one per line.
// Suitable for piping into jq.
func FormatJSONL(w io.Writer, contacts []contact.Contact) error {
	for _, c := range contacts {
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal contact to JSON: %w", err)
		}

		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}

	return nil
}

// Timestamp renders a Unix millisecond timestamp as local wall-clock time.
func Timestamp(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Format("15:04:05")
}

// truncate shortens s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
