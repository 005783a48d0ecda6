// Package watch streams contact change events to a terminal or a pipe.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dyluth/contactbook/internal/format"
	"github.com/dyluth/contactbook/pkg/events"
)

// OutputFormat selects how each event is written.
type OutputFormat string

const (
	// OutputFormatDefault writes one human-readable line per event
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSON writes each event as line-delimited JSON
	OutputFormatJSON OutputFormat = "json"
)

// ParseOutputFormat maps a --output flag value to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputFormatDefault, OutputFormatJSON:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", s)
	}
}

// Source is a live event stream. *events.Subscription satisfies it.
type Source interface {
	Events() <-chan *events.Event
	Errors() <-chan error
}

// StreamEvents copies events from src to w until ctx is cancelled or the
// stream ends. Decode errors on the stream are reported inline in the default
// format and skipped in JSON so the output stays machine-readable.
func StreamEvents(ctx context.Context, src Source, outputFormat OutputFormat, w io.Writer) error {
	if outputFormat == OutputFormatDefault {
		fmt.Fprintln(w, "Watching for contact changes (Ctrl+C to stop)...")
	}

	evs, errs := src.Events(), src.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-evs:
			if !ok {
				return nil
			}
			if err := writeEvent(w, e, outputFormat); err != nil {
				return err
			}

		case err, ok := <-errs:
			if !ok {
				// keep draining events until that channel closes too
				errs = nil
				continue
			}
			if outputFormat == OutputFormatDefault {
				fmt.Fprintf(w, "⚠️  %v\n", err)
			}
		}
	}
}

func writeEvent(w io.Writer, e *events.Event, outputFormat OutputFormat) error {
	if outputFormat == OutputFormatJSON {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal event to JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write event: %w", err)
		}
		return nil
	}

	if _, err := fmt.Fprintf(w, "[%s] %s\n", format.Timestamp(e.OccurredAtMs), FormatEvent(e)); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// FormatEvent renders e as a single human-readable line.
func FormatEvent(e *events.Event) string {
	c := e.Contact
	switch e.Type {
	case events.EventTypeCreated:
		return fmt.Sprintf("✨ Contact Created: #%d %s <%s>", c.ID, c.FullName(), c.Email)
	case events.EventTypeUpdated:
		return fmt.Sprintf("✏️  Contact Updated: #%d %s <%s>", c.ID, c.FullName(), c.Email)
	case events.EventTypeDeleted:
		return fmt.Sprintf("🗑️  Contact Deleted: #%d %s <%s> (later ids shifted down by one)", c.ID, c.FullName(), c.Email)
	default:
		return fmt.Sprintf("❓ Unknown event %q for contact #%d", e.Type, c.ID)
	}
}
