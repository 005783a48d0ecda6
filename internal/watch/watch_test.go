package watch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/contactbook/pkg/contact"
	"github.com/dyluth/contactbook/pkg/events"
)

var ada = contact.Contact{ID: 2, FirstName: "Ada", LastName: "Lovelace", PhoneNumber: "5550100", Email: "ada@example.com"}

// fakeSource is a Source fed directly by the test
type fakeSource struct {
	events chan *events.Event
	errors chan error
}

func newFakeSource() *fakeSource {
	return &fakeSource{events: make(chan *events.Event, 10), errors: make(chan error, 10)}
}

func (f *fakeSource) Events() <-chan *events.Event { return f.events }
func (f *fakeSource) Errors() <-chan error         { return f.errors }

func TestParseOutputFormat(t *testing.T) {
	f, err := ParseOutputFormat("json")
	require.NoError(t, err)
	assert.Equal(t, OutputFormatJSON, f)

	_, err = ParseOutputFormat("yaml")
	assert.Error(t, err)
}

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		name     string
		event    *events.Event
		expected string
	}{
		{"created", &events.Event{Type: events.EventTypeCreated, Contact: ada}, "✨ Contact Created: #2 Ada Lovelace <ada@example.com>"},
		{"updated", &events.Event{Type: events.EventTypeUpdated, Contact: ada}, "✏️  Contact Updated: #2 Ada Lovelace <ada@example.com>"},
		{"deleted", &events.Event{Type: events.EventTypeDeleted, Contact: ada}, "🗑️  Contact Deleted: #2 Ada Lovelace <ada@example.com> (later ids shifted down by one)"},
		{"unknown", &events.Event{Type: "merged", Contact: ada}, `❓ Unknown event "merged" for contact #2`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatEvent(tt.event))
		})
	}
}

func TestStreamEvents_DefaultFormat(t *testing.T) {
	src := newFakeSource()
	src.events <- events.NewEvent(events.EventTypeCreated, ada)
	src.errors <- errors.New("failed to unmarshal contact event")
	close(src.errors)
	close(src.events)

	var buf bytes.Buffer
	require.NoError(t, StreamEvents(context.Background(), src, OutputFormatDefault, &buf))

	out := buf.String()
	assert.Contains(t, out, "Watching for contact changes")
	assert.Contains(t, out, "Contact Created: #2 Ada Lovelace")
}

func TestStreamEvents_JSONFormat(t *testing.T) {
	src := newFakeSource()
	src.events <- events.NewEvent(events.EventTypeDeleted, ada)
	src.errors <- errors.New("bad payload")
	close(src.events)

	var buf bytes.Buffer
	require.NoError(t, StreamEvents(context.Background(), src, OutputFormatJSON, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	for _, line := range lines {
		var e events.Event
		require.NoError(t, json.Unmarshal([]byte(line), &e), "every line must be JSON: %q", line)
	}
	assert.Contains(t, buf.String(), `"type":"deleted"`)
}

func TestStreamEvents_StopsOnCancel(t *testing.T) {
	src := newFakeSource()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- StreamEvents(ctx, src, OutputFormatJSON, &bytes.Buffer{}) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("StreamEvents did not return after cancel")
	}
}

// syncBuffer lets the test read output while StreamEvents is writing it
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStreamEvents_FromRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := events.NewClient(&redis.Options{Addr: mr.Addr()}, "test-instance")
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := client.Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- StreamEvents(ctx, sub, OutputFormatDefault, &out) }()

	require.NoError(t, client.Publish(ctx, events.NewEvent(events.EventTypeUpdated, ada)))

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Contact Updated: #2")
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
