package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/contactbook/pkg/contact"
)

func sampleContacts() []contact.Contact {
	return []contact.Contact{
		{ID: 1, FirstName: "Ada", LastName: "Lovelace", PhoneNumber: "5550100", Email: "ada@example.com"},
		{ID: 2, FirstName: "Grace", LastName: "Hopper", PhoneNumber: "5550101", Email: "grace@example.com"},
	}
}

func TestFormatTable(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		n := FormatTable(&buf, nil, "sqlite")
		assert.Equal(t, 0, n)
		assert.Equal(t, "No contacts found in sqlite\n", buf.String())
	})

	t.Run("rows and count", func(t *testing.T) {
		var buf bytes.Buffer
		n := FormatTable(&buf, sampleContacts(), "sqlite")
		assert.Equal(t, 2, n)

		out := buf.String()
		assert.Contains(t, out, "Contacts in sqlite:")
		assert.Contains(t, out, "Ada Lovelace")
		assert.Contains(t, out, "grace@example.com")
		assert.Contains(t, out, "2 contacts found")
	})

	t.Run("singular count", func(t *testing.T) {
		var buf bytes.Buffer
		FormatTable(&buf, sampleContacts()[:1], "postgres")
		assert.Contains(t, buf.String(), "1 contact found")
	})
}

func TestFormatJSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSONL(&buf, sampleContacts()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first contact.Contact
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, sampleContacts()[0], first)
}

func TestTimestamp(t *testing.T) {
	assert.Equal(t, "-", Timestamp(0))

	ts := time.Date(2024, 5, 1, 13, 4, 5, 0, time.Local)
	assert.Equal(t, "13:04:05", Timestamp(ts.UnixMilli()))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
