//go:build integration

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/dyluth/contactbook/internal/auth"
	"github.com/dyluth/contactbook/internal/config"
	"github.com/dyluth/contactbook/pkg/contact"
	"github.com/dyluth/contactbook/pkg/events"
)

// startContainer runs req and returns host:port for the given exposed port.
func startContainer(t *testing.T, req testcontainers.ContainerRequest, port string) string {
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start %s container: %v", req.Image, err)
	}
	t.Cleanup(func() {
		if err := c.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate %s container: %v", req.Image, err)
		}
	})

	host, err := c.Host(ctx)
	require.NoError(t, err)
	mapped, err := c.MappedPort(ctx, port)
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, mapped.Port())
}

func setupRedis(t *testing.T) string {
	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}, "6379")
	return "redis://" + addr
}

func setupPostgres(t *testing.T) string {
	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "contactbook",
			"POSTGRES_PASSWORD": "contactbook",
			"POSTGRES_DB":       "contactbook",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}, "5432")
	return fmt.Sprintf("postgres://contactbook:contactbook@%s/contactbook?sslmode=disable", addr)
}

// TestE2E_PostgresAndRedis drives the real HTTP stack over PostgreSQL while
// following the change feed from Redis.
func TestE2E_PostgresAndRedis(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg := config.Default()
	cfg.Database.URL = setupPostgres(t)
	cfg.Events.RedisURL = setupRedis(t)
	cfg.Events.Instance = "e2e"
	cfg.Credentials = auth.Credentials{Username: "admin", Password: "pw"}

	a, err := newApp(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	ts := httptest.NewServer(a.server.Handler())
	defer ts.Close()

	opts, err := redis.ParseURL(cfg.Events.RedisURL)
	require.NoError(t, err)
	watcher, err := events.NewClient(opts, "e2e")
	require.NoError(t, err)
	defer watcher.Close()

	sub, err := watcher.Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	// don't follow the 303 so the redirect itself can be asserted
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}

	for _, name := range []string{"one", "two", "three"} {
		form := url.Values{"first_name": {"Test"}, "last_name": {"Person"}, "phone_number": {"5550100"}, "email": {name + "@example.com"}}
		resp, err := client.PostForm(ts.URL+"/contact", form)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, ts.URL+"/contact/2/delete", nil)
	require.NoError(t, err)
	req.SetBasicAuth("admin", "pw")
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/json")
	resp, err = client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var contacts []contact.Contact
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&contacts))
	require.Len(t, contacts, 2)
	assert.Equal(t, int64(1), contacts[0].ID)
	assert.Equal(t, "one@example.com", contacts[0].Email)
	assert.Equal(t, int64(2), contacts[1].ID)
	assert.Equal(t, "three@example.com", contacts[1].Email)

	var seen []string
	for len(seen) < 4 {
		select {
		case e := <-sub.Events():
			seen = append(seen, string(e.Type))
		case <-ctx.Done():
			t.Fatalf("timed out waiting for events, got %s", strings.Join(seen, ","))
		}
	}
	assert.Equal(t, []string{"created", "created", "created", "deleted"}, seen)
}
