//go:build integration

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a PostgreSQL container and returns a migrated store.
func setupPostgres(t *testing.T) *Store {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
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
	}

	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgC.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate PostgreSQL container: %v", err)
		}
	})

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	url := fmt.Sprintf("postgres://contactbook:contactbook@%s:%s/contactbook?sslmode=disable", host, port.Port())
	s, err := Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Migrate(ctx))
	require.Equal(t, "postgres", s.Dialect())
	return s
}

func TestPostgres_DeleteAndRenumber(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()
	seeded := seed(t, s, 5)

	_, err := s.DeleteAndRenumber(ctx, 2)
	require.NoError(t, err)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(all))
	assert.Equal(t, []string{seeded[0].Email, seeded[2].Email, seeded[3].Email, seeded[4].Email}, emails(all))

	// the sequence follows the renumbered range
	c, err := s.Insert(ctx, input(20))
	require.NoError(t, err)
	assert.Equal(t, int64(5), c.ID)
}

func TestPostgres_DuplicateEmail(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	first, err := s.Insert(ctx, input(1))
	require.NoError(t, err)

	dup := input(2)
	dup.Email = first.Email
	_, err = s.Insert(ctx, dup)
	assert.True(t, errors.Is(err, ErrDuplicateEmail))
}

// TestPostgres_ConcurrentDeletes tests that racing deletes still leave a contiguous range
func TestPostgres_ConcurrentDeletes(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()
	seed(t, s, 10)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.DeleteAndRenumber(ctx, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, ids(all))
}
