package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/dwello/internal/dwello/store"
	"github.com/aussiebroadwan/dwello/internal/dwello/store/sqlstore"
	"github.com/aussiebroadwan/dwello/internal/dwello/store/storetest"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres runs a throwaway Postgres and returns its DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container test skipped in -short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "dwello",
				"POSTGRES_PASSWORD": "dwello",
				"POSTGRES_DB":       "dwello",
			},
			// The server restarts once after init, so wait for the second line.
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://dwello:dwello@%s:%s/dwello?sslmode=disable", host, port.Port())
}

func TestStore_Postgres(t *testing.T) {
	dsn := startPostgres(t)

	s, err := NewStore(dsn, sqlstore.Options{MaxOpenConns: 5, AcquireTimeout: 5 * time.Second})
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	// Tables are shared, so every subtest truncates them first.
	storetest.Run(t, func(t *testing.T) store.Store {
		_, err := s.DB().Exec(`TRUNCATE deals, houses, profiles, sessions, users`)
		require.NoError(t, err)
		return s
	})

	// Re-running migrations is a no-op.
	require.NoError(t, s.ApplyMigrations())
}

func TestDialect(t *testing.T) {
	q := "SELECT 1 WHERE a = $1"
	require.Equal(t, q, Dialect{}.Rebind(q))
	require.Contains(t, Dialect{}.LockUserQuery(), "FOR UPDATE")
	require.False(t, Dialect{}.IsUniqueViolation(nil))
}
