//go:build integration

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/orrn/printbridge/internal/core"
	"github.com/orrn/printbridge/internal/db"
)

func TestPostgres_RoundTrip(t *testing.T) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("printbridge_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := db.Open(db.Config{Driver: db.DriverPostgres, DSN: dsn})
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, db.Migrate(conn))

	store := db.NewJobStore(conn)
	creator := core.NewJobCreator(store, nil)
	viewer := core.NewJobViewer(store, nil)

	created, err := creator.Create(ctx, []core.Directive{core.MustDirective(`{"zpl":"^XA^FS^XZ"}`)}, "http://relay.local")
	require.NoError(t, err)

	view, err := viewer.View(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, view.Found)
	assert.Equal(t, "^XA^FS^XZ", view.Directives[0].Raw)

	missing, err := viewer.View(ctx, "00000000-0000-4000-8000-000000000000")
	require.NoError(t, err)
	assert.False(t, missing.Found)
}
