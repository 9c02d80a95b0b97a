//go:build integration

package predicate

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgresmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	pkgerrors "structnotify/pkg/errors"
)

func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	if os.Getenv("TESTCONTAINERS_RYUK_DISABLED") == "" {
		os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")
	}

	container, err := postgresmodule.Run(ctx, "postgres:15",
		postgresmodule.WithDatabase("test_db"),
		postgresmodule.WithUsername("test_user"),
		postgresmodule.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp").WithStartupTimeout(10*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		container.Terminate(ctx)
	})

	conn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", conn)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	require.NoError(t, db.PingContext(pingCtx))

	require.NoError(t, runMigrations(db))
	return db
}

func runMigrations(db *sql.DB) error {
	driver, err := migratepostgres.WithInstance(db, &migratepostgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get work dir: %w", err)
	}
	migrationsPath := filepath.Join(workDir, "..", "..", "migrations", "postgres")

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func TestPostgresRepositoryCRUD(t *testing.T) {
	db := setupPostgres(t)
	repo := NewRepository(db)
	ctx := context.Background()

	p := &Predicate{
		Schema:         "tasks",
		Field:          "due",
		Operator:       "before",
		Value:          "3",
		Filters:        "status = open",
		UsersAndGroups: "alice,@eng",
		Message:        "Task @@tasks.title@@ due @@tasks.due@@",
		Enabled:        true,
	}

	require.NoError(t, repo.CreatePredicate(ctx, p))
	require.NotEmpty(t, p.ID)

	got, err := repo.GetPredicate(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Schema, got.Schema)
	assert.Equal(t, p.Message, got.Message)
	assert.True(t, got.Enabled)

	got.Value = "7"
	require.NoError(t, repo.UpdatePredicate(ctx, got))

	updated, err := repo.GetPredicate(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "7", updated.Value)

	list, err := repo.ListPredicates(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.DeletePredicate(ctx, p.ID))

	_, err = repo.GetPredicate(ctx, p.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestPostgresRepositoryListOrder(t *testing.T) {
	db := setupPostgres(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		p := &Predicate{
			Schema:         fmt.Sprintf("schema%d", i),
			Field:          "due",
			Operator:       "before",
			Value:          "1",
			UsersAndGroups: "alice",
			Message:        "m",
			Enabled:        true,
		}
		require.NoError(t, repo.CreatePredicate(ctx, p))
	}

	first, err := repo.ListPredicates(ctx)
	require.NoError(t, err)
	second, err := repo.ListPredicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPostgresRepositoryBackingSchemas(t *testing.T) {
	db := setupPostgres(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for _, spec := range []struct {
		schema  string
		enabled bool
	}{
		{"tasks", true},
		{"tasks", true},
		{"projects", true},
		{"archive", false},
	} {
		p := &Predicate{
			Schema:         spec.schema,
			Field:          "due",
			Operator:       "after",
			Value:          "0",
			UsersAndGroups: "alice",
			Message:        "m",
			Enabled:        spec.enabled,
		}
		require.NoError(t, repo.CreatePredicate(ctx, p))
	}

	schemas, err := repo.BackingSchemas(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"projects", "tasks"}, schemas)
}
