package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotify/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "quotify.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestStore_GetMissing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "quotify.batch")

	assert.True(t, domain.IsNotFound(err))
}

func TestStore_SetOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "quotify.fetched_at", []byte("1")))
	require.NoError(t, s.Set(ctx, "quotify.fetched_at", []byte("2")))

	got, err := s.Get(ctx, "quotify.fetched_at")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)
}

func TestStore_EmptyValue(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", nil))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_ReopenKeepsDataAndMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotify.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "quotify.batch", []byte(`[]`)))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, err := s.Get(ctx, "quotify.batch")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)

	var applied int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, 1, applied)
}

func TestStore_ClosedDatabase(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "quotify.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Get(context.Background(), "k")
	assert.True(t, domain.IsStorage(err))

	err = s.Set(context.Background(), "k", []byte("v"))
	assert.True(t, domain.IsStorage(err))

	assert.Error(t, s.Check(context.Background()))
}

func TestStore_Health(t *testing.T) {
	s := openTestStore(t)

	assert.Equal(t, "cache-sqlite", s.Name())
	assert.NoError(t, s.Check(context.Background()))
}

func TestUpSection(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no markers", "CREATE TABLE a (x INT);", "CREATE TABLE a (x INT);"},
		{"up only", "-- +migrate Up\nCREATE TABLE a (x INT);", "CREATE TABLE a (x INT);"},
		{"up and down", "-- +migrate Up\nCREATE TABLE a (x INT);\n-- +migrate Down\nDROP TABLE a;", "CREATE TABLE a (x INT);"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, strings.TrimSpace(upSection(tt.content)))
		})
	}
}

func TestApplyMigrations_FailingFileIsNotRecorded(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	bad := fstest.MapFS{
		"0002_bad.sql": {Data: []byte("-- +migrate Up\nTHIS IS NOT SQL;")},
	}

	err := applyMigrations(ctx, s.db, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0002_bad.sql")

	var n int
	require.NoError(t, s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM schema_migrations WHERE name = ?`, "0002_bad.sql").Scan(&n))
	assert.Zero(t, n)
}
