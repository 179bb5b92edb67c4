package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/firewatch/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/firewatch/internal/server/repositories/users"
	"github.com/dmitrijs2005/firewatch/internal/server/repositories/videos"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ RepositoryManager = (*PostgresRepositoryManager)(nil)

func mockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func stubGooseUp(t *testing.T, fn func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error) {
	t.Helper()
	orig := gooseUpContext
	gooseUpContext = fn
	t.Cleanup(func() { gooseUpContext = orig })
}

func TestDefaultManager_AllPostgres(t *testing.T) {
	db := mockDB(t)
	m := NewPostgresRepositoryManager()

	assert.IsType(t, &users.PostgresRepository{}, m.Users(db))
	assert.IsType(t, &sessions.PostgresRepository{}, m.Sessions(db))
	assert.IsType(t, &videos.PostgresRepository{}, m.Videos(db))
}

func TestWithRedisSessions_OnlySwapsSessions(t *testing.T) {
	db := mockDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	m := NewPostgresRepositoryManager(WithRedisSessions(client))

	assert.IsType(t, &sessions.RedisRepository{}, m.Sessions(db))
	assert.IsType(t, &users.PostgresRepository{}, m.Users(db))
	assert.IsType(t, &videos.PostgresRepository{}, m.Videos(db))
}

func TestRunMigrations_UsesEmbeddedRoot(t *testing.T) {
	db := mockDB(t)

	var gotDir string
	stubGooseUp(t, func(ctx context.Context, got *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		assert.Same(t, db, got)
		assert.Empty(t, opts)
		gotDir = dir
		return nil
	})

	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db))
	assert.Equal(t, ".", gotDir)
}

func TestRunMigrations_PropagatesError(t *testing.T) {
	db := mockDB(t)
	boom := errors.New("dirty database version 2")

	stubGooseUp(t, func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error { return boom })

	err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db)
	require.ErrorIs(t, err, boom)
}
