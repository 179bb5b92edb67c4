// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
// Sessions may optionally be kept in Redis instead of the sessions table.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/firewatch/internal/dbx"
	"github.com/dmitrijs2005/firewatch/internal/server/migrations"
	"github.com/dmitrijs2005/firewatch/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/firewatch/internal/server/repositories/users"
	"github.com/dmitrijs2005/firewatch/internal/server/repositories/videos"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct {
	sessionClient redis.Cmdable
}

// Option configures a PostgresRepositoryManager.
type Option func(*PostgresRepositoryManager)

// WithRedisSessions stores sessions in Redis through client.
func WithRedisSessions(client redis.Cmdable) Option {
	return func(m *PostgresRepositoryManager) {
		m.sessionClient = client
	}
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Sessions returns a sessions.Repository. With a Redis client configured
// the db argument is ignored.
func (m *PostgresRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	if m.sessionClient != nil {
		return sessions.NewRedisRepository(m.sessionClient)
	}
	return sessions.NewPostgresRepository(db)
}

// Videos returns a videos.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Videos(db dbx.DBTX) videos.Repository {
	return videos.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(opts ...Option) *PostgresRepositoryManager {
	m := &PostgresRepositoryManager{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
