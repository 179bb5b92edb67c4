package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/firewatch/internal/logging"
	"github.com/dmitrijs2005/firewatch/internal/server/repositories/repomanager"
)

// SessionJanitor periodically removes sessions whose token has expired.
type SessionJanitor struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	interval    time.Duration
	logger      logging.Logger
	now         func() time.Time
}

func NewSessionJanitor(db *sql.DB, m repomanager.RepositoryManager, interval time.Duration, logger logging.Logger) *SessionJanitor {
	return &SessionJanitor{
		db:          db,
		repomanager: m,
		interval:    interval,
		logger:      logger.With("module", "janitor"),
		now:         time.Now,
	}
}

// Run purges on every tick until ctx is cancelled.
func (j *SessionJanitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.purge(ctx)
		}
	}
}

func (j *SessionJanitor) purge(ctx context.Context) {
	n, err := j.repomanager.Sessions(j.db).DeleteExpired(ctx, j.now())
	if err != nil {
		if ctx.Err() == nil {
			j.logger.Error(ctx, "purging expired sessions", "error", err)
		}
		return
	}
	if n > 0 {
		j.logger.Info(ctx, "purged expired sessions", "count", n)
	}
}
