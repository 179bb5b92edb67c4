package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/firewatch/internal/dbx"
	"github.com/dmitrijs2005/firewatch/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/firewatch/internal/server/repositories/users"
	"github.com/dmitrijs2005/firewatch/internal/server/repositories/videos"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Videos(db dbx.DBTX) videos.Repository
}
