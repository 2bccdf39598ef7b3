package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/aiinterview/internal/dbx"
	"github.com/dmitrijs2005/aiinterview/internal/server/repositories/interviews"
	"github.com/dmitrijs2005/aiinterview/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/aiinterview/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can use
// the same repos on a plain connection or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Interviews(db dbx.DBTX) interviews.Repository
	RevokedTokens(db dbx.DBTX) revokedtokens.Repository
}
