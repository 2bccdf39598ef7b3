// Package denylist stores revoked access token ids. Entries only need to
// outlive the token they revoke, so both backends expire them with the token.
package denylist

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/aiinterview/internal/server/repositories/repomanager"
)

// Postgres keeps the denylist in the revoked_tokens table.
type Postgres struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPostgres(db *sql.DB, m repomanager.RepositoryManager) *Postgres {
	return &Postgres{db: db, repomanager: m}
}

func (p *Postgres) Revoke(ctx context.Context, jti string, userID int64, expiresAt time.Time) error {
	return p.repomanager.RevokedTokens(p.db).Revoke(ctx, jti, userID, expiresAt)
}

func (p *Postgres) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return p.repomanager.RevokedTokens(p.db).IsRevoked(ctx, jti)
}

// Purge removes entries that expired before now.
func (p *Postgres) Purge(ctx context.Context, now time.Time) (int64, error) {
	return p.repomanager.RevokedTokens(p.db).DeleteExpired(ctx, now)
}
