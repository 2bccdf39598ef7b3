package users

import (
	"context"

	"github.com/dmitrijs2005/aiinterview/internal/server/models"
)

type Repository interface {
	// Create inserts the base user row and the subtype row matching
	// user.Role. Run it inside a transaction so both rows land together.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	SetResumeURL(ctx context.Context, candidateID int64, url string) error
}
