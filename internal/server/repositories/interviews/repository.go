// Package interviews declares the repository contract for interview records
// linking one candidate and one employer.
package interviews

import (
	"context"
	"time"

	"github.com/dmitrijs2005/aiinterview/internal/server/models"
)

// StatusChange describes a transition applied by UpdateStatus.
type StatusChange struct {
	From        models.InterviewStatus
	To          models.InterviewStatus
	Score       *float64
	Feedback    string
	CompletedAt *time.Time
}

type Repository interface {
	Create(ctx context.Context, interview *models.Interview) (*models.Interview, error)
	GetByID(ctx context.Context, id int64) (*models.Interview, error)
	ListByCandidate(ctx context.Context, candidateID int64) ([]*models.Interview, error)
	ListByEmployer(ctx context.Context, employerID int64) ([]*models.Interview, error)

	// UpdateStatus applies change only if the row is still in change.From.
	// It returns common.ErrInvalidTransition when the row moved on meanwhile.
	UpdateStatus(ctx context.Context, id int64, change StatusChange) (*models.Interview, error)
}
