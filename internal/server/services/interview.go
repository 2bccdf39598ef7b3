package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/aiinterview/internal/common"
	"github.com/dmitrijs2005/aiinterview/internal/server/models"
	"github.com/dmitrijs2005/aiinterview/internal/server/repositories/interviews"
	"github.com/dmitrijs2005/aiinterview/internal/server/repositories/repomanager"
)

type CreateInterviewInput struct {
	Title       string
	Description string
	CandidateID int64
	ScheduledAt *time.Time
}

type StatusUpdate struct {
	Status   models.InterviewStatus
	Score    *float64
	Feedback string
}

// InterviewService manages interviews between an employer and a candidate.
// Employers create interviews and move them out of pending; both sides can
// read the interviews they take part in.
type InterviewService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewInterviewService(db *sql.DB, m repomanager.RepositoryManager) *InterviewService {
	return &InterviewService{db: db, repomanager: m, now: time.Now}
}

func (s *InterviewService) Create(ctx context.Context, caller *Identity, in CreateInterviewInput) (*models.Interview, error) {
	if caller.Role != models.RoleEmployer {
		return nil, common.ErrorForbidden
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, common.NewValidationError("Missing required field: title")
	}
	if err := checkLengths(fieldLimit{"title", in.Title, maxTitleLen}); err != nil {
		return nil, err
	}
	if in.CandidateID <= 0 {
		return nil, common.NewValidationError("Missing required field: candidate_id")
	}

	candidate, err := s.repomanager.Users(s.db).GetByID(ctx, in.CandidateID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewValidationError("Candidate %d not found", in.CandidateID)
		}
		return nil, fmt.Errorf("error loading candidate: %w", err)
	}
	if candidate.Role != models.RoleCandidate {
		return nil, common.NewValidationError("User %d is not a candidate", in.CandidateID)
	}

	created, err := s.repomanager.Interviews(s.db).Create(ctx, &models.Interview{
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		CandidateID: in.CandidateID,
		EmployerID:  caller.UserID,
		ScheduledAt: in.ScheduledAt,
	})
	if err != nil {
		if errors.Is(err, common.ErrorBadRequest) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating interview: %w", err)
	}
	return created, nil
}

// List returns the interviews on the caller's side, newest first.
func (s *InterviewService) List(ctx context.Context, caller *Identity) ([]*models.Interview, error) {
	repo := s.repomanager.Interviews(s.db)

	var (
		list []*models.Interview
		err  error
	)
	switch caller.Role {
	case models.RoleCandidate:
		list, err = repo.ListByCandidate(ctx, caller.UserID)
	case models.RoleEmployer:
		list, err = repo.ListByEmployer(ctx, caller.UserID)
	default:
		return nil, common.ErrorForbidden
	}
	if err != nil {
		return nil, fmt.Errorf("error listing interviews: %w", err)
	}
	return list, nil
}

// Get returns one interview if the caller takes part in it.
func (s *InterviewService) Get(ctx context.Context, caller *Identity, id int64) (*models.Interview, error) {
	it, err := s.repomanager.Interviews(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading interview: %w", err)
	}
	if !isParticipant(caller, it) {
		return nil, common.ErrorForbidden
	}
	return it, nil
}

// UpdateStatus moves a pending interview to completed or cancelled. Only the
// owning employer may do this; score and feedback are accepted on completion.
func (s *InterviewService) UpdateStatus(ctx context.Context, caller *Identity, id int64, upd StatusUpdate) (*models.Interview, error) {
	switch upd.Status {
	case models.InterviewPending, models.InterviewCompleted, models.InterviewCancelled:
	default:
		return nil, common.NewValidationError("Unknown status %q", upd.Status)
	}
	if upd.Status != models.InterviewCompleted && (upd.Score != nil || upd.Feedback != "") {
		return nil, common.NewValidationError("score and feedback are only accepted when completing")
	}

	repo := s.repomanager.Interviews(s.db)

	it, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading interview: %w", err)
	}
	if caller.Role != models.RoleEmployer || it.EmployerID != caller.UserID {
		return nil, common.ErrorForbidden
	}
	if !it.Status.CanTransitionTo(upd.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", common.ErrInvalidTransition, it.Status, upd.Status)
	}

	change := interviews.StatusChange{From: it.Status, To: upd.Status}
	if upd.Status == models.InterviewCompleted {
		now := s.now().UTC()
		change.CompletedAt = &now
		change.Score = upd.Score
		change.Feedback = strings.TrimSpace(upd.Feedback)
	}

	updated, err := repo.UpdateStatus(ctx, id, change)
	if err != nil {
		if errors.Is(err, common.ErrInvalidTransition) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating interview: %w", err)
	}
	return updated, nil
}

func isParticipant(caller *Identity, it *models.Interview) bool {
	switch caller.Role {
	case models.RoleCandidate:
		return it.CandidateID == caller.UserID
	case models.RoleEmployer:
		return it.EmployerID == caller.UserID
	}
	return false
}
