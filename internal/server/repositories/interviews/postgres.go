package interviews

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/aiinterview/internal/common"
	"github.com/dmitrijs2005/aiinterview/internal/dbx"
	"github.com/dmitrijs2005/aiinterview/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const interviewColumns = `id, title, description, status, recording_url, score, feedback,
		created_at, scheduled_at, completed_at, candidate_id, employer_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInterview(row rowScanner) (*models.Interview, error) {
	var (
		it                                  models.Interview
		status                              string
		description, recordingURL, feedback sql.NullString
		score                               sql.NullFloat64
		scheduledAt, completedAt            sql.NullTime
	)

	if err := row.Scan(&it.ID, &it.Title, &description, &status, &recordingURL, &score, &feedback,
		&it.CreatedAt, &scheduledAt, &completedAt, &it.CandidateID, &it.EmployerID); err != nil {
		return nil, err
	}

	it.Status = models.InterviewStatus(status)
	it.Description = description.String
	it.RecordingURL = recordingURL.String
	it.Feedback = feedback.String
	if score.Valid {
		s := score.Float64
		it.Score = &s
	}
	if scheduledAt.Valid {
		ts := scheduledAt.Time
		it.ScheduledAt = &ts
	}
	if completedAt.Valid {
		ts := completedAt.Time
		it.CompletedAt = &ts
	}
	return &it, nil
}

func (r *PostgresRepository) Create(ctx context.Context, interview *models.Interview) (*models.Interview, error) {
	query :=
		`INSERT INTO interviews (title, description, status, scheduled_at, candidate_id, employer_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING ` + interviewColumns

	var scheduledAt sql.NullTime
	if interview.ScheduledAt != nil {
		scheduledAt = sql.NullTime{Time: *interview.ScheduledAt, Valid: true}
	}

	row := r.db.QueryRowContext(ctx, query,
		interview.Title, sql.NullString{String: interview.Description, Valid: interview.Description != ""},
		string(models.InterviewPending), scheduledAt, interview.CandidateID, interview.EmployerID)

	created, err := scanInterview(row)
	if err != nil {
		if dbx.IsValueTooLong(err) {
			return nil, common.NewValidationError("Field value is too long")
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews WHERE id = $1`

	it, err := scanInterview(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return it, nil
}

func (r *PostgresRepository) ListByCandidate(ctx context.Context, candidateID int64) ([]*models.Interview, error) {
	return r.list(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE candidate_id = $1 ORDER BY created_at DESC, id DESC`, candidateID)
}

func (r *PostgresRepository) ListByEmployer(ctx context.Context, employerID int64) ([]*models.Interview, error) {
	return r.list(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE employer_id = $1 ORDER BY created_at DESC, id DESC`, employerID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]*models.Interview, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Interview, 0)
	for rows.Next() {
		it, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, change StatusChange) (*models.Interview, error) {
	query :=
		`UPDATE interviews
		 SET status = $3,
		     score = COALESCE($4, score),
		     feedback = COALESCE($5, feedback),
		     completed_at = $6
		 WHERE id = $1 AND status = $2
		 RETURNING ` + interviewColumns

	var score sql.NullFloat64
	if change.Score != nil {
		score = sql.NullFloat64{Float64: *change.Score, Valid: true}
	}
	var completedAt sql.NullTime
	if change.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *change.CompletedAt, Valid: true}
	}

	it, err := scanInterview(r.db.QueryRowContext(ctx, query, id, string(change.From), string(change.To),
		score, sql.NullString{String: change.Feedback, Valid: change.Feedback != ""}, completedAt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrInvalidTransition
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return it, nil
}
