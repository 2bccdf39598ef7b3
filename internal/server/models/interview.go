package models

import "time"

type InterviewStatus string

const (
	InterviewPending   InterviewStatus = "pending"
	InterviewCompleted InterviewStatus = "completed"
	InterviewCancelled InterviewStatus = "cancelled"
)

// CanTransitionTo reports whether an interview in status s may move to next.
// Only pending interviews change state; completed and cancelled are final.
func (s InterviewStatus) CanTransitionTo(next InterviewStatus) bool {
	if s != InterviewPending {
		return false
	}
	return next == InterviewCompleted || next == InterviewCancelled
}

type Interview struct {
	ID           int64
	Title        string
	Description  string
	Status       InterviewStatus
	RecordingURL string
	Score        *float64
	Feedback     string
	CreatedAt    time.Time
	ScheduledAt  *time.Time
	CompletedAt  *time.Time
	CandidateID  int64
	EmployerID   int64
}
