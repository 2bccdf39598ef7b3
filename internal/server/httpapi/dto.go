package httpapi

import (
	"time"

	"github.com/dmitrijs2005/aiinterview/internal/server/models"
)

// userJSON renders a user. Role-specific fields are emitted only for the
// matching role; empty optional values are null.
func userJSON(u *models.User) map[string]any {
	out := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"user_type":  string(u.Role),
		"created_at": isoTime(u.CreatedAt),
	}

	switch u.Role {
	case models.RoleCandidate:
		p := u.Candidate
		if p == nil {
			p = &models.CandidateProfile{}
		}
		out["phone"] = nullString(p.Phone)
		out["resume_url"] = nullString(p.ResumeURL)
		out["skills"] = nullString(p.Skills)
		out["experience_years"] = p.ExperienceYears
		out["job_title"] = nullString(p.JobTitle)
	case models.RoleEmployer:
		p := u.Employer
		if p == nil {
			p = &models.EmployerProfile{}
		}
		out["company_name"] = p.CompanyName
		out["industry"] = nullString(p.Industry)
		out["company_size"] = nullString(p.CompanySize)
		out["website"] = nullString(p.Website)
	}
	return out
}

func interviewJSON(it *models.Interview) map[string]any {
	return map[string]any{
		"id":            it.ID,
		"title":         it.Title,
		"description":   nullString(it.Description),
		"status":        string(it.Status),
		"recording_url": nullString(it.RecordingURL),
		"score":         it.Score,
		"feedback":      nullString(it.Feedback),
		"created_at":    isoTime(it.CreatedAt),
		"scheduled_at":  isoTimePtr(it.ScheduledAt),
		"completed_at":  isoTimePtr(it.CompletedAt),
		"candidate_id":  it.CandidateID,
		"employer_id":   it.EmployerID,
	}
}

func interviewsJSON(list []*models.Interview) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, it := range list {
		out = append(out, interviewJSON(it))
	}
	return out
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isoTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func isoTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return isoTime(*t)
}
