// Package models defines server-side data models persisted in the database.
package models

import "time"

// Role discriminates the two kinds of users sharing the base identity.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleEmployer  Role = "employer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleCandidate || r == RoleEmployer
}

// User is the base identity record. Exactly one of Candidate or Employer is
// set, matching Role.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Candidate *CandidateProfile
	Employer  *EmployerProfile
}

// CandidateProfile holds the fields specific to job seekers.
type CandidateProfile struct {
	Phone           string
	ResumeURL       string
	Skills          string
	ExperienceYears *int
	JobTitle        string
}

// EmployerProfile holds the fields specific to hiring companies.
type EmployerProfile struct {
	CompanyName string
	Industry    string
	CompanySize string
	Website     string
}
