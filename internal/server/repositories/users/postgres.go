package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/aiinterview/internal/common"
	"github.com/dmitrijs2005/aiinterview/internal/dbx"
	"github.com/dmitrijs2005/aiinterview/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (email, password_hash, first_name, last_name, user_type)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.FirstName, user.LastName, string(user.Role)).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, mapWriteError(err)
	}

	switch user.Role {
	case models.RoleCandidate:
		p := user.Candidate
		if p == nil {
			p = &models.CandidateProfile{}
			user.Candidate = p
		}
		query =
			`INSERT INTO candidates (id, phone, resume_url, skills, experience_years, job_title)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 `
		_, err = r.db.ExecContext(ctx, query, user.ID,
			nullString(p.Phone), nullString(p.ResumeURL), nullString(p.Skills), nullInt(p.ExperienceYears), nullString(p.JobTitle))
	case models.RoleEmployer:
		p := user.Employer
		if p == nil {
			return nil, common.NewValidationError("employer profile is required")
		}
		query =
			`INSERT INTO employers (id, company_name, industry, company_size, website)
			 VALUES ($1, $2, $3, $4, $5)
			 `
		_, err = r.db.ExecContext(ctx, query, user.ID,
			p.CompanyName, nullString(p.Industry), nullString(p.CompanySize), nullString(p.Website))
	default:
		return nil, common.NewValidationError("unknown user type %q", user.Role)
	}
	if err != nil {
		return nil, mapWriteError(err)
	}

	return user, nil
}

const selectUser = `SELECT u.id, u.email, u.password_hash, u.first_name, u.last_name, u.user_type, u.created_at, u.updated_at,
		c.phone, c.resume_url, c.skills, c.experience_years, c.job_title,
		e.company_name, e.industry, e.company_size, e.website
	 FROM users u
	 LEFT JOIN candidates c ON c.id = u.id
	 LEFT JOIN employers e ON e.id = u.id
	 `

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+`WHERE lower(u.email) = lower($1)`, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, selectUser+`WHERE u.id = $1`, id)
}

func (r *PostgresRepository) SetResumeURL(ctx context.Context, candidateID int64, url string) error {
	query :=
		`UPDATE candidates SET resume_url = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, candidateID, url)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	query = `UPDATE users SET updated_at = now() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, candidateID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		u                                       models.User
		role                                    string
		firstName, lastName                     sql.NullString
		phone, resumeURL, skills, jobTitle      sql.NullString
		experience                              sql.NullInt64
		companyName, industry, companySize, web sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &firstName, &lastName, &role, &u.CreatedAt, &u.UpdatedAt,
		&phone, &resumeURL, &skills, &experience, &jobTitle,
		&companyName, &industry, &companySize, &web,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	u.FirstName = firstName.String
	u.LastName = lastName.String
	u.Role = models.Role(role)

	switch u.Role {
	case models.RoleCandidate:
		u.Candidate = &models.CandidateProfile{
			Phone:     phone.String,
			ResumeURL: resumeURL.String,
			Skills:    skills.String,
			JobTitle:  jobTitle.String,
		}
		if experience.Valid {
			years := int(experience.Int64)
			u.Candidate.ExperienceYears = &years
		}
	case models.RoleEmployer:
		u.Employer = &models.EmployerProfile{
			CompanyName: companyName.String,
			Industry:    industry.String,
			CompanySize: companySize.String,
			Website:     web.String,
		}
	}

	return &u, nil
}

func mapWriteError(err error) error {
	if dbx.IsUniqueViolation(err) {
		return common.ErrorConflict
	}
	if dbx.IsValueTooLong(err) {
		return common.NewValidationError("Field value is too long")
	}
	return fmt.Errorf("db error: %w", err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
