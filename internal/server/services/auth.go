// Package services contains server-side business logic. This file implements
// AuthService, which handles registration, login, token refresh and the
// per-request authentication guard for candidates and employers.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/aiinterview/internal/common"
	"github.com/dmitrijs2005/aiinterview/internal/dbx"
	"github.com/dmitrijs2005/aiinterview/internal/server/auth"
	"github.com/dmitrijs2005/aiinterview/internal/server/config"
	"github.com/dmitrijs2005/aiinterview/internal/server/models"
	"github.com/dmitrijs2005/aiinterview/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Identity is the authenticated caller bound to a request.
type Identity struct {
	UserID    int64
	Role      models.Role
	TokenID   string
	SessionID string
	ExpiresAt time.Time
}

// Denylist tracks revoked token ids and session ids.
type Denylist interface {
	Revoke(ctx context.Context, jti string, userID int64, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RegisterInput is the profile submitted on sign-up. Exactly one of
// Candidate or Employer is used, depending on the role being registered.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Candidate *models.CandidateProfile
	Employer  *models.EmployerProfile
}

// AuthService provides authentication-related operations:
// - Register / Login: create or verify users and mint a token pair
// - Refresh: mint a new access token from a refresh token
// - Authenticate: resolve an access token to an Identity
// - Logout: revoke the login session behind the presented access token
type AuthService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	denylist                     Denylist
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, denylist Denylist, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                           db,
		repomanager:                  m,
		denylist:                     denylist,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register validates the profile, stores the user and its role-specific row
// in one transaction and returns the new user with a fresh token pair.
// A taken email yields common.ErrorConflict regardless of role.
func (s *AuthService) Register(ctx context.Context, role models.Role, in RegisterInput) (*models.User, *TokenPair, error) {
	if err := validateRegistration(role, &in); err != nil {
		return nil, nil, err
	}

	if _, err := s.repomanager.Users(s.db).GetByEmail(ctx, in.Email); err == nil {
		return nil, nil, common.ErrorConflict
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, nil, fmt.Errorf("error checking email: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, nil, common.NewValidationError("Password is too long")
		}
		return nil, nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         role,
	}
	switch role {
	case models.RoleCandidate:
		user.Candidate = in.Candidate
	case models.RoleEmployer:
		user.Employer = in.Employer
	}

	var created *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var createErr error
		created, createErr = s.repomanager.Users(tx).Create(ctx, user)
		return createErr
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) || errors.Is(err, common.ErrorBadRequest) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("error creating user: %w", err)
	}

	pair, err := s.generateTokenPair(created)
	if err != nil {
		return nil, nil, err
	}
	return created, pair, nil
}

// Login verifies email and password. Unknown emails and wrong passwords both
// yield common.ErrInvalidLogin and cost one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, common.NewValidationError("Email and password are required")
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.BurnPasswordCheck(password)
			return nil, nil, common.ErrInvalidLogin
		}
		return nil, nil, fmt.Errorf("error loading user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, nil, common.ErrInvalidLogin
	}

	pair, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh validates a refresh token and returns a new access token for the
// same user. The refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := auth.ParseTokenOfType(refreshToken, s.jwtSecret, auth.RefreshToken)
	if err != nil {
		return "", err
	}

	if err := s.checkNotRevoked(ctx, claims); err != nil {
		return "", err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidToken
		}
		return "", fmt.Errorf("error loading user: %w", err)
	}

	return s.generateAccessToken(user, claims.SessionID)
}

// Authenticate resolves an access token to the caller's Identity. Refresh
// tokens, expired, tampered or revoked tokens are rejected.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*Identity, error) {
	claims, err := auth.ParseTokenOfType(accessToken, s.jwtSecret, auth.AccessToken)
	if err != nil {
		return nil, err
	}

	if err := s.checkNotRevoked(ctx, claims); err != nil {
		return nil, err
	}

	return &Identity{
		UserID:    claims.UserID,
		Role:      claims.Role,
		TokenID:   claims.ID,
		SessionID: claims.SessionID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// GetProfile loads the user behind id. A user deleted after the token was
// issued yields common.ErrorNotFound.
func (s *AuthService) GetProfile(ctx context.Context, id *Identity) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// Logout revokes the access token that authenticated the request and the
// login session it belongs to, so the session's refresh token stops working
// too. The session entry lives as long as a refresh token issued now would.
// Other sessions of the same user stay valid.
func (s *AuthService) Logout(ctx context.Context, id *Identity) error {
	if err := s.denylist.Revoke(ctx, id.TokenID, id.UserID, id.ExpiresAt); err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}
	if id.SessionID == "" {
		return nil
	}
	if err := s.denylist.Revoke(ctx, id.SessionID, id.UserID, time.Now().Add(s.refreshTokenValidityDuration)); err != nil {
		return fmt.Errorf("error revoking session: %w", err)
	}
	return nil
}

// --- helpers below ---

// checkNotRevoked rejects a token whose jti or session id is on the denylist.
func (s *AuthService) checkNotRevoked(ctx context.Context, claims *auth.Claims) error {
	ids := []string{claims.ID}
	if claims.SessionID != "" {
		ids = append(ids, claims.SessionID)
	}
	for _, id := range ids {
		revoked, err := s.denylist.IsRevoked(ctx, id)
		if err != nil {
			return fmt.Errorf("error checking revocation: %w", err)
		}
		if revoked {
			return common.ErrTokenRevoked
		}
	}
	return nil
}

func (s *AuthService) generateAccessToken(u *models.User, sessionID string) (string, error) {
	tok, err := auth.GenerateSessionToken(u.ID, u.Role, auth.AccessToken, sessionID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return tok, nil
}

// generateTokenPair opens a new login session shared by both tokens.
func (s *AuthService) generateTokenPair(u *models.User) (*TokenPair, error) {
	sid := auth.NewSessionID()
	access, err := s.generateAccessToken(u, sid)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateSessionToken(u.ID, u.Role, auth.RefreshToken, sid, s.jwtSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(role models.Role, in *RegisterInput) error {
	if !role.Valid() {
		return common.NewValidationError("Unknown user type %q", role)
	}

	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	required := []struct{ name, value string }{
		{"email", in.Email},
		{"password", in.Password},
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
	}
	if role == models.RoleEmployer {
		name := ""
		if in.Employer != nil {
			in.Employer.CompanyName = strings.TrimSpace(in.Employer.CompanyName)
			name = in.Employer.CompanyName
		}
		required = append(required, struct{ name, value string }{"company_name", name})
	}
	for _, f := range required {
		if f.value == "" {
			return common.NewValidationError("Missing required field: %s", f.name)
		}
	}

	limits := []fieldLimit{
		{"email", in.Email, maxEmailLen},
		{"first_name", in.FirstName, maxNameLen},
		{"last_name", in.LastName, maxNameLen},
	}
	if role == models.RoleCandidate && in.Candidate != nil {
		limits = append(limits,
			fieldLimit{"phone", in.Candidate.Phone, maxPhoneLen},
			fieldLimit{"job_title", in.Candidate.JobTitle, maxJobTitleLen},
		)
	}
	if role == models.RoleEmployer && in.Employer != nil {
		limits = append(limits,
			fieldLimit{"company_name", in.Employer.CompanyName, maxCompanyNameLen},
			fieldLimit{"industry", in.Employer.Industry, maxIndustryLen},
			fieldLimit{"company_size", in.Employer.CompanySize, maxCompanySizeLen},
			fieldLimit{"website", in.Employer.Website, maxWebsiteLen},
		)
	}
	if err := checkLengths(limits...); err != nil {
		return err
	}

	addr, err := mail.ParseAddress(in.Email)
	if err != nil || addr.Address != in.Email {
		return common.NewValidationError("Invalid email format")
	}

	if role == models.RoleCandidate && in.Candidate != nil && in.Candidate.ExperienceYears != nil && *in.Candidate.ExperienceYears < 0 {
		return common.NewValidationError("experience_years must not be negative")
	}
	return nil
}
