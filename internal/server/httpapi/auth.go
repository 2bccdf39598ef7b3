package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/aiinterview/internal/common"
	"github.com/dmitrijs2005/aiinterview/internal/server/models"
	"github.com/dmitrijs2005/aiinterview/internal/server/services"
	"github.com/labstack/echo/v4"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	Phone           string `json:"phone"`
	Skills          string `json:"skills"`
	ExperienceYears *int   `json:"experience_years"`
	JobTitle        string `json:"job_title"`

	CompanyName string `json:"company_name"`
	Industry    string `json:"industry"`
	CompanySize string `json:"company_size"`
	Website     string `json:"website"`
}

func (r *registerRequest) input(role models.Role) services.RegisterInput {
	in := services.RegisterInput{
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
	switch role {
	case models.RoleCandidate:
		in.Candidate = &models.CandidateProfile{
			Phone:           r.Phone,
			Skills:          r.Skills,
			ExperienceYears: r.ExperienceYears,
			JobTitle:        r.JobTitle,
		}
	case models.RoleEmployer:
		in.Employer = &models.EmployerProfile{
			CompanyName: r.CompanyName,
			Industry:    r.Industry,
			CompanySize: r.CompanySize,
			Website:     r.Website,
		}
	}
	return in
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func authResponse(msg string, u *models.User, pair *services.TokenPair) map[string]any {
	return map[string]any{
		"message":       msg,
		"user":          userJSON(u),
		"user_type":     string(u.Role),
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}
}

func (s *Server) registerHandler(role models.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req registerRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}

		u, pair, err := s.deps.Auth.Register(c.Request().Context(), role, req.input(role))
		if err != nil {
			return err
		}

		s.logger.Info(c.Request().Context(), "Registered", "user_id", u.ID, "role", role)
		return c.JSON(http.StatusCreated, authResponse("Registration successful", u, pair))
	}
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	u, pair, err := s.deps.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse("Login successful", u, pair))
}

// refresh takes the refresh token from the Authorization header.
func (s *Server) refresh(c echo.Context) error {
	tok, err := bearerToken(c)
	if err != nil {
		return err
	}

	access, err := s.deps.Auth.Refresh(c.Request().Context(), tok)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":      "Token refreshed successfully",
		"access_token": access,
	})
}

func (s *Server) me(c echo.Context) error {
	u, err := s.deps.Auth.GetProfile(c.Request().Context(), identity(c))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"user": userJSON(u)})
}

func (s *Server) logout(c echo.Context) error {
	if err := s.deps.Auth.Logout(c.Request().Context(), identity(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Successfully logged out"})
}
