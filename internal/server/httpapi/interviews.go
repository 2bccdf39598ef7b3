package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/aiinterview/internal/server/models"
	"github.com/dmitrijs2005/aiinterview/internal/server/services"
	"github.com/labstack/echo/v4"
)

type createInterviewRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CandidateID int64      `json:"candidate_id"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

type statusRequest struct {
	Status   string   `json:"status"`
	Score    *float64 `json:"score"`
	Feedback string   `json:"feedback"`
}

func interviewID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid interview id")
	}
	return id, nil
}

func (s *Server) listInterviews(c echo.Context) error {
	list, err := s.deps.Interviews.List(c.Request().Context(), identity(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"interviews": interviewsJSON(list)})
}

func (s *Server) createInterview(c echo.Context) error {
	var req createInterviewRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	it, err := s.deps.Interviews.Create(c.Request().Context(), identity(c), services.CreateInterviewInput{
		Title:       req.Title,
		Description: req.Description,
		CandidateID: req.CandidateID,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{"interview": interviewJSON(it)})
}

func (s *Server) getInterview(c echo.Context) error {
	id, err := interviewID(c)
	if err != nil {
		return err
	}

	it, err := s.deps.Interviews.Get(c.Request().Context(), identity(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"interview": interviewJSON(it)})
}

func (s *Server) updateInterviewStatus(c echo.Context) error {
	id, err := interviewID(c)
	if err != nil {
		return err
	}

	var req statusRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	it, err := s.deps.Interviews.UpdateStatus(c.Request().Context(), identity(c), id, services.StatusUpdate{
		Status:   models.InterviewStatus(req.Status),
		Score:    req.Score,
		Feedback: req.Feedback,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"interview": interviewJSON(it)})
}

type resumeUploadRequest struct {
	FileName string `json:"file_name"`
}

func (s *Server) resumeUploadURL(c echo.Context) error {
	var req resumeUploadRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.FileName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing file_name")
	}

	up, err := s.deps.Resumes.UploadURL(c.Request().Context(), identity(c), req.FileName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"upload_url":   up.UploadURL,
		"resume_url":   up.ResumeURL,
		"key":          up.Key,
		"content_type": up.ContentType,
		"expires_at":   up.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

type resumeConfirmRequest struct {
	Key string `json:"key"`
}

func (s *Server) resumeConfirm(c echo.Context) error {
	var req resumeConfirmRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.Key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing key")
	}

	url, err := s.deps.Resumes.ConfirmUpload(c.Request().Context(), identity(c), req.Key)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"resume_url": url})
}
