package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/aiinterview/internal/common"
	"github.com/dmitrijs2005/aiinterview/internal/netx"
	"github.com/dmitrijs2005/aiinterview/internal/server/ai/heygen"
	"github.com/labstack/echo/v4"
)

var errHeygenNotConfigured = fmt.Errorf("Heygen %w", common.ErrNotConfigured)

func (s *Server) avatarConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"configured": s.deps.HeygenKey.IsConfigured()})
}

func (s *Server) avatarSetKey(c echo.Context) error {
	var req apiKeyRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing API key")
	}

	s.deps.HeygenKey.Set(req.APIKey)
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Heygen API key set successfully",
	})
}

type streamingRequest struct {
	Text         *string             `json:"text"`
	AvatarConfig heygen.AvatarConfig `json:"avatar_config"`
}

func (s *Server) avatarStreaming(c echo.Context) error {
	key, ok := s.deps.HeygenKey.Get()
	if !ok {
		return errHeygenNotConfigured
	}

	var req streamingRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.Text == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing text")
	}

	raw, err := s.deps.Heygen.StartStreaming(c.Request().Context(), key, *req.Text, req.AvatarConfig)
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, raw)
}

// avatarProxy relays a vendor media stream so browsers can play it without
// cross-origin issues. Cancelling the client request cancels the upstream read.
func (s *Server) avatarProxy(c echo.Context) error {
	target := c.QueryParam("url")
	if target == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing streaming URL")
	}
	key, ok := s.deps.HeygenKey.Get()
	if !ok {
		return errHeygenNotConfigured
	}

	stream, err := s.deps.Heygen.OpenStream(c.Request().Context(), key, target)
	if err != nil {
		return err
	}
	defer stream.Close()

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, stream.ContentType)
	resp.WriteHeader(stream.Status)

	n, err := netx.CopyChunks(resp, stream.Body, resp.Flush)
	if err != nil {
		s.logger.Warn(c.Request().Context(), "avatar proxy interrupted", "bytes", n, "error", err)
	}
	return nil
}
