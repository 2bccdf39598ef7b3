package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/aiinterview/internal/common"
	"github.com/dmitrijs2005/aiinterview/internal/logging"
	"github.com/dmitrijs2005/aiinterview/internal/server/services"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const identityKey = "identity"

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"path", v.URIPath,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
			}
			if v.Error != nil {
				args = append(args, "error", v.Error)
			}
			s.logger.Info(c.Request().Context(), "http request", args...)
			return nil
		},
	})
}

// requestContext copies the id assigned by middleware.RequestID into the
// request context so every log line of the request carries it.
func requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Response().Header().Get(echo.HeaderXRequestID)
		req := c.Request()
		c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), id)))
		return next(c)
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c echo.Context) (string, error) {
	h := c.Request().Header.Get(common.AuthorizationHeaderName)
	if h == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization Header")
	}
	if len(h) < len(common.BearerPrefix) || !strings.EqualFold(h[:len(common.BearerPrefix)], common.BearerPrefix) {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must use the Bearer scheme")
	}
	tok := strings.TrimSpace(h[len(common.BearerPrefix):])
	if tok == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization Header")
	}
	return tok, nil
}

// requireAuth resolves the access token to an Identity stored on the context.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tok, err := bearerToken(c)
		if err != nil {
			return err
		}
		id, err := s.deps.Auth.Authenticate(c.Request().Context(), tok)
		if err != nil {
			return err
		}
		c.Set(identityKey, id)
		return next(c)
	}
}

func identity(c echo.Context) *services.Identity {
	id, _ := c.Get(identityKey).(*services.Identity)
	return id
}
