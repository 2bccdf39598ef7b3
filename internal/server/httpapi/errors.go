package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/aiinterview/internal/common"
	"github.com/labstack/echo/v4"
)

const vendorRouteKey = "vendor_route"

// markVendorRoute flags a route whose error responses carry "success": false.
func markVendorRoute(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(vendorRouteKey, true)
		return next(c)
	}
}

// errorStatus maps an error to an HTTP status and the message shown to the
// client. Unknown errors become 500 with a generic message.
func errorStatus(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		return he.Code, msg
	}

	var ve *common.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Message
	}

	if errors.Is(err, common.ErrInvalidCredential) {
		var vendor *common.VendorError
		if errors.As(err, &vendor) {
			return http.StatusBadRequest, "Invalid API key: " + vendor.Message
		}
		return http.StatusBadRequest, "Invalid API key"
	}

	var vendor *common.VendorError
	if errors.As(err, &vendor) {
		if vendor.Status >= 400 {
			return vendor.Status, vendor.Message
		}
		return http.StatusInternalServerError, vendor.Message
	}

	switch {
	case errors.Is(err, common.ErrNotConfigured):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, common.ErrInvalidLogin):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "Token has expired"
	case errors.Is(err, common.ErrTokenRevoked):
		return http.StatusUnauthorized, "Token has been revoked"
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict, "Email already registered"
	case errors.Is(err, common.ErrInvalidTransition):
		return http.StatusConflict, "Interview status cannot be changed"
	case errors.Is(err, common.ErrorBadRequest):
		return http.StatusBadRequest, "Bad request"
	}
	return http.StatusInternalServerError, "Internal server error"
}

// handleError is the single place where errors become JSON responses.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, msg := errorStatus(err)
	ctx := c.Request().Context()
	if status >= http.StatusInternalServerError {
		s.logger.Error(ctx, "request failed", "path", c.Path(), "error", err)
	} else {
		s.logger.Debug(ctx, "request rejected", "path", c.Path(), "status", status, "error", err)
	}

	body := map[string]any{"error": msg}
	var vendor *common.VendorError
	if errors.As(err, &vendor) && vendor.Details != nil {
		body["details"] = vendor.Details
	}
	if flagged, _ := c.Get(vendorRouteKey).(bool); flagged {
		body["success"] = false
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, body)
	}
	if writeErr != nil {
		s.logger.Error(ctx, "writing error response", "error", writeErr)
	}
}
