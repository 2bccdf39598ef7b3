package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/aiinterview/internal/logging"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestContext_CarriesRequestID(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/health", nil), rec)
	c.Response().Header().Set(echo.HeaderXRequestID, "rid-1")

	var seen string
	err := requestContext(func(c echo.Context) error {
		seen = logging.RequestID(c.Request().Context())
		return nil
	})(c)
	require.NoError(t, err)
	assert.Equal(t, "rid-1", seen)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		token  string
		msg    string
	}{
		{"valid", "Bearer abc", "abc", ""},
		{"case insensitive scheme", "bearer abc", "abc", ""},
		{"missing", "", "", "Missing Authorization Header"},
		{"basic scheme", "Basic abc", "", "Authorization header must use the Bearer scheme"},
		{"empty token", "Bearer   ", "", "Missing Authorization Header"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			c := echo.New().NewContext(req, httptest.NewRecorder())

			tok, err := bearerToken(c)
			if tt.msg == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.token, tok)
				return
			}
			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, http.StatusUnauthorized, he.Code)
			assert.Equal(t, tt.msg, he.Message)
		})
	}
}
