package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/aiinterview/internal/common"
	"github.com/labstack/echo/v4"
)

// bindJSON binds the request body into dst. A missing body leaves dst
// untouched so that handlers report the missing field instead.
func bindJSON(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusUnsupportedMediaType {
			return err
		}
		return common.NewValidationError("Invalid JSON body")
	}
	return nil
}
