package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/taskmaster-api/internal/api/middleware"
)

// ctxUserID extracts the identity injected by the Auth middleware. A missing
// value means the middleware did not run for this route; reject with 401
// before touching any service.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get(middleware.UserIDKey).(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, nil
}
