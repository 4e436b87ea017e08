package middleware

import (
	"github.com/fairslice/pie/pkg/appcontext"
	"github.com/labstack/echo/v4"
)

// TestAuth middleware extracts workspace_id and user_id from headers when auth is disabled.
// This allows testing the API without a real JWT auth system.
// Headers:
//   - X-Workspace-ID: The workspace ID
//   - X-User-ID: The user ID
//
// WARNING: Only use this when AUTH_ENABLED=false. Do not enable in production.
func TestAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			// Extract workspace ID from header
			workspaceID := c.Request().Header.Get(HeaderWorkspaceID)
			if workspaceID != "" {
				ctx = appcontext.SetWorkspaceID(ctx, workspaceID)
			}

			// Extract user ID from header
			userID := c.Request().Header.Get(HeaderUserID)
			if userID != "" {
				ctx = appcontext.SetUserID(ctx, userID)
			}

			// Update the request context
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
