package activity

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectolinq"
	"github.com/fairslice/pie/internal/services/ledger"
	"github.com/fairslice/pie/pkg/appcontext"
	"github.com/fairslice/pie/pkg/models"
	"github.com/fairslice/pie/pkg/tracing"
	"github.com/labstack/echo/v4"
)

// Register registers activity routes
func Register(g *echo.Group) {
	g.GET("", List)
}

// List returns the workspace's recent delete and restore events, newest
// first. limit defaults to 50.
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "activity_handler.List")
	defer span.End()

	workspaceID := appcontext.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "workspace_id is required")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 50
	}

	ctx, service, err := ectoinject.GetContext[*ledger.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get workspace service")
	}

	items, err := service.RecentActivity(ctx, workspaceID, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.ActivityListResponse{
		Items: ectolinq.Map(items, func(item *models.ActivityEvent) models.ActivityEvent {
			return *item
		}),
		TotalCount: len(items),
	})
}
