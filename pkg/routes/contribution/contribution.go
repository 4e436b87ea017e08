package contribution

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectolinq"
	"github.com/fairslice/pie/internal/services/ledger"
	"github.com/fairslice/pie/pkg/appcontext"
	"github.com/fairslice/pie/pkg/models"
	"github.com/fairslice/pie/pkg/tracing"
	"github.com/fairslice/pie/pkg/utils"
	"github.com/labstack/echo/v4"
)

// Register registers contribution routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.POST("/preview", Preview)
	g.GET("/:id", Get)
	g.PUT("/:id", Update)
	g.DELETE("/:id", Delete)
	g.POST("/:id/restore", Restore)
}

// List returns the workspace's contributions. Pass deleted=true for the soft
// deleted ones instead of the active set.
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "contribution_handler.List")
	defer span.End()

	workspaceID := appcontext.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "workspace_id is required")
	}

	deleted := c.QueryParam("deleted") == "true"

	ctx, service, err := ectoinject.GetContext[*ledger.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get workspace service")
	}

	items, err := service.ListContributions(ctx, workspaceID, deleted)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.ContributionListResponse{
		Items: ectolinq.Map(items, func(item *models.Contribution) models.Contribution {
			return *item
		}),
		TotalCount: len(items),
	})
}

// Create records a contribution and prices it into slices
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "contribution_handler.Create")
	defer span.End()

	workspaceID := appcontext.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "workspace_id is required")
	}

	req, err := utils.BindRequest[models.CreateContributionRequest](c)
	if err != nil {
		return err
	}

	ctx, service, err := ectoinject.GetContext[*ledger.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get workspace service")
	}

	created, err := service.CreateContribution(ctx, workspaceID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, created)
}

// Preview prices a contribution without recording it. Manually typed values
// and suggested ones go through the same calculation.
func Preview(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "contribution_handler.Preview")
	defer span.End()

	workspaceID := appcontext.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "workspace_id is required")
	}

	req, err := utils.BindRequest[models.PreviewContributionRequest](c)
	if err != nil {
		return err
	}

	ctx, service, err := ectoinject.GetContext[*ledger.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get workspace service")
	}

	preview, err := service.PreviewContribution(ctx, workspaceID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, preview)
}

// Get returns one contribution in any lifecycle state
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "contribution_handler.Get")
	defer span.End()

	workspaceID := appcontext.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "workspace_id is required")
	}

	ctx, service, err := ectoinject.GetContext[*ledger.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get workspace service")
	}

	contribution, err := service.GetContribution(ctx, workspaceID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, contribution)
}

// Update applies a partial patch and reprices the contribution
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "contribution_handler.Update")
	defer span.End()

	workspaceID := appcontext.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "workspace_id is required")
	}

	req, err := utils.BindRequest[models.UpdateContributionRequest](c)
	if err != nil {
		return err
	}

	ctx, service, err := ectoinject.GetContext[*ledger.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get workspace service")
	}

	updated, err := service.UpdateContribution(ctx, workspaceID, c.Param("id"), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updated)
}

// Delete soft deletes one contribution directly. The response is the
// activity event.
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "contribution_handler.Delete")
	defer span.End()

	workspaceID := appcontext.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "workspace_id is required")
	}

	ctx, service, err := ectoinject.GetContext[*ledger.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get workspace service")
	}

	change, err := service.DeleteContribution(ctx, workspaceID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, change.Event)
}

// Restore revives one soft deleted contribution. Its owner must be active.
func Restore(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "contribution_handler.Restore")
	defer span.End()

	workspaceID := appcontext.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "workspace_id is required")
	}

	ctx, service, err := ectoinject.GetContext[*ledger.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get workspace service")
	}

	change, err := service.RestoreContribution(ctx, workspaceID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, change.Event)
}
