package contributor

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

// Register registers contributor routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.GET("/:id", Get)
	g.PUT("/:id", Update)
	g.DELETE("/:id", Delete)
	g.POST("/:id/restore", Restore)
}

// List returns the workspace's contributors. Pass deleted=true for the soft
// deleted ones instead of the active set.
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "contributor_handler.List")
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

	items, err := service.ListContributors(ctx, workspaceID, deleted)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.ContributorListResponse{
		Items: ectolinq.Map(items, func(item *models.Contributor) models.Contributor {
			return *item
		}),
		TotalCount: len(items),
	})
}

// Create adds a contributor to the workspace pie
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "contributor_handler.Create")
	defer span.End()

	workspaceID := appcontext.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "workspace_id is required")
	}

	req, err := utils.BindRequest[models.CreateContributorRequest](c)
	if err != nil {
		return err
	}

	ctx, service, err := ectoinject.GetContext[*ledger.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get workspace service")
	}

	created, err := service.CreateContributor(ctx, workspaceID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, created)
}

// Get returns one contributor in any lifecycle state
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "contributor_handler.Get")
	defer span.End()

	workspaceID := appcontext.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "workspace_id is required")
	}

	ctx, service, err := ectoinject.GetContext[*ledger.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get workspace service")
	}

	contributor, err := service.GetContributor(ctx, workspaceID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, contributor)
}

// Update applies a partial patch to an active contributor
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "contributor_handler.Update")
	defer span.End()

	workspaceID := appcontext.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "workspace_id is required")
	}

	req, err := utils.BindRequest[models.UpdateContributorRequest](c)
	if err != nil {
		return err
	}

	ctx, service, err := ectoinject.GetContext[*ledger.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get workspace service")
	}

	updated, err := service.UpdateContributor(ctx, workspaceID, c.Param("id"), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updated)
}

// Delete soft deletes the contributor and cascades over its active
// contributions. The response is the activity event, cascade count included.
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "contributor_handler.Delete")
	defer span.End()

	workspaceID := appcontext.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "workspace_id is required")
	}

	ctx, service, err := ectoinject.GetContext[*ledger.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get workspace service")
	}

	change, err := service.DeleteContributor(ctx, workspaceID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, change.Event)
}

// Restore revives a soft deleted contributor along with the contributions its
// deletion swept
func Restore(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "contributor_handler.Restore")
	defer span.End()

	workspaceID := appcontext.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "workspace_id is required")
	}

	ctx, service, err := ectoinject.GetContext[*ledger.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get workspace service")
	}

	change, err := service.RestoreContributor(ctx, workspaceID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, change.Event)
}
