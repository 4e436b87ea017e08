package workspace

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/fairslice/pie/internal/services/ledger"
	"github.com/fairslice/pie/pkg/appcontext"
	"github.com/fairslice/pie/pkg/models"
	"github.com/fairslice/pie/pkg/tracing"
	"github.com/fairslice/pie/pkg/utils"
	"github.com/labstack/echo/v4"
)

// Register registers workspace snapshot routes
func Register(g *echo.Group) {
	g.POST("/import", Import)
	g.GET("/export", Export)
	g.POST("/reset", Reset)
}

// Import replaces the whole workspace with the posted snapshot. Ids,
// timestamps, and deletion provenance come through verbatim.
func Import(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "workspace_handler.Import")
	defer span.End()

	workspaceID := appcontext.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "workspace_id is required")
	}

	snapshot, err := utils.BindRequest[models.WorkspaceSnapshot](c)
	if err != nil {
		return err
	}

	ctx, service, err := ectoinject.GetContext[*ledger.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get workspace service")
	}

	if err := service.ImportWorkspace(ctx, workspaceID, &snapshot); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":        "imported",
		"contributors":  len(snapshot.Contributors),
		"contributions": len(snapshot.Contributions),
		"events":        len(snapshot.Activity),
	})
}

// Export returns the full workspace state, soft deleted records and activity
// trail included. The output round-trips through Import.
func Export(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "workspace_handler.Export")
	defer span.End()

	workspaceID := appcontext.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "workspace_id is required")
	}

	ctx, service, err := ectoinject.GetContext[*ledger.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get workspace service")
	}

	snapshot, err := service.ExportWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, snapshot)
}

// Reset wipes the workspace: records, activity trail, and cached equity
func Reset(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "workspace_handler.Reset")
	defer span.End()

	workspaceID := appcontext.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "workspace_id is required")
	}

	ctx, service, err := ectoinject.GetContext[*ledger.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get workspace service")
	}

	if err := service.ResetWorkspace(ctx, workspaceID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "reset"})
}
