package equity

import (
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/fairslice/pie/internal/services/ledger"
	"github.com/fairslice/pie/pkg/appcontext"
	"github.com/fairslice/pie/pkg/tracing"
	"github.com/labstack/echo/v4"
)

// Register registers equity routes
func Register(g *echo.Group) {
	g.GET("", Report)
	g.GET("/vesting", Vesting)
	g.GET("/vesting/summary", VestingSummary)
}

// Report returns the per contributor split of the pie: slices, percentages,
// the company total, and the most recent contribution.
func Report(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "equity_handler.Report")
	defer span.End()

	workspaceID := appcontext.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "workspace_id is required")
	}

	ctx, service, err := ectoinject.GetContext[*ledger.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get workspace service")
	}

	report, err := service.EquityReport(ctx, workspaceID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, report)
}

// Vesting returns each contributor's vested position as of the as_of query
// parameter, defaulting to now.
func Vesting(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "equity_handler.Vesting")
	defer span.End()

	workspaceID := appcontext.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "workspace_id is required")
	}

	asOf, err := parseAsOf(c.QueryParam("as_of"))
	if err != nil {
		return err
	}

	ctx, service, err := ectoinject.GetContext[*ledger.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get workspace service")
	}

	items, err := service.VestedEquity(ctx, workspaceID, asOf)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}

// VestingSummary returns the company wide vested position as of the as_of
// query parameter, defaulting to now.
func VestingSummary(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "equity_handler.VestingSummary")
	defer span.End()

	workspaceID := appcontext.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "workspace_id is required")
	}

	asOf, err := parseAsOf(c.QueryParam("as_of"))
	if err != nil {
		return err
	}

	ctx, service, err := ectoinject.GetContext[*ledger.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get workspace service")
	}

	summary, err := service.VestingSummary(ctx, workspaceID, asOf)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, summary)
}

// parseAsOf accepts RFC3339 timestamps or plain dates. Empty means now.
func parseAsOf(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", raw)
	}
	if err != nil {
		return time.Time{}, httperror.NewHTTPError(http.StatusBadRequest, "as_of must be RFC3339 or YYYY-MM-DD")
	}
	return parsed, nil
}
