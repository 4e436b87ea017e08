package contribution

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/fairslice/pie/pkg/database"
	"github.com/fairslice/pie/pkg/metrics"
	"github.com/fairslice/pie/pkg/models"
	"github.com/fairslice/pie/pkg/tracing"
)

type ContributionRepository interface {
	Upsert(ctx context.Context, workspaceID string, contribution *models.Contribution) error
	UpsertBatch(ctx context.Context, workspaceID string, contributions []*models.Contribution) error
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*models.Contribution, error)
	DeleteByWorkspace(ctx context.Context, workspaceID string) error
}

// Repository persists contribution rows. A contributor cascade arrives here
// as a batch upsert carrying every swept row, inside one transaction with the
// contributor's own upsert.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new contribution repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func upsertBuilder(rows ...any) *database.InsertBuilder {
	ib := contributionStruct.InsertInto(contributionTable, rows...)
	ub := ib.OnConflict("id")
	ub.Set(
		ub.Assign("contributor_id", database.Excluded("contributor_id")),
		ub.Assign("type", database.Excluded("type")),
		ub.Assign("description", database.Excluded("description")),
		ub.Assign("value", database.Excluded("value")),
		ub.Assign("dollar_value", database.Excluded("dollar_value")),
		ub.Assign("multiplier", database.Excluded("multiplier")),
		ub.Assign("slices", database.Excluded("slices")),
		ub.Assign("effective_date", database.Excluded("effective_date")),
		ub.Assign("updated_at", database.Excluded("updated_at")),
		ub.Assign("deleted_at", database.Excluded("deleted_at")),
		ub.Assign("deleted_with", database.Excluded("deleted_with")),
	)
	return ib
}

func (r *Repository) Upsert(ctx context.Context, workspaceID string, contribution *models.Contribution) error {
	ctx, span := tracing.StartSpan(ctx, "contribution.Repository.Upsert")
	defer span.End()

	start := time.Now()
	query, args := upsertBuilder(FromContribution(workspaceID, contribution)).Build()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":             contribution.ID,
			"workspace_id":   workspaceID,
			"contributor_id": contribution.ContributorID,
		}).Error("error upserting contribution")
		return httperror.NewHTTPError(http.StatusInternalServerError, "error upserting contribution")
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}

	metrics.DatabaseQueryDuration.WithLabelValues("contribution.upsert").Observe(time.Since(start).Seconds())
	return nil
}

func (r *Repository) UpsertBatch(ctx context.Context, workspaceID string, contributions []*models.Contribution) error {
	ctx, span := tracing.StartSpan(ctx, "contribution.Repository.UpsertBatch")
	defer span.End()

	if len(contributions) == 0 {
		return nil
	}

	rows := make([]any, 0, len(contributions))
	for _, contribution := range contributions {
		rows = append(rows, FromContribution(workspaceID, contribution))
	}

	query, args := upsertBuilder(rows...).Build()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"workspace_id": workspaceID,
			"count":        len(contributions),
		}).Error("error upserting contribution batch")
		return httperror.NewHTTPError(http.StatusInternalServerError, "error upserting contributions")
	}

	return tx.Commit(ctx)
}

// ListByWorkspace returns every contribution row for the workspace, deleted
// ones included, in insertion order.
func (r *Repository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*models.Contribution, error) {
	ctx, span := tracing.StartSpan(ctx, "contribution.Repository.ListByWorkspace")
	defer span.End()

	start := time.Now()
	sb := contributionStruct.SelectFrom(contributionTable)
	sb.Where(sb.Equal("workspace_id", workspaceID))
	sb.OrderBy("created_at", "id").Asc()

	query, args := sb.Build()

	var rows []ContributionRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"workspace_id": workspaceID,
		}).Error("error listing contributions")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "error listing contributions")
	}

	contributions := make([]*models.Contribution, 0, len(rows))
	for i := range rows {
		contributions = append(contributions, ToContribution(&rows[i]))
	}

	metrics.DatabaseQueryDuration.WithLabelValues("contribution.list").Observe(time.Since(start).Seconds())
	return contributions, nil
}

// DeleteByWorkspace hard deletes the workspace's contribution rows for the
// import and reset paths.
func (r *Repository) DeleteByWorkspace(ctx context.Context, workspaceID string) error {
	ctx, span := tracing.StartSpan(ctx, "contribution.Repository.DeleteByWorkspace")
	defer span.End()

	sb := database.NewDeleteBuilder()
	sb.DeleteFrom(contributionTable)
	sb.Where(sb.Equal("workspace_id", workspaceID))

	query, args := sb.Build()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"workspace_id": workspaceID,
		}).Error("error deleting workspace contributions")
		return httperror.NewHTTPError(http.StatusInternalServerError, "error deleting contributions")
	}

	return tx.Commit(ctx)
}
