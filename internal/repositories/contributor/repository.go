package contributor

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

type ContributorRepository interface {
	Upsert(ctx context.Context, workspaceID string, contributor *models.Contributor) error
	UpsertBatch(ctx context.Context, workspaceID string, contributors []*models.Contributor) error
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*models.Contributor, error)
	DeleteByWorkspace(ctx context.Context, workspaceID string) error
}

// Repository persists contributor rows. The in-memory ledger is the authority;
// every write lands as an upsert reflecting its current state, including soft
// delete marks.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new contributor repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func upsertBuilder(rows ...any) *database.InsertBuilder {
	ib := contributorStruct.InsertInto(contributorTable, rows...)
	ub := ib.OnConflict("id")
	ub.Set(
		ub.Assign("name", database.Excluded("name")),
		ub.Assign("hourly_rate", database.Excluded("hourly_rate")),
		ub.Assign("vesting", database.Excluded("vesting")),
		ub.Assign("updated_at", database.Excluded("updated_at")),
		ub.Assign("deleted_at", database.Excluded("deleted_at")),
		ub.Assign("deleted_with", database.Excluded("deleted_with")),
	)
	return ib
}

func (r *Repository) Upsert(ctx context.Context, workspaceID string, contributor *models.Contributor) error {
	ctx, span := tracing.StartSpan(ctx, "contributor.Repository.Upsert")
	defer span.End()

	start := time.Now()
	query, args := upsertBuilder(FromContributor(workspaceID, contributor)).Build()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":           contributor.ID,
			"workspace_id": workspaceID,
		}).Error("error upserting contributor")
		return httperror.NewHTTPError(http.StatusInternalServerError, "error upserting contributor")
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}

	metrics.DatabaseQueryDuration.WithLabelValues("contributor.upsert").Observe(time.Since(start).Seconds())
	return nil
}

func (r *Repository) UpsertBatch(ctx context.Context, workspaceID string, contributors []*models.Contributor) error {
	ctx, span := tracing.StartSpan(ctx, "contributor.Repository.UpsertBatch")
	defer span.End()

	if len(contributors) == 0 {
		return nil
	}

	rows := make([]any, 0, len(contributors))
	for _, contributor := range contributors {
		rows = append(rows, FromContributor(workspaceID, contributor))
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
			"count":        len(contributors),
		}).Error("error upserting contributor batch")
		return httperror.NewHTTPError(http.StatusInternalServerError, "error upserting contributors")
	}

	return tx.Commit(ctx)
}

// ListByWorkspace returns every contributor row for the workspace, deleted
// ones included, in insertion order. Hydration rebuilds the in-memory ledger
// from exactly this.
func (r *Repository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*models.Contributor, error) {
	ctx, span := tracing.StartSpan(ctx, "contributor.Repository.ListByWorkspace")
	defer span.End()

	start := time.Now()
	sb := contributorStruct.SelectFrom(contributorTable)
	sb.Where(sb.Equal("workspace_id", workspaceID))
	sb.OrderBy("created_at", "id").Asc()

	query, args := sb.Build()

	var rows []ContributorRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"workspace_id": workspaceID,
		}).Error("error listing contributors")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "error listing contributors")
	}

	contributors := make([]*models.Contributor, 0, len(rows))
	for i := range rows {
		contributors = append(contributors, ToContributor(&rows[i]))
	}

	metrics.DatabaseQueryDuration.WithLabelValues("contributor.list").Observe(time.Since(start).Seconds())
	return contributors, nil
}

// DeleteByWorkspace hard deletes the workspace's contributor rows. Only the
// import and reset paths use this, inside the transaction that writes the
// replacement state.
func (r *Repository) DeleteByWorkspace(ctx context.Context, workspaceID string) error {
	ctx, span := tracing.StartSpan(ctx, "contributor.Repository.DeleteByWorkspace")
	defer span.End()

	sb := database.NewDeleteBuilder()
	sb.DeleteFrom(contributorTable)
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
		}).Error("error deleting workspace contributors")
		return httperror.NewHTTPError(http.StatusInternalServerError, "error deleting contributors")
	}

	return tx.Commit(ctx)
}
