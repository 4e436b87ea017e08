package activity

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/fairslice/pie/pkg/database"
	"github.com/fairslice/pie/pkg/models"
	"github.com/fairslice/pie/pkg/tracing"
)

type ActivityRepository interface {
	Insert(ctx context.Context, workspaceID string, event *models.ActivityEvent) error
	InsertBatch(ctx context.Context, workspaceID string, events []*models.ActivityEvent) error
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*models.ActivityEvent, error)
	DeleteByWorkspace(ctx context.Context, workspaceID string) error
}

// Repository persists the activity trail. Events are immutable, so there is
// no update path; the trail only ever appends, or gets replaced wholesale by
// import and reset.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new activity repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) Insert(ctx context.Context, workspaceID string, event *models.ActivityEvent) error {
	ctx, span := tracing.StartSpan(ctx, "activity.Repository.Insert")
	defer span.End()

	query, args := activityEventStruct.InsertInto(activityEventTable, FromActivityEvent(workspaceID, event)).Build()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":           event.ID,
			"workspace_id": workspaceID,
			"action":       event.Action,
		}).Error("error inserting activity event")
		return httperror.NewHTTPError(http.StatusInternalServerError, "error inserting activity event")
	}

	return tx.Commit(ctx)
}

func (r *Repository) InsertBatch(ctx context.Context, workspaceID string, events []*models.ActivityEvent) error {
	ctx, span := tracing.StartSpan(ctx, "activity.Repository.InsertBatch")
	defer span.End()

	if len(events) == 0 {
		return nil
	}

	rows := make([]any, 0, len(events))
	for _, event := range events {
		rows = append(rows, FromActivityEvent(workspaceID, event))
	}

	query, args := activityEventStruct.InsertInto(activityEventTable, rows...).Build()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"workspace_id": workspaceID,
			"count":        len(events),
		}).Error("error inserting activity batch")
		return httperror.NewHTTPError(http.StatusInternalServerError, "error inserting activity events")
	}

	return tx.Commit(ctx)
}

// ListByWorkspace returns the full trail oldest first, matching the order the
// in-memory log appends in.
func (r *Repository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*models.ActivityEvent, error) {
	ctx, span := tracing.StartSpan(ctx, "activity.Repository.ListByWorkspace")
	defer span.End()

	sb := activityEventStruct.SelectFrom(activityEventTable)
	sb.Where(sb.Equal("workspace_id", workspaceID))
	sb.OrderBy("created_at", "id").Asc()

	query, args := sb.Build()

	var rows []ActivityEventRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"workspace_id": workspaceID,
		}).Error("error listing activity events")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "error listing activity events")
	}

	events := make([]*models.ActivityEvent, 0, len(rows))
	for i := range rows {
		events = append(events, ToActivityEvent(&rows[i]))
	}

	return events, nil
}

// DeleteByWorkspace hard deletes the workspace's trail for the import and
// reset paths.
func (r *Repository) DeleteByWorkspace(ctx context.Context, workspaceID string) error {
	ctx, span := tracing.StartSpan(ctx, "activity.Repository.DeleteByWorkspace")
	defer span.End()

	sb := database.NewDeleteBuilder()
	sb.DeleteFrom(activityEventTable)
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
		}).Error("error deleting workspace activity")
		return httperror.NewHTTPError(http.StatusInternalServerError, "error deleting activity events")
	}

	return tx.Commit(ctx)
}
