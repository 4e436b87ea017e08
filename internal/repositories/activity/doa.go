package activity

import (
	"database/sql"

	"github.com/fairslice/pie/pkg/database"
	"github.com/fairslice/pie/pkg/models"
)

type ActivityEventRow struct {
	ID           sql.NullString  `db:"id"`
	WorkspaceID  sql.NullString  `db:"workspace_id"`
	Action       sql.NullString  `db:"action"`
	TargetKind   sql.NullString  `db:"target_kind"`
	TargetID     sql.NullString  `db:"target_id"`
	TargetLabel  sql.NullString  `db:"target_label"`
	Slices       sql.NullFloat64 `db:"slices"`
	CascadeCount sql.NullInt64   `db:"cascade_count"`
	CreatedAt    sql.NullTime    `db:"created_at"`
}

const activityEventTable = "activity_events"

var activityEventStruct = database.NewStruct(new(ActivityEventRow))

func FromActivityEvent(workspaceID string, event *models.ActivityEvent) *ActivityEventRow {
	row := &ActivityEventRow{
		ID:          sql.NullString{String: event.ID, Valid: event.ID != ""},
		WorkspaceID: sql.NullString{String: workspaceID, Valid: workspaceID != ""},
		Action:      sql.NullString{String: string(event.Action), Valid: event.Action != ""},
		TargetKind:  sql.NullString{String: string(event.TargetKind), Valid: event.TargetKind != ""},
		TargetID:    sql.NullString{String: event.TargetID, Valid: event.TargetID != ""},
		TargetLabel: sql.NullString{String: event.TargetLabel, Valid: event.TargetLabel != ""},
		Slices:      sql.NullFloat64{Float64: event.Slices, Valid: true},
		CreatedAt:   sql.NullTime{Time: event.CreatedAt, Valid: !event.CreatedAt.IsZero()},
	}

	if event.CascadeCount != nil {
		row.CascadeCount = sql.NullInt64{Int64: int64(*event.CascadeCount), Valid: true}
	}

	return row
}

func ToActivityEvent(row *ActivityEventRow) *models.ActivityEvent {
	event := &models.ActivityEvent{
		ID:          row.ID.String,
		Action:      models.ActivityAction(row.Action.String),
		TargetKind:  models.TargetKind(row.TargetKind.String),
		TargetID:    row.TargetID.String,
		TargetLabel: row.TargetLabel.String,
		Slices:      row.Slices.Float64,
		CreatedAt:   row.CreatedAt.Time,
	}

	if row.CascadeCount.Valid {
		count := int(row.CascadeCount.Int64)
		event.CascadeCount = &count
	}

	return event
}
