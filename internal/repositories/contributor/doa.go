package contributor

import (
	"database/sql"

	"github.com/fairslice/pie/pkg/database"
	"github.com/fairslice/pie/pkg/models"
)

type ContributorRow struct {
	ID          sql.NullString                          `db:"id"`
	WorkspaceID sql.NullString                          `db:"workspace_id"`
	Name        sql.NullString                          `db:"name"`
	HourlyRate  sql.NullFloat64                         `db:"hourly_rate"`
	Vesting     database.JSONB[*models.VestingSchedule] `db:"vesting"`
	CreatedAt   sql.NullTime                            `db:"created_at"`
	UpdatedAt   sql.NullTime                            `db:"updated_at"`
	DeletedAt   sql.NullTime                            `db:"deleted_at"`
	// DeletedWith stays NULL for contributors; they are never swept by a parent.
	DeletedWith sql.NullString `db:"deleted_with"`
}

const contributorTable = "contributors"

var contributorStruct = database.NewStruct(new(ContributorRow))

func FromContributor(workspaceID string, c *models.Contributor) *ContributorRow {
	row := &ContributorRow{
		ID:          sql.NullString{String: c.ID, Valid: c.ID != ""},
		WorkspaceID: sql.NullString{String: workspaceID, Valid: workspaceID != ""},
		Name:        sql.NullString{String: c.Name, Valid: c.Name != ""},
		Vesting:     database.JSONB[*models.VestingSchedule]{Data: c.Vesting},
		CreatedAt:   sql.NullTime{Time: c.CreatedAt, Valid: !c.CreatedAt.IsZero()},
		UpdatedAt:   sql.NullTime{Time: c.UpdatedAt, Valid: !c.UpdatedAt.IsZero()},
	}

	if c.HourlyRate != nil {
		row.HourlyRate = sql.NullFloat64{Float64: *c.HourlyRate, Valid: true}
	}
	if c.DeletedAt != nil {
		row.DeletedAt = sql.NullTime{Time: *c.DeletedAt, Valid: true}
	}
	if c.DeletedWith != nil {
		row.DeletedWith = sql.NullString{String: *c.DeletedWith, Valid: true}
	}

	return row
}

func ToContributor(row *ContributorRow) *models.Contributor {
	c := &models.Contributor{
		Lifecycle: models.Lifecycle{
			ID:        row.ID.String,
			CreatedAt: row.CreatedAt.Time,
			UpdatedAt: row.UpdatedAt.Time,
		},
		Name:    row.Name.String,
		Vesting: row.Vesting.Data,
	}

	if row.HourlyRate.Valid {
		rate := row.HourlyRate.Float64
		c.HourlyRate = &rate
	}
	if row.DeletedAt.Valid {
		deletedAt := row.DeletedAt.Time
		c.DeletedAt = &deletedAt
	}
	if row.DeletedWith.Valid {
		deletedWith := row.DeletedWith.String
		c.DeletedWith = &deletedWith
	}

	return c
}
