package contribution

import (
	"database/sql"

	"github.com/fairslice/pie/pkg/database"
	"github.com/fairslice/pie/pkg/models"
)

type ContributionRow struct {
	ID            sql.NullString  `db:"id"`
	WorkspaceID   sql.NullString  `db:"workspace_id"`
	ContributorID sql.NullString  `db:"contributor_id"`
	Type          sql.NullString  `db:"type"`
	Description   sql.NullString  `db:"description"`
	Value         sql.NullFloat64 `db:"value"`
	DollarValue   sql.NullFloat64 `db:"dollar_value"`
	Multiplier    sql.NullFloat64 `db:"multiplier"`
	Slices        sql.NullFloat64 `db:"slices"`
	EffectiveDate sql.NullTime    `db:"effective_date"`
	CreatedAt     sql.NullTime    `db:"created_at"`
	UpdatedAt     sql.NullTime    `db:"updated_at"`
	DeletedAt     sql.NullTime    `db:"deleted_at"`
	// DeletedWith carries the owning contributor's id when the row was
	// swept by a cascade, NULL when it was deleted directly.
	DeletedWith sql.NullString `db:"deleted_with"`
}

const contributionTable = "contributions"

var contributionStruct = database.NewStruct(new(ContributionRow))

func FromContribution(workspaceID string, c *models.Contribution) *ContributionRow {
	row := &ContributionRow{
		ID:            sql.NullString{String: c.ID, Valid: c.ID != ""},
		WorkspaceID:   sql.NullString{String: workspaceID, Valid: workspaceID != ""},
		ContributorID: sql.NullString{String: c.ContributorID, Valid: c.ContributorID != ""},
		Type:          sql.NullString{String: string(c.Type), Valid: c.Type != ""},
		Description:   sql.NullString{String: c.Description, Valid: c.Description != ""},
		Value:         sql.NullFloat64{Float64: c.Value, Valid: true},
		Multiplier:    sql.NullFloat64{Float64: c.Multiplier, Valid: true},
		Slices:        sql.NullFloat64{Float64: c.Slices, Valid: true},
		EffectiveDate: sql.NullTime{Time: c.EffectiveDate, Valid: !c.EffectiveDate.IsZero()},
		CreatedAt:     sql.NullTime{Time: c.CreatedAt, Valid: !c.CreatedAt.IsZero()},
		UpdatedAt:     sql.NullTime{Time: c.UpdatedAt, Valid: !c.UpdatedAt.IsZero()},
	}

	if c.DollarValue != nil {
		row.DollarValue = sql.NullFloat64{Float64: *c.DollarValue, Valid: true}
	}
	if c.DeletedAt != nil {
		row.DeletedAt = sql.NullTime{Time: *c.DeletedAt, Valid: true}
	}
	if c.DeletedWith != nil {
		row.DeletedWith = sql.NullString{String: *c.DeletedWith, Valid: true}
	}

	return row
}

func ToContribution(row *ContributionRow) *models.Contribution {
	c := &models.Contribution{
		Lifecycle: models.Lifecycle{
			ID:        row.ID.String,
			CreatedAt: row.CreatedAt.Time,
			UpdatedAt: row.UpdatedAt.Time,
		},
		ContributorID: row.ContributorID.String,
		Type:          models.ContributionType(row.Type.String),
		Description:   row.Description.String,
		Value:         row.Value.Float64,
		Multiplier:    row.Multiplier.Float64,
		Slices:        row.Slices.Float64,
		EffectiveDate: row.EffectiveDate.Time,
	}

	if row.DollarValue.Valid {
		dollarValue := row.DollarValue.Float64
		c.DollarValue = &dollarValue
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
