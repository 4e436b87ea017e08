package contribution_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairslice/pie/internal/repositories/contribution"
	"github.com/fairslice/pie/pkg/database"
	"github.com/fairslice/pie/pkg/models"
)

func newMockRepo(t *testing.T) (*contribution.Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	db := database.NewDatabaseInstance(sqlx.NewDb(mockDB, "sqlmock"), logger)
	return contribution.NewRepository(db, logger), mock
}

func TestRepository_UpsertBatchJoinsOneTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	swept := "c1"
	records := []*models.Contribution{
		{
			Lifecycle:     models.Lifecycle{ID: "k1", CreatedAt: now, UpdatedAt: now, DeletedAt: &now, DeletedWith: &swept},
			ContributorID: "c1",
			Type:          models.ContributionCash,
			Value:         1000,
			Multiplier:    4,
			Slices:        4000,
			EffectiveDate: now,
		},
		{
			Lifecycle:     models.Lifecycle{ID: "k2", CreatedAt: now, UpdatedAt: now, DeletedAt: &now, DeletedWith: &swept},
			ContributorID: "c1",
			Type:          models.ContributionTime,
			Value:         10,
			Multiplier:    2,
			Slices:        1000,
			EffectiveDate: now,
		},
	}

	// Both rows land in a single multi-row upsert.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO contributions .+ ON CONFLICT \\(id\\) DO UPDATE SET").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.UpsertBatch(context.Background(), "ws1", records)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByWorkspaceMapsRows(t *testing.T) {
	repo, mock := newMockRepo(t)

	created := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	effective := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	columns := []string{
		"id", "workspace_id", "contributor_id", "type", "description",
		"value", "dollar_value", "multiplier", "slices", "effective_date",
		"created_at", "updated_at", "deleted_at", "deleted_with",
	}
	rows := sqlmock.NewRows(columns).
		AddRow("k1", "ws1", "c1", "idea", "routing patent", 1.0, 25000.0, 1.0, 1.0, effective, created, created, nil, nil).
		AddRow("k2", "ws1", "c1", "time", nil, 10.0, nil, 2.0, 1000.0, effective, created, created, created, "c1")

	mock.ExpectQuery("SELECT .+ FROM contributions WHERE workspace_id = ").
		WithArgs("ws1").
		WillReturnRows(rows)

	contributions, err := repo.ListByWorkspace(context.Background(), "ws1")
	require.NoError(t, err)
	require.Len(t, contributions, 2)

	assert.Equal(t, models.ContributionIdea, contributions[0].Type)
	assert.Equal(t, "routing patent", contributions[0].Description)
	require.NotNil(t, contributions[0].DollarValue)
	assert.Equal(t, 25000.0, *contributions[0].DollarValue)
	assert.Nil(t, contributions[0].DeletedAt)
	assert.Nil(t, contributions[0].DeletedWith)

	assert.Equal(t, models.ContributionTime, contributions[1].Type)
	assert.Nil(t, contributions[1].DollarValue)
	require.NotNil(t, contributions[1].DeletedWith)
	assert.Equal(t, "c1", *contributions[1].DeletedWith)

	assert.NoError(t, mock.ExpectationsWereMet())
}
