package contributor_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairslice/pie/internal/repositories/contributor"
	"github.com/fairslice/pie/pkg/database"
	"github.com/fairslice/pie/pkg/models"
)

func newMockRepo(t *testing.T) (*contributor.Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	db := database.NewDatabaseInstance(sqlx.NewDb(mockDB, "sqlmock"), logger)
	return contributor.NewRepository(db, logger), mock
}

func floatPtr(f float64) *float64 { return &f }

func TestRepository_Upsert(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	record := &models.Contributor{
		Lifecycle: models.Lifecycle{
			ID:        "c1",
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:       "Ada",
		HourlyRate: floatPtr(50),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO contributors .+ ON CONFLICT \\(id\\) DO UPDATE SET").
		WithArgs("c1", "ws1", "Ada", 50.0, []byte("null"), now, now, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Upsert(context.Background(), "ws1", record)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpsertBatchEmptyIsNoop(t *testing.T) {
	repo, mock := newMockRepo(t)

	err := repo.UpsertBatch(context.Background(), "ws1", nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByWorkspace(t *testing.T) {
	repo, mock := newMockRepo(t)

	created := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	deleted := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

	columns := []string{
		"id", "workspace_id", "name", "hourly_rate", "vesting",
		"created_at", "updated_at", "deleted_at", "deleted_with",
	}
	rows := sqlmock.NewRows(columns).
		AddRow("c1", "ws1", "Ada", 50.0, []byte(`{"cliff_months":12,"duration_months":48,"start_date":"2024-01-01T00:00:00Z"}`), created, created, nil, nil).
		AddRow("c2", "ws1", "Grace", nil, []byte("null"), created, deleted, deleted, nil)

	mock.ExpectQuery("SELECT .+ FROM contributors WHERE workspace_id = .+ ORDER BY created_at, id ASC").
		WithArgs("ws1").
		WillReturnRows(rows)

	contributors, err := repo.ListByWorkspace(context.Background(), "ws1")
	require.NoError(t, err)
	require.Len(t, contributors, 2)

	assert.Equal(t, "c1", contributors[0].ID)
	assert.Equal(t, "Ada", contributors[0].Name)
	require.NotNil(t, contributors[0].HourlyRate)
	assert.Equal(t, 50.0, *contributors[0].HourlyRate)
	require.NotNil(t, contributors[0].Vesting)
	assert.Equal(t, 12, contributors[0].Vesting.CliffMonths)
	assert.Equal(t, 48, contributors[0].Vesting.DurationMonths)
	assert.Nil(t, contributors[0].DeletedAt)

	assert.Equal(t, "c2", contributors[1].ID)
	assert.Nil(t, contributors[1].HourlyRate)
	assert.Nil(t, contributors[1].Vesting)
	require.NotNil(t, contributors[1].DeletedAt)
	assert.Equal(t, deleted, *contributors[1].DeletedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteByWorkspace(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM contributors WHERE workspace_id = ").
		WithArgs("ws1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	err := repo.DeleteByWorkspace(context.Background(), "ws1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
