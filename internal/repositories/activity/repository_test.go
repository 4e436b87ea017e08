package activity_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairslice/pie/internal/repositories/activity"
	"github.com/fairslice/pie/pkg/database"
	"github.com/fairslice/pie/pkg/models"
)

func newMockRepo(t *testing.T) (*activity.Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	db := database.NewDatabaseInstance(sqlx.NewDb(mockDB, "sqlmock"), logger)
	return activity.NewRepository(db, logger), mock
}

func TestRepository_Insert(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	count := 2
	event := &models.ActivityEvent{
		ID:           "e1",
		Action:       models.ActivityDeleted,
		TargetKind:   models.TargetContributor,
		TargetID:     "c1",
		TargetLabel:  "Ada",
		Slices:       5000,
		CascadeCount: &count,
		CreatedAt:    now,
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO activity_events").
		WithArgs("e1", "ws1", "deleted", "contributor", "c1", "Ada", 5000.0, int64(2), now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Insert(context.Background(), "ws1", event)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByWorkspaceOldestFirst(t *testing.T) {
	repo, mock := newMockRepo(t)

	first := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	second := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

	columns := []string{
		"id", "workspace_id", "action", "target_kind", "target_id",
		"target_label", "slices", "cascade_count", "created_at",
	}
	rows := sqlmock.NewRows(columns).
		AddRow("e1", "ws1", "deleted", "contribution", "k1", "server bill", 4000.0, nil, first).
		AddRow("e2", "ws1", "restored", "contributor", "c1", "Ada", 5000.0, int64(1), second)

	mock.ExpectQuery("SELECT .+ FROM activity_events WHERE workspace_id = .+ ORDER BY created_at, id ASC").
		WithArgs("ws1").
		WillReturnRows(rows)

	events, err := repo.ListByWorkspace(context.Background(), "ws1")
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "e1", events[0].ID)
	assert.Nil(t, events[0].CascadeCount)

	assert.Equal(t, "e2", events[1].ID)
	assert.Equal(t, models.ActivityRestored, events[1].Action)
	require.NotNil(t, events[1].CascadeCount)
	assert.Equal(t, 1, *events[1].CascadeCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}
