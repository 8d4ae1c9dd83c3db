package postgres

import (
	"database/sql/driver"
	"testing"
	"time"

	"coursebot/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var broadcastColumns = []string{
	"id", "message", "media_type", "media_file_id", "media_caption", "admin_id",
	"target_type", "priority", "created_at", "status", "target_count", "sent_count",
	"failed_count", "blocked_count", "completed_at",
}

func TestBroadcastRepo_LoadBroadcasts(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewBroadcastRepo(db)

	created := time.Date(2024, 4, 2, 12, 0, 0, 0, time.UTC)
	completed := created.Add(time.Minute)

	mock.ExpectQuery("SELECT id, message, media_type").
		WillReturnRows(sqlmock.NewRows(broadcastColumns).
			AddRow(3, "Exam schedule", "photo", "file-1", nil, 99, "subscribers", "high", created, "completed", 10, 8, 2, 1, completed).
			AddRow(7, "Reminder", nil, nil, nil, 99, "all", "normal", created, "sending", 4, 1, 0, 0, nil))

	records, lastID, err := repo.LoadBroadcasts()

	require.NoError(t, err)
	assert.Equal(t, int64(7), lastID)
	require.Len(t, records, 2)

	first := records[0]
	require.NotNil(t, first.Media)
	assert.Equal(t, domain.MediaPhoto, first.Media.Type)
	assert.Equal(t, domain.TargetSubscribers, first.TargetType)
	assert.Equal(t, domain.StatusCompleted, first.Status)
	require.NotNil(t, first.CompletedAt)
	assert.Equal(t, completed, *first.CompletedAt)

	second := records[1]
	assert.Nil(t, second.Media)
	assert.Nil(t, second.CompletedAt)
	assert.Equal(t, domain.StatusSending, second.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBroadcastRepo_SaveBroadcast(t *testing.T) {
	created := time.Date(2024, 4, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		record domain.BroadcastRecord
		args   []driver.Value
	}{
		{
			name: "text broadcast in progress",
			record: domain.BroadcastRecord{
				ID: 1, Message: "Hello", AdminID: 99, TargetType: domain.TargetAll,
				Priority: domain.PriorityNormal, CreatedAt: created, Status: domain.StatusSending, TargetCount: 3,
			},
			args: []driver.Value{
				int64(1), "Hello", nil, nil, nil, int64(99),
				"all", "normal", created, "sending", int64(3), int64(0), int64(0), int64(0), nil,
			},
		},
		{
			name: "completed media broadcast",
			record: domain.BroadcastRecord{
				ID: 2, Message: "New TD", AdminID: 99, TargetType: domain.TargetActive,
				Priority: domain.PriorityUrgent, CreatedAt: created, Status: domain.StatusCompleted,
				Media:       &domain.Media{Type: domain.MediaDocument, FileID: "doc-9"},
				TargetCount: 2, SentCount: 2, CompletedAt: &created,
			},
			args: []driver.Value{
				int64(2), "New TD", "document", "doc-9", nil, int64(99),
				"active", "urgent", created, "completed", int64(2), int64(2), int64(0), int64(0), created,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewBroadcastRepo(db)

			mock.ExpectExec("INSERT INTO broadcasts").
				WithArgs(tt.args...).
				WillReturnResult(sqlmock.NewResult(1, 1))

			err = repo.SaveBroadcast(&tt.record)

			assert.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
