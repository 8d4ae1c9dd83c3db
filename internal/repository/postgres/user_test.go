package postgres

import (
	"fmt"
	"testing"
	"time"

	"coursebot/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var userColumns = []string{
	"user_id", "first_name", "last_name", "username", "joined_at",
	"last_activity_at", "message_count", "is_subscriber", "is_blocked",
}

func TestUserRepo_LoadUsers(t *testing.T) {
	joined := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	active := time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		mockRows      *sqlmock.Rows
		mockError     error
		expectedUsers []domain.UserProfile
		expectedError bool
	}{
		{
			name: "two users",
			mockRows: sqlmock.NewRows(userColumns).
				AddRow(1, "Amina", "B", "amina", joined, active, 5, true, false).
				AddRow(2, "Sara", "", "", joined, joined, 1, false, true),
			expectedUsers: []domain.UserProfile{
				{ID: 1, FirstName: "Amina", LastName: "B", Username: "amina", JoinedAt: joined, LastActivityAt: active, MessageCount: 5, IsSubscriber: true},
				{ID: 2, FirstName: "Sara", JoinedAt: joined, LastActivityAt: joined, MessageCount: 1, IsBlocked: true},
			},
		},
		{
			name:          "empty table",
			mockRows:      sqlmock.NewRows(userColumns),
			expectedUsers: nil,
		},
		{
			name:          "query error",
			mockError:     fmt.Errorf("connection reset"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewUserRepo(db)

			query := "SELECT user_id, first_name, last_name, username, joined_at"
			if tt.mockError != nil {
				mock.ExpectQuery(query).WillReturnError(tt.mockError)
			} else {
				mock.ExpectQuery(query).WillReturnRows(tt.mockRows)
			}

			users, err := repo.LoadUsers()

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedUsers, users)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepo_SaveUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewUserRepo(db)

	now := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	user := &domain.UserProfile{
		ID:             123,
		FirstName:      "Amina",
		Username:       "amina",
		JoinedAt:       now,
		LastActivityAt: now,
		MessageCount:   2,
		IsSubscriber:   true,
	}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(int64(123), "Amina", "", "amina", now, now, 2, true, false).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.SaveUser(user)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_SaveAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewUserRepo(db)
	users := []domain.UserProfile{{ID: 1}, {ID: 2}}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM users").WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = repo.SaveAll(users)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_SaveAll_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO users").WillReturnError(fmt.Errorf("constraint violation"))
	mock.ExpectRollback()

	err = repo.SaveAll([]domain.UserProfile{{ID: 1}})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save user 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}
