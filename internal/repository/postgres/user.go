package postgres

import (
	"database/sql"
	"fmt"

	"coursebot/internal/domain"
)

const upsertUserQuery = `
	INSERT INTO users (
		user_id, first_name, last_name, username, joined_at,
		last_activity_at, message_count, is_subscriber, is_blocked
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (user_id)
	DO UPDATE SET
		first_name = EXCLUDED.first_name,
		last_name = EXCLUDED.last_name,
		username = EXCLUDED.username,
		last_activity_at = EXCLUDED.last_activity_at,
		message_count = EXCLUDED.message_count,
		is_subscriber = EXCLUDED.is_subscriber,
		is_blocked = EXCLUDED.is_blocked
`

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// LoadUsers returns every stored profile
func (r *UserRepo) LoadUsers() ([]domain.UserProfile, error) {
	query := `
		SELECT user_id, first_name, last_name, username, joined_at,
			last_activity_at, message_count, is_subscriber, is_blocked
		FROM users
		ORDER BY user_id
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.UserProfile
	for rows.Next() {
		var u domain.UserProfile
		if err := rows.Scan(
			&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.JoinedAt,
			&u.LastActivityAt, &u.MessageCount, &u.IsSubscriber, &u.IsBlocked,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// SaveUser upserts a profile
func (r *UserRepo) SaveUser(u *domain.UserProfile) error {
	_, err := r.db.Exec(upsertUserQuery,
		u.ID, u.FirstName, u.LastName, u.Username, u.JoinedAt,
		u.LastActivityAt, u.MessageCount, u.IsSubscriber, u.IsBlocked,
	)
	return err
}

// SaveAll replaces the whole table in one transaction
func (r *UserRepo) SaveAll(users []domain.UserProfile) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM users`); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear users: %w", err)
	}

	for _, u := range users {
		if _, err := tx.Exec(upsertUserQuery,
			u.ID, u.FirstName, u.LastName, u.Username, u.JoinedAt,
			u.LastActivityAt, u.MessageCount, u.IsSubscriber, u.IsBlocked,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to save user %d: %w", u.ID, err)
		}
	}

	return tx.Commit()
}
