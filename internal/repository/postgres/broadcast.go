package postgres

import (
	"database/sql"

	"coursebot/internal/domain"
)

// BroadcastRepo implements repository.BroadcastRepository
type BroadcastRepo struct {
	db *sql.DB
}

// NewBroadcastRepo creates a new broadcast repository
func NewBroadcastRepo(db *sql.DB) *BroadcastRepo {
	return &BroadcastRepo{db: db}
}

// LoadBroadcasts returns every record ordered by ID and the highest ID
func (r *BroadcastRepo) LoadBroadcasts() ([]domain.BroadcastRecord, int64, error) {
	query := `
		SELECT id, message, media_type, media_file_id, media_caption, admin_id,
			target_type, priority, created_at, status, target_count, sent_count,
			failed_count, blocked_count, completed_at
		FROM broadcasts
		ORDER BY id
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		records []domain.BroadcastRecord
		lastID  int64
	)
	for rows.Next() {
		var (
			rec          domain.BroadcastRecord
			mediaType    sql.NullString
			mediaFileID  sql.NullString
			mediaCaption sql.NullString
			completedAt  sql.NullTime
		)
		if err := rows.Scan(
			&rec.ID, &rec.Message, &mediaType, &mediaFileID, &mediaCaption, &rec.AdminID,
			&rec.TargetType, &rec.Priority, &rec.CreatedAt, &rec.Status, &rec.TargetCount,
			&rec.SentCount, &rec.FailedCount, &rec.BlockedCount, &completedAt,
		); err != nil {
			return nil, 0, err
		}

		if mediaType.Valid && mediaFileID.Valid {
			rec.Media = &domain.Media{
				Type:    domain.MediaType(mediaType.String),
				FileID:  mediaFileID.String,
				Caption: mediaCaption.String,
			}
		}
		if completedAt.Valid {
			rec.CompletedAt = &completedAt.Time
		}
		if rec.ID > lastID {
			lastID = rec.ID
		}
		records = append(records, rec)
	}

	return records, lastID, rows.Err()
}

// SaveBroadcast upserts a record by ID
func (r *BroadcastRepo) SaveBroadcast(rec *domain.BroadcastRecord) error {
	query := `
		INSERT INTO broadcasts (
			id, message, media_type, media_file_id, media_caption, admin_id,
			target_type, priority, created_at, status, target_count, sent_count,
			failed_count, blocked_count, completed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id)
		DO UPDATE SET
			status = EXCLUDED.status,
			target_count = EXCLUDED.target_count,
			sent_count = EXCLUDED.sent_count,
			failed_count = EXCLUDED.failed_count,
			blocked_count = EXCLUDED.blocked_count,
			completed_at = EXCLUDED.completed_at
	`

	var mediaType, mediaFileID, mediaCaption sql.NullString
	if rec.Media != nil {
		mediaType = sql.NullString{String: string(rec.Media.Type), Valid: true}
		mediaFileID = sql.NullString{String: rec.Media.FileID, Valid: true}
		mediaCaption = sql.NullString{String: rec.Media.Caption, Valid: rec.Media.Caption != ""}
	}

	var completedAt sql.NullTime
	if rec.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *rec.CompletedAt, Valid: true}
	}

	_, err := r.db.Exec(query,
		rec.ID, rec.Message, mediaType, mediaFileID, mediaCaption, rec.AdminID,
		string(rec.TargetType), string(rec.Priority), rec.CreatedAt, string(rec.Status),
		rec.TargetCount, rec.SentCount, rec.FailedCount, rec.BlockedCount, completedAt,
	)
	return err
}
