package jsonfile

import (
	"sync"

	"coursebot/internal/domain"
)

type broadcastDocument struct {
	Broadcasts      []domain.BroadcastRecord `json:"broadcasts"`
	LastBroadcastID int64                    `json:"lastBroadcastId"`
}

// BroadcastRepo implements repository.BroadcastRepository over a single JSON document
type BroadcastRepo struct {
	path string
	doc  broadcastDocument
	mu   sync.Mutex
}

// NewBroadcastRepo creates a broadcast repository stored at path
func NewBroadcastRepo(path string) *BroadcastRepo {
	return &BroadcastRepo{
		path: path,
		doc:  broadcastDocument{Broadcasts: []domain.BroadcastRecord{}},
	}
}

// LoadBroadcasts reads the document
func (r *BroadcastRepo) LoadBroadcasts() ([]domain.BroadcastRecord, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := broadcastDocument{}
	if _, err := ReadJSON(r.path, &doc); err != nil {
		return nil, 0, err
	}
	if doc.Broadcasts == nil {
		doc.Broadcasts = []domain.BroadcastRecord{}
	}
	for _, rec := range doc.Broadcasts {
		if rec.ID > doc.LastBroadcastID {
			doc.LastBroadcastID = rec.ID
		}
	}
	r.doc = doc

	records := make([]domain.BroadcastRecord, len(doc.Broadcasts))
	copy(records, doc.Broadcasts)
	return records, doc.LastBroadcastID, nil
}

// SaveBroadcast upserts the record by ID and rewrites the document
func (r *BroadcastRepo) SaveBroadcast(record *domain.BroadcastRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	replaced := false
	for i := range r.doc.Broadcasts {
		if r.doc.Broadcasts[i].ID == record.ID {
			r.doc.Broadcasts[i] = *record
			replaced = true
			break
		}
	}
	if !replaced {
		r.doc.Broadcasts = append(r.doc.Broadcasts, *record)
	}
	if record.ID > r.doc.LastBroadcastID {
		r.doc.LastBroadcastID = record.ID
	}

	return WriteJSON(r.path, r.doc)
}
