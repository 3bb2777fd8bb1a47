package domain

import "time"

// BoardRecord is the persisted form of a board.
// In-flight generation bookkeeping is never persisted.
type BoardRecord struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic,omitempty"`
	Document  *Document `json:"document"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBoardRecord wraps a fresh document for persistence.
func NewBoardRecord(id, topic string, doc *Document) *BoardRecord {
	now := time.Now()
	return &BoardRecord{
		ID:        id,
		Topic:     topic,
		Document:  doc,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of the record.
func (r *BoardRecord) Clone() *BoardRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Document = r.Document.Clone()
	return &c
}
