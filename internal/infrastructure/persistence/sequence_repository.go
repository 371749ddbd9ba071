package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const nextSequenceSQL = `INSERT INTO document_sequences (owner_id, prefix, year, last_value)
VALUES (?, ?, ?, 1)
ON CONFLICT (owner_id, prefix, year)
DO UPDATE SET last_value = document_sequences.last_value + 1
RETURNING last_value`

// GormNumberSequence issues document numbers from the document_sequences
// table with a single atomic upsert, so numbers survive restarts.
type GormNumberSequence struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormNumberSequence creates a database-backed number sequence
func NewGormNumberSequence(db *gorm.DB) *GormNumberSequence {
	return &GormNumberSequence{db: db, now: time.Now}
}

// Next implements shared.NumberSequence
func (s *GormNumberSequence) Next(ctx context.Context, ownerID uuid.UUID, prefix string) (string, error) {
	year := s.now().Year()
	var n int64
	if err := s.db.WithContext(ctx).Raw(nextSequenceSQL, ownerID, prefix, year).Scan(&n).Error; err != nil {
		return "", fmt.Errorf("next %s number: %w", prefix, err)
	}
	return shared.FormatNumber(prefix, year, n), nil
}

var _ shared.NumberSequence = (*GormNumberSequence)(nil)
