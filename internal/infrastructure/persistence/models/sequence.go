package models

import (
	"github.com/google/uuid"
)

// DocumentSequenceModel stores the last number issued per (owner, prefix, year)
type DocumentSequenceModel struct {
	OwnerID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Prefix    string    `gorm:"type:varchar(10);primaryKey"`
	Year      int       `gorm:"primaryKey"`
	LastValue int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (DocumentSequenceModel) TableName() string {
	return "document_sequences"
}
