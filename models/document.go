package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is implemented by every persisted resource.
type Document interface {
	GetID() string
}

// Base holds the identity, soft-delete marker and timestamps shared by all
// resources.
type Base struct {
	ID        string    `json:"id" gorm:"primarykey;type:varchar(36)"`
	Status    string    `json:"status" gorm:"type:varchar(16);not null;default:'active';index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b Base) GetID() string {
	return b.ID
}

func (b *Base) ensureDefaults() {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = StatusActive
	}
}
