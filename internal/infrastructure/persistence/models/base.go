package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel provides common persistence fields for all models
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns an id to new rows
func (m *BaseModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// NamedModel adds the display name and archive flag most rows carry.
// Archived rows stay visible to consistency checks.
type NamedModel struct {
	BaseModel
	Name   string `gorm:"type:varchar(200);not null"`
	Active bool   `gorm:"not null"`
}

// ref converts an optional id column into a pointer for row construction
func ref(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
