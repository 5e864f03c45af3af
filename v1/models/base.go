package models

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel contains common fields for all models
type BaseModel struct {
	CreatedAt time.Time `gorm:"column:created_at;not null;index" bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" bson:"updatedAt" json:"updatedAt"`
}

// Touch stamps the model for a fresh insert. Stores that bypass GORM hooks call it directly.
func (b *BaseModel) Touch(now time.Time) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// BeforeCreate GORM hook for BaseModel
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	b.Touch(time.Now().UTC())
	return nil
}

// BeforeUpdate GORM hook for BaseModel
func (b *BaseModel) BeforeUpdate(tx *gorm.DB) error {
	b.UpdatedAt = time.Now().UTC()
	return nil
}
