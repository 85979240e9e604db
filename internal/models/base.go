package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// BaseModel defines the common fields for all models.
// IDs are 24-char hex object ids generated by the application; their
// leading timestamp bytes make them sort in creation order.
type BaseModel struct {
	ID        string    `gorm:"type:char(24);primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"timestamp"`
}

// NewID returns a fresh object id in hex form.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether id is a well-formed 24-char object id.
func IsValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

// EnsureIdentity assigns an id and creation time if they are still zero.
func (b *BaseModel) EnsureIdentity() {
	if b.ID == "" {
		b.ID = NewID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
}

// BeforeCreate is the GORM hook that fills in the identity before insert.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	b.EnsureIdentity()
	return nil
}
