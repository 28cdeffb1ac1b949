package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           string    `gorm:"primaryKey;type:char(36)" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null;size:32" json:"username"`
	PasswordHash string    `gorm:"not null;type:char(64)" json:"-"`
	Salt         string    `gorm:"not null;type:char(64)" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Posts []Post `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// NewID returns a time-sortable UUIDv7 string used as the primary key
// for every record in the system.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
