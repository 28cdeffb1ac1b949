package models

import "time"

// Like records an anonymous reaction keyed by a browser fingerprint.
// The composite unique index keeps one like per fingerprint per post.
type Like struct {
	ID          string    `gorm:"primaryKey;type:char(36)" json:"id"`
	PostID      string    `gorm:"not null;type:char(36);uniqueIndex:idx_post_fingerprint" json:"post_id"`
	Fingerprint string    `gorm:"not null;size:255;uniqueIndex:idx_post_fingerprint" json:"fingerprint"`
	IPAddress   string    `gorm:"not null;size:45" json:"ip_address"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Like) TableName() string {
	return "likes"
}
