package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringArray stores a []string as a JSON text column so the tags list
// survives the round trip through the database unchanged.
type StringArray []string

func (sa StringArray) Value() (driver.Value, error) {
	if len(sa) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(sa)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (sa *StringArray) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, sa)
	case string:
		return json.Unmarshal([]byte(v), sa)
	case nil:
		*sa = nil
		return nil
	default:
		return fmt.Errorf("unsupported StringArray source type %T", value)
	}
}

type Post struct {
	ID        string      `gorm:"primaryKey;type:char(36)" json:"id"`
	Title     string      `gorm:"not null;size:255" json:"title"`
	Tags      StringArray `gorm:"not null;type:text" json:"tags"`
	Date      string      `gorm:"not null;type:date" json:"date"`
	LikeCount int         `gorm:"not null;default:0" json:"like_count"`
	CreatedAt time.Time   `json:"created_at"`

	UserID string `gorm:"not null;type:char(36);index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Likes  []Like `gorm:"foreignKey:PostID" json:"likes,omitempty"`
}

func (Post) TableName() string {
	return "posts"
}
