package models

import "time"

// Board is a named discussion category. Boards are only created administratively.
type Board struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:30;uniqueIndex;not null" json:"name"`
	Description string  `gorm:"size:100" json:"description"`
	Topics      []Topic `gorm:"foreignKey:BoardID" json:"topics,omitempty"`
	// TopicsCount is not persisted; computed at query time
	TopicsCount int `gorm:"->;-:migration" json:"topics_count"`
	// PostsCount is not persisted; computed at query time
	PostsCount int       `gorm:"->;-:migration" json:"posts_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
