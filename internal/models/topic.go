package models

import "time"

// Topic is a thread within a Board. It is always created together with its opening Post.
type Topic struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Subject   string `gorm:"size:255;not null" json:"subject"`
	BoardID   uint   `gorm:"not null;index" json:"board_id"`
	Board     *Board `gorm:"foreignKey:BoardID" json:"board,omitempty"`
	StarterID uint   `gorm:"not null;index" json:"starter_id"`
	Starter   User   `gorm:"foreignKey:StarterID" json:"starter"`
	Posts     []Post `gorm:"foreignKey:TopicID" json:"posts,omitempty"`
	// RepliesCount is not persisted; posts after the opening one, computed at query time
	RepliesCount int       `gorm:"->;-:migration" json:"replies_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
