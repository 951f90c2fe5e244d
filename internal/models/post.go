package models

import "time"

// Post is a message within a Topic.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	TopicID     uint      `gorm:"not null;index" json:"topic_id"`
	Topic       *Topic    `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
	CreatedByID uint      `gorm:"not null;index" json:"created_by_id"`
	CreatedBy   User      `gorm:"foreignKey:CreatedByID" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
