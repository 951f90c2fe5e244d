package repository

import (
	"context"

	"makerboards/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TopicRepository defines persistence operations for topics and their posts.
type TopicRepository interface {
	ListByBoard(ctx context.Context, boardID uint) ([]models.Topic, error)
	CreateWithOpeningPost(ctx context.Context, topic *models.Topic, message string) (*models.Post, error)
}

type topicRepository struct {
	db *gorm.DB
}

// NewTopicRepository returns a new TopicRepository implementation.
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

// ListByBoard returns the board's topics newest first, with starter and reply count.
func (r *topicRepository) ListByBoard(ctx context.Context, boardID uint) ([]models.Topic, error) {
	var topics []models.Topic
	err := r.db.WithContext(ctx).
		Model(&models.Topic{}).
		Select(`topics.*,
			(SELECT COUNT(*) FROM posts WHERE posts.topic_id = topics.id) - 1 AS replies_count`).
		Where("topics.board_id = ?", boardID).
		Preload("Starter").
		Order("topics.created_at DESC, topics.id DESC").
		Find(&topics).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return topics, nil
}

// CreateWithOpeningPost inserts topic and its first post in one transaction.
// topic.BoardID and topic.StarterID must be set; the post is attributed to the starter.
func (r *topicRepository) CreateWithOpeningPost(ctx context.Context, topic *models.Topic, message string) (*models.Post, error) {
	post := &models.Post{Message: message, CreatedByID: topic.StarterID}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(topic).Error; err != nil {
			return err
		}
		post.TopicID = topic.ID
		return tx.Omit(clause.Associations).Create(post).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return post, nil
}
