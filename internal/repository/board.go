package repository

import (
	"context"
	"errors"

	"makerboards/internal/models"

	"gorm.io/gorm"
)

const DuplicateBoardMessage = "Board with this Name already exists."

// BoardRepository defines persistence operations for boards.
type BoardRepository interface {
	Create(ctx context.Context, board *models.Board) error
	GetByID(ctx context.Context, id uint) (*models.Board, error)
	GetByName(ctx context.Context, name string) (*models.Board, error)
	ListWithStats(ctx context.Context) ([]models.Board, error)
}

type boardRepository struct {
	db *gorm.DB
}

// NewBoardRepository returns a new BoardRepository implementation.
func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &boardRepository{db: db}
}

func (r *boardRepository) Create(ctx context.Context, board *models.Board) error {
	if err := r.db.WithContext(ctx).Omit("Topics").Create(board).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewFieldError("name", DuplicateBoardMessage)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *boardRepository) GetByID(ctx context.Context, id uint) (*models.Board, error) {
	var board models.Board
	if err := r.db.WithContext(ctx).First(&board, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Board", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &board, nil
}

func (r *boardRepository) GetByName(ctx context.Context, name string) (*models.Board, error) {
	var board models.Board
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Board", name)
		}
		return nil, models.NewInternalError(err)
	}
	return &board, nil
}

// ListWithStats returns every board in id order with its topic and post counts filled in.
func (r *boardRepository) ListWithStats(ctx context.Context) ([]models.Board, error) {
	var boards []models.Board
	err := r.db.WithContext(ctx).
		Model(&models.Board{}).
		Select(`boards.*,
			(SELECT COUNT(*) FROM topics WHERE topics.board_id = boards.id) AS topics_count,
			(SELECT COUNT(*) FROM posts JOIN topics ON topics.id = posts.topic_id WHERE topics.board_id = boards.id) AS posts_count`).
		Order("boards.id ASC").
		Find(&boards).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return boards, nil
}
