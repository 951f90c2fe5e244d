package service

import (
	"context"
	"time"

	"makerboards/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ListByEmail(ctx context.Context, email string) ([]models.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.([]models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) First(ctx context.Context) (*models.User, error) {
	args := m.Called(ctx)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockBoardRepository struct {
	mock.Mock
}

func (m *MockBoardRepository) Create(ctx context.Context, board *models.Board) error {
	return m.Called(ctx, board).Error(0)
}

func (m *MockBoardRepository) GetByID(ctx context.Context, id uint) (*models.Board, error) {
	args := m.Called(ctx, id)
	if b := args.Get(0); b != nil {
		return b.(*models.Board), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBoardRepository) GetByName(ctx context.Context, name string) (*models.Board, error) {
	args := m.Called(ctx, name)
	if b := args.Get(0); b != nil {
		return b.(*models.Board), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBoardRepository) ListWithStats(ctx context.Context) ([]models.Board, error) {
	args := m.Called(ctx)
	if b := args.Get(0); b != nil {
		return b.([]models.Board), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockTopicRepository struct {
	mock.Mock
}

func (m *MockTopicRepository) ListByBoard(ctx context.Context, boardID uint) ([]models.Topic, error) {
	args := m.Called(ctx, boardID)
	if t := args.Get(0); t != nil {
		return t.([]models.Topic), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTopicRepository) CreateWithOpeningPost(ctx context.Context, topic *models.Topic, message string) (*models.Post, error) {
	args := m.Called(ctx, topic, message)
	if p := args.Get(0); p != nil {
		return p.(*models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}
