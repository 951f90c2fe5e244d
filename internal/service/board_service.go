package service

import (
	"context"
	"strconv"

	"makerboards/internal/middleware"
	"makerboards/internal/models"
	"makerboards/internal/observability"
	"makerboards/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const NoAccountMessage = "A topic needs an author, but no account exists yet. Sign up first."

// BoardService lists boards and topics and opens new topics.
type BoardService struct {
	boards repository.BoardRepository
	topics repository.TopicRepository
	users  repository.UserRepository
}

func NewBoardService(boards repository.BoardRepository, topics repository.TopicRepository, users repository.UserRepository) *BoardService {
	return &BoardService{boards: boards, topics: topics, users: users}
}

func (s *BoardService) ListBoards(ctx context.Context) ([]models.Board, error) {
	return s.boards.ListWithStats(ctx)
}

func (s *BoardService) GetBoard(ctx context.Context, id uint) (*models.Board, error) {
	return s.boards.GetByID(ctx, id)
}

// BoardTopics returns the board and its topics, newest first.
func (s *BoardService) BoardTopics(ctx context.Context, boardID uint) (*models.Board, []models.Topic, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, nil, err
	}
	topics, err := s.topics.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, nil, err
	}
	return board, topics, nil
}

type StartTopicInput struct {
	BoardID uint
	Subject string
	Message string
	// Author is the signed-in account; nil falls back to the first account.
	Author *models.User
}

// StartTopic creates a topic and its opening post on an existing board.
func (s *BoardService) StartTopic(ctx context.Context, in StartTopicInput) (topic *models.Topic, err error) {
	ctx, end := observability.StartSpan(ctx, "BoardService.StartTopic",
		attribute.Int("board.id", int(in.BoardID)))
	defer func() { end(err) }()

	board, err := s.boards.GetByID(ctx, in.BoardID)
	if err != nil {
		return nil, err
	}

	author := in.Author
	if author == nil {
		author, err = s.users.First(ctx)
		if err != nil {
			return nil, err
		}
		if author == nil {
			return nil, models.NewValidationError(NoAccountMessage)
		}
	}

	topic = &models.Topic{Subject: in.Subject, BoardID: board.ID, StarterID: author.ID}
	if _, err := s.topics.CreateWithOpeningPost(ctx, topic, in.Message); err != nil {
		return nil, err
	}

	observability.TopicsCreatedTotal.WithLabelValues(strconv.FormatUint(uint64(board.ID), 10)).Inc()
	middleware.Logger.InfoContext(ctx, "topic created", "board_id", board.ID, "topic_id", topic.ID, "starter_id", author.ID)
	return topic, nil
}

// CreateBoard adds a board. It is only reachable from the admin CLI.
func (s *BoardService) CreateBoard(ctx context.Context, name, description string) (*models.Board, error) {
	if name == "" {
		return nil, models.NewFieldError("name", "This field is required.")
	}
	if len([]rune(name)) > 30 {
		return nil, models.NewFieldError("name", "Ensure this value has at most 30 characters.")
	}
	if len([]rune(description)) > 100 {
		return nil, models.NewFieldError("description", "Ensure this value has at most 100 characters.")
	}

	board := &models.Board{Name: name, Description: description}
	if err := s.boards.Create(ctx, board); err != nil {
		return nil, err
	}
	return board, nil
}
