package service

import (
	"context"
	"strings"
	"testing"

	"makerboards/internal/models"
	"makerboards/internal/repository"
	"makerboards/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBoardService_StartTopic_MissingBoard(t *testing.T) {
	boards := new(MockBoardRepository)
	topics := new(MockTopicRepository)
	users := new(MockUserRepository)
	svc := NewBoardService(boards, topics, users)

	boards.On("GetByID", mock.Anything, uint(99)).Return(nil, models.NewNotFoundError("Board", 99))

	_, err := svc.StartTopic(context.Background(), StartTopicInput{BoardID: 99, Subject: "s", Message: "m"})
	assert.True(t, models.IsNotFound(err))
	topics.AssertNotCalled(t, "CreateWithOpeningPost", mock.Anything, mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "First", mock.Anything)
}

func TestBoardService_StartTopic_NoAccounts(t *testing.T) {
	boards := new(MockBoardRepository)
	topics := new(MockTopicRepository)
	users := new(MockUserRepository)
	svc := NewBoardService(boards, topics, users)

	boards.On("GetByID", mock.Anything, uint(1)).Return(&models.Board{ID: 1, Name: "Django"}, nil)
	users.On("First", mock.Anything).Return(nil, nil)

	_, err := svc.StartTopic(context.Background(), StartTopicInput{BoardID: 1, Subject: "s", Message: "m"})
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
	topics.AssertNotCalled(t, "CreateWithOpeningPost", mock.Anything, mock.Anything, mock.Anything)
}

func TestBoardService_StartTopic_FallsBackToFirstAccount(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewBoardService(repository.NewBoardRepository(db), repository.NewTopicRepository(db), repository.NewUserRepository(db))
	ctx := context.Background()

	first := testutil.CreateUser(t, db, "john", "john@doe.com", "abcdef123456")
	testutil.CreateUser(t, db, "jane", "jane@doe.com", "abcdef123456")
	board := testutil.CreateBoard(t, db, "Django", "Django board.")

	topic, err := svc.StartTopic(ctx, StartTopicInput{BoardID: board.ID, Subject: "Test Title", Message: "Test Message"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, topic.StarterID)

	var post models.Post
	require.NoError(t, db.Where("topic_id = ?", topic.ID).First(&post).Error)
	assert.Equal(t, "Test Message", post.Message)
	assert.Equal(t, first.ID, post.CreatedByID)
}

func TestBoardService_StartTopic_UsesAuthor(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewBoardService(repository.NewBoardRepository(db), repository.NewTopicRepository(db), repository.NewUserRepository(db))

	testutil.CreateUser(t, db, "john", "john@doe.com", "abcdef123456")
	jane := testutil.CreateUser(t, db, "jane", "jane@doe.com", "abcdef123456")
	board := testutil.CreateBoard(t, db, "Django", "Django board.")

	topic, err := svc.StartTopic(context.Background(), StartTopicInput{BoardID: board.ID, Subject: "Hi", Message: "There", Author: jane})
	require.NoError(t, err)
	assert.Equal(t, jane.ID, topic.StarterID)

	gotBoard, topics, err := svc.BoardTopics(context.Background(), board.ID)
	require.NoError(t, err)
	assert.Equal(t, "Django", gotBoard.Name)
	require.Len(t, topics, 1)
	assert.Equal(t, "jane", topics[0].Starter.Username)
}

func TestBoardService_CreateBoard(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewBoardService(repository.NewBoardRepository(db), repository.NewTopicRepository(db), repository.NewUserRepository(db))
	ctx := context.Background()

	board, err := svc.CreateBoard(ctx, "Django", "This is a board about Django.")
	require.NoError(t, err)
	assert.NotZero(t, board.ID)

	_, err = svc.CreateBoard(ctx, "Django", "again")
	assert.True(t, models.IsValidation(err))

	_, err = svc.CreateBoard(ctx, strings.Repeat("x", 31), "")
	assert.True(t, models.IsValidation(err))

	_, err = svc.CreateBoard(ctx, "", "")
	assert.True(t, models.IsValidation(err))

	boards, err := svc.ListBoards(ctx)
	require.NoError(t, err)
	assert.Len(t, boards, 1)
}
