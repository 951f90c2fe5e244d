package server

import (
	"fmt"

	"makerboards/internal/forms"
	"makerboards/internal/middleware"
	"makerboards/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Home lists every board with its topic and post counts.
func (s *Server) Home(c *fiber.Ctx) error {
	boards, err := s.boardService.ListBoards(c.UserContext())
	if err != nil {
		return err
	}
	return s.render(c, "home", fiber.Map{"boards": boards})
}

// BoardTopics lists a board's topics, newest first.
func (s *Server) BoardTopics(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return err
	}

	board, topics, err := s.boardService.BoardTopics(c.UserContext(), id)
	if err != nil {
		return err
	}
	return s.render(c, "boards/topics", fiber.Map{
		"title":  board.Name,
		"board":  board,
		"topics": topics,
	})
}

// NewTopic shows and handles the form that opens a topic on a board.
func (s *Server) NewTopic(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	// An unknown board is a 404 before any form handling
	board, err := s.boardService.GetBoard(ctx, id)
	if err != nil {
		return err
	}

	form := forms.NewNewTopicForm()
	data := fiber.Map{"title": "New topic", "board": board, "form": form}

	if c.Method() != fiber.MethodPost {
		return s.render(c, "boards/new_topic", data)
	}

	if err := form.Bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Malformed form submission.")
	}
	if !form.Validate() {
		return s.render(c, "boards/new_topic", data)
	}

	_, err = s.boardService.StartTopic(ctx, service.StartTopicInput{
		BoardID: board.ID,
		Subject: form.Data.Subject,
		Message: form.Data.Message,
		Author:  middleware.CurrentUser(c),
	})
	if err != nil {
		if form.ApplyError(err) {
			return s.render(c, "boards/new_topic", data)
		}
		return err
	}

	return c.Redirect(fmt.Sprintf("/boards/%d/", board.ID), fiber.StatusFound)
}
