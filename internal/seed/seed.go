// Package seed fills a development database with boards, accounts and topics.
// It is meant for local development and demos only.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"makerboards/internal/models"
	"makerboards/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is given to every seeded account unless Options.Password is set.
const DefaultPassword = "makerboards123"

// Options configuration for the seeder
type Options struct {
	NumUsers  int
	NumTopics int
	// MaxReplies caps the extra posts added to each topic.
	MaxReplies int
	Password   string
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// Summary counts what a run created.
type Summary struct {
	Boards  int
	Users   int
	Topics  int
	Replies int
}

var defaultBoards = []struct {
	Name        string
	Description string
}{
	{"General", "Anything that doesn't fit elsewhere."},
	{"Electronics", "Circuits, microcontrollers and soldering."},
	{"3D Printing", "Printers, slicers, filaments and prints."},
	{"Woodworking", "Joinery, finishing and shop tooling."},
	{"Show and Tell", "Share what you built."},
}

// Seeder creates demo data through the repositories.
type Seeder struct {
	db     *gorm.DB
	users  repository.UserRepository
	boards repository.BoardRepository
	topics repository.TopicRepository
	faker  *gofakeit.Faker
}

// NewSeeder returns a seeder whose fake data is reproducible for a given seed.
func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	return &Seeder{
		db:     db,
		users:  repository.NewUserRepository(db),
		boards: repository.NewBoardRepository(db),
		topics: repository.NewTopicRepository(db),
		faker:  gofakeit.New(seed),
	}
}

// Run seeds the default boards, opts.NumUsers accounts and opts.NumTopics topics.
func (s *Seeder) Run(ctx context.Context, opts Options) (Summary, error) {
	var sum Summary

	boards, created, err := s.EnsureBoards(ctx)
	if err != nil {
		return sum, err
	}
	sum.Boards = created

	users, err := s.SeedUsers(ctx, opts)
	if err != nil {
		return sum, err
	}
	sum.Users = len(users)

	if opts.NumTopics > 0 && len(users) == 0 {
		existing, err := s.users.First(ctx)
		if err != nil {
			return sum, err
		}
		if existing == nil {
			return sum, errors.New("cannot seed topics without accounts; pass --users")
		}
		users = []*models.User{existing}
	}

	topics, replies, err := s.SeedTopics(ctx, boards, users, opts.NumTopics, opts.MaxReplies)
	if err != nil {
		return sum, err
	}
	sum.Topics = topics
	sum.Replies = replies

	log.Printf("Seeded %d boards, %d users, %d topics, %d replies", sum.Boards, sum.Users, sum.Topics, sum.Replies)
	return sum, nil
}

// EnsureBoards creates any missing default board and returns all of them along with
// how many were new.
func (s *Seeder) EnsureBoards(ctx context.Context) ([]*models.Board, int, error) {
	out := make([]*models.Board, 0, len(defaultBoards))
	created := 0
	for _, def := range defaultBoards {
		board, err := s.boards.GetByName(ctx, def.Name)
		if err == nil {
			out = append(out, board)
			continue
		}
		if !models.IsNotFound(err) {
			return nil, created, err
		}

		board = &models.Board{Name: def.Name, Description: def.Description}
		if err := s.boards.Create(ctx, board); err != nil {
			return nil, created, fmt.Errorf("create board %q: %w", def.Name, err)
		}
		out = append(out, board)
		created++
	}
	return out, created, nil
}

// SeedUsers creates opts.NumUsers accounts sharing one password.
func (s *Seeder) SeedUsers(ctx context.Context, opts Options) ([]*models.User, error) {
	if opts.NumUsers <= 0 {
		return nil, nil
	}

	password := opts.Password
	if password == "" {
		password = DefaultPassword
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	// One hash for everyone keeps large seeds fast
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}

	offset, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user := &models.User{
			Username: s.username(int(offset) + i),
			Email:    strings.ToLower(s.faker.Email()),
			Password: string(hash),
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user %q: %w", user.Username, err)
		}
		users = append(users, user)
	}
	return users, nil
}

// username is a fake handle made unique by n, within the 150 character limit.
func (s *Seeder) username(n int) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_':
			return r
		}
		return -1
	}, s.faker.Username())
	if base == "" {
		base = "maker"
	}
	if len(base) > 140 {
		base = base[:140]
	}
	return fmt.Sprintf("%s%d", base, n+1)
}

// SeedTopics opens n topics on random boards by random authors, each followed by up
// to maxReplies replies.
func (s *Seeder) SeedTopics(ctx context.Context, boards []*models.Board, users []*models.User, n, maxReplies int) (int, int, error) {
	if n <= 0 {
		return 0, 0, nil
	}
	if len(boards) == 0 || len(users) == 0 {
		return 0, 0, errors.New("seeding topics needs at least one board and one account")
	}

	topics, replies := 0, 0
	for i := 0; i < n; i++ {
		board := boards[s.faker.IntRange(0, len(boards)-1)]
		starter := users[s.faker.IntRange(0, len(users)-1)]

		topic := &models.Topic{
			Subject:   truncate(strings.TrimSuffix(s.faker.Sentence(6), "."), 255),
			BoardID:   board.ID,
			StarterID: starter.ID,
		}
		if _, err := s.topics.CreateWithOpeningPost(ctx, topic, s.message()); err != nil {
			return topics, replies, err
		}
		topics++

		if maxReplies <= 0 {
			continue
		}
		for j := s.faker.IntRange(0, maxReplies); j > 0; j-- {
			reply := &models.Post{
				Message:     s.message(),
				TopicID:     topic.ID,
				CreatedByID: users[s.faker.IntRange(0, len(users)-1)].ID,
			}
			if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(reply).Error; err != nil {
				return topics, replies, err
			}
			replies++
		}
	}
	return topics, replies, nil
}

func (s *Seeder) message() string {
	return truncate(s.faker.Paragraph(1, 4, 12, "\n\n"), 4000)
}

func truncate(text string, limit int) string {
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit])
}
