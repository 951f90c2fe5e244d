// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"makerboards/internal/config"
	"makerboards/internal/database"
	"makerboards/internal/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewSQLiteDB returns a migrated in-memory database closed at the end of the test.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Connect(&config.Config{Env: "test", DBDriver: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// CreateUser inserts an account with a real bcrypt hash of password.
func CreateUser(t testing.TB, db *gorm.DB, username, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{Username: username, Email: email, Password: string(hash)}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateBoard inserts a board.
func CreateBoard(t testing.TB, db *gorm.DB, name, description string) *models.Board {
	t.Helper()
	board := &models.Board{Name: name, Description: description}
	require.NoError(t, db.Omit("Topics").Create(board).Error)
	return board
}
