package database

import "makerboards/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters: referenced tables come first.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Board{},
		&models.Topic{},
		&models.Post{},
	}
}
