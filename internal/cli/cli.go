// Package cli implements boardsctl, the administrative command line for Maker Boards.
package cli

import (
	"fmt"
	"os"

	"makerboards/internal/config"
	"makerboards/internal/database"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

// opener connects to the database the command should act on and returns how to release it.
type opener func() (*gorm.DB, func(), error)

// NewCommand returns the boardsctl root command wired to the configured database.
func NewCommand() *cobra.Command {
	return newRootCommand(openConfigured)
}

func newRootCommand(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "boardsctl",
		Short:         "Maker Boards administration",
		Long:          "Administrative commands for Maker Boards: manage boards, migrate the schema and seed demo data.",
		Example:       fmt.Sprintf("  %s board create --name Electronics --description \"Circuits and soldering\"", os.Args[0]),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("env", "", "Configuration profile (APP_ENV)")
	_ = viper.BindPFlag("APP_ENV", root.PersistentFlags().Lookup("env"))

	root.AddCommand(newBoardCommand(open))
	root.AddCommand(newMigrateCommand(open))
	root.AddCommand(newSeedCommand(open))
	return root
}

func openConfigured() (*gorm.DB, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = database.Close(db) }, nil
}

// withDB runs fn against the opened database and releases it afterwards.
func withDB(open opener, fn func(db *gorm.DB) error) error {
	db, release, err := open()
	if err != nil {
		return err
	}
	defer release()
	return fn(db)
}
