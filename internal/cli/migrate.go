package cli

import (
	"fmt"

	"makerboards/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newMigrateCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Applies the database schema",
		Long:  "Applies the database schema. Production never migrates on startup, so run this after each deploy.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(open, func(db *gorm.DB) error {
				if err := database.Migrate(cmd.Context(), db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
				return nil
			})
		},
	}
}
