package cli

import (
	"fmt"
	"time"

	"makerboards/internal/seed"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newSeedCommand(open opener) *cobra.Command {
	var (
		opts     seed.Options
		seedSeed int64
	)

	seedCommand := &cobra.Command{
		Use:   "seed",
		Short: "Fills the database with demo boards, accounts and topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if seedSeed == 0 {
				seedSeed = time.Now().UnixNano()
			}
			return withDB(open, func(db *gorm.DB) error {
				sum, err := seed.NewSeeder(db, seedSeed).Run(cmd.Context(), opts)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Created %d boards, %d users, %d topics and %d replies\n", sum.Boards, sum.Users, sum.Topics, sum.Replies)
				if sum.Users > 0 {
					password := opts.Password
					if password == "" {
						password = seed.DefaultPassword
					}
					fmt.Fprintf(out, "All seeded accounts use the password %q\n", password)
				}
				return nil
			})
		},
	}

	flags := seedCommand.Flags()
	flags.IntVar(&opts.NumUsers, "users", 10, "Number of accounts to create")
	flags.IntVar(&opts.NumTopics, "topics", 30, "Number of topics to create")
	flags.IntVar(&opts.MaxReplies, "max-replies", 5, "Maximum replies per topic")
	flags.StringVar(&opts.Password, "password", "", "Password for seeded accounts")
	flags.Int64Var(&seedSeed, "seed", 0, "Random seed for reproducible data (default: time based)")
	return seedCommand
}
