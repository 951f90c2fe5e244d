package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"makerboards/internal/models"
	"makerboards/internal/repository"
	"makerboards/internal/service"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newBoardCommand(open opener) *cobra.Command {
	boardCommand := &cobra.Command{
		Use:   "board",
		Short: "Commands for managing boards",
	}

	boardCommand.AddCommand(newBoardCreateCommand(open))
	boardCommand.AddCommand(newBoardListCommand(open))
	return boardCommand
}

func boardService(db *gorm.DB) *service.BoardService {
	return service.NewBoardService(
		repository.NewBoardRepository(db),
		repository.NewTopicRepository(db),
		repository.NewUserRepository(db),
	)
}

func newBoardCreateCommand(open opener) *cobra.Command {
	var name, description string

	createCommand := &cobra.Command{
		Use:   "create",
		Short: "Creates a board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(open, func(db *gorm.DB) error {
				board, err := boardService(db).CreateBoard(cmd.Context(), name, description)
				if err != nil {
					var appErr *models.AppError
					if errors.As(err, &appErr) && appErr.Code == models.CodeValidation {
						return fmt.Errorf("%s: %s", appErr.Field, appErr.Message)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created board %d: %s\n", board.ID, board.Name)
				return nil
			})
		},
	}

	createCommand.Flags().StringVar(&name, "name", "", "Board name (unique, at most 30 characters)")
	createCommand.Flags().StringVar(&description, "description", "", "Short description (at most 100 characters)")
	_ = createCommand.MarkFlagRequired("name")
	return createCommand
}

func newBoardListCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists boards with their topic and post counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(open, func(db *gorm.DB) error {
				boards, err := boardService(db).ListBoards(cmd.Context())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tTOPICS\tPOSTS\tDESCRIPTION")
				for _, b := range boards {
					fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n", b.ID, b.Name, b.TopicsCount, b.PostsCount, b.Description)
				}
				return w.Flush()
			})
		},
	}
}
