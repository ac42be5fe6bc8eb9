package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"media-catalog/feature/catalog/models"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for progress commands
	completed    bool
	progressUser uint
	progressBook uint
	clearAll     bool
	yesClear     bool
)

// progressCmd is the parent command for reading progress.
var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Record and inspect reading progress",
}

var progressSaveCmd = &cobra.Command{
	Use:   "save <book-id> <user-id> <page>",
	Short: "Record the page a user reached in a book",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		bookID, err := parseID("book", args[0])
		if err != nil {
			return err
		}
		userID, err := parseID("user", args[1])
		if err != nil {
			return err
		}
		page, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid page %q", args[2])
		}

		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.requireSchema(); err != nil {
			return err
		}

		p, err := a.tracker().Save(context.Background(), models.ReadProgress{
			BookID:    bookID,
			UserID:    userID,
			Page:      page,
			Completed: completed,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved page %d of book %d for user %d\n", p.Page, p.BookID, p.UserID)
		return nil
	},
}

var progressListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reading progress of a user or a book",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (progressUser == 0) == (progressBook == 0) {
			return errors.New("specify exactly one of --user or --book")
		}

		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.requireSchema(); err != nil {
			return err
		}

		ctx := context.Background()
		var rows []models.ReadProgress
		if progressUser != 0 {
			rows, err = a.tracker().FindByUserID(ctx, progressUser)
		} else {
			rows, err = a.tracker().FindByBookID(ctx, progressBook)
		}
		if err != nil {
			return err
		}

		table := make([][]string, 0, len(rows))
		for _, p := range rows {
			table = append(table, []string{
				strconv.FormatUint(uint64(p.BookID), 10),
				strconv.FormatUint(uint64(p.UserID), 10),
				strconv.Itoa(p.Page),
				strconv.FormatBool(p.Completed),
				humanize.Time(p.LastModifiedDate),
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"Book", "User", "Page", "Completed", "Updated"},
			table,
			[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft},
		))
		return nil
	},
}

var progressClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear reading progress",
	Long: `Clears reading progress. Combine --user and --book to clear a single record,
use one of them to clear every record of a user or book, or --all to clear everything.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearAll && progressUser == 0 && progressBook == 0 {
			return errors.New("specify --user, --book or --all")
		}

		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.requireSchema(); err != nil {
			return err
		}

		ctx := context.Background()
		tracker := a.tracker()
		var removed int64
		switch {
		case clearAll:
			if !confirmDestructiveAction(cmd.OutOrStdout(), cmd.InOrStdin(), yesClear) {
				a.log.Warn("Operation cancelled by user. No changes were made.")
				return nil
			}
			removed, err = tracker.DeleteAll(ctx)
		case progressUser != 0 && progressBook != 0:
			err = tracker.Delete(ctx, progressBook, progressUser)
			if err == nil {
				removed = 1
			}
		case progressUser != 0:
			removed, err = tracker.DeleteByUserID(ctx, progressUser)
		default:
			removed, err = tracker.DeleteByBookIDs(ctx, []uint{progressBook})
		}
		if err != nil {
			return err
		}

		a.log.Info("Cleared reading progress", zap.Int64("records", removed))
		return nil
	},
}

func init() {
	progressSaveCmd.Flags().BoolVar(&completed, "completed", false, "Mark the book as completed")
	progressListCmd.Flags().UintVar(&progressUser, "user", 0, "User ID")
	progressListCmd.Flags().UintVar(&progressBook, "book", 0, "Book ID")
	progressClearCmd.Flags().UintVar(&progressUser, "user", 0, "User ID")
	progressClearCmd.Flags().UintVar(&progressBook, "book", 0, "Book ID")
	progressClearCmd.Flags().BoolVar(&clearAll, "all", false, "Clear every record")
	progressClearCmd.Flags().BoolVar(&yesClear, "yes", false, "Auto-confirm --all (non-interactive)")

	progressCmd.AddCommand(progressSaveCmd, progressListCmd, progressClearCmd)
	RootCmd.AddCommand(progressCmd)
}
