package cmd

import (
	"context"
	"fmt"
	"strconv"

	"media-catalog/core/identity"
	"media-catalog/feature/catalog/models"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for library add
	noComicInfo bool
	noEpub      bool
	// Flags for library remove
	yesRemove bool
)

// libraryCmd is the parent command for library management.
var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage libraries",
}

var libraryAddCmd = &cobra.Command{
	Use:   "add <name> <root>",
	Short: "Register a library root",
	Long: `Registers a library. The root is either a local directory or an
s3://bucket/prefix URL.

Examples:
  library add Comics /srv/comics
  library add Manga s3://media/manga --no-epub`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := identity.ParseRoot(args[1])
		if err != nil {
			return err
		}

		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.requireSchema(); err != nil {
			return err
		}

		lib := models.NewLibrary(args[0], root)
		if noComicInfo {
			lib.ImportComicInfoBook = false
			lib.ImportComicInfoSeries = false
			lib.ImportComicInfoCollection = false
		}
		if noEpub {
			lib.ImportEpubBook = false
			lib.ImportEpubSeries = false
		}

		lib, err = a.store.Libraries().Insert(context.Background(), lib)
		if err != nil {
			return err
		}
		a.log.Info("Library added", zap.Uint("id", lib.ID), zap.String("root", lib.Root.String()))
		fmt.Fprintf(cmd.OutOrStdout(), "Added library %d (%s)\n", lib.ID, lib.Root)
		return nil
	},
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List libraries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.requireSchema(); err != nil {
			return err
		}

		libs, err := a.store.Libraries().List(ctx)
		if err != nil {
			return err
		}
		if len(libs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No libraries registered")
			return nil
		}
		stats, err := a.store.Libraries().Stats(ctx)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(libs))
		for _, lib := range libs {
			s := stats[lib.ID]
			rows = append(rows, []string{
				strconv.FormatUint(uint64(lib.ID), 10),
				lib.Name,
				lib.Root.String(),
				humanize.Comma(s.Series),
				humanize.Comma(s.Books),
				humanize.Bytes(uint64(s.Bytes)),
				humanize.Time(lib.LastModifiedDate),
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"ID", "Name", "Root", "Series", "Books", "Size", "Modified"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
		))
		return nil
	},
}

var libraryRemoveCmd = &cobra.Command{
	Use:   "remove <library-id>",
	Short: "Remove a library with its series, books and read progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("library", args[0])
		if err != nil {
			return err
		}

		ctx := context.Background()
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.requireSchema(); err != nil {
			return err
		}

		lib, err := a.store.Libraries().FindByID(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Library %d (%s) and everything in it will be removed.\n", lib.ID, lib.Root)
		if !confirmDestructiveAction(cmd.OutOrStdout(), cmd.InOrStdin(), yesRemove) {
			a.log.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}

		if err := a.store.Libraries().Delete(ctx, id); err != nil {
			return err
		}
		a.log.Info("Library removed", zap.Uint("id", id))
		return nil
	},
}

func init() {
	libraryAddCmd.Flags().BoolVar(&noComicInfo, "no-comicinfo", false, "Ignore ComicInfo metadata embedded in comic archives")
	libraryAddCmd.Flags().BoolVar(&noEpub, "no-epub", false, "Ignore metadata embedded in epub files")
	libraryRemoveCmd.Flags().BoolVar(&yesRemove, "yes", false, "Auto-confirm removal (non-interactive)")

	libraryCmd.AddCommand(libraryAddCmd, libraryListCmd, libraryRemoveCmd)
	RootCmd.AddCommand(libraryCmd)
}
