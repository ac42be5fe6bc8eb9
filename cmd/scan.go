package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"media-catalog/core/reconcile"
	"media-catalog/feature/librarysync"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for scan
	scanAll    bool
	dryRun     bool
	allowEmpty bool
)

// scanCmd runs one reconciliation pass.
var scanCmd = &cobra.Command{
	Use:   "scan [library-id]",
	Short: "Reconcile a library with its files",
	Long: `Scans a library root and brings its series and books in line with what is found.
Series and books that disappeared are deleted together with their read progress.

Examples:
  # Reconcile library 1
  scan 1

  # Show what would change without writing
  scan 1 --dry-run

  # Reconcile every library
  scan --all

  # Accept an empty scan and delete every series of the library
  scan 1 --allow-empty`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanAll, "all", false, "Reconcile every library")
	scanCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan the pass without writing anything")
	scanCmd.Flags().BoolVar(&allowEmpty, "allow-empty", false, "Delete every series when the scan finds nothing")
	RootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanAll == (len(args) == 1) {
		return errors.New("specify a library id or --all")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.requireSchema(); err != nil {
		return err
	}

	svc, err := a.syncService()
	if err != nil {
		return err
	}

	var opts []librarysync.PassOption
	if dryRun {
		opts = append(opts, librarysync.DryRun())
	}
	if allowEmpty {
		opts = append(opts, librarysync.AllowEmpty())
	}

	if scanAll {
		results, err := svc.ReconcileAll(ctx, opts...)
		for _, r := range results {
			if r != nil {
				printPassReport(a.log, cmd.OutOrStdout(), r)
			}
		}
		return err
	}

	id, err := parseID("library", args[0])
	if err != nil {
		return err
	}
	result, err := svc.Reconcile(ctx, id, opts...)
	if err != nil {
		if errors.Is(err, librarysync.ErrEmptyScan) {
			a.log.Warn("The scan found nothing. Check the library root, or rerun with --allow-empty to accept it.")
		}
		return err
	}
	printPassReport(a.log, cmd.OutOrStdout(), result)
	return nil
}

// printPassReport renders the summary table and logs a sample of the actions.
func printPassReport(l *zap.Logger, out io.Writer, r *librarysync.PassResult) {
	row := func(level string, s reconcile.Summary) []string {
		return []string{
			level,
			strconv.Itoa(s.Inserted),
			strconv.Itoa(s.Updated),
			strconv.Itoa(s.Deleted),
			strconv.Itoa(s.Unchanged),
			strconv.Itoa(s.Skipped),
			strconv.Itoa(s.Failed),
		}
	}

	title := fmt.Sprintf("Library %d, pass %s", r.LibraryID, r.PassID)
	if r.DryRun {
		title += " (dry-run, nothing written)"
	}
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, renderTable(
		[]string{"Level", "Inserted", "Updated", "Deleted", "Unchanged", "Skipped", "Failed"},
		[][]string{row("series", r.Series), row("books", r.Books)},
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	))
	fmt.Fprintf(out, "Finished in %s, %s rows changed\n",
		r.Duration.Round(time.Millisecond), humanize.Comma(int64(r.Series.Changes()+r.Books.Changes())))

	actions := append(append([]reconcile.Action{}, r.SeriesActions...), r.BookActions...)
	maxShow := min(5, len(actions))
	for _, action := range actions[:maxShow] {
		l.Info("Sample action",
			zap.String("type", string(action.Type)),
			zap.String("key", action.Key),
			zap.String("reason", action.Reason),
			zap.Int("count", action.Count),
		)
	}
	if len(actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(actions)-maxShow))
	}

	for _, f := range r.Failures {
		l.Warn("Entity failed", zap.String("level", f.Level), zap.String("key", f.Key), zap.Error(f.Err))
	}
}
