package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-catalog/feature/librarysync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Reconcile every library periodically",
	Long: `Runs a pass over every library right away and then once per catalog.scan_interval
until interrupted. An interrupted pass is rolled back.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()
		zap.ReplaceGlobals(a.log)

		if err := a.requireSchema(); err != nil {
			return err
		}
		svc, err := a.syncService()
		if err != nil {
			return err
		}

		interval := a.cfg.Catalog.ScanInterval
		if interval <= 0 {
			interval = time.Hour
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a.log.Info("Starting scheduled scans",
			zap.Duration("interval", interval),
			zap.Int("parallelism", a.cfg.Catalog.Parallelism))
		runScheduled(ctx, a.log, svc, interval)
		a.log.Info("Shutting down")
		return nil
	},
}

// passRunner is the part of the sync service the scheduler drives.
type passRunner interface {
	ReconcileAll(ctx context.Context, opts ...librarysync.PassOption) ([]*librarysync.PassResult, error)
}

// runScheduled runs a pass immediately and then on every tick until ctx is done.
func runScheduled(ctx context.Context, l *zap.Logger, svc passRunner, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		results, err := svc.ReconcileAll(ctx)
		if err != nil && ctx.Err() == nil {
			l.Error("Scheduled pass failed", zap.Error(err))
		}
		l.Info("Scheduled pass finished", zap.Int("libraries", len(results)))
		if ctx.Err() != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func init() {
	RootCmd.AddCommand(startCmd)
}
