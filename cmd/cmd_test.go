package cmd

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"media-catalog/feature/librarysync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"ID", "Name"},
		[][]string{{"1", "Comics"}, {"22"}},
		[]columnAlignment{alignRight, alignLeft},
	)

	assert.Contains(t, out, "Comics")
	assert.Contains(t, out, "╭")
	assert.Equal(t, 6, strings.Count(out, "\n")+1)
	assert.Empty(t, renderTable(nil, nil, nil))
}

func TestParseID(t *testing.T) {
	id, err := parseID("library", "12")
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)

	for _, raw := range []string{"0", "-1", "abc", ""} {
		_, err := parseID("library", raw)
		assert.Error(t, err, raw)
	}
}

func TestConfirmDestructiveAction(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, confirmDestructiveAction(&out, strings.NewReader(""), true))
	assert.True(t, confirmDestructiveAction(&out, strings.NewReader("yes\n"), false))
	assert.False(t, confirmDestructiveAction(&out, strings.NewReader("y\n"), false))
	assert.False(t, confirmDestructiveAction(&out, strings.NewReader(""), false))
}

// countingRunner counts passes and stops the scheduler after a few.
type countingRunner struct {
	passes atomic.Int32
	stopAt int32
	cancel context.CancelFunc
}

func (r *countingRunner) ReconcileAll(ctx context.Context, _ ...librarysync.PassOption) ([]*librarysync.PassResult, error) {
	if r.passes.Add(1) == r.stopAt {
		r.cancel()
	}
	return []*librarysync.PassResult{{LibraryID: 1}}, nil
}

func TestRunScheduled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &countingRunner{stopAt: 3, cancel: cancel}

	done := make(chan struct{})
	go func() {
		runScheduled(ctx, zap.NewNop(), runner, 5*time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
	assert.Equal(t, int32(3), runner.passes.Load())
}

func TestRootCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range RootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"migrate", "library", "scan", "start", "progress"} {
		assert.True(t, names[want], want)
	}
}
