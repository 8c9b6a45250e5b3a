package filewatcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain/ports"
)

func TestWatch_EmitsCreateForWatchedExtension(t *testing.T) {
	dir := t.TempDir()

	w, err := NewFSNotifyWatcher([]string{".txt"}, slog.Default())
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "dropped.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	select {
	case ev := <-events:
		assert.Equal(t, path, ev.Path)
		assert.Contains(t, []ports.FileOperation{ports.FileCreated, ports.FileModified}, ev.Operation)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestWatch_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()

	w, err := NewFSNotifyWatcher([]string{".pdf"}, nil)
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.tmp"), []byte("x"), 0o644))

	select {
	case ev := <-events:
		t.Fatalf("unexpected event for %s", ev.Path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	w, err := NewFSNotifyWatcher(nil, nil)
	require.NoError(t, err)
	defer w.Stop()

	_, err = w.Watch(context.Background(), filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestWatch_ClosesOnContextCancel(t *testing.T) {
	dir := t.TempDir()

	w, err := NewFSNotifyWatcher(nil, nil)
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok, "channel should be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
