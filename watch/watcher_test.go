package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventCounter struct {
	mu  sync.Mutex
	ops []string
}

func (c *eventCounter) RecordWatchEvent(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = append(c.ops, op)
}

func Test_classify(t *testing.T) {
	tests := []struct {
		name     string
		event    fsnotify.Event
		wantOp   string
		relevant bool
	}{
		{"create json", fsnotify.Event{Name: "s/a.json", Op: fsnotify.Create}, "create", true},
		{"write json", fsnotify.Event{Name: "s/a.json", Op: fsnotify.Write}, "write", true},
		{"remove json", fsnotify.Event{Name: "s/a.json", Op: fsnotify.Remove}, "remove", true},
		{"rename json", fsnotify.Event{Name: "s/a.json", Op: fsnotify.Rename}, "rename", true},
		{"chmod json", fsnotify.Event{Name: "s/a.json", Op: fsnotify.Chmod}, "", false},
		{"create txt", fsnotify.Event{Name: "s/a.txt", Op: fsnotify.Create}, "", false},
		{"editor swap", fsnotify.Event{Name: "s/.a.json.swp", Op: fsnotify.Write}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, relevant := classify(tt.event)
			assert.Equal(t, tt.relevant, relevant)
			if tt.relevant {
				assert.Equal(t, tt.wantOp, change.Op)
				assert.Equal(t, tt.event.Name, change.Path)
			}
		})
	}
}

func TestWatcher_Run(t *testing.T) {
	dir := t.TempDir()
	changes := make(chan Change, 16)
	counter := &eventCounter{}

	w := New(dir, func(c Change) { changes <- c }, WithRecorder(counter))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte("{}"), 0o644))

	select {
	case c := <-changes:
		assert.Equal(t, filepath.Join(dir, "a.json"), c.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("no change observed")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}

	counter.mu.Lock()
	defer counter.mu.Unlock()
	assert.NotEmpty(t, counter.ops)
}

func TestWatcher_RunMissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "absent"), nil)
	assert.Error(t, w.Run(context.Background()))
}
