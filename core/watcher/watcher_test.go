package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tristendillon/relocate/core/models"
	"github.com/tristendillon/relocate/core/paths"
)

func TestRenamePairer(t *testing.T) {
	start := time.Now()

	t.Run("rename followed by create", func(t *testing.T) {
		p := newRenamePairer(time.Second)
		_, ok := p.Observe(fsnotify.Event{Name: "/p/old.ts", Op: fsnotify.Rename}, start)
		assert.False(t, ok)

		op, ok := p.Observe(fsnotify.Event{Name: "/p/new.ts", Op: fsnotify.Create}, start.Add(10*time.Millisecond))
		require.True(t, ok)
		assert.Equal(t, models.RenameOperation{OldPath: "/p/old.ts", NewPath: "/p/new.ts"}, op)
	})

	t.Run("create without rename", func(t *testing.T) {
		p := newRenamePairer(time.Second)
		_, ok := p.Observe(fsnotify.Event{Name: "/p/new.ts", Op: fsnotify.Create}, start)
		assert.False(t, ok)
	})

	t.Run("rename expires", func(t *testing.T) {
		p := newRenamePairer(100 * time.Millisecond)
		p.Observe(fsnotify.Event{Name: "/p/old.ts", Op: fsnotify.Rename}, start)
		_, ok := p.Observe(fsnotify.Event{Name: "/p/new.ts", Op: fsnotify.Create}, start.Add(time.Second))
		assert.False(t, ok)
	})

	t.Run("renames pair in order", func(t *testing.T) {
		p := newRenamePairer(time.Second)
		p.Observe(fsnotify.Event{Name: "/p/a.ts", Op: fsnotify.Rename}, start)
		p.Observe(fsnotify.Event{Name: "/p/b.ts", Op: fsnotify.Rename}, start)

		first, ok := p.Observe(fsnotify.Event{Name: "/p/x/a.ts", Op: fsnotify.Create}, start)
		require.True(t, ok)
		second, ok := p.Observe(fsnotify.Event{Name: "/p/x/b.ts", Op: fsnotify.Create}, start)
		require.True(t, ok)
		assert.Equal(t, "/p/a.ts", first.OldPath)
		assert.Equal(t, "/p/b.ts", second.OldPath)
	})

	t.Run("writes are ignored", func(t *testing.T) {
		p := newRenamePairer(time.Second)
		p.Observe(fsnotify.Event{Name: "/p/old.ts", Op: fsnotify.Rename}, start)
		_, ok := p.Observe(fsnotify.Event{Name: "/p/other.ts", Op: fsnotify.Write}, start)
		assert.False(t, ok)
		_, ok = p.Observe(fsnotify.Event{Name: "/p/new.ts", Op: fsnotify.Create}, start)
		assert.True(t, ok)
	})
}

func TestShouldExcludePath(t *testing.T) {
	w := &Watcher{root: "/p", exclude: []string{"node_modules", "dist/cache"}}
	assert.True(t, w.shouldExcludePath("/p/node_modules"))
	assert.True(t, w.shouldExcludePath("/p/node_modules/pkg/index.js"))
	assert.True(t, w.shouldExcludePath("/p/dist/cache/x"))
	assert.True(t, w.shouldExcludePath("/p/packages/web/node_modules/x"))
	assert.False(t, w.shouldExcludePath("/p/dist/app.js"))
	assert.False(t, w.shouldExcludePath("/p/node_modules_backup/x"))
}

func TestWatcherDetectsRename(t *testing.T) {
	root := t.TempDir()
	oldPath := filepath.Join(root, "old.ts")
	newPath := filepath.Join(root, "src", "new.ts")
	require.NoError(t, os.MkdirAll(filepath.Dir(newPath), 0o755))
	require.NoError(t, os.WriteFile(oldPath, []byte("export {}"), 0o644))

	renames := make(chan models.RenameOperation, 1)
	w, err := New(root, nil, 20*time.Millisecond, func(ctx context.Context, op models.RenameOperation) error {
		renames <- op
		return nil
	})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.Rename(oldPath, newPath))

	select {
	case op := <-renames:
		assert.Equal(t, paths.Normalize(filepath.ToSlash(oldPath)), op.OldPath)
		assert.Equal(t, paths.Normalize(filepath.ToSlash(newPath)), op.NewPath)
	case <-time.After(5 * time.Second):
		t.Fatal("rename was not detected")
	}
}
