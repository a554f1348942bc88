package config

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gekko3d/galaxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "live.toml", "count = 100\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := Watch(ctx, path, nil, nil)
	require.NoError(t, err)

	// An unrelated file in the same directory is ignored.
	writeFile(t, dir, "other.toml", "count = 1\n")
	require.NoError(t, os.WriteFile(path, []byte("count = 4200\n"), 0o644))

	// Truncate and write may arrive as separate events; wait for the final state.
	deadline := time.After(5 * time.Second)
	for seen := false; !seen; {
		select {
		case p := <-updates:
			seen = p.Count == 4200
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-updates:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}

// recordingLogger keeps warnings so tests can see why a reload was skipped.
type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) DebugEnabled() bool    { return false }
func (l *recordingLogger) SetDebug(bool)         {}
func (l *recordingLogger) Debugf(string, ...any) {}
func (l *recordingLogger) Infof(string, ...any)  {}
func (l *recordingLogger) Errorf(string, ...any) {}

func (l *recordingLogger) Warnf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warns...)
}

func pending(updates <-chan galaxy.GenerationParameters) bool {
	select {
	case <-updates:
		return true
	default:
		return false
	}
}

func nextUpdate(t *testing.T, updates <-chan galaxy.GenerationParameters) galaxy.GenerationParameters {
	t.Helper()
	select {
	case p, ok := <-updates:
		require.True(t, ok, "watcher closed")
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
	return galaxy.GenerationParameters{}
}

func TestWatch_SkipsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "live.toml", "count = 100\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates, err := Watch(ctx, path, nil, nil)
	require.NoError(t, err)

	// A save caught between truncate and write leaves an empty file.
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	assert.Never(t, func() bool { return pending(updates) }, 4*watchDebounce, 20*time.Millisecond,
		"an empty preset must not publish defaults")

	require.NoError(t, os.WriteFile(path, []byte("count = 777\n"), 0o644))
	assert.Equal(t, 777, nextUpdate(t, updates).Count)
}

func TestWatch_CoalescesBurst(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "live.toml", "count = 100\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates, err := Watch(ctx, path, nil, nil)
	require.NoError(t, err)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("count = 7")
	require.NoError(t, err)
	_, err = f.WriteString("77\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Equal(t, 777, nextUpdate(t, updates).Count, "only the settled file is read")
}

func TestWatch_InvalidPresetIsSkipped(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "live.toml", "count = 100\n")
	logger := &recordingLogger{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates, err := Watch(ctx, path, nil, logger)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("count = [broken\n"), 0o644))
	require.Eventually(t, func() bool { return len(logger.Warnings()) > 0 }, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, logger.Warnings()[0], "preset reload ignored")
	assert.False(t, pending(updates), "nothing published for a malformed preset")

	require.NoError(t, os.WriteFile(path, []byte("count = 777\n"), 0o644))
	assert.Equal(t, 777, nextUpdate(t, updates).Count)
}

func TestWatch_MissingDirectory(t *testing.T) {
	_, err := Watch(context.Background(), "/does/not/exist/preset.toml", nil, nil)
	assert.Error(t, err)
}

func TestPublishLatest_KeepsNewest(t *testing.T) {
	out := make(chan galaxy.GenerationParameters, 1)
	a, b := galaxy.DefaultParameters(), galaxy.DefaultParameters()
	a.Count, b.Count = 1, 2

	publishLatest(out, a)
	publishLatest(out, b)
	assert.Equal(t, 2, (<-out).Count)
}
