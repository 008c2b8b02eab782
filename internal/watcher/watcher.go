// Package watcher watches a directory for incoming PDF files.
// Filesystem events arrive in bursts while a file is still being
// written, so paths are debounced and only emitted after a quiet
// period, then throttled through a rate limiter.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/archivemed/dedup-cli/internal/logger"
)

// defaultQuietPeriod is how long a file must be untouched before it is
// considered fully written.
const defaultQuietPeriod = 500 * time.Millisecond

// Watcher emits paths of PDF files created or modified under a directory.
type Watcher struct {
	dir     string
	limiter *rate.Limiter
	quiet   time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	pending map[string]*time.Timer

	// queue holds paths whose quiet period has elapsed, waiting for the
	// rate limiter. Paths are queued, never dropped, so the limiter
	// delays emission instead of discarding files.
	queue []string
	wake  chan struct{}
}

// New creates a watcher for the given directory. maxPerSecond bounds how
// many files are emitted per second; zero or negative means unlimited.
func New(dir string, maxPerSecond float64) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", dir)
	}

	limit := rate.Inf
	if maxPerSecond > 0 {
		limit = rate.Limit(maxPerSecond)
	}

	return &Watcher{
		dir:     dir,
		limiter: rate.NewLimiter(limit, 1),
		quiet:   defaultQuietPeriod,
		pending: make(map[string]*time.Timer),
		wake:    make(chan struct{}, 1),
	}, nil
}

// Watch starts watching and returns a channel of PDF file paths. The
// channel is closed when the context is cancelled or the watcher is
// closed. Watch may be called once.
func (w *Watcher) Watch(ctx context.Context) (<-chan string, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", w.dir, err)
	}

	w.mu.Lock()
	w.watcher = fsw
	w.mu.Unlock()

	out := make(chan string)
	done := make(chan struct{})
	go w.run(ctx, fsw, done)
	go w.emit(ctx, done, out)
	return out, nil
}

// run receives filesystem events and arms debounce timers. It never
// blocks on the rate limiter, so events keep draining while emission is
// throttled.
func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	defer func() {
		w.mu.Lock()
		for _, timer := range w.pending {
			timer.Stop()
		}
		w.pending = make(map[string]*time.Timer)
		w.mu.Unlock()
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !isPDF(event.Name) {
				continue
			}
			w.debounce(event.Name)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}

// emit drains the ready queue through the rate limiter. Paths queued
// while the limiter blocks wait their turn.
func (w *Watcher) emit(ctx context.Context, done chan struct{}, out chan string) {
	defer close(out)

	for {
		for {
			path, ok := w.dequeue()
			if !ok {
				break
			}
			if err := w.limiter.Wait(ctx); err != nil {
				return
			}
			select {
			case out <- path:
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-done:
			// Files whose quiet period had already elapsed are still on
			// disk for the next run.
			return
		case <-w.wake:
		}
	}
}

// debounce (re)arms the quiet-period timer for a path. Every burst of
// write events resets the timer; the path is queued once it fires.
func (w *Watcher) debounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.quiet)
		return
	}
	w.pending[path] = time.AfterFunc(w.quiet, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.queue = append(w.queue, path)
		w.mu.Unlock()

		select {
		case w.wake <- struct{}{}:
		default:
		}
	})
}

// dequeue pops the oldest ready path.
func (w *Watcher) dequeue() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.queue) == 0 {
		return "", false
	}
	path := w.queue[0]
	w.queue = w.queue[1:]
	return path, true
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
