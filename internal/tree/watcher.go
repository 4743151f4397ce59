package tree

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const (
	defaultDebounce = 200 * time.Millisecond
	eventBufferSize = 64
)

// Watcher reports directories whose contents changed. Bursts of events in
// one directory are coalesced into a single notification.
type Watcher struct {
	watcher  *fsnotify.Watcher
	events   chan string
	ignore   map[string]bool
	debounce time.Duration
	log      logrus.FieldLogger

	mu      sync.Mutex
	watched map[string]bool
	timers  map[string]*time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// WatcherOption configures a Watcher
type WatcherOption func(*Watcher)

// IgnoreNames skips events for files with these base names
func IgnoreNames(names ...string) WatcherOption {
	return func(w *Watcher) {
		for _, n := range names {
			w.ignore[n] = true
		}
	}
}

// WithDebounce sets the quiet period before a directory is reported
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithWatchLogger sets the logger
func WithWatchLogger(l logrus.FieldLogger) WatcherOption {
	return func(w *Watcher) { w.log = l }
}

// NewWatcher starts a watcher with no directories
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		watcher:  fw,
		events:   make(chan string, eventBufferSize),
		ignore:   make(map[string]bool),
		debounce: defaultDebounce,
		log:      logrus.StandardLogger(),
		watched:  make(map[string]bool),
		timers:   make(map[string]*time.Timer),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Events delivers the path of each changed directory
func (w *Watcher) Events() <-chan string {
	return w.events
}

// Sync watches exactly dirs, adding and removing watches as needed
func (w *Watcher) Sync(dirs []string) {
	want := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		want[filepath.Clean(d)] = true
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for d := range w.watched {
		if !want[d] {
			_ = w.watcher.Remove(d)
			delete(w.watched, d)
		}
	}
	for d := range want {
		if w.watched[d] {
			continue
		}
		if err := w.watcher.Add(d); err != nil {
			w.log.WithError(err).WithField("dir", d).Debug("cannot watch directory")
			continue
		}
		w.watched[d] = true
	}
}

// Watched returns the number of watched directories
func (w *Watcher) Watched() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watched)
}

// Close stops watching and closes the events channel
func (w *Watcher) Close() error {
	w.cancel()

	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = make(map[string]*time.Timer)
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()

	w.mu.Lock()
	close(w.events)
	w.mu.Unlock()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("filesystem watcher error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	name := filepath.Base(event.Name)
	if w.ignore[name] || strings.HasSuffix(name, ".tmp") {
		return
	}

	dir := filepath.Dir(event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ctx.Err() != nil {
		return
	}
	if t, ok := w.timers[dir]; ok {
		t.Stop()
	}
	w.timers[dir] = time.AfterFunc(w.debounce, func() {
		w.notify(dir)
	})
}

func (w *Watcher) notify(dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.timers, dir)
	if w.ctx.Err() != nil {
		return
	}
	select {
	case w.events <- dir:
	default:
		// consumer is behind; it will catch up on the next change
	}
}
