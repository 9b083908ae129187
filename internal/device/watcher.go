package device

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/indirex/touchmeter/internal/logger"
)

// Watcher reports marker files appearing or disappearing in the data directory.
type Watcher struct {
	watcher *fsnotify.Watcher
	dir     string
	events  chan string
	done    chan struct{}
	stopped chan struct{}

	started  bool
	stopOnce sync.Once
	stopErr  error
}

// NewWatcher creates a watcher for dir. Call Start to begin delivery.
func NewWatcher(dir string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher: w,
		dir:     dir,
		events:  make(chan string, 16),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}, nil
}

// Start adds the watch and starts the event loop.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		_ = w.watcher.Close()
		return err
	}
	w.started = true
	go w.eventLoop()
	logger.Info("Watching %s for marker changes", w.dir)
	return nil
}

// Events delivers the base name of each file created, removed or renamed.
// It is closed after Stop.
func (w *Watcher) Events() <-chan string { return w.events }

// Stop shuts down the watcher and waits for the event loop. It is safe to
// call more than once and on a watcher that never started.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.done)
		if w.started {
			<-w.stopped
		} else {
			close(w.events)
		}
		w.stopErr = w.watcher.Close()
	})
	return w.stopErr
}

func (w *Watcher) eventLoop() {
	defer close(w.stopped)
	defer close(w.events)

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Base(event.Name)
			select {
			case w.events <- name:
			default:
				// Reader is behind; the periodic probe catches up.
				logger.Debug("Watcher: dropped event for %s", name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}
