package crosstab

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/bankfront/internal/client/events"
	"github.com/dmitrijs2005/bankfront/internal/logging"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 200 * time.Millisecond

// FileSource watches a file-backed store (the SQLite database and its
// -wal/-journal companions) and emits one event per burst of writes.
//
// The watcher cannot tell who wrote the file, so the local process also sees
// its own writes. Re-running session resolution on those is harmless.
type FileSource struct {
	path     string
	debounce time.Duration
	logger   logging.Logger
}

func NewFileSource(path string, logger logging.Logger) *FileSource {
	return &FileSource{path: path, debounce: defaultDebounce, logger: logger}
}

// WithDebounce overrides the quiet period that closes a burst.
func (f *FileSource) WithDebounce(d time.Duration) *FileSource {
	f.debounce = d
	return f
}

func (f *FileSource) Run(ctx context.Context, emit func(events.Event)) error {
	abs, err := filepath.Abs(f.path)
	if err != nil {
		return err
	}
	dir, base := filepath.Dir(abs), filepath.Base(abs)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		emit(events.Event{Kind: events.StorageChanged, Origin: "file:" + abs})
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasPrefix(filepath.Base(ev.Name), base) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(f.debounce, fire)
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn(ctx, "storage watcher error", "error", err)
		}
	}
}
