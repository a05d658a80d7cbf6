package supervisor

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jonwraymond/cmdchk/logging"
)

// DefaultDebounce collapses the burst of events an editor produces for a
// single save.
const DefaultDebounce = 500 * time.Millisecond

// ErrNothingToWatch is returned when none of the files' directories exist.
var ErrNothingToWatch = errors.New("supervisor: no watchable config directory")

// Watcher reports changes to a fixed set of files. It watches their parent
// directories so that files replaced by rename are still seen.
type Watcher struct {
	fw       *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	logger   logging.Logger
}

// NewWatcher watches paths. Directories that cannot be watched are logged
// and skipped.
func NewWatcher(paths []string, debounce time.Duration, logger logging.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fw:       fw,
		files:    make(map[string]bool, len(paths)),
		debounce: debounce,
		logger:   logger,
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = filepath.Clean(p)
		}
		w.files[abs] = true

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			logger.Warn(context.Background(), "Cannot watch config directory",
				logging.F("dir", dir), logging.F("error", err))
			continue
		}
		dirs[dir] = true
	}

	if len(dirs) == 0 {
		_ = fw.Close()
		return nil, ErrNothingToWatch
	}
	return w, nil
}

// Run calls onChange once per burst of changes to a watched file until ctx
// ends. It closes the underlying watcher on return.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer w.fw.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if !w.files[filepath.Clean(ev.Name)] || !relevant(ev.Op) {
				continue
			}
			w.logger.Debug(ctx, "Config file event", logging.F("path", ev.Name), logging.F("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn(ctx, "Config watch error", logging.F("error", err))

		case <-fire:
			fire = nil
			w.logger.Info(ctx, "Config changed, restarting worker")
			onChange()
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) ||
		op.Has(fsnotify.Rename) || op.Has(fsnotify.Remove)
}
