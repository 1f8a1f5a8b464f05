// Package watch reloads the store when the file backend's JSON documents are
// edited by another process, such as a git pull or a second InkFlow instance.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/inkflow/internal/checksum"
	"github.com/starford/inkflow/internal/persist"
)

// DefaultDebounce coalesces the burst of events produced by one atomic write.
const DefaultDebounce = 200 * time.Millisecond

// OwnWriteChecker reports whether a file's current checksum matches a write
// this process made itself.
type OwnWriteChecker interface {
	OwnWrite(name, sum string) bool
}

// ReloadFunc is invoked after foreign changes settle.
type ReloadFunc func(ctx context.Context)

// Watcher follows the collection files in one directory.
type Watcher struct {
	dir      string
	own      OwnWriteChecker
	reload   ReloadFunc
	logger   *slog.Logger
	debounce time.Duration
	files    map[string]struct{}
}

// New returns a watcher for the collection files under dir.
func New(dir string, own OwnWriteChecker, reload ReloadFunc, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		dir:      dir,
		own:      own,
		reload:   reload,
		logger:   logger,
		debounce: DefaultDebounce,
		files: map[string]struct{}{
			persist.FileName(persist.KeyNotes):     {},
			persist.FileName(persist.KeyNotebooks): {},
		},
	}
}

// Run processes file events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return err
	}
	w.logger.Info("watcher: started", slog.String("dir", w.dir))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			fire = timer.C
		} else {
			timer.Reset(w.debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Info("watcher: stopped")
			return nil

		case <-fire:
			w.logger.Info("watcher: external change, reloading")
			w.reload(ctx)

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.foreign(ev) {
				schedule()
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// foreign reports whether ev changed a collection file with content this
// process did not write.
func (w *Watcher) foreign(ev fsnotify.Event) bool {
	name := filepath.Base(ev.Name)
	if _, ok := w.files[name]; !ok {
		return false
	}
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	if ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename) {
		w.logger.Debug("watcher: collection file removed", slog.String("file", name))
		return true
	}

	sum, err := checksum.File(ev.Name)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	if err != nil {
		w.logger.Warn("watcher: checksum failed", slog.String("file", name), slog.String("error", err.Error()))
		return false
	}
	if w.own != nil && w.own.OwnWrite(name, sum) {
		return false
	}
	w.logger.Debug("watcher: foreign write", slog.String("file", name), slog.String("op", ev.Op.String()))
	return true
}
