// Package watch rebuilds the catalog when definition files change.
//
// Every directory below the API root is watched. Changes are debounced into
// batches; each batch triggers one full rebuild followed by the optional hook
// command.
package watch

import (
	"context"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/teranos/apidefs/am"
	"github.com/teranos/apidefs/errors"
	"github.com/teranos/apidefs/logger"
)

// RebuildFunc rebuilds the catalog. changed lists the files of the batch.
type RebuildFunc func(ctx context.Context, changed []string) error

// Options configures a Watcher.
type Options struct {
	Root       string
	Extensions []string // file extensions that trigger a rebuild
	Debounce   time.Duration
	Hook       string   // shell command run after each successful rebuild
	Ignore     []string // files whose changes are ignored, such as the catalog output
	Rebuild    RebuildFunc
	Log        *zap.SugaredLogger
}

// Watcher watches the API root for definition changes.
type Watcher struct {
	opts    Options
	hook    []string
	watcher *fsnotify.Watcher
	log     *zap.SugaredLogger

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	stopped bool

	// rebuildMu serializes rebuilds; inflight tracks them for shutdown
	rebuildMu sync.Mutex
	inflight  sync.WaitGroup
}

// New creates a Watcher over every directory below opts.Root.
func New(opts Options) (*Watcher, error) {
	if opts.Rebuild == nil {
		return nil, errors.New("watch requires a rebuild function")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = am.DefaultDebounceMS * time.Millisecond
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = am.DefaultExtensions
	}

	var hook []string
	if strings.TrimSpace(opts.Hook) != "" {
		args, err := shellquote.Split(opts.Hook)
		if err != nil {
			return nil, errors.WithHint(
				errors.Wrapf(err, "invalid hook command %q", opts.Hook),
				"check the quoting of watch.hook")
		}
		hook = args
	}

	for i, p := range opts.Ignore {
		if abs, err := filepath.Abs(p); err == nil {
			opts.Ignore[i] = abs
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	w := &Watcher{
		opts:    opts,
		hook:    hook,
		watcher: fw,
		log:     logger.OrNop(opts.Log),
		pending: make(map[string]struct{}),
	}
	if err := w.addTree(opts.Root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and every directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "failed to walk %s", path)
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return errors.Wrapf(err, "failed to watch %s", path)
		}
		w.log.Debugw("Watching directory", logger.FieldPath, path)
		return nil
	})
}

// Run processes file events until ctx is done, then waits for an in-flight
// rebuild to finish.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.inflight.Wait()
	defer w.stopTimer()

	w.log.Infow("Watching for definition changes", logger.FieldPath, w.opts.Root)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.log.Warnw("Failed to watch new directory",
					logger.FieldPath, event.Name,
					logger.FieldError, err)
			}
			return
		}
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if !w.relevant(event.Name) {
		return
	}

	w.log.Debugw("Definition changed",
		logger.FieldFile, event.Name,
		logger.FieldEvent, event.Op.String())
	w.schedule(ctx, event.Name)
}

// relevant reports whether a change to path should trigger a rebuild.
func (w *Watcher) relevant(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || am.IsBackupFile(path) {
		return false
	}
	if abs, err := filepath.Abs(path); err == nil && slices.Contains(w.opts.Ignore, abs) {
		return false
	}
	return slices.Contains(w.opts.Extensions, filepath.Ext(path))
}

// schedule debounces rapid file changes into one rebuild.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, func() {
		w.mu.Lock()
		if w.stopped {
			w.mu.Unlock()
			return
		}
		w.inflight.Add(1)
		w.mu.Unlock()

		defer w.inflight.Done()
		w.fire(ctx)
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
}

// fire runs one rebuild over the pending batch, then the hook.
func (w *Watcher) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	w.mu.Lock()
	changed := make([]string, 0, len(w.pending))
	for path := range w.pending {
		changed = append(changed, path)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()
	if len(changed) == 0 {
		return
	}
	sort.Strings(changed)

	w.rebuildMu.Lock()
	defer w.rebuildMu.Unlock()

	start := time.Now()
	if err := w.opts.Rebuild(ctx, changed); err != nil {
		w.log.Errorw("Rebuild failed",
			logger.FieldCount, len(changed),
			logger.FieldError, err)
		return
	}
	w.log.Infow("Rebuilt catalog",
		logger.FieldCount, len(changed),
		logger.FieldDurationMS, time.Since(start).Milliseconds())

	if err := w.runHook(ctx, changed); err != nil {
		w.log.Warnw("Hook failed",
			logger.FieldHook, w.opts.Hook,
			logger.FieldError, err)
	}
}

// HookEnv names the environment variable holding the changed files,
// space-separated and shell-quoted, when the hook runs.
const HookEnv = "APIDEFS_CHANGED"

func (w *Watcher) runHook(ctx context.Context, changed []string) error {
	if len(w.hook) == 0 {
		return nil
	}
	cmd := exec.CommandContext(ctx, w.hook[0], w.hook[1:]...)
	cmd.Env = append(os.Environ(), HookEnv+"="+shellquote.Join(changed...))
	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		w.log.Debugw("Hook output", logger.FieldHook, w.hook[0], "output", strings.TrimSpace(string(out)))
	}
	if err != nil {
		return errors.Wrapf(err, "hook %s", w.hook[0])
	}
	return nil
}
