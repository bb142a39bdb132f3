// Package watch recompiles a config whenever it or one of its imports
// changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aledsdavies/bindc/core/hotkey"
	"github.com/aledsdavies/bindc/core/invariant"
	"github.com/aledsdavies/bindc/runtime/codec"
	"github.com/aledsdavies/bindc/runtime/compiler"
)

// DefaultDebounce is how long the watcher waits for a burst of file events
// to settle before recompiling.
const DefaultDebounce = 200 * time.Millisecond

// Result is one compile outcome. Exactly one of Config and Err is set.
type Result struct {
	Config *hotkey.Config
	Hash   [32]byte
	Diff   *codec.DiffResult // nil for the first successful compile
	Err    error
}

// Option configures a watcher.
type Option func(*config)

type config struct {
	debounce    time.Duration
	logger      *slog.Logger
	compileOpts []compiler.Option
}

// WithDebounce sets the settle time between the last event and a recompile.
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCompileOptions passes options through to every compile.
func WithCompileOptions(opts ...compiler.Option) Option {
	return func(c *config) {
		c.compileOpts = append(c.compileOpts, opts...)
	}
}

// Watch compiles root, reports the result to handle, then recompiles each
// time a file of the import closure changes. A recompile whose output hashes
// equal to the last reported config is not reported. Failed compiles are
// reported and the previous watch set is kept. Watch blocks until ctx is
// cancelled and then returns nil.
func Watch(ctx context.Context, root string, handle func(Result), opts ...Option) error {
	invariant.NotNil(handle, "handle")

	cfg := config{
		debounce: DefaultDebounce,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer fsw.Close()

	w := &watcher{
		root:    filepath.Clean(root),
		cfg:     cfg,
		fsw:     fsw,
		handle:  handle,
		files:   map[string]bool{},
		watched: map[string]bool{},
	}

	w.compile()
	if err := w.retarget(); err != nil {
		return err
	}
	return w.loop(ctx)
}

type watcher struct {
	root   string
	cfg    config
	fsw    *fsnotify.Watcher
	handle func(Result)

	last    *hotkey.Config
	hash    [32]byte
	files   map[string]bool // files of the last successful compile
	watched map[string]bool // directories added to fsw
}

func (w *watcher) loop(ctx context.Context) error {
	timer := time.NewTimer(w.cfg.debounce)
	timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.cfg.logger.Debug("config changed", "path", ev.Name, "op", ev.Op.String())
			if pending {
				timer.Stop()
			}
			timer.Reset(w.cfg.debounce)
			pending = true

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.cfg.logger.Warn("file watcher error", "error", err)

		case <-timer.C:
			pending = false
			w.compile()
			if err := w.retarget(); err != nil {
				w.cfg.logger.Warn("failed to update watch set", "error", err)
			}
		}
	}
}

func (w *watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	return w.files[filepath.Clean(ev.Name)]
}

// compile runs one compile and reports it unless the output is unchanged.
func (w *watcher) compile() {
	cfg, err := compiler.Compile(compiler.FromPath(w.root), w.cfg.compileOpts...)
	if err != nil {
		w.cfg.logger.Debug("compile failed", "root", w.root, "error", err)
		if len(w.files) == 0 {
			w.files[w.root] = true
		}
		// Creating a missing import should trigger a retry.
		var ce *compiler.CompileError
		if errors.As(err, &ce) && ce.Kind == compiler.KindReadConfig && ce.Path != "" {
			w.files[ce.Path] = true
		}
		w.handle(Result{Err: err})
		return
	}

	hash, err := codec.Hash(cfg)
	if err != nil {
		w.handle(Result{Err: err})
		return
	}

	w.files = make(map[string]bool, len(cfg.Files))
	for _, f := range cfg.Files {
		w.files[f] = true
	}

	if w.last != nil && hash == w.hash {
		w.cfg.logger.Debug("config unchanged", "root", w.root)
		return
	}

	result := Result{Config: cfg, Hash: hash}
	if w.last != nil {
		result.Diff = codec.Diff(w.last, cfg)
	}
	w.last, w.hash = cfg, hash
	w.handle(result)
}

// retarget watches the directory of every tracked file and drops
// directories no longer needed. Only a failure to watch the root's
// directory is an error.
func (w *watcher) retarget() error {
	want := map[string]bool{}
	for f := range w.files {
		want[filepath.Dir(f)] = true
	}

	for dir := range want {
		if w.watched[dir] {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			if dir == filepath.Dir(w.root) {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			w.cfg.logger.Warn("failed to watch directory", "dir", dir, "error", err)
			continue
		}
		w.watched[dir] = true
		w.cfg.logger.Debug("watching", "dir", dir)
	}
	for dir := range w.watched {
		if want[dir] {
			continue
		}
		_ = w.fsw.Remove(dir)
		delete(w.watched, dir)
		w.cfg.logger.Debug("stopped watching", "dir", dir)
	}
	return nil
}
