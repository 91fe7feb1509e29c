// Package watch regenerates tables whenever new result files show up.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/huangsam/benchtable/core"
	"github.com/huangsam/benchtable/internal/contract"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 500 * time.Millisecond

// resultFilePattern matches plain and compressed result files.
const resultFilePattern = "*.results*.xml*"

// Watcher reruns a generation when result files in the input directories change.
type Watcher struct {
	cfg      *contract.Config
	mgr      contract.HistoryManager
	execute  core.ExecutorFunc
	debounce time.Duration
	dirs     []string
}

// NewWatcher creates a watcher over the input directories of cfg.
func NewWatcher(cfg *contract.Config, mgr contract.HistoryManager, execute core.ExecutorFunc, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		cfg:      cfg,
		mgr:      mgr,
		execute:  execute,
		debounce: debounce,
		dirs:     InputDirs(cfg),
	}
}

// Dirs returns the directories being watched.
func (w *Watcher) Dirs() []string {
	return w.dirs
}

// Run performs one generation and then regenerates after every settled burst
// of result file changes. It blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.execute(ctx, w.cfg, w.mgr); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot start file watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	for _, dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("cannot watch directory %s: %w", dir, err)
		}
	}
	contract.Logger().Info("Watching for result files", zap.Strings("dirs", w.dirs))

	// Armed only by relevant events.
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			contract.Logger().Debug("Result file changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			contract.LogWarn("File watcher error", err)

		case <-timer.C:
			contract.Logger().Info("Result files changed, regenerating tables")
			if err := w.execute(ctx, w.cfg, w.mgr); err != nil {
				contract.LogWarn("Regeneration failed", err)
			}
		}
	}
}

// relevant reports whether an event creates or writes a result file.
func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	return IsResultFile(event.Name)
}

// IsResultFile reports whether the base name of path looks like a result file.
func IsResultFile(path string) bool {
	matched, err := filepath.Match(resultFilePattern, filepath.Base(path))
	return err == nil && matched
}

// InputDirs returns the sorted, de-duplicated directories holding the inputs of cfg.
func InputDirs(cfg *contract.Config) []string {
	var dirs []string
	switch {
	case cfg.TableDefinition != "":
		dirs = append(dirs, filepath.Dir(cfg.TableDefinition))
	case len(cfg.ResultFiles) > 0:
		for _, file := range cfg.ResultFiles {
			dirs = append(dirs, filepath.Dir(file))
		}
	case cfg.OutputPath != "" && !cfg.WritesToStdout():
		dirs = append(dirs, filepath.Clean(cfg.OutputPath))
	default:
		dirs = append(dirs, filepath.Clean(contract.DefaultOutputPath))
	}
	slices.Sort(dirs)
	return slices.Compact(dirs)
}
