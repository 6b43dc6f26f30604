// Package watch reports changes to catalog descriptor files.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/eventcatalog/catalog-engine/internal/store"
)

// DefaultDelay is the quiet period before a batch of changes is reported.
const DefaultDelay = 200 * time.Millisecond

// Watcher watches a catalog tree and calls OnChange once per burst of
// changes, with the changed paths sorted and deduplicated.
type Watcher struct {
	Root     string
	Delay    time.Duration
	OnChange func(ctx context.Context, paths []string)
}

// Start watches until ctx is cancelled. Directories created while running
// are watched too.
func (w *Watcher) Start(ctx context.Context) error {
	logger := log.FromContext(ctx).WithName("watch").WithValues("root", w.Root)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer fw.Close()

	if err := addTree(fw, w.Root); err != nil {
		return err
	}
	logger.Info("watching catalog")

	delay := w.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	timer := time.NewTimer(delay)
	timer.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !store.IgnoredDir(info.Name()) {
					if err := addTree(fw, ev.Name); err != nil {
						logger.Error(err, "failed to watch new directory", "path", ev.Name)
					}
				}
			}
			logger.V(1).Info("change", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(delay)
			pending[ev.Name] = struct{}{}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error(err, "watch error")

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]struct{})
			if w.OnChange != nil {
				w.OnChange(ctx, paths)
			}
		}
	}
}

// relevant drops permission-only changes and dotfiles such as editor swap
// files.
func relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	return !strings.HasPrefix(filepath.Base(ev.Name), ".")
}

func addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && store.IgnoredDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		return nil
	})
}
