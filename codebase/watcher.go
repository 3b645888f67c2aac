package codebase

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Change describes one file the watcher rescanned or dropped.
type Change struct {
	Path    string
	Removed bool
	File    *FileInfo // nil when Removed
}

// FileWatcher polls the codebase root and keeps the codebase in sync with
// the files on disk.
type FileWatcher struct {
	codebase     *Codebase
	pollInterval time.Duration
	onChange     func(Change)

	stopOnce sync.Once
	stopCh   chan struct{}

	mu       sync.Mutex // guards modTimes and onChange; held for a whole pass
	modTimes map[string]time.Time
}

// NewFileWatcher returns a watcher polling every interval. onChange may be
// nil; it is called from the polling goroutine.
func NewFileWatcher(c *Codebase, interval time.Duration, onChange func(Change)) *FileWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &FileWatcher{
		codebase:     c,
		pollInterval: interval,
		onChange:     onChange,
		stopCh:       make(chan struct{}),
		modTimes:     make(map[string]time.Time),
	}
}

// OnChange replaces the change callback.
func (w *FileWatcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start runs the watcher in a new goroutine.
func (w *FileWatcher) Start(ctx context.Context) {
	go w.Run(ctx)
}

// Stop ends a running watcher. It is safe to call more than once.
func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// Run scans immediately and then on every tick until ctx is done or Stop
// is called.
func (w *FileWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.Scan()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Scan()
		}
	}
}

// Scan performs one polling pass and returns the changes it applied. It
// may be called while Run is polling; passes do not overlap. The callback
// runs after the pass, outside the lock.
func (w *FileWatcher) Scan() []Change {
	w.mu.Lock()
	changes := w.scan()
	onChange := w.onChange
	w.mu.Unlock()

	if onChange != nil {
		for _, c := range changes {
			onChange(c)
		}
	}
	return changes
}

func (w *FileWatcher) scan() []Change {
	var changes []Change
	current := make(map[string]bool)

	filepath.WalkDir(w.codebase.RootDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != w.codebase.RootDir() && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !w.codebase.Includes(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}

		current[path] = true

		lastMod, known := w.modTimes[path]
		if !known || info.ModTime().After(lastMod) {
			w.modTimes[path] = info.ModTime()
			if err := w.codebase.ScanFile(path); err != nil {
				log.Warningf("rescanning %s: %s", path, err)
				return nil
			}
			log.Debugf("rescanned %s", path)
			changes = append(changes, Change{Path: path, File: w.codebase.GetFile(path)})
		}
		return nil
	})

	for path := range w.modTimes {
		if !current[path] {
			delete(w.modTimes, path)
			w.codebase.RemoveFile(path)
			log.Debugf("dropped %s", path)
			changes = append(changes, Change{Path: path, Removed: true})
		}
	}

	return changes
}
