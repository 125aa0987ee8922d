// Package lookup answers which page elements are draggable for a site. Each
// site has a text file <dir>/<domain>.txt listing element classes one per
// line.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Store reads and caches per-domain class lists.
type Store struct {
	logger *slog.Logger

	mu    sync.RWMutex
	dir   string
	cache map[string][]string

	// moved wakes Watch after SetDir.
	moved chan struct{}
}

// NewStore creates a store reading from dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		logger: logger,
		dir:    dir,
		cache:  make(map[string][]string),
		moved:  make(chan struct{}, 1),
	}
}

// Dir returns the directory the store reads from.
func (s *Store) Dir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir
}

// SetDir points the store at a new directory and drops the cache. A running
// Watch moves over to the new directory.
func (s *Store) SetDir(dir string) {
	s.mu.Lock()
	changed := s.dir != dir
	s.dir = dir
	s.cache = make(map[string][]string)
	s.mu.Unlock()

	if changed {
		select {
		case s.moved <- struct{}{}:
		default:
		}
	}
}

// Invalidate drops every cached entry.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.cache = make(map[string][]string)
	s.mu.Unlock()
}

// Lookup returns the classes configured for domain. A missing file or an
// unusable domain name yields no classes and no error. Only hits are cached,
// so a record created later is picked up on the next request.
func (s *Store) Lookup(domain string) ([]string, error) {
	if !validDomain(domain) {
		return nil, nil
	}

	s.mu.RLock()
	classes, ok := s.cache[domain]
	dir := s.dir
	s.mu.RUnlock()
	if ok {
		return classes, nil
	}

	classes, err := readClasses(filepath.Join(dir, domain+".txt"))
	if err != nil {
		return nil, err
	}

	if classes == nil {
		return nil, nil
	}

	s.mu.Lock()
	if s.dir == dir {
		s.cache[domain] = classes
	}
	s.mu.Unlock()
	return classes, nil
}

func validDomain(domain string) bool {
	if domain == "" || domain == "." {
		return false
	}
	return !strings.ContainsAny(domain, `/\`) && !strings.Contains(domain, "..")
}

func readClasses(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var classes []string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			classes = append(classes, line)
		}
	}
	return classes, nil
}

// Watch drops the cache whenever a file in the store directory changes. It
// blocks until ctx is cancelled. While the directory does not exist its
// parent is watched, and the watch moves onto the directory once it is
// created. SetDir restarts the watch on the new directory.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for {
		dir := s.Dir()
		watched := watchTarget(dir)
		if watched != "" {
			if err := watcher.Add(watched); err != nil {
				s.logger.Warn("movable dir watch failed", "dir", watched, "error", err)
				watched = ""
			} else {
				s.logger.Debug("watching movable dir", "dir", dir, "watched", watched)
			}
		} else {
			s.logger.Debug("movable dir and its parent are missing, waiting for a new dir", "dir", dir)
		}

		stop := s.watchLoop(ctx, watcher, dir, watched)
		if watched != "" {
			// The watch is already gone if the directory was removed.
			_ = watcher.Remove(watched)
		}
		if stop {
			return nil
		}
	}
}

// watchTarget picks what to watch for dir: the directory itself, its parent
// while it does not exist yet, or nothing.
func watchTarget(dir string) string {
	if isDir(dir) {
		return dir
	}
	if parent := filepath.Dir(dir); parent != dir && isDir(parent) {
		return parent
	}
	return ""
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// watchLoop handles events until the watch has to be rebuilt (returns false)
// or ctx is done (returns true).
func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, dir, watched string) bool {
	onParent := watched != "" && watched != dir
	// The directory may have appeared between the stat and the Add.
	if onParent && isDir(dir) {
		s.Invalidate()
		return false
	}

	for {
		select {
		case <-ctx.Done():
			return true
		case <-s.moved:
			return false
		case ev, ok := <-watcher.Events:
			if !ok {
				return true
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if onParent {
				if filepath.Clean(ev.Name) == filepath.Clean(dir) && ev.Op&fsnotify.Create != 0 {
					s.logger.Debug("movable dir created", "dir", dir)
					s.Invalidate()
					return false
				}
				continue
			}
			s.logger.Debug("movable dir changed", "file", ev.Name, "op", ev.Op.String())
			s.Invalidate()
			if filepath.Clean(ev.Name) == filepath.Clean(dir) && ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				return false
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return true
			}
			s.logger.Warn("movable dir watch error", "error", err)
		}
	}
}
