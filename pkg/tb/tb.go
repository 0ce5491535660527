// Package tb tracks configured Syzygy tablebase directories. It
// validates paths and inventories table files; probing is out of scope
// until the search grows a probe point.
package tb

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Syzygy table files come in WDL and DTZ flavors.
var tableSuffixes = []string{".rtbw", ".rtbz"}

type Registry struct {
	mu    sync.Mutex
	paths []string
	count int
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Init replaces the registered directories with those in path, a list
// separated by the platform list separator (':' on unix). An empty path
// or the "<empty>" placeholder clears the registry.
func (r *Registry) Init(path string) error {
	r.Clear()
	if path == "" || path == "<empty>" {
		return nil
	}
	var sep = string(os.PathListSeparator)
	var count = 0
	var dirs []string
	for _, dir := range strings.Split(path, sep) {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("tablebases: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			var ext = filepath.Ext(entry.Name())
			for _, suffix := range tableSuffixes {
				if ext == suffix {
					count++
					break
				}
			}
		}
		dirs = append(dirs, dir)
	}
	r.mu.Lock()
	r.paths = dirs
	r.count = count
	r.mu.Unlock()
	return nil
}

func (r *Registry) Clear() {
	r.mu.Lock()
	r.paths = nil
	r.count = 0
	r.mu.Unlock()
}

// Count reports how many table files the registered directories hold.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func (r *Registry) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}
