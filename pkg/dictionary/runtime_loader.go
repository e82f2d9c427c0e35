package dictionary

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
)

// RuntimeCatalog holds the mutable catalog of a running process: sources can
// be switched on and off while serving, and Reload feeds the current
// selection into a fresh sink. An index cannot forget entries, so switching
// a source off only takes effect through Reload into a new index.
type RuntimeCatalog struct {
	loader  *Loader
	sources []Source
	mu      sync.RWMutex
}

// NewRuntimeCatalog creates a runtime catalog over a copy of sources.
func NewRuntimeCatalog(loader *Loader, sources []Source) *RuntimeCatalog {
	return &RuntimeCatalog{
		loader:  loader,
		sources: slices.Clone(sources),
	}
}

// Sources returns a copy of the current catalog.
func (rc *RuntimeCatalog) Sources() []Source {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return slices.Clone(rc.sources)
}

// Restore replaces the catalog with sources, typically a snapshot taken by
// Sources before a toggle whose reload failed.
func (rc *RuntimeCatalog) Restore(sources []Source) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.sources = slices.Clone(sources)
}

// SetEnabled switches the named source.
func (rc *RuntimeCatalog) SetEnabled(name string, enabled bool) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	for i := range rc.sources {
		if rc.sources[i].Name == name {
			rc.sources[i].Enabled = enabled
			log.Debugf("Dictionary %s enabled=%t", name, enabled)
			return nil
		}
	}
	return fmt.Errorf("no dictionary named %q", name)
}

// SetTagEnabled switches every source carrying tag and returns how many were
// touched.
func (rc *RuntimeCatalog) SetTagEnabled(tag string, enabled bool) int {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	n := 0
	for i := range rc.sources {
		if rc.sources[i].Tag == tag {
			rc.sources[i].Enabled = enabled
			n++
		}
	}
	log.Debugf("Switched %d dictionaries tagged %s to enabled=%t", n, tag, enabled)
	return n
}

// Reload loads the current selection into sink.
func (rc *RuntimeCatalog) Reload(ctx context.Context, sink Inserter) (Stats, error) {
	return rc.loader.Load(ctx, rc.Sources(), sink)
}
