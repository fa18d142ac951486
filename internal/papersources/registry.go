package papersources

import (
	"sync"
)

// Registry holds paper sources in priority order. The order of Register calls
// is the fallback chain: the first enabled source is tried first.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	sources []PaperSource
}

// NewRegistry creates a new, empty source registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a source to the fallback chain.
// If a source with the same type already exists it is replaced in place,
// keeping its original priority.
func (r *Registry) Register(source PaperSource) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.sources {
		if s.SourceType() == source.SourceType() {
			r.sources[i] = source
			return
		}
	}
	r.sources = append(r.sources, source)
}

// EnabledSources returns the enabled sources in priority order.
// The returned slice is a snapshot.
func (r *Registry) EnabledSources() []PaperSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]PaperSource, 0, len(r.sources))
	for _, s := range r.sources {
		if s.IsEnabled() {
			out = append(out, s)
		}
	}
	return out
}
