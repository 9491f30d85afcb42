package source

import (
	"fmt"

	"FeedbackResponder/internal/domain"
	"FeedbackResponder/internal/ports"
)

// Registry maps platforms to their review source variant.
type Registry struct {
	sources map[domain.Platform]ports.ReviewSource
}

// NewRegistry builds a registry with the given sources registered.
func NewRegistry(sources ...ports.ReviewSource) *Registry {
	r := &Registry{sources: map[domain.Platform]ports.ReviewSource{}}
	for _, s := range sources {
		r.Register(s)
	}
	return r
}

// Register adds or replaces the source for its platform.
func (r *Registry) Register(s ports.ReviewSource) {
	if r.sources == nil {
		r.sources = map[domain.Platform]ports.ReviewSource{}
	}
	r.sources[s.Platform()] = s
}

// Resolve returns the source for a platform or an error if it is absent.
func (r *Registry) Resolve(p domain.Platform) (ports.ReviewSource, error) {
	if s, ok := r.sources[p]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("review source %s is not registered", p)
}
