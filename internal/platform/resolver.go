package platform

import (
	"github.com/iconidentify/mediagrab/internal/domain"
)

// Resolver maps a URL to the adapter that claims it. Adapters are checked
// in registration order and the first match wins, so overlapping claims
// resolve deterministically.
type Resolver struct {
	adapters []Adapter
}

// NewResolver creates a resolver over an ordered adapter list.
func NewResolver(adapters []Adapter) *Resolver {
	return &Resolver{adapters: adapters}
}

// Resolve returns the first adapter claiming the URL, or
// domain.ErrUnsupportedSource when none does.
func (r *Resolver) Resolve(rawURL string) (Adapter, error) {
	for _, a := range r.adapters {
		if a.CanHandle(rawURL) {
			return a, nil
		}
	}
	return nil, domain.ErrUnsupportedSource
}

// Supported lists the platforms in resolution order.
func (r *Resolver) Supported() []domain.Platform {
	names := make([]domain.Platform, 0, len(r.adapters))
	for _, a := range r.adapters {
		names = append(names, a.Name())
	}
	return names
}
