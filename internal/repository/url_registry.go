package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/iconidentify/mediagrab/internal/domain"
)

// tokenLength is the number of hex characters kept from the URL digest.
const tokenLength = 8

// URLToken derives the short token for a URL: the first 8 hex characters
// of its SHA-256 digest. Deterministic, so re-registration is idempotent.
func URLToken(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])[:tokenLength]
}

// InMemoryURLRegistry implements URLRegistry using in-memory storage.
// Entries live for the process lifetime; a restart invalidates outstanding
// tokens, which callers surface as stale references.
type InMemoryURLRegistry struct {
	mu   sync.RWMutex
	urls map[string]string
}

// NewInMemoryURLRegistry creates a new in-memory URL registry.
func NewInMemoryURLRegistry() *InMemoryURLRegistry {
	return &InMemoryURLRegistry{
		urls: make(map[string]string),
	}
}

// Register stores the URL and returns its token.
func (r *InMemoryURLRegistry) Register(ctx context.Context, rawURL string) (string, error) {
	token := URLToken(rawURL)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.urls[token] = rawURL
	return token, nil
}

// Lookup resolves a token back to its URL.
func (r *InMemoryURLRegistry) Lookup(ctx context.Context, token string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	url, ok := r.urls[token]
	if !ok {
		return "", domain.ErrStaleReference
	}
	return url, nil
}
