package engine

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// TokenGenerator generates session tokens.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session tokens.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined tokens in order, for tests.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order.
//
//	gen := NewFixedGenerator("s-1", "s-2")
//	gen.Generate() // "s-1"
//	gen.Generate() // "s-2"
//	gen.Generate() // panic: all tokens exhausted
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
//
// Panics if all tokens have been consumed, which catches tests that open
// more sessions than they planned for.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic("FixedGenerator: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}

// Registry keeps one Engine per session token with no sharing between
// sessions.
//
// Thread-safety: all methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Engine
	gen      TokenGenerator
	opts     []Option
}

// NewRegistry creates a registry. Every session's Engine is built with opts.
func NewRegistry(gen TokenGenerator, opts ...Option) *Registry {
	return &Registry{
		sessions: make(map[string]*Engine),
		gen:      gen,
		opts:     opts,
	}
}

// Create opens a new session and returns its token and Engine.
func (r *Registry) Create() (string, *Engine, error) {
	token := r.gen.Generate()
	e := New(r.opts...)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[token]; exists {
		return "", nil, newDuplicateSessionError(token)
	}
	r.sessions[token] = e
	e.logger.Debug("session created", "session", token)
	return token, e, nil
}

// Get returns the Engine for token.
func (r *Registry) Get(token string) (*Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[token]
	if !ok {
		return nil, newUnknownSessionError(token)
	}
	return e, nil
}

// Close drops the session. Closing an unknown token is an error.
func (r *Registry) Close(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[token]; !ok {
		return newUnknownSessionError(token)
	}
	delete(r.sessions, token)
	return nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Tokens returns the open session tokens in sorted order. UUIDv7 tokens sort
// by creation time.
func (r *Registry) Tokens() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tokens := make([]string, 0, len(r.sessions))
	for t := range r.sessions {
		tokens = append(tokens, t)
	}
	slices.Sort(tokens)
	return tokens
}
