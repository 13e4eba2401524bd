// ABOUTME: In-memory registry of live decision chains for MCP sessions
// ABOUTME: Owns chain handles and their diagnostic recorders behind a mutex

package mcp

import (
	"errors"
	"fmt"
	"sync"
	"time"

	decide "github.com/harper/decide-standalone"
)

// ErrRegistryFull is returned when creating a chain would exceed the cap.
var ErrRegistryFull = errors.New("chain registry is full")

// ErrChainNotFound is returned when an operation names an unknown chain.
var ErrChainNotFound = errors.New("chain not found")

// entry pairs a live chain with the recorder capturing its diagnostics.
type entry struct {
	chain    *decide.Chain[any]
	recorder *decide.Recorder
	created  time.Time
}

// Registry owns the chains created by an MCP session. Chains are
// single-owner values, so the registry serializes every touch: handlers
// reach a chain only through With, which runs the callback under the lock.
type Registry struct {
	mu      sync.Mutex
	max     int
	entries map[string]*entry
}

// NewRegistry returns a registry holding at most max live chains.
func NewRegistry(max int) *Registry {
	return &Registry{
		max:     max,
		entries: make(map[string]*entry),
	}
}

// Create registers a new chain wired to a fresh recorder and returns the
// chain's ID and creation time.
func (r *Registry) Create() (string, time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) >= r.max {
		return "", time.Time{}, fmt.Errorf("%w: %d chains live, limit %d",
			ErrRegistryFull, len(r.entries), r.max)
	}

	rec := decide.NewRecorder()
	e := &entry{
		chain:    decide.New[any]().WithDiagnostics(rec),
		recorder: rec,
		created:  time.Now(),
	}
	id := e.chain.ID()
	r.entries[id] = e
	return id, e.created, nil
}

// With runs fn against the named chain and its recorder while holding the
// registry lock.
func (r *Registry) With(id string, fn func(c *decide.Chain[any], rec *decide.Recorder) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrChainNotFound, id)
	}
	return fn(e.chain, e.recorder)
}

// Delete removes the named chain. It reports whether the chain existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}

// Len returns the number of live chains.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
