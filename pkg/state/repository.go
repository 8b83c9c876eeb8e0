package state

import (
	"context"
	"sync"
)

// Repository loads and saves the deactivation state.
type Repository interface {
	// Load retrieves the last saved state.
	// Returns an empty state and nil error if no state exists.
	Load(ctx context.Context) (State, error)

	// Save persists the state atomically.
	Save(ctx context.Context, state State) error
}

// MemoryRepository keeps state in memory.
type MemoryRepository struct {
	mu    sync.Mutex
	state State
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Load returns a copy of the stored state.
func (r *MemoryRepository) Load(ctx context.Context) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.clone(), nil
}

// Save replaces the stored state.
func (r *MemoryRepository) Save(ctx context.Context, s State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = s.clone()
	return nil
}
