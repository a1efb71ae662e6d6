// Package store provides conversation.Store implementations.
package store

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/sweetpotato0/agriadvisor/conversation"
	agrierrors "github.com/sweetpotato0/agriadvisor/errors"
)

// InMemoryStore is a thread-safe in-memory conversation store.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[string]*conversation.State
}

// NewInMemoryStore creates an empty in-memory conversation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]*conversation.State)}
}

// Get returns the farmer's state.
func (s *InMemoryStore) Get(ctx context.Context, farmerID string) (*conversation.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[farmerID]
	if !ok {
		return nil, fmt.Errorf("conversation state for farmer %s: %w", farmerID, agrierrors.ErrNotFound)
	}
	return copyState(state), nil
}

// Save creates or replaces the farmer's state.
func (s *InMemoryStore) Save(ctx context.Context, state *conversation.State) error {
	if state == nil || state.FarmerID == "" {
		return fmt.Errorf("farmer id required: %w", agrierrors.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state.FarmerID] = copyState(state)
	return nil
}

// Delete removes the farmer's state. Absent state is not an error.
func (s *InMemoryStore) Delete(ctx context.Context, farmerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, farmerID)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}

func copyState(state *conversation.State) *conversation.State {
	cp := *state
	cp.Collected = maps.Clone(state.Collected)
	cp.MissingFields = append([]string(nil), state.MissingFields...)
	return &cp
}
