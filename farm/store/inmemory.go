// Package store provides farm.Store implementations.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	agrierrors "github.com/sweetpotato0/agriadvisor/errors"
	"github.com/sweetpotato0/agriadvisor/farm"
)

// InMemoryStore is a thread-safe in-memory farm store, suitable for tests
// and single-process deployments.
type InMemoryStore struct {
	mu      sync.RWMutex
	farmers map[string]*farm.Farmer
	farms   map[string]*farm.Farm // keyed by farmer ID
	crops   []farm.Crop
	nextID  int
}

// NewInMemoryStore creates an empty in-memory farm store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		farmers: make(map[string]*farm.Farmer),
		farms:   make(map[string]*farm.Farm),
	}
}

// GetFarmer returns the farmer record.
func (s *InMemoryStore) GetFarmer(ctx context.Context, farmerID string) (*farm.Farmer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.farmers[farmerID]
	if !ok {
		return nil, fmt.Errorf("farmer %s: %w", farmerID, agrierrors.ErrNotFound)
	}
	cp := *f
	return &cp, nil
}

// SaveFarmer creates or updates a farmer record.
func (s *InMemoryStore) SaveFarmer(ctx context.Context, farmer *farm.Farmer) error {
	if farmer == nil || farmer.ID == "" {
		return fmt.Errorf("farmer id required: %w", agrierrors.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *farmer
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.farmers[cp.ID] = &cp
	return nil
}

// GetFarm returns the farmer's farm record.
func (s *InMemoryStore) GetFarm(ctx context.Context, farmerID string) (*farm.Farm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.farms[farmerID]
	if !ok {
		return nil, fmt.Errorf("farm for farmer %s: %w", farmerID, agrierrors.ErrNotFound)
	}
	cp := *f
	return &cp, nil
}

// SaveFarm creates or updates a farm record.
func (s *InMemoryStore) SaveFarm(ctx context.Context, f *farm.Farm) error {
	if f == nil || f.FarmerID == "" {
		return fmt.Errorf("farmer id required: %w", agrierrors.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *f
	if cp.ID == "" {
		s.nextID++
		cp.ID = fmt.Sprintf("farm:%d", s.nextID)
	}
	s.farms[cp.FarmerID] = &cp
	return nil
}

// ListCrops returns the farmer's crop records in insertion order.
func (s *InMemoryStore) ListCrops(ctx context.Context, farmerID string) ([]farm.Crop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []farm.Crop
	for _, c := range s.crops {
		if c.FarmerID == farmerID {
			out = append(out, c)
		}
	}
	return out, nil
}

// RegisterCrop adds a crop record and returns its assigned ID.
func (s *InMemoryStore) RegisterCrop(ctx context.Context, crop *farm.Crop) (string, error) {
	if crop == nil || crop.FarmerID == "" || crop.CropType == "" {
		return "", fmt.Errorf("farmer id and crop type required: %w", agrierrors.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *crop
	if cp.ID == "" {
		s.nextID++
		cp.ID = fmt.Sprintf("crop:%d", s.nextID)
	}
	s.crops = append(s.crops, cp)
	return cp.ID, nil
}

// RemoveCrop deletes a crop record by ID.
func (s *InMemoryStore) RemoveCrop(ctx context.Context, cropID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.crops {
		if c.ID == cropID {
			s.crops = append(s.crops[:i], s.crops[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("crop %s: %w", cropID, agrierrors.ErrNotFound)
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
