// Package conversation implements the slot-filling conversation state:
// one pending record per farmer holding the intent being served, the
// values collected so far, and the fields still missing. State older than
// the staleness window is treated as absent and deleted lazily on read.
package conversation

import (
	"context"
	"errors"
	"time"

	agrierrors "github.com/sweetpotato0/agriadvisor/errors"
	"github.com/sweetpotato0/agriadvisor/farm"
	"github.com/sweetpotato0/agriadvisor/intents"
)

// StaleAfter is the staleness window. A pending conversation older than
// this is discarded and the next message starts fresh.
const StaleAfter = time.Hour

// State is the per-farmer slot-filling record. At most one exists per
// farmer; its existence means the farmer owes an answer to
// CurrentQuestionField.
type State struct {
	FarmerID             string            `json:"farmer_id" bson:"_id"`
	PendingIntent        intents.Intent    `json:"pending_intent" bson:"pending_intent"`
	Collected            map[string]string `json:"collected_context" bson:"collected_context"`
	MissingFields        []string          `json:"missing_fields" bson:"missing_fields"`
	CurrentQuestionField string            `json:"current_question_field" bson:"current_question_field"`
	UpdatedAt            time.Time         `json:"updated_at" bson:"updated_at"`
}

// Stale reports whether the state has outlived the staleness window.
func (s *State) Stale(now time.Time) bool {
	return now.Sub(s.UpdatedAt) > StaleAfter
}

// Store persists conversation state keyed by farmer ID.
type Store interface {
	// Get returns the farmer's state, or errors.ErrNotFound.
	Get(ctx context.Context, farmerID string) (*State, error)

	// Save creates or replaces the farmer's state.
	Save(ctx context.Context, state *State) error

	// Delete removes the farmer's state. Deleting absent state is not an error.
	Delete(ctx context.Context, farmerID string) error

	// Close releases store resources.
	Close() error
}

// Read loads the farmer's state, treating stale state as absent and
// deleting it in passing. Returns nil when no live state exists.
func Read(ctx context.Context, store Store, farmerID string, now time.Time) (*State, error) {
	state, err := store.Get(ctx, farmerID)
	if err != nil {
		if errors.Is(err, agrierrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if state.Stale(now) {
		if err := store.Delete(ctx, farmerID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return state, nil
}

// MissingFields returns the subset of required fields not satisfiable
// from the collected values or the context snapshot, preserving order.
// crop_type and sowing_date derive from the primary active crop, location
// from the farmer's coordinates; every other field must be collected.
func MissingFields(required []string, snap *farm.ContextSnapshot, collected map[string]string) []string {
	var missing []string
	for _, field := range required {
		if collected[field] != "" {
			continue
		}
		switch field {
		case intents.FieldCropType:
			if snap != nil && snap.PrimaryCrop != nil && snap.PrimaryCrop.CropType != "" {
				continue
			}
		case intents.FieldSowingDate:
			if snap != nil && snap.PrimaryCrop != nil && !snap.PrimaryCrop.SowingDate.IsZero() {
				continue
			}
		case intents.FieldLocation:
			if snap != nil && snap.HasLocation {
				continue
			}
		}
		missing = append(missing, field)
	}
	return missing
}

// ResolveField returns the value for a satisfied required field, checking
// collected values before the snapshot derivations.
func ResolveField(field string, snap *farm.ContextSnapshot, collected map[string]string) string {
	if v := collected[field]; v != "" {
		return v
	}
	if snap == nil {
		return ""
	}
	switch field {
	case intents.FieldCropType:
		if snap.PrimaryCrop != nil {
			return snap.PrimaryCrop.CropType
		}
	case intents.FieldSowingDate:
		if snap.PrimaryCrop != nil && !snap.PrimaryCrop.SowingDate.IsZero() {
			return snap.PrimaryCrop.SowingDate.Format("2006-01-02")
		}
	case intents.FieldLocation:
		if snap.HasLocation {
			return snap.Farmer.LocationName
		}
	}
	return ""
}
