// Package farm holds farmer, farm, and crop records plus the context
// snapshot the orchestrator builds fresh on every turn.
package farm

import (
	"context"
	"time"
)

// Farmer is a registered farmer.
type Farmer struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Phone        string    `json:"phone" bson:"phone"`
	Language     string    `json:"language" bson:"language"` // ISO 639-1, default "en"
	Latitude     *float64  `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty" bson:"longitude,omitempty"`
	LocationName string    `json:"location_name,omitempty" bson:"location_name,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// HasLocation reports whether the farmer has recorded coordinates.
func (f *Farmer) HasLocation() bool {
	return f.Latitude != nil && f.Longitude != nil
}

// Farm describes the farmer's land.
type Farm struct {
	ID             string  `json:"id" bson:"_id"`
	FarmerID       string  `json:"farmer_id" bson:"farmer_id"`
	LandSizeAcres  float64 `json:"land_size_acres" bson:"land_size_acres"`
	IrrigationType string  `json:"irrigation_type" bson:"irrigation_type"` // rainfed, canal, borewell, drip, sprinkler
}

// Crop is one planting record.
type Crop struct {
	ID         string    `json:"id" bson:"_id"`
	FarmerID   string    `json:"farmer_id" bson:"farmer_id"`
	CropType   string    `json:"crop_type" bson:"crop_type"`
	Variety    string    `json:"variety,omitempty" bson:"variety,omitempty"`
	SowingDate time.Time `json:"sowing_date" bson:"sowing_date"`
	IsActive   bool      `json:"is_active" bson:"is_active"`
}

// ContextSnapshot assembles everything known about a farmer for one turn.
// Built fresh from the store on every turn, never cached across turns.
type ContextSnapshot struct {
	Farmer        *Farmer
	Farm          *Farm
	Crops         []Crop
	PrimaryCrop   *Crop // first active crop, nil if none
	HasLocation   bool
	HasActiveCrop bool
}

// IrrigationType returns the farm's irrigation method, defaulting to
// rainfed when no farm record exists.
func (s *ContextSnapshot) IrrigationType() string {
	if s.Farm == nil || s.Farm.IrrigationType == "" {
		return "rainfed"
	}
	return s.Farm.IrrigationType
}

// Snapshot derives the per-turn view from raw records.
func Snapshot(farmer *Farmer, farm *Farm, crops []Crop) *ContextSnapshot {
	snap := &ContextSnapshot{
		Farmer: farmer,
		Farm:   farm,
		Crops:  crops,
	}
	if farmer != nil {
		snap.HasLocation = farmer.HasLocation()
	}
	for i := range crops {
		if crops[i].IsActive {
			snap.PrimaryCrop = &crops[i]
			snap.HasActiveCrop = true
			break
		}
	}
	return snap
}

// Store persists farmer, farm, and crop records.
type Store interface {
	// GetFarmer returns the farmer record, or errors.ErrNotFound.
	GetFarmer(ctx context.Context, farmerID string) (*Farmer, error)

	// SaveFarmer creates or updates a farmer record.
	SaveFarmer(ctx context.Context, farmer *Farmer) error

	// GetFarm returns the farmer's farm record, or errors.ErrNotFound.
	GetFarm(ctx context.Context, farmerID string) (*Farm, error)

	// SaveFarm creates or updates a farm record.
	SaveFarm(ctx context.Context, farm *Farm) error

	// ListCrops returns all crop records for the farmer, in insertion order.
	ListCrops(ctx context.Context, farmerID string) ([]Crop, error)

	// RegisterCrop adds a crop record and returns its assigned ID.
	RegisterCrop(ctx context.Context, crop *Crop) (string, error)

	// RemoveCrop deletes a crop record. Used to compensate a failed turn.
	RemoveCrop(ctx context.Context, cropID string) error

	// Close releases store resources.
	Close() error
}

// Load builds a fresh context snapshot from the store. A missing farm
// record is tolerated; a missing farmer is not.
func Load(ctx context.Context, store Store, farmerID string) (*ContextSnapshot, error) {
	farmer, err := store.GetFarmer(ctx, farmerID)
	if err != nil {
		return nil, err
	}
	f, err := store.GetFarm(ctx, farmerID)
	if err != nil {
		f = nil
	}
	crops, err := store.ListCrops(ctx, farmerID)
	if err != nil {
		crops = nil
	}
	return Snapshot(farmer, f, crops), nil
}
