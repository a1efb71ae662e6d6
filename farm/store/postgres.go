package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sweetpotato0/agriadvisor/config"
	agrierrors "github.com/sweetpotato0/agriadvisor/errors"
	"github.com/sweetpotato0/agriadvisor/farm"
)

// PostgresStore implements farm.Store using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DefaultPostgresConfig returns default PostgreSQL configuration.
func DefaultPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		DBName:   "agriadvisor",
		SSLMode:  "disable",
	}
}

// Validate checks the connection configuration.
func (c *PostgresConfig) Validate() error {
	return config.NewValidator().
		RequireNonEmpty("host", c.Host).
		ValidatePort("port", c.Port).
		RequireNonEmpty("dbname", c.DBName).
		ValidateOneOf("sslmode", c.SSLMode, "disable", "allow", "prefer", "require", "verify-ca", "verify-full").
		Err()
}

// NewPostgresStore creates a PostgreSQL-backed farm store.
func NewPostgresStore(cfg *PostgresConfig) (*PostgresStore, error) {
	if cfg == nil {
		cfg = DefaultPostgresConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.createTables(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) createTables(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS farmers (
		id VARCHAR(255) PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		phone VARCHAR(20),
		language VARCHAR(5) NOT NULL DEFAULT 'en',
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		location_name VARCHAR(200),
		created_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS farms (
		id VARCHAR(255) PRIMARY KEY,
		farmer_id VARCHAR(255) NOT NULL REFERENCES farmers(id),
		land_size_acres DOUBLE PRECISION NOT NULL DEFAULT 1.0,
		irrigation_type VARCHAR(20) NOT NULL DEFAULT 'rainfed'
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_farms_farmer_id ON farms(farmer_id);
	CREATE TABLE IF NOT EXISTS crops (
		id VARCHAR(255) PRIMARY KEY,
		farmer_id VARCHAR(255) NOT NULL REFERENCES farmers(id),
		crop_type VARCHAR(100) NOT NULL,
		variety VARCHAR(100),
		sowing_date DATE NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_crops_farmer_id ON crops(farmer_id);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// GetFarmer returns the farmer record.
func (s *PostgresStore) GetFarmer(ctx context.Context, farmerID string) (*farm.Farmer, error) {
	f := &farm.Farmer{}
	query := `SELECT id, name, COALESCE(phone, ''), language, latitude, longitude,
	          COALESCE(location_name, ''), created_at FROM farmers WHERE id = $1`
	err := s.db.QueryRowContext(ctx, query, farmerID).Scan(
		&f.ID, &f.Name, &f.Phone, &f.Language, &f.Latitude, &f.Longitude, &f.LocationName, &f.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("farmer %s: %w", farmerID, agrierrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get farmer: %w", err)
	}
	return f, nil
}

// SaveFarmer creates or updates a farmer record.
func (s *PostgresStore) SaveFarmer(ctx context.Context, farmer *farm.Farmer) error {
	if farmer == nil || farmer.ID == "" {
		return fmt.Errorf("farmer id required: %w", agrierrors.ErrInvalidInput)
	}
	if farmer.CreatedAt.IsZero() {
		farmer.CreatedAt = time.Now()
	}
	query := `
	INSERT INTO farmers (id, name, phone, language, latitude, longitude, location_name, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		phone = EXCLUDED.phone,
		language = EXCLUDED.language,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		location_name = EXCLUDED.location_name
	`
	_, err := s.db.ExecContext(ctx, query,
		farmer.ID, farmer.Name, farmer.Phone, farmer.Language,
		farmer.Latitude, farmer.Longitude, farmer.LocationName, farmer.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save farmer: %w", err)
	}
	return nil
}

// GetFarm returns the farmer's farm record.
func (s *PostgresStore) GetFarm(ctx context.Context, farmerID string) (*farm.Farm, error) {
	f := &farm.Farm{}
	query := `SELECT id, farmer_id, land_size_acres, irrigation_type FROM farms WHERE farmer_id = $1`
	err := s.db.QueryRowContext(ctx, query, farmerID).Scan(
		&f.ID, &f.FarmerID, &f.LandSizeAcres, &f.IrrigationType)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("farm for farmer %s: %w", farmerID, agrierrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get farm: %w", err)
	}
	return f, nil
}

// SaveFarm creates or updates a farm record.
func (s *PostgresStore) SaveFarm(ctx context.Context, f *farm.Farm) error {
	if f == nil || f.FarmerID == "" {
		return fmt.Errorf("farmer id required: %w", agrierrors.ErrInvalidInput)
	}
	if f.ID == "" {
		f.ID = fmt.Sprintf("farm:%d", time.Now().UnixNano())
	}
	query := `
	INSERT INTO farms (id, farmer_id, land_size_acres, irrigation_type)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (farmer_id) DO UPDATE SET
		land_size_acres = EXCLUDED.land_size_acres,
		irrigation_type = EXCLUDED.irrigation_type
	`
	_, err := s.db.ExecContext(ctx, query, f.ID, f.FarmerID, f.LandSizeAcres, f.IrrigationType)
	if err != nil {
		return fmt.Errorf("failed to save farm: %w", err)
	}
	return nil
}

// ListCrops returns the farmer's crop records in insertion order.
func (s *PostgresStore) ListCrops(ctx context.Context, farmerID string) ([]farm.Crop, error) {
	query := `SELECT id, farmer_id, crop_type, COALESCE(variety, ''), sowing_date, is_active
	          FROM crops WHERE farmer_id = $1 ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query, farmerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list crops: %w", err)
	}
	defer rows.Close()

	crops := make([]farm.Crop, 0)
	for rows.Next() {
		var c farm.Crop
		if err := rows.Scan(&c.ID, &c.FarmerID, &c.CropType, &c.Variety, &c.SowingDate, &c.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan crop: %w", err)
		}
		crops = append(crops, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating crops: %w", err)
	}
	return crops, nil
}

// RegisterCrop adds a crop record and returns its assigned ID.
func (s *PostgresStore) RegisterCrop(ctx context.Context, crop *farm.Crop) (string, error) {
	if crop == nil || crop.FarmerID == "" || crop.CropType == "" {
		return "", fmt.Errorf("farmer id and crop type required: %w", agrierrors.ErrInvalidInput)
	}
	if crop.ID == "" {
		crop.ID = fmt.Sprintf("crop:%d", time.Now().UnixNano())
	}
	query := `
	INSERT INTO crops (id, farmer_id, crop_type, variety, sowing_date, is_active, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		crop.ID, crop.FarmerID, crop.CropType, crop.Variety, crop.SowingDate, crop.IsActive, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to register crop: %w", err)
	}
	return crop.ID, nil
}

// RemoveCrop deletes a crop record by ID.
func (s *PostgresStore) RemoveCrop(ctx context.Context, cropID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM crops WHERE id = $1", cropID)
	if err != nil {
		return fmt.Errorf("failed to remove crop: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("crop %s: %w", cropID, agrierrors.ErrNotFound)
	}
	return nil
}

// Close closes the PostgreSQL connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Ping checks if the PostgreSQL connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
