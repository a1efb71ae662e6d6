package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/sweetpotato0/agriadvisor/config"
	"github.com/sweetpotato0/agriadvisor/conversation"
	agrierrors "github.com/sweetpotato0/agriadvisor/errors"
)

// PostgresStore implements conversation.Store using PostgreSQL.
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

// NewPostgresStore creates a PostgreSQL-backed conversation store.
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
	if err := store.createTable(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) createTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS conversation_states (
		farmer_id VARCHAR(255) PRIMARY KEY,
		pending_intent VARCHAR(50) NOT NULL,
		collected_context JSONB NOT NULL DEFAULT '{}',
		missing_fields JSONB NOT NULL DEFAULT '[]',
		current_question_field VARCHAR(50) NOT NULL DEFAULT '',
		updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversation_states_updated_at ON conversation_states(updated_at);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// Get returns the farmer's state.
func (s *PostgresStore) Get(ctx context.Context, farmerID string) (*conversation.State, error) {
	state := &conversation.State{}
	var collectedJSON, missingJSON []byte

	query := `SELECT farmer_id, pending_intent, collected_context, missing_fields,
	          current_question_field, updated_at FROM conversation_states WHERE farmer_id = $1`
	err := s.db.QueryRowContext(ctx, query, farmerID).Scan(
		&state.FarmerID, &state.PendingIntent, &collectedJSON, &missingJSON,
		&state.CurrentQuestionField, &state.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("conversation state for farmer %s: %w", farmerID, agrierrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get state: %w", err)
	}

	if err := json.Unmarshal(collectedJSON, &state.Collected); err != nil {
		return nil, fmt.Errorf("failed to unmarshal collected context: %w", err)
	}
	if err := json.Unmarshal(missingJSON, &state.MissingFields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal missing fields: %w", err)
	}
	return state, nil
}

// Save creates or replaces the farmer's state.
func (s *PostgresStore) Save(ctx context.Context, state *conversation.State) error {
	if state == nil || state.FarmerID == "" {
		return fmt.Errorf("farmer id required: %w", agrierrors.ErrInvalidInput)
	}

	collectedJSON, err := json.Marshal(state.Collected)
	if err != nil {
		return fmt.Errorf("failed to marshal collected context: %w", err)
	}
	missingJSON, err := json.Marshal(state.MissingFields)
	if err != nil {
		return fmt.Errorf("failed to marshal missing fields: %w", err)
	}

	query := `
	INSERT INTO conversation_states (farmer_id, pending_intent, collected_context, missing_fields, current_question_field, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (farmer_id) DO UPDATE SET
		pending_intent = EXCLUDED.pending_intent,
		collected_context = EXCLUDED.collected_context,
		missing_fields = EXCLUDED.missing_fields,
		current_question_field = EXCLUDED.current_question_field,
		updated_at = EXCLUDED.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		state.FarmerID, state.PendingIntent, collectedJSON, missingJSON,
		state.CurrentQuestionField, state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Delete removes the farmer's state. Absent state is not an error.
func (s *PostgresStore) Delete(ctx context.Context, farmerID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM conversation_states WHERE farmer_id = $1", farmerID)
	if err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
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
