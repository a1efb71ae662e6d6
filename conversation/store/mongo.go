package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sweetpotato0/agriadvisor/conversation"
	agrierrors "github.com/sweetpotato0/agriadvisor/errors"
)

// MongoStore implements conversation.Store using MongoDB. A TTL index on
// updated_at expires records at the staleness window.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// MongoConfig holds MongoDB connection configuration.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// DefaultMongoConfig returns default MongoDB configuration.
func DefaultMongoConfig() *MongoConfig {
	return &MongoConfig{
		URI:        "mongodb://localhost:27017",
		Database:   "agriadvisor",
		Collection: "conversation_states",
	}
}

// NewMongoStore creates a MongoDB-backed conversation store.
func NewMongoStore(config *MongoConfig) (*MongoStore, error) {
	if config == nil {
		config = DefaultMongoConfig()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	store := &MongoStore{
		client:     client,
		collection: client.Database(config.Database).Collection(config.Collection),
	}
	if err := store.createIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return store, nil
}

func (s *MongoStore) createIndexes(ctx context.Context) error {
	ttl := int32(conversation.StaleAfter.Seconds())
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "updated_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(ttl),
	})
	return err
}

// Get returns the farmer's state.
func (s *MongoStore) Get(ctx context.Context, farmerID string) (*conversation.State, error) {
	state := &conversation.State{}
	err := s.collection.FindOne(ctx, bson.M{"_id": farmerID}).Decode(state)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("conversation state for farmer %s: %w", farmerID, agrierrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get state from MongoDB: %w", err)
	}
	return state, nil
}

// Save creates or replaces the farmer's state.
func (s *MongoStore) Save(ctx context.Context, state *conversation.State) error {
	if state == nil || state.FarmerID == "" {
		return fmt.Errorf("farmer id required: %w", agrierrors.ErrInvalidInput)
	}

	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": state.FarmerID}, state, opts)
	if err != nil {
		return fmt.Errorf("failed to save state to MongoDB: %w", err)
	}
	return nil
}

// Delete removes the farmer's state. Absent state is not an error.
func (s *MongoStore) Delete(ctx context.Context, farmerID string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": farmerID})
	if err != nil {
		return fmt.Errorf("failed to delete state from MongoDB: %w", err)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ping checks if the MongoDB connection is alive.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}
