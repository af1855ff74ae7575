package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readconcern"
	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"

	"github.com/taskmind-ai/taskmind/types"
)

// mongoAgentDoc is the MongoDB document shape. The agent state is stored as
// one JSON string, keyed by the agent id as _id.
type mongoAgentDoc struct {
	ID       string `bson:"_id"`
	Name     string `bson:"name"`
	Role     string `bson:"role"`
	Document string `bson:"document"`
}

// MongoAgentStore is a MongoDB-backed implementation of AgentStore.
// Majority read and write concerns give read-after-write visibility.
type MongoAgentStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	config StoreConfig
}

// NewMongoAgentStore connects to the configured MongoDB deployment
func NewMongoAgentStore(config StoreConfig) (*MongoAgentStore, error) {
	opts := options.Client().
		ApplyURI(config.Mongo.URI).
		SetWriteConcern(writeconcern.Majority()).
		SetReadConcern(readconcern.Majority())

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	coll := client.Database(config.Mongo.Database).Collection(config.Mongo.Collection)
	return &MongoAgentStore{client: client, coll: coll, config: config}, nil
}

// EnsureSchema is a no-op: MongoDB creates the collection on first write.
func (s *MongoAgentStore) EnsureSchema(ctx context.Context) error {
	return nil
}

// Save upserts the agent document keyed by _id
func (s *MongoAgentStore) Save(ctx context.Context, state *types.AgentState) error {
	if state == nil || state.ID == "" {
		return ErrInvalidInput
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode agent state: %w", err)
	}

	doc := mongoAgentDoc{
		ID:       state.ID,
		Name:     state.Name,
		Role:     state.Role,
		Document: string(data),
	}

	_, err = s.coll.ReplaceOne(ctx,
		bson.M{"_id": state.ID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save agent state: %w", err)
	}
	return nil
}

// Get retrieves an agent state by id
func (s *MongoAgentStore) Get(ctx context.Context, id string) (*types.AgentState, error) {
	var doc mongoAgentDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agent state: %w", err)
	}

	var state types.AgentState
	if err := json.Unmarshal([]byte(doc.Document), &state); err != nil {
		return nil, fmt.Errorf("corrupt agent document %s: %w", id, err)
	}
	return &state, nil
}

// List returns stored agents up to the configured limit, ordered by _id
func (s *MongoAgentStore) List(ctx context.Context) ([]*types.AgentState, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(s.config.listLimit())),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list agent states: %w", err)
	}
	defer cursor.Close(ctx)

	result := make([]*types.AgentState, 0)
	for cursor.Next(ctx) {
		var doc mongoAgentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode agent document: %w", err)
		}
		var state types.AgentState
		if err := json.Unmarshal([]byte(doc.Document), &state); err != nil {
			return nil, fmt.Errorf("corrupt agent document %s: %w", doc.ID, err)
		}
		result = append(result, &state)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate agent documents: %w", err)
	}
	return result, nil
}

// Ping checks if the store is healthy
func (s *MongoAgentStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects from MongoDB
func (s *MongoAgentStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ensure MongoAgentStore implements AgentStore
var _ AgentStore = (*MongoAgentStore)(nil)
