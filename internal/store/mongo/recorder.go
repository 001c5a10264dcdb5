// Package mongo records secondary audit events as documents in MongoDB.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/gosuda/seguro/internal/domain"
)

const (
	DefaultDatabase   = "seguro"
	DefaultCollection = "audit_log"

	// StatusSuccess marks a document describing a committed mutation.
	StatusSuccess = "SUCCESS"
)

// Document is the stored shape of one audit event.
type Document struct {
	EventID   string    `bson:"event_id"`
	User      string    `bson:"user"`
	Role      string    `bson:"role"`
	Operation string    `bson:"operation"`
	Status    string    `bson:"status"`
	Entity    string    `bson:"entity"`
	EntityID  string    `bson:"entity_id"`
	Details   bson.M    `bson:"details"`
	Timestamp time.Time `bson:"timestamp"`
}

// ToDocument maps ev to its stored document.
func ToDocument(ev *domain.AuditEvent) Document {
	details := make(bson.M, len(ev.Payload))
	for k, v := range ev.Payload {
		details[k] = v
	}
	return Document{
		EventID:   ev.ID.String(),
		User:      ev.Actor,
		Role:      string(ev.ActorRole),
		Operation: string(ev.Operation),
		Status:    StatusSuccess,
		Entity:    string(ev.EntityType),
		EntityID:  ev.EntityID.String(),
		Details:   details,
		Timestamp: ev.CreatedAt.UTC(),
	}
}

// Recorder inserts one document per event. Writes are single-document
// inserts; no reads are performed.
type Recorder struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ domain.AuditRecorder = (*Recorder)(nil)

// New connects to uri and verifies the deployment is reachable.
func New(ctx context.Context, uri, database, collection string) (*Recorder, error) {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.New: connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("mongo.New: ping: %w", err)
	}

	return &Recorder{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (r *Recorder) Close(ctx context.Context) error {
	if err := r.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongo.Recorder.Close: %w", err)
	}
	return nil
}

func (r *Recorder) Record(ctx context.Context, ev *domain.AuditEvent) error {
	if _, err := r.collection.InsertOne(ctx, ToDocument(ev)); err != nil {
		return fmt.Errorf("mongo.Recorder.Record: insert %s: %w", ev.ID, err)
	}
	return nil
}
