package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/orderdesk/order-management/internal/core/domain"
	"github.com/orderdesk/order-management/internal/core/ports"
)

const auditCollection = "audit_logs"

// AuditRepository is append-only: entries are inserted and listed newest
// first, never updated or removed.
type AuditRepository struct {
	coll *mongo.Collection
	log  zerolog.Logger
}

func NewAuditRepository(db *mongo.Database, log zerolog.Logger) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection), log: log}
}

func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"userEmail": entry.UserEmail,
		"action":    entry.Action,
		"timestamp": entry.Timestamp,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// List returns the trail ordered by timestamp descending.
func (r *AuditRepository) List(ctx context.Context) ([]domain.AuditLogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return decodeAll[domain.AuditLogEntry](ctx, cur, r.log)
}

func (r *AuditRepository) Watch(ctx context.Context) (*ports.FeedHandle[domain.AuditLogEntry], error) {
	return watchCollection(ctx, r.coll, r.List, r.log)
}

// EnsureIndexes creates the timestamp index backing the descending sort.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: -1}},
	})
	return err
}
