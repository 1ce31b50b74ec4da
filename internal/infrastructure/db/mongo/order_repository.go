package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/orderdesk/order-management/internal/core/domain"
	"github.com/orderdesk/order-management/internal/core/ports"
)

const ordersCollection = "orders"

// orderDoc is the persistence shape of an order. The store assigns the
// ObjectID; the domain carries it as a hex string.
type orderDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	ItemName  string             `bson:"itemName"`
	Status    string             `bson:"status"`
	Timestamp int64              `bson:"timestamp"`
}

func (d orderDoc) toDomain() domain.Order {
	return domain.Order{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		ItemName:  d.ItemName,
		Status:    domain.OrderStatus(d.Status),
		Timestamp: d.Timestamp,
	}
}

type OrderRepository struct {
	coll *mongo.Collection
	log  zerolog.Logger
}

func NewOrderRepository(db *mongo.Database, log zerolog.Logger) *OrderRepository {
	return &OrderRepository{coll: db.Collection(ordersCollection), log: log}
}

// Create inserts a transient order and returns the store-assigned id.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"userId":    order.UserID,
		"itemName":  order.ItemName,
		"status":    string(order.Status),
		"timestamp": order.Timestamp,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert order: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrOrderNotFound
	}

	var doc orderDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	o := doc.toDomain()
	return &o, nil
}

// Put replaces the full order document. UserID is written as-is: the service
// layer never changes it after creation.
func (r *OrderRepository) Put(ctx context.Context, order *domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(order.ID)
	if err != nil {
		return domain.ErrOrderNotFound
	}

	doc := bson.M{
		"userId":    order.UserID,
		"itemName":  order.ItemName,
		"status":    string(order.Status),
		"timestamp": order.Timestamp,
	}
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc); err != nil {
		return fmt.Errorf("replace order: %w", err)
	}
	return nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrOrderNotFound
	}

	update := bson.M{"$set": bson.M{"status": string(status)}}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrOrderNotFound
	}
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, bson.M{})
}

func (r *OrderRepository) ListByUser(ctx context.Context, uid string) ([]domain.Order, error) {
	return r.list(ctx, bson.M{"userId": uid})
}

func (r *OrderRepository) list(ctx context.Context, filter bson.M) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	docs, err := decodeAll[orderDoc](ctx, cur, r.log)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Watch opens a live query over orders. A non-empty uid scopes the feed; the
// change stream itself stays collection-wide and the scope is applied on
// re-materialization, matching full-replacement snapshot semantics.
func (r *OrderRepository) Watch(ctx context.Context, uid string) (*ports.FeedHandle[domain.Order], error) {
	reload := func(ctx context.Context) ([]domain.Order, error) {
		if uid == "" {
			return r.ListAll(ctx)
		}
		return r.ListByUser(ctx, uid)
	}
	return watchCollection(ctx, r.coll, reload, r.log)
}

// EnsureIndexes creates the indexes used by order queries.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
