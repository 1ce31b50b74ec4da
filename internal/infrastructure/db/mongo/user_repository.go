package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/orderdesk/order-management/internal/core/domain"
	"github.com/orderdesk/order-management/internal/core/ports"
)

const usersCollection = "users"

// UserRepository stores profile documents keyed by the identity id. The uid
// doubles as the document _id, mirroring the provider-issued key.
type UserRepository struct {
	coll *mongo.Collection
	log  zerolog.Logger
}

func NewUserRepository(db *mongo.Database, log zerolog.Logger) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection), log: log}
}

func (r *UserRepository) Get(ctx context.Context, uid string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var u domain.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": uid}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// Put writes the full profile document, creating it when absent.
func (r *UserRepository) Put(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"uid":   user.UID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.UID}, doc, opts); err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, uid string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": uid}); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return decodeAll[domain.User](ctx, cur, r.log)
}

func (r *UserRepository) Watch(ctx context.Context) (*ports.FeedHandle[domain.User], error) {
	return watchCollection(ctx, r.coll, r.List, r.log)
}

// EnsureIndexes creates the indexes used by profile lookups.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
