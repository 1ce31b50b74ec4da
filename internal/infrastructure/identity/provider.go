// Package identity implements the identity-provider port on MongoDB and
// Redis: credentials live in their own collection with bcrypt hashes,
// sessions are HS256 JWTs registered in Redis so logout actually revokes
// them.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/orderdesk/order-management/internal/core/domain"
	"github.com/orderdesk/order-management/internal/core/ports"
	"github.com/orderdesk/order-management/internal/metrics"
)

const identitiesCollection = "auth_identities"

// SessionRegistry tracks live session tokens by jti. Backed by Redis in
// production.
type SessionRegistry interface {
	Add(ctx context.Context, jti, uid string, ttl time.Duration) error
	Exists(ctx context.Context, jti string) (bool, error)
	Remove(ctx context.Context, jti string) error
}

// Provider implements ports.IdentityProvider.
type Provider struct {
	coll     *mongo.Collection
	registry SessionRegistry
	secret   string
	tokenTTL time.Duration
	log      zerolog.Logger
}

func NewProvider(db *mongo.Database, registry SessionRegistry, secret string, tokenTTL time.Duration, log zerolog.Logger) *Provider {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Provider{
		coll:     db.Collection(identitiesCollection),
		registry: registry,
		secret:   secret,
		tokenTTL: tokenTTL,
		log:      log,
	}
}

type identityDoc struct {
	ID           string `bson:"_id"`
	Email        string `bson:"email"`
	PasswordHash string `bson:"password_hash"`
	CreatedAt    int64  `bson:"created_at"`
}

// CreateIdentity registers credentials and returns the new identity id.
func (p *Provider) CreateIdentity(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	doc := identityDoc{
		ID:           primitive.NewObjectID().Hex(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC().Unix(),
	}
	if _, err := p.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", domain.ErrUserExists
		}
		return "", fmt.Errorf("insert identity: %w", err)
	}
	return doc.ID, nil
}

// Authenticate verifies credentials and opens a registered session.
func (p *Provider) Authenticate(ctx context.Context, email, password string) (ports.Session, error) {
	var doc identityDoc
	if err := p.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ports.Session{}, domain.ErrUserNotFound
		}
		return ports.Session{}, fmt.Errorf("find identity: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(doc.PasswordHash), []byte(password)) != nil {
		return ports.Session{}, domain.ErrInvalidCredentials
	}

	token, c, err := signToken(p.secret, doc.ID, doc.Email, p.tokenTTL)
	if err != nil {
		return ports.Session{}, err
	}
	if err := p.registry.Add(ctx, c.JTI, doc.ID, p.tokenTTL); err != nil {
		return ports.Session{}, fmt.Errorf("register session: %w", err)
	}
	metrics.SessionsActive.Inc()

	return ports.Session{
		UID:       doc.ID,
		Email:     doc.Email,
		Token:     token,
		ExpiresAt: c.Exp,
	}, nil
}

// SignOut revokes the session behind token. Unknown, malformed or expired
// tokens are treated as already signed out.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	c, err := parseToken(p.secret, token)
	if err != nil {
		return nil
	}
	if err := p.registry.Remove(ctx, c.JTI); err != nil {
		p.log.Warn().Err(err).Msg("session registry remove failed")
		return err
	}
	metrics.SessionsActive.Dec()
	return nil
}

// CurrentIdentity resolves the identity id behind a still-live token.
func (p *Provider) CurrentIdentity(ctx context.Context, token string) (string, bool) {
	c, err := parseToken(p.secret, token)
	if err != nil {
		return "", false
	}
	if !c.Exp.IsZero() && time.Now().After(c.Exp) {
		return "", false
	}
	live, err := p.registry.Exists(ctx, c.JTI)
	if err != nil {
		p.log.Debug().Err(err).Msg("session registry check failed")
		return "", false
	}
	if !live {
		return "", false
	}
	return c.UID, true
}

// EnsureIndexes creates the unique email index that turns duplicate
// registration into domain.ErrUserExists.
func (p *Provider) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := p.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
