package ports

import (
	"context"
	"time"
)

// Session is the identity provider's view of an authenticated principal.
// The token is the opaque credential the client presents on later calls.
type Session struct {
	UID       string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// IdentityProvider abstracts the external auth backend. Credential storage,
// hashing and token issuance all live behind this interface.
type IdentityProvider interface {
	// CreateIdentity registers new credentials and returns the new identity id.
	CreateIdentity(ctx context.Context, email, password string) (string, error)

	// Authenticate verifies credentials and opens a session.
	Authenticate(ctx context.Context, email, password string) (Session, error)

	// SignOut invalidates the session referenced by token. Idempotent: signing
	// out an unknown or already-invalidated token is not an error.
	SignOut(ctx context.Context, token string) error

	// CurrentIdentity resolves the identity id behind a token without
	// blocking on credential verification. ok is false when the token is
	// absent, expired or revoked.
	CurrentIdentity(ctx context.Context, token string) (uid string, ok bool)
}
