package ports

import "context"

// RegisterInput carries everything needed to create an identity plus its
// profile document.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// AuthService is the credential gateway: it wraps the identity provider and
// keeps the users collection in step with it.
type AuthService interface {
	// Register creates an identity, then writes the profile keyed by the new
	// identity id. When the profile write fails the identity still exists;
	// the write error is returned as-is rather than hidden.
	Register(ctx context.Context, input RegisterInput) error

	// Login authenticates. Role resolution is deliberately not part of this
	// call; callers compose it with a RoleResolver.
	Login(ctx context.Context, email, password string) (Session, error)

	// Logout is idempotent.
	Logout(ctx context.Context, token string) error

	// CurrentIdentity reflects the last known session, non-blocking.
	CurrentIdentity(ctx context.Context, token string) (string, bool)
}

// RoleResolver looks up the role recorded for an identity. A failed lookup and
// an absent role field are indistinguishable: both report ok=false.
type RoleResolver interface {
	ResolveRole(ctx context.Context, uid string) (role string, ok bool)
}
