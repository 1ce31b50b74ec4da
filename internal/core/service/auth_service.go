package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/orderdesk/order-management/internal/core/domain"
	"github.com/orderdesk/order-management/internal/core/ports"
)

// AuthService is the credential gateway. It owns no credential state of its
// own: identities live in the provider, profiles in the users collection.
type AuthService struct {
	provider ports.IdentityProvider
	users    ports.UserRepository
	log      zerolog.Logger
}

func NewAuthService(provider ports.IdentityProvider, users ports.UserRepository, log zerolog.Logger) *AuthService {
	return &AuthService{provider: provider, users: users, log: log}
}

// Register creates an identity, then writes the profile document keyed by the
// new identity id. A failed profile write leaves the identity behind; the
// error is surfaced so the partial state is visible to the caller.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) error {
	if input.Email == "" || input.Password == "" {
		return domain.ErrInvalidCredentials
	}

	uid, err := s.provider.CreateIdentity(ctx, input.Email, input.Password)
	if err != nil {
		return err
	}

	user := &domain.User{
		UID:   uid,
		Name:  input.Name,
		Email: input.Email,
		Role:  input.Role,
	}
	if err := s.users.Put(ctx, user); err != nil {
		s.log.Error().Err(err).Str("uid", uid).Msg("identity created but profile write failed")
		return fmt.Errorf("write profile: %w", err)
	}

	s.log.Info().Str("uid", uid).Str("role", input.Role).Msg("user registered")
	return nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (ports.Session, error) {
	if email == "" || password == "" {
		return ports.Session{}, domain.ErrInvalidCredentials
	}
	sess, err := s.provider.Authenticate(ctx, email, password)
	if err != nil {
		return ports.Session{}, err
	}
	s.log.Info().Str("uid", sess.UID).Msg("login succeeded")
	return sess, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.provider.SignOut(ctx, token)
}

func (s *AuthService) CurrentIdentity(ctx context.Context, token string) (string, bool) {
	return s.provider.CurrentIdentity(ctx, token)
}
