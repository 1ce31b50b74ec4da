package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/orderdesk/order-management/internal/core/ports"
)

// RoleResolver reads the role field from a user profile. A lookup error and a
// profile with an empty role field both come back as ok=false; callers cannot
// tell the two apart.
type RoleResolver struct {
	users ports.UserRepository
	log   zerolog.Logger
}

func NewRoleResolver(users ports.UserRepository, log zerolog.Logger) *RoleResolver {
	return &RoleResolver{users: users, log: log}
}

func (r *RoleResolver) ResolveRole(ctx context.Context, uid string) (string, bool) {
	if uid == "" {
		return "", false
	}
	user, err := r.users.Get(ctx, uid)
	if err != nil {
		r.log.Debug().Err(err).Str("uid", uid).Msg("role lookup failed")
		return "", false
	}
	if user.Role == "" {
		return "", false
	}
	return user.Role, true
}
