package domain

import "errors"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrSessionExpired = errors.New("session expired")
var ErrRoleUnresolved = errors.New("role unresolved")

// User is the profile document stored in the users collection, keyed by the
// identity id issued by the auth provider.
type User struct {
	UID   string `json:"uid" bson:"uid"`
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Role  string `json:"role" bson:"role"`
}

// RoleKind is the closed view over the open role string stored on a User.
// Anything outside the known set is RoleKindUnknown rather than an error, so
// unrecognized roles must be handled explicitly instead of falling through.
type RoleKind int

const (
	RoleKindUnknown RoleKind = iota
	RoleKindUser
	RoleKindAdmin
)

// Role pairs the parsed kind with the raw string it came from.
type Role struct {
	Kind RoleKind
	Raw  string
}

// ParseRole classifies a raw role string.
func ParseRole(raw string) Role {
	switch raw {
	case RoleUser:
		return Role{Kind: RoleKindUser, Raw: raw}
	case RoleAdmin:
		return Role{Kind: RoleKindAdmin, Raw: raw}
	default:
		return Role{Kind: RoleKindUnknown, Raw: raw}
	}
}

func (r Role) IsAdmin() bool { return r.Kind == RoleKindAdmin }
func (r Role) IsUser() bool  { return r.Kind == RoleKindUser }
