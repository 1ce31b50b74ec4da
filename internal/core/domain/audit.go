package domain

import "time"

// UnknownActor is recorded when a mutation succeeds without a session email.
const UnknownActor = "Unknown"

// AuditLogEntry is an append-only record of a state-changing action. Entries
// are never mutated or deleted through this system and are displayed newest
// first.
type AuditLogEntry struct {
	UserEmail string `json:"userEmail" bson:"userEmail"`
	Action    string `json:"action" bson:"action"`
	Timestamp int64  `json:"timestamp" bson:"timestamp"`
}

// NewAuditLogEntry stamps an entry for the given actor email, substituting
// UnknownActor when the email is empty.
func NewAuditLogEntry(userEmail, action string) AuditLogEntry {
	if userEmail == "" {
		userEmail = UnknownActor
	}
	return AuditLogEntry{
		UserEmail: userEmail,
		Action:    action,
		Timestamp: time.Now().UnixMilli(),
	}
}
