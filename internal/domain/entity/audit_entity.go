package entity

import "time"

// AuditLog records an account lifecycle event.
type AuditLog struct {
	ID        int64
	UserID    string
	Email     string
	Action    string
	Metadata  map[string]any
	CreatedAt time.Time
}

const (
	AuditUserCreated      = "user_created"
	AuditUserRegistered   = "user_registered"
	AuditUserUpdated      = "user_updated"
	AuditUserRemoved      = "user_removed"
	AuditUserActivated    = "user_activated"
	AuditActivationResent = "activation_resent"
	AuditAvatarUploaded   = "avatar_uploaded"
)
