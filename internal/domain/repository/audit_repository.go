package repository

import (
	"context"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
)

// AuditRepository persists account lifecycle events.
type AuditRepository interface {
	Insert(ctx context.Context, a *entity.AuditLog) error
}
