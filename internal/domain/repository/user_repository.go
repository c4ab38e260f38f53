package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
	"github.com/oksasatya/go-user-accounts/pkg/query"
)

var (
	// ErrNotFound is returned by lookups that match no record.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey is returned when a write violates a unique index (email).
	ErrDuplicateKey = errors.New("duplicate key")
)

// ListParams narrows and pages a Find call.
type ListParams struct {
	Filter map[string]any
	Sort   []query.SortField
	Skip   int64
	Limit  int64
}

// UpdateResult acknowledges an UpdateOne call.
type UpdateResult struct {
	Matched  int64 `json:"matchedCount"`
	Modified int64 `json:"modifiedCount"`
}

// UserRepository defines the interface for user-related store operations.
type UserRepository interface {
	// ValidID reports whether id is well-formed for the store's identifier scheme.
	ValidID(id string) bool
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Create assigns ID and timestamps on u.
	Create(ctx context.Context, u *entity.User) error
	Count(ctx context.Context, filter map[string]any) (int64, error)
	// Find never populates Password.
	Find(ctx context.Context, p ListParams) ([]*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// UpdateOne matches the record by id plus every key in match and applies set.
	// An empty set writes nothing and only reports the match count.
	UpdateOne(ctx context.Context, id string, match, set map[string]any) (UpdateResult, error)
	DeleteByID(ctx context.Context, id string) (int64, error)
}
