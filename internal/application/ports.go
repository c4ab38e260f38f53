package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
	"github.com/oksasatya/go-user-accounts/pkg/mailer"
	"github.com/oksasatya/go-user-accounts/pkg/query"
)

// Hasher is a one-way password digest.
type Hasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

// Mailer dispatches templated email. Implementations may deliver
// asynchronously; a nil error only means the message was accepted.
type Mailer interface {
	SendMail(ctx context.Context, msg mailer.Message) error
}

// QueryParser turns a raw list query string into a filter and sort spec.
type QueryParser interface {
	Parse(raw string) (query.Parsed, error)
}

// UserIndexer keeps a search index of user profiles.
type UserIndexer interface {
	Index(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]map[string]any, error)
}

// ObjectStorage stores uploaded files and returns their public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	GenerateAccessToken(userID string) (string, time.Time, error)
}
