package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
)

// rowQuerier is the part of *pgxpool.Pool the audit repository needs.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type AuditRepository struct {
	db      rowQuerier
	timeout time.Duration
}

func NewAuditRepository(db rowQuerier) *AuditRepository {
	return &AuditRepository{db: db, timeout: 3 * time.Second}
}

const insertAudit = `
	INSERT INTO audit_logs (user_id, email, action, metadata, created_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id
`

func (r *AuditRepository) Insert(ctx context.Context, e *entity.AuditLog) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	md := e.Metadata
	if md == nil {
		md = map[string]any{}
	}
	b, err := json.Marshal(md)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.db.QueryRow(ctx, insertAudit, e.UserID, e.Email, e.Action, b, e.CreatedAt).Scan(&e.ID)
}
