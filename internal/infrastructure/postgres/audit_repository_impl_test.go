package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
)

type fakeRow struct {
	id  int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.id
	return nil
}

type fakeDB struct {
	sql  string
	args []any
	row  fakeRow
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.sql, f.args = sql, args
	return f.row
}

func TestAuditInsert(t *testing.T) {
	db := &fakeDB{row: fakeRow{id: 42}}
	r := NewAuditRepository(db)

	e := &entity.AuditLog{UserID: "u1", Email: "a@example.com", Action: entity.AuditUserCreated, Metadata: map[string]any{"k": "v"}}
	require.NoError(t, r.Insert(context.Background(), e))

	assert.Equal(t, int64(42), e.ID)
	assert.False(t, e.CreatedAt.IsZero())
	assert.Contains(t, db.sql, "INSERT INTO audit_logs")
	require.Len(t, db.args, 5)
	assert.Equal(t, "u1", db.args[0])
	assert.Equal(t, entity.AuditUserCreated, db.args[2])

	var md map[string]any
	require.NoError(t, json.Unmarshal(db.args[3].([]byte), &md))
	assert.Equal(t, "v", md["k"])
}

func TestAuditInsertNilMetadata(t *testing.T) {
	db := &fakeDB{row: fakeRow{id: 1}}
	require.NoError(t, NewAuditRepository(db).Insert(context.Background(), &entity.AuditLog{Action: "x"}))
	assert.Equal(t, []byte("{}"), db.args[3])
}

func TestAuditInsertError(t *testing.T) {
	boom := errors.New("conn refused")
	err := NewAuditRepository(&fakeDB{row: fakeRow{err: boom}}).Insert(context.Background(), &entity.AuditLog{Action: "x"})
	assert.ErrorIs(t, err, boom)
}
