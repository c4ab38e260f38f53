package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
)

func newAuth(t *testing.T) (*AuthService, *fixture, string) {
	t.Helper()
	f := newFixture()
	out, err := f.svc.HandleRegister(context.Background(), RegisterInput{Name: "P", Email: "p@example.com", Password: "pw"})
	require.NoError(t, err)
	return NewAuthService(f.svc, stubTokens{}, f.svc.Logger), f, out.ID
}

func TestLoginRejectsInactive(t *testing.T) {
	auth, _, _ := newAuth(t)

	_, err := auth.Login(context.Background(), "p@example.com", "pw")
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestLoginBadCredentials(t *testing.T) {
	auth, _, _ := newAuth(t)
	ctx := context.Background()

	_, err := auth.Login(ctx, "p@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(ctx, "ghost@example.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestActivateThenLogin(t *testing.T) {
	auth, f, id := newAuth(t)
	ctx := context.Background()

	require.NoError(t, auth.Activate(ctx, id, "code-123"))

	u, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, u.IsActive)
	assert.Empty(t, u.CodeID)
	assert.Nil(t, u.CodeExpired)
	assert.Contains(t, f.audit.actions(), entity.AuditUserActivated)

	res, err := auth.Login(ctx, " p@example.com ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "token-"+id, res.AccessToken)
	assert.Empty(t, res.User.Password)

	assert.ErrorIs(t, auth.Activate(ctx, id, "code-123"), ErrAlreadyActive)
}

func TestActivateFailures(t *testing.T) {
	auth, f, id := newAuth(t)
	ctx := context.Background()

	assert.ErrorIs(t, auth.Activate(ctx, "nope", "code-123"), ErrInvalidIDFormat)
	assert.ErrorIs(t, auth.Activate(ctx, "ffffffffffffffffffffffff", "code-123"), ErrUserNotFound)
	assert.ErrorIs(t, auth.Activate(ctx, id, "wrong"), ErrInvalidActivationCode)
	assert.ErrorIs(t, auth.Activate(ctx, id, ""), ErrInvalidActivationCode)
	assert.ErrorIs(t, auth.Activate(ctx, id, "code-124"), ErrInvalidActivationCode)
	assert.ErrorIs(t, auth.Activate(ctx, id, "code-12"), ErrInvalidActivationCode)
	assert.ErrorIs(t, auth.Activate(ctx, id, "code-1234"), ErrInvalidActivationCode)

	f.svc.Now = func() time.Time { return fixedNow.Add(61 * time.Minute) }
	assert.ErrorIs(t, auth.Activate(ctx, id, "code-123"), ErrActivationCodeExpired)

	u, _ := f.repo.GetByID(ctx, id)
	assert.False(t, u.IsActive)
}

func TestResendActivation(t *testing.T) {
	auth, f, id := newAuth(t)
	ctx := context.Background()

	later := fixedNow.Add(2 * time.Hour)
	f.svc.Now = func() time.Time { return later }
	f.svc.NewCode = func() string { return "code-456" }

	gotID, err := auth.ResendActivation(ctx, "p@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, gotID)

	u, _ := f.repo.GetByID(ctx, id)
	assert.Equal(t, "code-456", u.CodeID)
	assert.Equal(t, later.Add(60*time.Minute), *u.CodeExpired)

	require.Len(t, f.mail.sent, 2)
	assert.Equal(t, "code-456", f.mail.sent[1].Context["activationCode"])

	require.NoError(t, auth.Activate(ctx, id, "code-456"))
	_, err = auth.ResendActivation(ctx, "p@example.com")
	assert.ErrorIs(t, err, ErrAlreadyActive)

	_, err = auth.ResendActivation(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
