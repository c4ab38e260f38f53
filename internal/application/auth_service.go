package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
)

type AuthService struct {
	Users  *Service
	Tokens TokenIssuer
	Logger *logrus.Logger
}

func NewAuthService(users *Service, tokens TokenIssuer, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, Tokens: tokens, Logger: logger}
}

type LoginResult struct {
	User        *entity.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// Login checks credentials and issues an access token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (a *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	u, err := a.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !a.Users.Hasher.Compare(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountInactive
	}

	token, exp, err := a.Tokens.GenerateAccessToken(u.ID)
	if err != nil {
		return nil, err
	}
	u.Password = ""
	if a.Logger != nil {
		a.Logger.WithField("user_id", u.ID).Info("user logged in")
	}
	return &LoginResult{User: u, AccessToken: token, ExpiresAt: exp}, nil
}

// Activate flips a pending account to active when code matches and has not expired.
func (a *AuthService) Activate(ctx context.Context, id, code string) error {
	s := a.Users
	if !s.Repo.ValidID(id) {
		return ErrInvalidIDFormat
	}
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if u.IsActive {
		return ErrAlreadyActive
	}
	if code == "" || subtle.ConstantTimeCompare([]byte(u.CodeID), []byte(code)) != 1 {
		return ErrInvalidActivationCode
	}
	if u.CodeExpired == nil || !s.Now().Before(*u.CodeExpired) {
		return ErrActivationCodeExpired
	}

	set := map[string]any{"isActive": true, "codeId": "", "codeExpired": nil}
	if _, err := s.Repo.UpdateOne(ctx, id, nil, set); err != nil {
		return err
	}
	u.IsActive = true
	u.CodeID = ""
	u.CodeExpired = nil
	s.audit(ctx, u, entity.AuditUserActivated, nil)
	s.indexUser(ctx, u)
	return nil
}

// ResendActivation rotates the activation code of a pending account and
// sends the register email again.
func (a *AuthService) ResendActivation(ctx context.Context, email string) (string, error) {
	s := a.Users
	u, err := s.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", err
	}
	if u.IsActive {
		return "", ErrAlreadyActive
	}

	code := s.NewCode()
	expires := s.Now().Add(s.ActivationTTL)
	set := map[string]any{"codeId": code, "codeExpired": expires}
	if _, err := s.Repo.UpdateOne(ctx, u.ID, nil, set); err != nil {
		return "", err
	}
	s.audit(ctx, u, entity.AuditActivationResent, nil)
	s.SendEmail(ctx, u.Email, displayName(u), code)
	return u.ID, nil
}
