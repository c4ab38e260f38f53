package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
	repo "github.com/oksasatya/go-user-accounts/internal/domain/repository"
	"github.com/oksasatya/go-user-accounts/pkg/mailer"
	"github.com/oksasatya/go-user-accounts/pkg/metrics"
	"github.com/oksasatya/go-user-accounts/pkg/query"
)

const (
	defaultPage     = 1
	defaultPageSize = 10

	RegisterTemplate = "register"
	RegisterSubject  = "Activate your account"
)

// Keys that are never usable as list filters.
var unfilterable = []string{"current", "pageSize", "password", "codeId"}

// Fields that are never usable as a sort key.
var unsortable = map[string]bool{"password": true, "codeId": true}

type Service struct {
	Repo    repo.UserRepository
	Hasher  Hasher
	Mailer  Mailer
	Parser  QueryParser
	Logger  *logrus.Logger
	Index   UserIndexer
	Storage ObjectStorage
	Audit   repo.AuditRepository

	NewCode func() string
	Now     func() time.Time

	ActivationTTL time.Duration
	// LegacyUpdateMatch keeps the old Update contract: profile fields go into
	// the match filter and nothing is written.
	LegacyUpdateMatch bool
}

type Option func(*Service)

func WithIndexer(i UserIndexer) Option           { return func(s *Service) { s.Index = i } }
func WithStorage(o ObjectStorage) Option         { return func(s *Service) { s.Storage = o } }
func WithAudit(a repo.AuditRepository) Option    { return func(s *Service) { s.Audit = a } }
func WithQueryParser(p QueryParser) Option       { return func(s *Service) { s.Parser = p } }
func WithClock(now func() time.Time) Option      { return func(s *Service) { s.Now = now } }
func WithCodeGenerator(gen func() string) Option { return func(s *Service) { s.NewCode = gen } }
func WithActivationTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.ActivationTTL = d
		}
	}
}
func WithLegacyUpdateMatch(on bool) Option { return func(s *Service) { s.LegacyUpdateMatch = on } }

func NewService(r repo.UserRepository, hasher Hasher, m Mailer, logger *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		Repo:          r,
		Hasher:        hasher,
		Mailer:        m,
		Parser:        query.Parser{},
		Logger:        logger,
		NewCode:       uuid.NewString,
		Now:           time.Now,
		ActivationTTL: 60 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type UpdateUserInput struct {
	ID      string
	Name    string
	Phone   string
	Address string
	Image   string
}

type CreatedUser struct {
	ID string `json:"_id"`
}

type PageResult struct {
	Results    []*entity.User `json:"results"`
	TotalPages int64          `json:"totalPages"`
	TotalItems int64          `json:"-"`
}

type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

func (s *Service) IsEmailExist(ctx context.Context, email string) (bool, error) {
	return s.Repo.ExistsByEmail(ctx, email)
}

// Create adds an active account. The returned value only carries the new id.
func (s *Service) Create(ctx context.Context, in CreateUserInput) (*CreatedUser, error) {
	if err := s.ensureEmailFree(ctx, in.Email); err != nil {
		return nil, err
	}
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &entity.User{Name: in.Name, Email: in.Email, Password: hash, IsActive: true}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, createError(err, in.Email)
	}

	s.audit(ctx, u, entity.AuditUserCreated, nil)
	s.indexUser(ctx, u)
	return &CreatedUser{ID: u.ID}, nil
}

// FindAll lists accounts matching rawQuery, one page at a time.
// current and pageSize fall back to 1 and 10 when not positive.
func (s *Service) FindAll(ctx context.Context, rawQuery string, current, pageSize int) (*PageResult, error) {
	parsed, err := s.Parser.Parse(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	filter := parsed.Filter
	if filter == nil {
		filter = map[string]any{}
	}
	for _, k := range unfilterable {
		delete(filter, k)
	}

	if current <= 0 {
		current = defaultPage
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	totalItems, err := s.Repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	size := int64(pageSize)
	totalPages := (totalItems + size - 1) / size
	if int64(current-1) > math.MaxInt64/size {
		return &PageResult{Results: []*entity.User{}, TotalPages: totalPages, TotalItems: totalItems}, nil
	}
	skip := int64(current-1) * size

	sortBy := make([]query.SortField, 0, len(parsed.Sort))
	for _, sf := range parsed.Sort {
		if !unsortable[sf.Field] {
			sortBy = append(sortBy, sf)
		}
	}

	results, err := s.Repo.Find(ctx, repo.ListParams{
		Filter: filter,
		Sort:   sortBy,
		Skip:   skip,
		Limit:  size,
	})
	if err != nil {
		return nil, err
	}
	for _, u := range results {
		u.Password = ""
	}
	return &PageResult{Results: results, TotalPages: totalPages, TotalItems: totalItems}, nil
}

// FindOne returns the account without its password digest.
func (s *Service) FindOne(ctx context.Context, id string) (*entity.User, error) {
	if !s.Repo.ValidID(id) {
		return nil, ErrInvalidIDFormat
	}
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	u.Password = ""
	return u, nil
}

// FindByEmail returns the full record, password digest included.
func (s *Service) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// Update changes profile fields (name, phone, address, image) of the account
// with in.ID. Empty fields are left untouched.
func (s *Service) Update(ctx context.Context, in UpdateUserInput) (*repo.UpdateResult, error) {
	if !s.Repo.ValidID(in.ID) {
		return nil, ErrInvalidIDFormat
	}
	fields := map[string]any{}
	for k, v := range map[string]string{"name": in.Name, "phone": in.Phone, "address": in.Address, "image": in.Image} {
		if v != "" {
			fields[k] = v
		}
	}

	var match, set map[string]any
	if s.LegacyUpdateMatch {
		match = fields
	} else {
		set = fields
	}

	res, err := s.Repo.UpdateOne(ctx, in.ID, match, set)
	if err != nil {
		return nil, err
	}
	if res.Modified > 0 {
		s.auditID(ctx, in.ID, "", entity.AuditUserUpdated, map[string]any{"fields": keys(fields)})
		if u, gErr := s.Repo.GetByID(ctx, in.ID); gErr == nil {
			s.indexUser(ctx, u)
		}
	}
	return &res, nil
}

// Remove deletes the account with id. Deleting a missing account is not an error.
func (s *Service) Remove(ctx context.Context, id string) (*DeleteResult, error) {
	if !s.Repo.ValidID(id) {
		return nil, ErrInvalidIDFormat
	}
	n, err := s.Repo.DeleteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		s.auditID(ctx, id, "", entity.AuditUserRemoved, nil)
		if s.Index != nil {
			if iErr := s.Index.Delete(ctx, id); iErr != nil && s.Logger != nil {
				s.Logger.WithError(iErr).WithField("user_id", id).Warn("index delete failed")
			}
		}
	}
	return &DeleteResult{DeletedCount: n}, nil
}

// HandleRegister creates an inactive account holding a fresh activation code
// and sends the activation email. Mail failures never fail the registration.
func (s *Service) HandleRegister(ctx context.Context, in RegisterInput) (*CreatedUser, error) {
	if err := s.ensureEmailFree(ctx, in.Email); err != nil {
		return nil, err
	}
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	code := s.NewCode()
	expires := s.Now().Add(s.ActivationTTL)
	u := &entity.User{
		Name:        in.Name,
		Email:       in.Email,
		Password:    hash,
		IsActive:    false,
		CodeID:      code,
		CodeExpired: &expires,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, createError(err, in.Email)
	}

	s.audit(ctx, u, entity.AuditUserRegistered, nil)
	s.indexUser(ctx, u)
	s.SendEmail(ctx, u.Email, displayName(u), code)
	return &CreatedUser{ID: u.ID}, nil
}

// SendEmail queues the "register" activation email. Failures are logged and
// counted, never returned.
func (s *Service) SendEmail(ctx context.Context, to, name, activationCode string) {
	if s.Mailer == nil {
		metrics.RecordMailDispatch(RegisterTemplate, metrics.DispatchDisabled)
		return
	}
	msg := mailer.Message{
		To:       to,
		Subject:  RegisterSubject,
		Template: RegisterTemplate,
		Context: map[string]any{
			"name":           name,
			"activationCode": activationCode,
		},
	}
	err := s.Mailer.SendMail(ctx, msg)
	switch {
	case err == nil:
		metrics.RecordMailDispatch(RegisterTemplate, metrics.DispatchQueued)
	case errors.Is(err, mailer.ErrSendDisabled):
		metrics.RecordMailDispatch(RegisterTemplate, metrics.DispatchDisabled)
		if s.Logger != nil {
			s.Logger.WithField("to", to).Info("mail sending disabled; activation email skipped")
		}
	default:
		metrics.RecordMailDispatch(RegisterTemplate, metrics.DispatchFailed)
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"to": to, "template": RegisterTemplate}).Error("activation email dispatch failed")
		}
	}
}

// SearchUsers performs a full-text search on email and name.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.Index == nil {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	return s.Index.Search(ctx, q, size)
}

// UploadAvatar stores an image for the account and points its image field at it.
func (s *Service) UploadAvatar(ctx context.Context, id string, r io.Reader, filename, contentType string) (string, error) {
	if !s.Repo.ValidID(id) {
		return "", ErrInvalidIDFormat
	}
	if s.Storage == nil {
		return "", ErrStorageNotConfigured
	}
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return "", notFound(err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", id, uuid.NewString()+ext))
	url, err := s.Storage.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	if _, err := s.Repo.UpdateOne(ctx, id, nil, map[string]any{"image": url}); err != nil {
		return "", err
	}
	u.Image = url
	s.audit(ctx, u, entity.AuditAvatarUploaded, map[string]any{"object": objectPath})
	s.indexUser(ctx, u)
	return url, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string) error {
	exists, err := s.IsEmailExist(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return &DuplicateEmailError{Email: email}
	}
	return nil
}

func (s *Service) audit(ctx context.Context, u *entity.User, action string, md map[string]any) {
	s.auditID(ctx, u.ID, u.Email, action, md)
}

func (s *Service) auditID(ctx context.Context, userID, email, action string, md map[string]any) {
	if s.Audit == nil {
		return
	}
	entry := &entity.AuditLog{UserID: userID, Email: email, Action: action, Metadata: md, CreatedAt: s.Now().UTC()}
	if err := s.Audit.Insert(ctx, entry); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "action": action}).Warn("audit insert failed")
	}
}

func (s *Service) indexUser(ctx context.Context, u *entity.User) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, u); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
	}
}

// createError maps a store-level unique violation to the same error the
// pre-check returns.
func createError(err error, email string) error {
	if errors.Is(err, repo.ErrDuplicateKey) {
		return &DuplicateEmailError{Email: email}
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func displayName(u *entity.User) string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Email
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
