package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
	repo "github.com/oksasatya/go-user-accounts/internal/domain/repository"
	"github.com/oksasatya/go-user-accounts/pkg/mailer"
)

// memRepo is an in-memory UserRepository. It understands plain equality
// filters only, which is all the service tests need.
type memRepo struct {
	mu        sync.Mutex
	seq       int
	users     map[string]*entity.User
	lastMatch map[string]any
	lastSet   map[string]any
	lastList  repo.ListParams
	deletes   int
	failWith  error
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]*entity.User{}}
}

func (m *memRepo) ValidID(id string) bool {
	if len(id) != 24 {
		return false
	}
	for _, c := range id {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return false
		}
	}
	return true
}

func (m *memRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	for _, x := range m.users {
		if x.Email == u.Email {
			return repo.ErrDuplicateKey
		}
	}
	m.seq++
	u.ID = fmt.Sprintf("%024x", m.seq)
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memRepo) matches(u *entity.User, filter map[string]any) bool {
	for k, v := range filter {
		var got any
		switch k {
		case "name":
			got = u.Name
		case "email":
			got = u.Email
		case "isActive":
			got = u.IsActive
		case "phone":
			got = u.Phone
		case "address":
			got = u.Address
		case "image":
			got = u.Image
		default:
			return false
		}
		if got != v {
			return false
		}
	}
	return true
}

func (m *memRepo) sorted(filter map[string]any) []*entity.User {
	var out []*entity.User
	for _, u := range m.users {
		if m.matches(u, filter) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memRepo) Count(_ context.Context, filter map[string]any) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.sorted(filter))), nil
}

func (m *memRepo) Find(_ context.Context, p repo.ListParams) ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastList = p
	all := m.sorted(p.Filter)
	if p.Skip >= int64(len(all)) {
		return []*entity.User{}, nil
	}
	all = all[p.Skip:]
	if p.Limit > 0 && int64(len(all)) > p.Limit {
		all = all[:p.Limit]
	}
	out := make([]*entity.User, 0, len(all))
	for _, u := range all {
		cp := *u
		cp.Password = ""
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memRepo) UpdateOne(_ context.Context, id string, match, set map[string]any) (repo.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastMatch, m.lastSet = match, set
	u, ok := m.users[id]
	if !ok || !m.matches(u, match) {
		return repo.UpdateResult{}, nil
	}
	if len(set) == 0 {
		return repo.UpdateResult{Matched: 1}, nil
	}
	for k, v := range set {
		switch k {
		case "name":
			u.Name = v.(string)
		case "phone":
			u.Phone = v.(string)
		case "address":
			u.Address = v.(string)
		case "image":
			u.Image = v.(string)
		case "isActive":
			u.IsActive = v.(bool)
		case "codeId":
			u.CodeID = v.(string)
		case "codeExpired":
			if t, ok := v.(time.Time); ok {
				u.CodeExpired = &t
			} else {
				u.CodeExpired = nil
			}
		}
	}
	return repo.UpdateResult{Matched: 1, Modified: 1}, nil
}

func (m *memRepo) DeleteByID(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if _, ok := m.users[id]; !ok {
		return 0, nil
	}
	delete(m.users, id)
	return 1, nil
}

// saltedHasher mimics a salted digest without bcrypt's cost.
type saltedHasher struct {
	mu sync.Mutex
	n  int
}

func (h *saltedHasher) Hash(plain string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.n++
	return fmt.Sprintf("salt%d$%s", h.n, reverse(plain)), nil
}

func (h *saltedHasher) Compare(hash, plain string) bool {
	i := strings.Index(hash, "$")
	return i >= 0 && hash[i+1:] == reverse(plain)
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

type captureMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (c *captureMailer) SendMail(_ context.Context, msg mailer.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return c.err
}

type memAudit struct {
	entries []*entity.AuditLog
	err     error
}

func (a *memAudit) Insert(_ context.Context, e *entity.AuditLog) error {
	a.entries = append(a.entries, e)
	return a.err
}

func (a *memAudit) actions() []string {
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type memIndex struct {
	docs map[string]*entity.User
}

func newMemIndex() *memIndex { return &memIndex{docs: map[string]*entity.User{}} }

func (i *memIndex) Index(_ context.Context, u *entity.User) error {
	cp := *u
	i.docs[u.ID] = &cp
	return nil
}

func (i *memIndex) Delete(_ context.Context, id string) error {
	delete(i.docs, id)
	return nil
}

func (i *memIndex) Search(_ context.Context, q string, size int) ([]map[string]any, error) {
	var out []map[string]any
	for _, u := range i.docs {
		if strings.Contains(u.Name, q) || strings.Contains(u.Email, q) {
			out = append(out, map[string]any{"id": u.ID, "email": u.Email})
		}
		if len(out) == size {
			break
		}
	}
	return out, nil
}

type memStorage struct {
	paths []string
	err   error
}

func (s *memStorage) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	s.paths = append(s.paths, objectPath)
	return "https://storage.example/" + objectPath, nil
}

type stubTokens struct{}

func (stubTokens) GenerateAccessToken(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("empty subject")
	}
	return "token-" + userID, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}
