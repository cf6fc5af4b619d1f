package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/repository"
)

type memLinks struct {
	mu    sync.Mutex
	links map[string]domain.Link
	lists int
}

func newMemLinks(links ...domain.Link) *memLinks {
	m := &memLinks{links: map[string]domain.Link{}}
	for _, l := range links {
		m.links[l.ID] = l
	}
	return m
}

func (m *memLinks) ListLinks(context.Context) ([]domain.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	out := make([]domain.Link, 0, len(m.links))
	for _, l := range m.links {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memLinks) GetLink(_ context.Context, id string) (*domain.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (m *memLinks) CreateLink(_ context.Context, link *domain.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if link.ID == "" {
		link.ID = "link-" + string(rune('a'+len(m.links)))
	}
	m.links[link.ID] = *link
	return nil
}

func (m *memLinks) UpdateLink(_ context.Context, link *domain.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[link.ID]; !ok {
		return repository.ErrNotFound
	}
	m.links[link.ID] = *link
	return nil
}

func (m *memLinks) DeleteLink(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.links, id)
	return nil
}

type memUsers struct {
	mu      sync.Mutex
	byID    map[string]domain.User
	lookups int
	lastPwd bool
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]domain.User{}}
}

func (m *memUsers) ListUsers(_ context.Context, f repository.UserFilter) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.User
	for _, u := range m.byID {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Search != "" && !strings.HasPrefix(strings.ToLower(u.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (m *memUsers) GetUser(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) CreateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrConflict
		}
	}
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	m.byID[user.ID] = *user
	return nil
}

func (m *memUsers) UpdateUser(_ context.Context, user *domain.User, updatePassword bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	m.lastPwd = updatePassword
	if !updatePassword {
		user.PasswordHash = cur.PasswordHash
	}
	m.byID[user.ID] = *user
	return nil
}

func (m *memUsers) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

// tableFetcher serves tables by URL. URLs under https://block/ wait until
// their context is cancelled or release is closed.
type tableFetcher struct {
	tables  map[string]*domain.Table
	started chan string
	release chan struct{}
	onFetch func()
}

func (f *tableFetcher) Fetch(ctx context.Context, rawURL string) (*domain.Table, error) {
	if f.onFetch != nil {
		f.onFetch()
	}
	if strings.HasPrefix(rawURL, "https://block/") {
		if f.started != nil {
			f.started <- rawURL
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-f.release:
		}
	}
	t, ok := f.tables[rawURL]
	if !ok {
		return nil, errors.New("unexpected status 404")
	}
	return t, nil
}

func pnlTable(rows ...[]string) *domain.Table {
	columns := []string{"Μήνας", "Κατάστημα", "ΠΩΛΗΣΕΙΣ (SALES)", "Sales of Services", "EBITDA", "Payroll"}
	t := &domain.Table{Columns: columns}
	for _, r := range rows {
		row := domain.RawRow{}
		for i, c := range columns {
			if i < len(r) {
				row[c] = r[i]
			} else {
				row[c] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

var (
	adminSession  = domain.Session{UserID: "admin", Role: domain.RoleAdmin}
	clientSession = domain.Session{UserID: "client", Role: domain.RoleClient, AssignedStores: []string{"Glyfada"}}
)
