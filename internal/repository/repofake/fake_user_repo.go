package repofake

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gs-sport/storefront/internal/domain"
	"github.com/gs-sport/storefront/internal/repository"
)

var _ repository.UserRepository = (*FakeUserRepo)(nil)

// FakeUserRepo keeps accounts in memory.
type FakeUserRepo struct {
	lock  sync.RWMutex
	users map[string]*domain.User
	Err   error
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *FakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *FakeUserRepo) UpdateRole(_ context.Context, id string, role domain.Role) (*domain.User, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user.Role = role
	user.UpdatedAt = time.Now()
	cp := *user
	return &cp, nil
}

func (r *FakeUserRepo) Delete(_ context.Context, id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *FakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *user
	return &cp, nil
}

func (r *FakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			cp := *user
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *FakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.Err != nil {
		return nil, 0, r.Err
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := []domain.User{}
	for _, user := range r.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(user.Name), search) &&
			!strings.Contains(strings.ToLower(user.Email), search) {
			continue
		}
		matched = append(matched, *user)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Email < matched[j].Email })

	total := len(matched)
	return paginate(matched, filter.Limit, filter.Offset), total, nil
}

// Put stores a user as-is, for fixtures.
func (r *FakeUserRepo) Put(user domain.User) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.users[user.ID] = &user
}

func paginate[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
