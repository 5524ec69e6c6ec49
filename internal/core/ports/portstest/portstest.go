// Package portstest provides in-memory implementations of the repository
// and store ports for use in tests.
package portstest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/psiborg/task-manager/internal/core/domain"
	"github.com/psiborg/task-manager/internal/core/ports"
)

var (
	_ ports.UserRepository  = (*Users)(nil)
	_ ports.TaskRepository  = (*Tasks)(nil)
	_ ports.RevocationStore = (*Revocations)(nil)
	_ ports.CacheStore      = (*Cache)(nil)
)

type ids struct {
	mu   sync.Mutex
	next int
}

// newID returns a 24 hex digit identifier shaped like a Mongo ObjectID.
func (g *ids) newID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%024x", g.next)
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

// Users is an in-memory ports.UserRepository. Err, when set, is returned by
// every lookup.
type Users struct {
	mu    sync.Mutex
	ids   ids
	byID  map[string]*domain.User
	order []string
	Err   error
	// Lookups counts FindByEmail calls.
	Lookups int
}

func NewUsers() *Users {
	return &Users{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (r *Users) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	c := cloneUser(user)
	if c.ID == "" {
		c.ID = r.ids.newID()
	}
	r.byID[c.ID] = c
	r.order = append(r.order, c.ID)
	return cloneUser(c), nil
}

// Add stores user as is and returns its ID; a convenience for seeding tests.
func (r *Users) Add(user domain.User) string {
	created, err := r.Create(context.Background(), &user)
	if err != nil {
		panic(err)
	}
	return created.ID
}

// Remove deletes an account.
func (r *Users) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

func (r *Users) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *Users) find(match func(*domain.User) bool) (*domain.User, error) {
	for _, id := range r.order {
		if u, ok := r.byID[id]; ok && match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *Users) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lookups++
	if r.Err != nil {
		return nil, r.Err
	}
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *Users) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *Users) FindAll(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := []*domain.User{}
	for _, id := range r.order {
		if u, ok := r.byID[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *Users) FindByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := []*domain.User{}
	for _, id := range r.order {
		if _, ok := want[id]; !ok {
			continue
		}
		if u, ok := r.byID[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Tasks
// ---------------------------------------------------------------------------

// Tasks is an in-memory ports.TaskRepository that populates details from users.
type Tasks struct {
	mu    sync.Mutex
	ids   ids
	users *Users
	byID  map[string]*domain.Task
	// Listed counts List calls.
	Listed int
}

func NewTasks(users *Users) *Tasks {
	return &Tasks{users: users, byID: make(map[string]*domain.Task)}
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	return &c
}

func (r *Tasks) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task.ID == "" {
		task.ID = r.ids.newID()
	}
	r.byID[task.ID] = cloneTask(task)
	return nil
}

// Add stores task and returns its ID.
func (r *Tasks) Add(task domain.Task) string {
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	_ = r.Create(context.Background(), &task)
	return task.ID
}

func (r *Tasks) FindByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *Tasks) Update(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	r.byID[task.ID] = cloneTask(task)
	return nil
}

func (r *Tasks) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *Tasks) FindDetail(ctx context.Context, id string) (*domain.TaskDetail, error) {
	t, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.populate(ctx, t), nil
}

func (r *Tasks) List(ctx context.Context, f ports.TaskFilter) ([]*domain.TaskDetail, error) {
	r.mu.Lock()
	r.Listed++
	var matched []*domain.Task
	for _, t := range r.byID {
		if Matches(t, f) {
			matched = append(matched, cloneTask(t))
		}
	}
	r.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool { return dueBefore(matched[i], matched[j]) })

	out := make([]*domain.TaskDetail, 0, len(matched))
	for _, t := range matched {
		out = append(out, r.populate(ctx, t))
	}
	return out, nil
}

func (r *Tasks) AssigneesOf(_ context.Context, creatorID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{})
	var out []string
	for _, t := range r.byID {
		if t.CreatedBy != creatorID || t.AssignedTo == "" {
			continue
		}
		if _, ok := seen[t.AssignedTo]; ok {
			continue
		}
		seen[t.AssignedTo] = struct{}{}
		out = append(out, t.AssignedTo)
	}
	sort.Strings(out)
	return out, nil
}

// Matches reports whether t satisfies every non-empty field of f.
func Matches(t *domain.Task, f ports.TaskFilter) bool {
	if f.CreatedBy != "" && t.CreatedBy != f.CreatedBy {
		return false
	}
	if f.AssignedTo != "" && t.AssignedTo != f.AssignedTo {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	return true
}

// dueBefore orders by due date ascending with missing due dates last, then by ID.
func dueBefore(a, b *domain.Task) bool {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return a.ID < b.ID
	case a.DueDate == nil:
		return false
	case b.DueDate == nil:
		return true
	case !a.DueDate.Equal(*b.DueDate):
		return a.DueDate.Before(*b.DueDate)
	}
	return a.ID < b.ID
}

func (r *Tasks) populate(ctx context.Context, t *domain.Task) *domain.TaskDetail {
	d := &domain.TaskDetail{
		ID:        t.ID,
		Title:     t.Title,
		Priority:  t.Priority,
		Status:    t.Status,
		DueDate:   t.DueDate,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if u, err := r.users.FindByID(ctx, t.AssignedTo); err == nil {
		s := u.Summary()
		d.AssignedTo = &s
	}
	if u, err := r.users.FindByID(ctx, t.CreatedBy); err == nil {
		s := u.Summary()
		d.CreatedBy = &s
	}
	return d
}

// ---------------------------------------------------------------------------
// Key-value stores
// ---------------------------------------------------------------------------

// Revocations is an in-memory ports.RevocationStore that records TTLs.
type Revocations struct {
	mu      sync.Mutex
	entries map[string]time.Duration
	Err     error
	// Checks records IsRevoked lookups in order.
	Checks []string
}

func NewRevocations() *Revocations {
	return &Revocations{entries: make(map[string]time.Duration)}
}

func (s *Revocations) MarkRevoked(_ context.Context, tokenKey string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.entries[tokenKey] = ttl
	return nil
}

func (s *Revocations) IsRevoked(_ context.Context, tokenKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Checks = append(s.Checks, tokenKey)
	if s.Err != nil {
		return false, s.Err
	}
	_, ok := s.entries[tokenKey]
	return ok, nil
}

// TTL returns the TTL recorded for tokenKey and whether an entry exists.
func (s *Revocations) TTL(tokenKey string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ttl, ok := s.entries[tokenKey]
	return ttl, ok
}

// Len is the number of revocation entries written.
func (s *Revocations) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cache is an in-memory ports.CacheStore. GetErr and SetErr inject failures.
type Cache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
	GetErr  error
	SetErr  error
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.GetErr != nil {
		return nil, false, c.GetErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SetErr != nil {
		return c.SetErr
	}
	c.entries[key] = append([]byte(nil), value...)
	c.ttls[key] = ttl
	return nil
}

// Keys returns the stored keys, sorted.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TTL returns the TTL the entry under key was written with.
func (c *Cache) TTL(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttls[key]
}
