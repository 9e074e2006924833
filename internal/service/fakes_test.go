package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/atinyakov/taskmanager/internal/models"
)

// memUsers is an in-memory UserRepository and SessionRepository.
type memUsers struct {
	mu       sync.Mutex
	byID     map[string]models.User
	sessions map[string][]models.Session
	saves    int
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]models.User{}, sessions: map[string][]models.Session{}}
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return models.ErrEmailTaken
		}
	}
	m.byID[u.ID] = models.User{ID: u.ID, Email: u.Email, PasswordHash: u.PasswordHash}
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memUsers) FindByIDAndToken(_ context.Context, id, token string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	for _, s := range m.sessions[id] {
		if s.Token == token {
			u.Sessions = append([]models.Session(nil), m.sessions[id]...)
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memUsers) Save(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return models.ErrNotFound
	}
	m.saves++
	m.byID[u.ID] = models.User{ID: u.ID, Email: u.Email, PasswordHash: u.PasswordHash}
	return nil
}

func (m *memUsers) Append(_ context.Context, userID string, s models.Session, limit int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := append(m.sessions[userID], s)
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	m.sessions[userID] = all
	return nil
}

// fakeIssuer implements TokenIssuer.
type fakeIssuer struct {
	err error
}

func (f *fakeIssuer) AccessToken(userID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "access-" + userID, nil
}

// memStore is an in-memory ListRepository and TaskRepository.
type memStore struct {
	mu    sync.Mutex
	lists map[string]models.List
	tasks map[string]models.Task

	deleteByListErr error
}

func newMemStore() *memStore {
	return &memStore{lists: map[string]models.List{}, tasks: map[string]models.Task{}}
}

func (m *memStore) Create(_ context.Context, l *models.List) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[l.ID] = *l
	return nil
}

func (m *memStore) ListByOwner(_ context.Context, ownerID string) ([]models.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.List, 0)
	for _, l := range m.lists {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) FindOwned(_ context.Context, id, ownerID string) (*models.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[id]
	if !ok || l.OwnerID != ownerID {
		return nil, models.ErrNotFound
	}
	return &l, nil
}

func (m *memStore) Update(_ context.Context, id, ownerID string, patch models.ListPatch) (*models.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[id]
	if !ok || l.OwnerID != ownerID {
		return nil, models.ErrNotFound
	}
	if patch.Title != nil {
		l.Title = *patch.Title
	}
	m.lists[id] = l
	return &l, nil
}

func (m *memStore) Delete(_ context.Context, id, ownerID string) (*models.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[id]
	if !ok || l.OwnerID != ownerID {
		return nil, models.ErrNotFound
	}
	delete(m.lists, id)
	return &l, nil
}

// taskRepo exposes the task half of memStore under TaskRepository's method names.
type taskRepo struct{ *memStore }

func (r taskRepo) Create(_ context.Context, t *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = *t
	return nil
}

func (r taskRepo) ListByList(_ context.Context, listID string) ([]models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Task, 0)
	for _, t := range r.tasks {
		if t.ListID == listID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r taskRepo) Update(_ context.Context, listID, taskID string, patch models.TaskPatch) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[taskID]
	if !ok || t.ListID != listID {
		return nil, models.ErrNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	r.tasks[taskID] = t
	return &t, nil
}

func (r taskRepo) Delete(_ context.Context, listID, taskID string) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[taskID]
	if !ok || t.ListID != listID {
		return nil, models.ErrNotFound
	}
	delete(r.tasks, taskID)
	return &t, nil
}

func (r taskRepo) DeleteByList(_ context.Context, listID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteByListErr != nil {
		return 0, r.deleteByListErr
	}
	var n int64
	for id, t := range r.tasks {
		if t.ListID == listID {
			delete(r.tasks, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) countTasks(listID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if t.ListID == listID {
			n++
		}
	}
	return n
}

var errBoom = errors.New("boom")
