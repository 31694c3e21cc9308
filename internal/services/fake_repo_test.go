package services

import (
	"context"
	"sort"

	"github.com/schoolroster/roster/internal/store"
	"github.com/schoolroster/roster/types"
)

// memUsers is an in-memory UserRepository.
type memUsers struct {
	nextID int
	users  map[int]types.User
}

func newMemUsers() *memUsers {
	return &memUsers{nextID: 1, users: map[int]types.User{}}
}

func (m *memUsers) List(ctx context.Context, withRelations bool) ([]types.User, error) {
	out := make([]types.User, 0, len(m.users))
	for _, user := range m.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) GetByID(ctx context.Context, id int, withRelations bool) (types.User, error) {
	user, ok := m.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUsers) GetByToken(ctx context.Context, token string) (types.User, error) {
	for _, user := range m.users {
		if user.Token != nil && *user.Token == token {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUsers) Create(ctx context.Context, user types.User) (types.User, error) {
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return user, nil
}

func (m *memUsers) SetToken(ctx context.Context, id int, token string) error {
	user, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.Token = &token
	m.users[id] = user
	return nil
}

func (m *memUsers) Update(ctx context.Context, id int, patch types.UserPatch) error {
	user, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		user.PasswordHash = *patch.PasswordHash
	}
	if patch.ClassIDSet {
		user.ClassID = patch.ClassID
	}
	m.users[id] = user
	return nil
}

func (m *memUsers) RemoveFromClass(ctx context.Context, id int) (*int, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	previous := user.ClassID
	user.ClassID = nil
	m.users[id] = user
	return previous, nil
}

func (m *memUsers) Delete(ctx context.Context, id int) error {
	if _, ok := m.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// memClasses is an in-memory SeedClassRepository.
type memClasses struct {
	classes []types.Class
}

func (m *memClasses) GetByGrade(ctx context.Context, grade string) (types.Class, error) {
	for _, class := range m.classes {
		if class.Grade == grade {
			return class, nil
		}
	}
	return types.Class{}, store.ErrNotFound
}

func (m *memClasses) Create(ctx context.Context, class types.Class) (types.Class, error) {
	class.ID = len(m.classes) + 1
	m.classes = append(m.classes, class)
	return class, nil
}
