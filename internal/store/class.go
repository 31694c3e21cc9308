package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/schoolroster/roster/types"
)

// ClassRepository handles persistence for classes and their member listing.
type ClassRepository struct {
	db *sqlx.DB
}

func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns every class ordered by id, with members when withMembers is set.
func (r *ClassRepository) List(ctx context.Context, withMembers bool) ([]types.Class, error) {
	classes := []types.Class{}
	const query = `SELECT id, grade, created_at FROM classes ORDER BY id`
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, err
	}
	if !withMembers || len(classes) == 0 {
		return classes, nil
	}

	members, err := queryJoinedUsers(ctx, r.db, userJoinedSelect+` WHERE u.class_id IS NOT NULL ORDER BY u.id`)
	if err != nil {
		return nil, err
	}
	byClass := make(map[int][]types.User, len(classes))
	for _, member := range members {
		byClass[*member.ClassID] = append(byClass[*member.ClassID], member)
	}
	for i := range classes {
		classes[i].Users = membersOrEmpty(byClass[classes[i].ID])
	}
	return classes, nil
}

func (r *ClassRepository) Get(ctx context.Context, id int, withMembers bool) (types.Class, error) {
	var class types.Class
	const query = `SELECT id, grade, created_at FROM classes WHERE id = $1`
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Class{}, ErrNotFound
		}
		return types.Class{}, err
	}
	if !withMembers {
		return class, nil
	}

	members, err := queryJoinedUsers(ctx, r.db, userJoinedSelect+` WHERE u.class_id = $1 ORDER BY u.id`, id)
	if err != nil {
		return types.Class{}, err
	}
	class.Users = membersOrEmpty(members)
	return class, nil
}

func (r *ClassRepository) Create(ctx context.Context, class types.Class) (types.Class, error) {
	class.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO classes (grade, created_at)
		VALUES ($1, $2)
		RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, class.Grade, class.CreatedAt).Scan(&class.ID); err != nil {
		return types.Class{}, err
	}
	class.Users = []types.User{}
	return class, nil
}

// GetByGrade returns the first class carrying the grade label.
func (r *ClassRepository) GetByGrade(ctx context.Context, grade string) (types.Class, error) {
	var class types.Class
	const query = `SELECT id, grade, created_at FROM classes WHERE grade = $1 ORDER BY id LIMIT 1`
	if err := r.db.GetContext(ctx, &class, query, grade); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Class{}, ErrNotFound
		}
		return types.Class{}, err
	}
	return class, nil
}

func membersOrEmpty(users []types.User) []types.User {
	if users == nil {
		return []types.User{}
	}
	return users
}
