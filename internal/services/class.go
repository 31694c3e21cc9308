package services

import (
	"context"

	"github.com/schoolroster/roster/types"
)

// ClassRepository defines persistence operations for classes.
type ClassRepository interface {
	List(ctx context.Context, withMembers bool) ([]types.Class, error)
	Get(ctx context.Context, id int, withMembers bool) (types.Class, error)
	Create(ctx context.Context, class types.Class) (types.Class, error)
}

// ClassService encapsulates class use-cases.
type ClassService struct {
	repo        ClassRepository
	withMembers bool
}

func NewClassService(repo ClassRepository, withMembers bool) *ClassService {
	return &ClassService{repo: repo, withMembers: withMembers}
}

func (s *ClassService) List(ctx context.Context) ([]types.Class, error) {
	return s.repo.List(ctx, s.withMembers)
}

func (s *ClassService) Get(ctx context.Context, id int) (types.Class, error) {
	return s.repo.Get(ctx, id, s.withMembers)
}

func (s *ClassService) Create(ctx context.Context, grade string) (types.Class, error) {
	return s.repo.Create(ctx, types.Class{Grade: grade})
}
