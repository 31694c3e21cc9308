package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/schoolroster/roster/internal/store"
	"github.com/schoolroster/roster/types"
)

// SeedClassRepository is the slice of class persistence the seed routine needs.
type SeedClassRepository interface {
	GetByGrade(ctx context.Context, grade string) (types.Class, error)
	Create(ctx context.Context, class types.Class) (types.Class, error)
}

// SeedInput describes the bootstrap administrator and first class.
type SeedInput struct {
	AdminEmail    string
	AdminPassword string
	ClassGrade    string
}

// Seed makes sure the bootstrap class and administrator exist. Running it
// again leaves existing records alone.
func Seed(ctx context.Context, users *UserService, classes SeedClassRepository, in SeedInput) (types.User, error) {
	class, err := classes.GetByGrade(ctx, in.ClassGrade)
	if errors.Is(err, store.ErrNotFound) {
		class, err = classes.Create(ctx, types.Class{Grade: in.ClassGrade})
	}
	if err != nil {
		return types.User{}, fmt.Errorf("seed class: %w", err)
	}

	admin, err := users.repo.GetByEmail(ctx, in.AdminEmail)
	if err == nil {
		return admin, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("seed admin lookup: %w", err)
	}

	admin, err = users.Create(ctx, NewUser{
		Email:     in.AdminEmail,
		Password:  in.AdminPassword,
		Username:  "admin",
		Role:      types.RoleAdmin,
		ClassID:   &class.ID,
		FirstName: "School",
		LastName:  "Admin",
	})
	if err != nil {
		return types.User{}, fmt.Errorf("seed admin: %w", err)
	}
	return admin, nil
}
