package store

import (
	"context"
	"errors"
	"testing"

	"github.com/schoolroster/roster/internal/testutil"
	"github.com/schoolroster/roster/types"
)

func TestClassListGroupsMembers(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenSQLite(t)
	classes := NewClassRepository(db)
	users := NewUserRepository(db)

	first, err := classes.Create(ctx, types.Class{Grade: "1A"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, err := classes.Create(ctx, types.Class{Grade: "2A"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := users.Create(ctx, newTestUser("a@school.test", &first.ID)); err != nil {
		t.Fatalf("Create user error = %v", err)
	}
	if _, err := users.Create(ctx, newTestUser("b@school.test", &first.ID)); err != nil {
		t.Fatalf("Create user error = %v", err)
	}
	if _, err := users.Create(ctx, newTestUser("c@school.test", nil)); err != nil {
		t.Fatalf("Create user error = %v", err)
	}

	list, err := classes.List(ctx, true)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List() returned %d classes, want 2", len(list))
	}
	if list[0].ID != first.ID || len(list[0].Users) != 2 {
		t.Errorf("first class = %+v", list[0])
	}
	if list[1].ID != second.ID || list[1].Users == nil || len(list[1].Users) != 0 {
		t.Errorf("second class = %+v, want empty member list", list[1])
	}

	flat, err := classes.List(ctx, false)
	if err != nil {
		t.Fatalf("List(flat) error = %v", err)
	}
	if flat[0].Users != nil {
		t.Errorf("flat List() returned members")
	}
}

func TestClassGetAndGrade(t *testing.T) {
	ctx := context.Background()
	classes := NewClassRepository(testutil.OpenSQLite(t))

	created, err := classes.Create(ctx, types.Class{Grade: "4C"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	byGrade, err := classes.GetByGrade(ctx, "4C")
	if err != nil || byGrade.ID != created.ID {
		t.Fatalf("GetByGrade() = %d, %v", byGrade.ID, err)
	}
	if _, err := classes.Get(ctx, 0, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(0) error = %v, want ErrNotFound", err)
	}
	if _, err := classes.GetByGrade(ctx, "9Z"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByGrade(missing) error = %v, want ErrNotFound", err)
	}
}
