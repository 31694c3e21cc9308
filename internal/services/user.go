package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/schoolroster/roster/internal/auth"
	"github.com/schoolroster/roster/internal/store"
	"github.com/schoolroster/roster/types"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	List(ctx context.Context, withRelations bool) ([]types.User, error)
	GetByID(ctx context.Context, id int, withRelations bool) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByToken(ctx context.Context, token string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	SetToken(ctx context.Context, id int, token string) error
	Update(ctx context.Context, id int, patch types.UserPatch) error
	RemoveFromClass(ctx context.Context, id int) (*int, error)
	Delete(ctx context.Context, id int) error
}

// UserOptions selects between the behaviours the roster pages were built against.
type UserOptions struct {
	// DeriveUsername builds usernames from the first and last name instead
	// of taking the submitted one.
	DeriveUsername bool
	// IncludeRelations joins personal info and computer into reads.
	IncludeRelations bool
}

// NewUser is the input of account creation.
type NewUser struct {
	Email        string
	Password     string
	Username     string
	Role         types.Role
	ClassID      *int
	FirstName    string
	LastName     string
	Address      string
	Phone        string
	Model        string
	AssignedDate time.Time
}

// UserService encapsulates account use-cases.
type UserService struct {
	repo   UserRepository
	hasher auth.Hasher
	tokens *auth.TokenIssuer
	opts   UserOptions
}

func NewUserService(repo UserRepository, hasher auth.Hasher, tokens *auth.TokenIssuer, opts UserOptions) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		opts:   opts,
	}
}

// Authenticate checks the credentials and returns the user with a session token.
// A user that never received a token gets one here.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}
	if !s.hasher.Matches(user.PasswordHash, password) {
		return types.User{}, ErrInvalidCredentials
	}

	if user.Token == nil || *user.Token == "" {
		token, err := s.tokens.Issue(user.Email)
		if err != nil {
			return types.User{}, fmt.Errorf("issue token: %w", err)
		}
		if err := s.repo.SetToken(ctx, user.ID, token); err != nil {
			return types.User{}, fmt.Errorf("store token: %w", err)
		}
		user.Token = &token
	}
	return user, nil
}

// ResolveToken returns the user holding the session token.
func (s *UserService) ResolveToken(ctx context.Context, token string) (types.User, error) {
	return s.repo.GetByToken(ctx, token)
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx, s.opts.IncludeRelations)
}

func (s *UserService) Get(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id, s.opts.IncludeRelations)
}

// Create stores a new account together with its personal info and computer.
func (s *UserService) Create(ctx context.Context, in NewUser) (types.User, error) {
	digest, err := s.hasher.Digest(in.Password)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}
	token, err := s.tokens.Issue(in.Email)
	if err != nil {
		return types.User{}, fmt.Errorf("issue token: %w", err)
	}

	username := in.Username
	if s.opts.DeriveUsername {
		username = DeriveUsername(in.FirstName, in.LastName, in.Email)
	}

	assigned := in.AssignedDate
	if assigned.IsZero() {
		assigned = time.Now().UTC()
	}

	return s.repo.Create(ctx, types.User{
		Email:        in.Email,
		Username:     username,
		PasswordHash: digest,
		Role:         in.Role,
		Token:        &token,
		ClassID:      in.ClassID,
		PersonalInfo: &types.PersonalInfo{
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Address:   in.Address,
			Phone:     in.Phone,
		},
		Computer: &types.Computer{
			AssignedDate: assigned,
			Model:        in.Model,
		},
	})
}

// UpdateByToken patches the user holding token. A nil password keeps the
// stored digest.
func (s *UserService) UpdateByToken(ctx context.Context, token string, password *string, patch types.UserPatch) (types.User, error) {
	user, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return types.User{}, err
	}

	if password != nil {
		digest, err := s.hasher.Digest(*password)
		if err != nil {
			return types.User{}, fmt.Errorf("hash password: %w", err)
		}
		patch.PasswordHash = &digest
	}

	if err := s.repo.Update(ctx, user.ID, patch); err != nil {
		return types.User{}, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// RemoveFromClass detaches the user from its class and returns the class it left.
func (s *UserService) RemoveFromClass(ctx context.Context, id int) (*int, error) {
	return s.repo.RemoveFromClass(ctx, id)
}

// DeriveUsername joins the lowercased name parts with a dot, dropping
// whitespace. With no name at all the local part of the email is used.
func DeriveUsername(firstName, lastName, email string) string {
	parts := make([]string, 0, 2)
	for _, part := range []string{firstName, lastName} {
		part = strings.ToLower(stripSpace(part))
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ".")
	}
	local, _, _ := strings.Cut(email, "@")
	return strings.ToLower(local)
}

func stripSpace(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
}
