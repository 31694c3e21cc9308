package types

import "time"

// Role is the authorization level of an account.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole maps a form value onto a Role. Anything that is not ADMIN
// is a student.
func ParseRole(value string) Role {
	if Role(value) == RoleAdmin {
		return RoleAdmin
	}
	return RoleStudent
}

// User represents an account in the roster.
// It contains identity, credentials, role, and class membership.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Email is the unique login address of the user.
	Email string `json:"email" db:"email"`

	// Username is the display handle of the user.
	Username string `json:"username" db:"username"`

	// PasswordHash stores the digest of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Role indicates whether the user is a student or an administrator.
	Role Role `json:"role" db:"role"`

	// Token is the session token compared against the "token" cookie.
	// It is nil until one has been issued.
	Token *string `json:"token" db:"token"`

	// ClassID references the class the user belongs to, if any.
	ClassID *int `json:"class_id" db:"class_id"`

	// PersonalInfo is populated when relations are included.
	PersonalInfo *PersonalInfo `json:"personal_info,omitempty" db:"-"`

	// Computer is populated when relations are included.
	Computer *Computer `json:"computer,omitempty" db:"-"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PersonalInfo holds the contact details of a user.
type PersonalInfo struct {
	ID        int    `json:"id" db:"id"`
	UserID    int    `json:"user_id" db:"user_id"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Address   string `json:"address" db:"address"`
	Phone     string `json:"phone" db:"phone"`
}

// Computer is the asset record of the machine assigned to a user.
type Computer struct {
	ID           int       `json:"id" db:"id"`
	UserID       int       `json:"user_id" db:"user_id"`
	AssignedDate time.Time `json:"assigned_date" db:"assigned_date"`
	Model        string    `json:"model" db:"model"`
}

// UserPatch lists the fields of an update. Nil fields are left unchanged.
type UserPatch struct {
	Email        *string
	Username     *string
	PasswordHash *string
	Role         *Role

	// ClassIDSet marks ClassID as present; a nil ClassID then clears it.
	ClassIDSet bool
	ClassID    *int

	FirstName *string
	LastName  *string
	Address   *string
	Phone     *string

	AssignedDate *time.Time
	Model        *string
}
