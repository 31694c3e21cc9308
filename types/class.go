package types

import "time"

// Class is a roster group identified by its grade label.
type Class struct {
	// ID is the unique identifier of the class.
	ID int `json:"id" db:"id"`

	// Grade is the label shown for the class, e.g. "3B".
	Grade string `json:"grade" db:"grade"`

	// Users lists the members of the class when relations are included.
	Users []User `json:"users" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
