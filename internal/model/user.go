package model

import (
	"time"

	"github.com/lib/pq"
)

type User struct {
	ID             int            `db:"id" json:"id"`
	Email          string         `db:"email" json:"email"`
	HashedPassword string         `db:"hashed_password" json:"-"`
	Name           *string        `db:"name" json:"name,omitempty"`
	Roles          pq.StringArray `db:"roles" json:"roles"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// HasRole reports whether the user's role set contains r.
func (u *User) HasRole(r Role) bool {
	for _, have := range u.Roles {
		if Role(have) == r {
			return true
		}
	}
	return false
}

// PrimaryRole derives a single display role from the role set. The set is the
// only stored representation; an empty set reads as the fallback role.
func (u *User) PrimaryRole() Role {
	if len(u.Roles) == 0 {
		return RoleUser
	}
	return Role(u.Roles[0])
}
