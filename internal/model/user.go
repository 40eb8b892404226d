package model

import (
	"time"
)

type Role string

const (
	RoleGuest         Role = "guest"
	RoleSubscriber    Role = "subscriber"
	RoleAuthor        Role = "author"
	RoleEditor        Role = "editor"
	RoleAdministrator Role = "administrator"
)

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash *string   `db:"password_hash"` // Nullable for passwordless users
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
