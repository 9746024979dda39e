package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role is the portal-wide user type. Each user holds exactly one.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleParent  Role = "PARENT"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

var AllRoles = []Role{RoleStudent, RoleTeacher, RoleParent, RoleManager, RoleAdmin}

func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	Role         Role      `json:"role" db:"role"`
	Subject      string    `json:"subject,omitempty" db:"subject"` // taught subject; teachers only
	IsActive     bool      `json:"is_active" db:"is_active"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd []byte) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, pwd)
}

// Actor is the request-scoped caller identity extracted from the auth token.
// It is threaded through every operation call; services hold no per-request
// state.
type Actor struct {
	ID   int
	Role Role
}
