package model

import (
	"time"
)

// Role is a closed enumeration; anything outside the two constants is
// rejected at the edges.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Not exposed
	Avatar         string    `json:"avatar,omitempty"`
	Confirmed      bool      `json:"confirmed"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}
