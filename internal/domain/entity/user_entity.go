package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Password holds a bcrypt digest, never the plaintext.
//
// CodeID and CodeExpired are only meaningful while IsActive is false.
type User struct {
	ID          string     `json:"_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Password    string     `json:"-"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	Image       string     `json:"image,omitempty"`
	IsActive    bool       `json:"isActive"`
	CodeID      string     `json:"-"`
	CodeExpired *time.Time `json:"codeExpired,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
