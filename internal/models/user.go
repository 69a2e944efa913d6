package models

import "github.com/google/uuid"

// User is a player account. Guests get a generated account name and a gold
// grant; they can later claim the account by setting a password.
type User struct {
	ID       uuid.UUID `json:"id"`
	Account  string    `json:"account"`
	Password string    `json:"password,omitempty"`
	Nickname string    `json:"nickname"`
	Avatar   int       `json:"avatar"`
	Gold     int64     `json:"gold"`
	IsGuest  bool      `json:"is_guest"`
}
