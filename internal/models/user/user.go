package user

import "time"

const (
	MinUsernameLen = 2
	MaxUsernameLen = 80
	MaxEmailLen    = 120
)

type User struct {
	ID                   int64      `json:"id" db:"id"`
	Username             string     `json:"username" db:"username"`
	Email                string     `json:"email" db:"email"`
	PasswordHash         string     `json:"-" db:"password_hash"`
	IsAdmin              bool       `json:"is_admin" db:"is_admin"`
	ResetToken           *string    `json:"-" db:"reset_token"`
	ResetTokenExpiration *time.Time `json:"-" db:"reset_token_expiration"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
}

// HasResetToken: токен и срок действия задаются и очищаются только вместе
func (u *User) HasResetToken() bool {
	return u.ResetToken != nil && u.ResetTokenExpiration != nil
}
