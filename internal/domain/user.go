package domain

// User staff account (users table)
// PasswordHash is opaque to everything except the auth service.
type User struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"` // NOT NULL, unique
	PasswordHash []byte `db:"password_hash"`
	IsAdmin      bool   `db:"is_admin"`
}
