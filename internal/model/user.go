package model

// User is an account that owns a catalog, patients and plan runs.
type User struct {
	Base
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	CurrentSet   string `db:"current_set" json:"current_set"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// TokenClaims is the validated identity carried by an access token.
type TokenClaims struct {
	UserID string
	Email  string
}
