package dto

import "time"

type CodeRequest struct {
	Email string `json:"email" validate:"required,email,max=120"`
}

type TokenRequest struct {
	Email string `json:"email" validate:"required,email,max=120"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Identity is the verified caller of a request.
type Identity struct {
	UserID    string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}
