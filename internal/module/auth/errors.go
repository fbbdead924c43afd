package auth

import "errors"

// Auth module errors.
var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrAppToken          = errors.New("token is not bound to a user")
	ErrInvalidOAuthCode  = errors.New("invalid OAuth code")
	ErrInvalidOAuthState = errors.New("invalid OAuth state")
)
