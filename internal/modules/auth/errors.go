package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("no active account found with the given credentials")
	ErrInvalidRefreshToken = errors.New("refresh token is invalid or expired")
	ErrRefreshTokenReused  = errors.New("refresh token reuse detected")
	ErrInvalidToken        = errors.New("token is invalid or expired")
)
