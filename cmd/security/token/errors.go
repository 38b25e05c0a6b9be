package token

import "errors"

var (
	ErrNoSecret     = errors.New("token secret not configured")
	ErrWeakSecret   = errors.New("token secret too short")
	ErrInvalidToken = errors.New("invalid token")
)
