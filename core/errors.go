package core

import "errors"

var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrWrongCredentials   = errors.New("wrong credentials")
	ErrTokenCreation      = errors.New("token creation error")
	ErrInvalidToken       = errors.New("invalid token")
)
