package model

import "errors"

var (
	// User related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")

	// Token related errors
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenNotFound = errors.New("token not found")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")

	// Configuration errors
	ErrWeakSecret = errors.New("signing secret is missing or shorter than 32 bytes")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
