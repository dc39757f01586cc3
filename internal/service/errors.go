package service

import "errors"

var (
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")

	// Ownership failures and missing records share one error so callers
	// cannot discover other users' IDs.
	ErrNoteNotFound     = errors.New("note not found or unauthorized")
	ErrBookmarkNotFound = errors.New("not authorized or bookmark not found")
)
