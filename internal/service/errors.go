package service

import "errors"

// Classification errors wrapped around lower-level failures so the
// transport layer can pick a status code without inspecting messages.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)
