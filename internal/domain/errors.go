package domain

import "errors"

var (
	ErrCardNotFound   = errors.New("card not found")
	ErrDeckNotFound   = errors.New("deck not found")
	ErrSpreadNotFound = errors.New("spread not found")
	// ErrSpreadMismatch signals a reading whose drawn cards do not line up
	// with the spread's positions. This is a caller bug, not user input.
	ErrSpreadMismatch = errors.New("reading does not match spread positions")
	ErrNotEnoughCards = errors.New("spread requires more cards than the deck holds")
	ErrUpstreamLLM    = errors.New("upstream LLM failure")
	ErrInvalidLLMJSON = errors.New("LLM returned invalid JSON after retry")
)
