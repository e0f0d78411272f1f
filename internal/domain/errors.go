package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyExists  = errors.New("already exists")
	ErrRateLimited    = errors.New("rate limited")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrKillSwitch     = errors.New("kill switch active")
	ErrPositionLimit  = errors.New("position limit reached")
	ErrInvalidQuote   = errors.New("invalid quote")
	ErrWSDisconnect   = errors.New("websocket disconnected")
)
