package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoPlatform   = errors.New("service: no platform configured")
	ErrUnknownGroup = errors.New("service: unknown skill group")
	ErrUnknownView  = errors.New("service: unknown view")
)
