package sla

import "errors"

var (
	// ErrInvalidArgument marks inputs the engine refuses to compute with,
	// such as negative business hours or an inverted report range.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConfigurationMissing is returned when a target lookup has neither a
	// matching entry nor a configured default.
	ErrConfigurationMissing = errors.New("sla configuration missing")
)
