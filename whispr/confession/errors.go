package confession

import "errors"

var (
	// ErrRateLimited is returned when an author posts again inside the
	// per-guild cooldown window.
	ErrRateLimited = errors.New("confession rate limited")

	// ErrEmptyContent is returned when the trimmed confession body is empty.
	ErrEmptyContent = errors.New("confession content is empty")

	// ErrNoChannel is returned when a guild has no bound confession channel
	// or the bound channel no longer resolves.
	ErrNoChannel = errors.New("no confession channel configured")

	// ErrMalformedReply is returned when a DM does not parse as
	// "reply <code> <text>".
	ErrMalformedReply = errors.New("malformed reply command")
)
