package domain

import "errors"

var (
	// ErrUnauthenticated is returned when a save, or any access to an owned draft, has no current user.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrSaveFailed wraps any storage failure during save.
	ErrSaveFailed = errors.New("save failed")
	// ErrFetchFailed wraps any storage failure while listing sessions.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrActivityLimitReached is the policy rejection for a toggle past the cap.
	ErrActivityLimitReached = errors.New("activity limit reached")

	ErrUnknownMood     = errors.New("unknown mood")
	ErrUnknownActivity = errors.New("unknown activity")
	ErrUnknownField    = errors.New("unknown reflection field")
)
