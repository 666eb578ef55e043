package constants

// Pagination limits
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Timer defaults
const (
	// DefaultTimerMinutes is the countdown length used when the machine has
	// not been configured explicitly.
	DefaultTimerMinutes = 25
)

// Archival
const (
	// DefaultArchiveGraceSeconds is how long a delayed archive stays
	// cancellable before the closed status is durably committed.
	DefaultArchiveGraceSeconds = 10
)
