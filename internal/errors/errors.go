package errors

import "errors"

// Domain errors surfaced by the match service. Handlers translate them to
// HTTP responses via Map; anything not in this set is treated as a storage
// failure and hidden behind a generic message.
var (
	ErrMatchNotFound   = errors.New("match not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrDuplicateMatch  = errors.New("match already exists for this pair")
	ErrDuplicateRating = errors.New("rating already submitted for this match")
	ErrNotParticipant  = errors.New("user is not a participant of this match")
	ErrInvalidArgument = errors.New("invalid argument")

	ErrIncompleteProfile  = errors.New("profile must be complete before matching")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
)

// InvalidArgumentf wraps ErrInvalidArgument with a caller-facing detail
// message, keeping errors.Is checks intact.
func InvalidArgumentf(format string, args ...any) error {
	return wrapf(ErrInvalidArgument, format, args...)
}
