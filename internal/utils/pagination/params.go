package pagination

import "strconv"

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is offset-based pagination state parsed from query parameters.
// Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// Parse builds Params from raw query values, falling back to defaults and
// clamping the limit. Empty strings are valid and mean "first page,
// default size".
func Parse(pageStr, limitStr string) Params {
	p := Params{Page: 1, Limit: DefaultLimit}

	if n, err := strconv.Atoi(pageStr); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
		p.Limit = n
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the row offset for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Slice applies the params to an in-memory result set, used when a filter
// cannot be pushed down to the database.
func Slice[T any](items []T, p Params) []T {
	start := p.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
