// Package pagination implements the peek-ahead paging convention shared by
// every listing operation: request one row more than the page size and use the
// overflow row as the "more pages exist" signal, avoiding a separate count
// query.
package pagination

// DefaultPageSize is the fixed page size used by feed and reply listings.
const DefaultPageSize = 30

// Params holds a validated 1-indexed page request.
type Params struct {
	Page int
	Size int
}

// New clamps page and size to sane values. Pages below 1 become 1; sizes below
// 1 fall back to DefaultPageSize.
func New(page, size int) Params {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	return Params{Page: page, Size: size}
}

// Offset returns the row offset for the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Size
}

// PeekLimit returns the number of rows to request: one more than the page size.
func (p Params) PeekLimit() int {
	return p.Size + 1
}

// NextPageCount returns the explicit next-page cursor value for clients that
// prefer a token over incrementing locally.
func (p Params) NextPageCount() int {
	return p.Page + 1
}

// Trim truncates a peeked result set to the page size and reports whether a
// further page exists.
func Trim[T any](rows []T, size int) ([]T, bool) {
	if len(rows) > size {
		return rows[:size], true
	}
	return rows, false
}
