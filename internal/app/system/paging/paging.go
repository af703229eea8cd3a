// internal/app/system/paging/paging.go
package paging

import (
	"bytes"
	"net/http"
	"strconv"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// DefaultPageSize is the number of rows returned when the request
	// does not name a limit.
	DefaultPageSize = 50

	// MaxPageSize caps client-requested limits.
	MaxPageSize = 200
)

// Params holds the paging inputs parsed from a list request.
type Params struct {
	Limit int
	After string // opaque cursor from a previous page's next_cursor
}

// Parse reads the "limit" and "after" query parameters.
func Parse(r *http.Request) Params {
	p := Params{Limit: DefaultPageSize, After: query.Get(r, "after")}
	if s := query.Get(r, "limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			if n > MaxPageSize {
				n = MaxPageSize
			}
			p.Limit = n
		}
	}
	return p
}

// Page applies the cursor window and limit to rows already sorted
// ascending by (key, id). keyFn and idFn extract the sort key and tie-break
// id from a row. It returns the page and the cursor for the next one;
// an empty cursor means this was the last page.
//
// The cursor encodes the last row's (key, id) pair, so a row inserted or
// removed between requests shifts the window by position, never repeats or
// skips a surviving row.
func Page[T any](rows []T, p Params, keyFn func(T) string, idFn func(T) primitive.ObjectID) ([]T, string) {
	start := 0
	if p.After != "" {
		if c, ok := wafflemongo.DecodeCursor(p.After); ok {
			start = len(rows)
			for i, row := range rows {
				k, id := keyFn(row), idFn(row)
				if k > c.CI || (k == c.CI && bytes.Compare(id[:], c.ID[:]) > 0) {
					start = i
					break
				}
			}
		}
	}

	end := start + p.Limit
	if end >= len(rows) {
		return rows[start:], ""
	}
	page := rows[start:end]
	last := page[len(page)-1]
	return page, wafflemongo.EncodeCursor(keyFn(last), idFn(last))
}
