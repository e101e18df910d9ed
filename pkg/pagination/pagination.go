// Package pagination turns limit/offset query parameters into bounded page requests and
// builds the {total, items, next_cursor} page envelope.
package pagination

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var ErrInvalidParams = errors.New("invalid pagination parameters")

// Params is a bounded page request.
type Params struct {
	Limit  int
	Offset int
}

// Bounds holds the default and maximum page size.
type Bounds struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultBounds returns the package defaults.
func DefaultBounds() Bounds {
	return Bounds{DefaultLimit: DefaultLimit, MaxLimit: MaxLimit}
}

// Parse reads raw limit and offset values. Empty strings fall back to the default limit and a
// zero offset; limit is capped at the maximum.
func (b Bounds) Parse(rawLimit, rawOffset string) (Params, error) {
	b = b.normalize()
	p := Params{Limit: b.DefaultLimit}

	if rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil || limit < 1 {
			return Params{}, fmt.Errorf("%w: limit must be a positive integer", ErrInvalidParams)
		}
		p.Limit = limit
	}
	if rawOffset != "" {
		offset, err := strconv.Atoi(rawOffset)
		if err != nil || offset < 0 {
			return Params{}, fmt.Errorf("%w: offset must be a non-negative integer", ErrInvalidParams)
		}
		p.Offset = offset
	}

	if p.Limit > b.MaxLimit {
		p.Limit = b.MaxLimit
	}
	return p, nil
}

func (b Bounds) normalize() Bounds {
	if b.MaxLimit < 1 {
		b.MaxLimit = MaxLimit
	}
	if b.DefaultLimit < 1 {
		b.DefaultLimit = DefaultLimit
	}
	if b.DefaultLimit > b.MaxLimit {
		b.DefaultLimit = b.MaxLimit
	}
	return b
}

// Page is one slice of a filtered collection.
type Page[T any] struct {
	Total      int64 `json:"total"`
	Items      []T   `json:"items"`
	NextCursor *int  `json:"next_cursor"`
}

// NewPage builds a page. NextCursor is set only while items remain past this page.
func NewPage[T any](total int64, items []T, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	page := Page[T]{Total: total, Items: items}
	if next := p.Offset + len(items); total > int64(next) {
		page.NextCursor = &next
	}
	return page
}
