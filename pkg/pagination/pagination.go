package pagination

import (
	"fmt"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params holds the window of a list to display.
type Params struct {
	Limit  int
	Offset int
}

// New normalizes user-supplied paging values: a non-positive limit becomes
// DefaultLimit, limits above MaxLimit are capped and negative offsets become 0.
func New(limit, offset int) Params {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Params{Limit: limit, Offset: offset}
}

// Page is one window over a list already held in memory.
type Page[T any] struct {
	Data    []T  `json:"data"`
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// Paginate slices items according to p. An offset past the end yields an
// empty page. The returned Data shares storage with items.
func Paginate[T any](items []T, p Params) Page[T] {
	total := len(items)
	start, end := p.Range(total)
	return Page[T]{
		Data:    items[start:end],
		Total:   total,
		Limit:   p.Limit,
		Offset:  p.Offset,
		HasMore: p.HasNext(total),
	}
}

// Range returns the slice bounds of the page within total items.
func (p Params) Range(total int) (start, end int) {
	start = p.Offset
	if start > total {
		start = total
	}
	end = start + p.Limit
	if end > total {
		end = total
	}
	return start, end
}

// HasNext returns true if there are more results after the current page.
// Written as a subtraction so a huge offset cannot overflow.
func (p Params) HasNext(total int) bool {
	return p.Offset < total-p.Limit
}

// HasPrevious returns true if there are results before the current page.
func (p Params) HasPrevious() bool {
	return p.Offset > 0
}

// NextOffset returns the offset for the next page.
func (p Params) NextOffset() int {
	return p.Offset + p.Limit
}

// PreviousOffset returns the offset for the previous page.
// Returns 0 if the result would be negative.
func (p Params) PreviousOffset() int {
	prev := p.Offset - p.Limit
	if prev < 0 {
		return 0
	}
	return prev
}

// Hints returns the --offset values for the neighbouring pages, or nil when
// the whole list fits on this page.
func (pg Page[T]) Hints() []string {
	p := Params{Limit: pg.Limit, Offset: pg.Offset}
	var hints []string
	if p.HasPrevious() {
		hints = append(hints, fmt.Sprintf("previous: --offset %d", p.PreviousOffset()))
	}
	if pg.HasMore {
		hints = append(hints, fmt.Sprintf("next: --offset %d", p.NextOffset()))
	}
	return hints
}

// Summary describes the page for display, e.g. "21-40 of 45".
func (pg Page[T]) Summary() string {
	if len(pg.Data) == 0 {
		return fmt.Sprintf("0 of %d", pg.Total)
	}
	return fmt.Sprintf("%d-%d of %d", pg.Offset+1, pg.Offset+len(pg.Data), pg.Total)
}
