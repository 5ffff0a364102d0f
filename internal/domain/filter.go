package domain

import "time"

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// Pagination selects one page of a sorted result set.
type Pagination struct {
	Page          int
	PerPage       int
	SortBy        string
	SortDirection string
}

// Normalized fills zero values with defaults. The per-page cap is enforced by
// request validation, not here.
func (p Pagination) Normalized() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	return p
}

// CustomerFilter narrows a customer listing. Zero values mean "no filter".
type CustomerFilter struct {
	Search      string
	Status      CustomerStatus
	Company     string
	StartDate   *time.Time
	EndDate     *time.Time
	WithTrashed bool
	Pagination
}

// Page is one page of results together with the total match count.
type Page[T any] struct {
	Items   []T
	Total   int
	Page    int
	PerPage int
}

// LastPage is the number of the final page; at least 1.
func (p Page[T]) LastPage() int {
	if p.PerPage < 1 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// From is the 1-based position of the first item on the page, 0 when empty.
func (p Page[T]) From() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.Page-1)*p.PerPage + 1
}

// To is the 1-based position of the last item on the page, 0 when empty.
func (p Page[T]) To() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.From() + len(p.Items) - 1
}
