package shared

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filter carries the list parameters shared by every page: paging, sort and
// a free-text search. Listings are fetched whole from the backend and then
// narrowed locally.
type Filter struct {
	Page     int    `form:"page" json:"page"`
	PageSize int    `form:"page_size" json:"page_size"`
	OrderBy  string `form:"order_by" json:"order_by"`
	OrderDir string `form:"order_dir" json:"order_dir"`
	Search   string `form:"search" json:"search"`
}

// Normalize clamps paging values and validates the sort direction
func (f Filter) Normalize() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	f.OrderDir = strings.ToLower(strings.TrimSpace(f.OrderDir))
	if f.OrderDir != "asc" && f.OrderDir != "desc" {
		f.OrderDir = ""
	}
	f.Search = strings.TrimSpace(f.Search)
	return f
}

// PageInfo describes one page of a locally paginated listing
type PageInfo struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// Page is a slice of results plus its paging metadata
type Page[T any] struct {
	Items []T      `json:"items"`
	Info  PageInfo `json:"info"`
}

// Paginate returns the requested page of items. A page beyond the end
// yields an empty slice.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	f := Filter{Page: page, PageSize: pageSize}.Normalize()
	total := len(items)

	info := PageInfo{
		Total:      int64(total),
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: (total + f.PageSize - 1) / f.PageSize,
	}

	start := (f.Page - 1) * f.PageSize
	if start >= total {
		return Page[T]{Items: []T{}, Info: info}
	}
	end := min(start+f.PageSize, total)
	return Page[T]{Items: items[start:end], Info: info}
}

// Comparator orders two values, returning <0, 0 or >0
type Comparator[T any] func(a, b T) int

// SortSpec names the comparators an entity can be sorted by
type SortSpec[T any] struct {
	Default    string
	DefaultDir string
	Keys       map[string]Comparator[T]
}

// Sort stably sorts items in place by key. Unknown keys fall back to the
// default key and direction; an empty direction uses the default direction.
func (s SortSpec[T]) Sort(items []T, key, dir string) {
	cmpFn, ok := s.Keys[key]
	if !ok {
		cmpFn, ok = s.Keys[s.Default]
		if !ok {
			return
		}
		dir = ""
	}
	if dir == "" {
		dir = s.DefaultDir
	}
	desc := dir == "desc"
	slices.SortStableFunc(items, func(a, b T) int {
		if desc {
			return cmpFn(b, a)
		}
		return cmpFn(a, b)
	})
}

// CompareFold compares strings case-insensitively
func CompareFold(a, b string) int {
	return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
}

// MatchesSearch reports whether any field contains the query, ignoring case.
// An empty query matches everything.
func MatchesSearch(query string, fields ...string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

// FilterSlice returns the items for which keep returns true
func FilterSlice[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// DateRange is an inclusive day-granularity range. Zero bounds are open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether neither bound is set
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether t falls within the range by calendar day.
// A zero t is outside any bounded range.
func (r DateRange) Contains(t time.Time) bool {
	if r.IsZero() {
		return true
	}
	if t.IsZero() {
		return false
	}
	day := dayOf(t)
	if !r.From.IsZero() && day.Before(dayOf(r.From)) {
		return false
	}
	if !r.To.IsZero() && day.After(dayOf(r.To)) {
		return false
	}
	return true
}

// Query renders the range as from_date/to_date query values for the backend
func (r DateRange) Query() map[string]string {
	q := map[string]string{}
	if !r.From.IsZero() {
		q["from_date"] = r.From.Format(time.DateOnly)
	}
	if !r.To.IsZero() {
		q["to_date"] = r.To.Format(time.DateOnly)
	}
	return q
}

// ParseDateRange parses YYYY-MM-DD bounds; empty strings leave a bound open
func ParseDateRange(from, to string) (DateRange, error) {
	var r DateRange
	var err error
	if from = strings.TrimSpace(from); from != "" {
		if r.From, err = time.Parse(time.DateOnly, from); err != nil {
			return DateRange{}, InvalidInput("from date must be YYYY-MM-DD")
		}
	}
	if to = strings.TrimSpace(to); to != "" {
		if r.To, err = time.Parse(time.DateOnly, to); err != nil {
			return DateRange{}, InvalidInput("to date must be YYYY-MM-DD")
		}
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return DateRange{}, InvalidInput("to date is before from date")
	}
	return r, nil
}

// dayOf drops the clock, keeping the calendar date as seen in t's own zone
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
