package report

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// Level is one stage of a cascading filter: a name and how to read the
// value of that stage from a row. Compare orders the offered options;
// nil sorts them as text.
type Level[T any] struct {
	Name    string
	Value   func(T) string
	Compare func(a, b string) int
}

// CompareNumeric orders numeric values by magnitude, so width 9 comes
// before 12. Values that do not parse sort after the numbers, as text.
func CompareNumeric(a, b string) int {
	da, errA := decimal.NewFromString(a)
	db, errB := decimal.NewFromString(b)
	switch {
	case errA == nil && errB == nil:
		return da.Cmp(db)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return cmp.Compare(a, b)
}

// Option is a selectable value with the number of rows it would keep
type Option struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CascadeResult is the outcome of applying a cascade to rows
type CascadeResult[T any] struct {
	Rows      []T                 `json:"rows"`
	Options   map[string][]Option `json:"options"`
	Selection map[string]string   `json:"selection"`
	// Reset lists levels whose selection was dropped because it is no
	// longer offered given the upstream selections.
	Reset []string `json:"reset,omitempty"`
}

// Cascade applies selections level by level. The options for each level
// are computed from rows matching all upstream selections, so picking a
// client narrows the orders offered, which narrows the paper specs, and so
// on. A selection absent from its level's options is dropped and reported
// in Reset; downstream levels then see the rows of the last valid level.
func Cascade[T any](rows []T, levels []Level[T], selection map[string]string) CascadeResult[T] {
	res := CascadeResult[T]{
		Options:   make(map[string][]Option, len(levels)),
		Selection: make(map[string]string, len(levels)),
	}

	current := rows
	for _, lvl := range levels {
		counts := map[string]int{}
		for _, r := range current {
			if v := lvl.Value(r); v != "" {
				counts[v]++
			}
		}
		opts := make([]Option, 0, len(counts))
		for v, n := range counts {
			opts = append(opts, Option{Value: v, Count: n})
		}
		compare := lvl.Compare
		if compare == nil {
			compare = cmp.Compare[string]
		}
		slices.SortFunc(opts, func(a, b Option) int { return compare(a.Value, b.Value) })
		res.Options[lvl.Name] = opts

		sel := selection[lvl.Name]
		if sel == "" {
			continue
		}
		if _, ok := counts[sel]; !ok {
			res.Reset = append(res.Reset, lvl.Name)
			continue
		}
		res.Selection[lvl.Name] = sel
		next := make([]T, 0, counts[sel])
		for _, r := range current {
			if lvl.Value(r) == sel {
				next = append(next, r)
			}
		}
		current = next
	}
	res.Rows = current
	return res
}
