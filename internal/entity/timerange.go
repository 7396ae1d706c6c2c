package entity

import "time"

// TimeRange is a half-open [From, To) aggregation window. A zero From or To
// means the corresponding bound is absent (unbounded).
type TimeRange struct {
	From time.Time `json:"start"`
	To   time.Time `json:"end"`
}

// IsZero reports whether no bound is set at all.
func (tr TimeRange) IsZero() bool {
	return tr.From.IsZero() && tr.To.IsZero()
}

// Days returns the whole number of days covered by the window, at least 1.
func (tr TimeRange) Days() int {
	if tr.From.IsZero() || tr.To.IsZero() {
		return 1
	}
	d := int(tr.To.Sub(tr.From).Hours() / 24)
	if d < 1 {
		return 1
	}
	return d
}
