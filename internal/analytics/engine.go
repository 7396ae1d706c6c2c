package analytics

import (
	"time"

	"github.com/souqops/analytics-manager/internal/dependency"
)

// Engine computes the derived business metrics. All reads go through the
// injected repository; every aggregation is a pure fold over batch-fetched
// rows, local to one request's call stack.
type Engine struct {
	rep dependency.Repository
	now func() time.Time
}

func New(rep dependency.Repository) *Engine {
	return &Engine{rep: rep, now: time.Now}
}

// NewWithClock builds an engine with a fixed clock for tests that assert
// recency math.
func NewWithClock(rep dependency.Repository, now func() time.Time) *Engine {
	return &Engine{rep: rep, now: now}
}
