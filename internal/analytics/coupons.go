package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/souqops/analytics-manager/internal/entity"
)

// CouponPerformance reports redemption activity per coupon in the window,
// ordered by usage. UsageRate is usage against the configured limit; 0 when
// the coupon is unlimited.
func (e *Engine) CouponPerformance(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.CouponStats, error) {
	coupons, err := e.rep.Coupons().CouponsWithUsage(ctx, companyID, tr)
	if err != nil {
		return nil, fmt.Errorf("coupon performance: %w", err)
	}

	stats := make([]entity.CouponStats, 0, len(coupons))
	for _, c := range coupons {
		stats = append(stats, entity.CouponStats{
			Code:         c.Code,
			Type:         string(c.Type),
			Value:        Money(c.Value),
			UsageCount:   c.UsageCount,
			UsageLimit:   c.UsageLimit,
			UsageRate:    SafeRatio(float64(c.UsageCount), float64(c.UsageLimit)),
			Active:       c.IsActive,
			OrderRevenue: Money(c.OrderRevenue),
		})
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].UsageCount > stats[j].UsageCount })
	return stats, nil
}
