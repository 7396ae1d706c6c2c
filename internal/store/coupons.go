package store

import (
	"context"
	"fmt"

	"github.com/souqops/analytics-manager/internal/dependency"
	"github.com/souqops/analytics-manager/internal/entity"
)

type couponStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Coupons() dependency.Coupons {
	return &couponStore{MYSQLStore: ms}
}

// CouponsWithUsage joins each coupon with its redemption log and the revenue
// of the orders those redemptions were attached to, window-filtered.
func (cs *couponStore) CouponsWithUsage(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.CouponUsageStats, error) {
	from, to := windowParams(tr.From, tr.To)
	query := `
	SELECT c.id, c.company_id, c.code, c.type, c.value, c.usage_limit,
		c.is_active, c.valid_from, c.valid_to,
		COALESCE(u.usage_count, 0) AS usage_count,
		COALESCE(u.order_revenue, 0) AS order_revenue
	FROM coupon c
	LEFT JOIN (
		SELECT cu.coupon_id,
			COUNT(*) AS usage_count,
			COALESCE(SUM(co.total), 0) AS order_revenue
		FROM coupon_usage cu
		LEFT JOIN customer_order co ON cu.order_id = co.id
		WHERE (:from IS NULL OR cu.used_at >= :from)
		AND (:to IS NULL OR cu.used_at < :to)
		GROUP BY cu.coupon_id
	) u ON u.coupon_id = c.id
	WHERE c.company_id = :companyId
	ORDER BY usage_count DESC`
	rows, err := QueryListNamed[entity.CouponUsageStats](ctx, cs.DB(), query,
		map[string]any{"companyId": companyID, "from": from, "to": to})
	if err != nil {
		return nil, fmt.Errorf("coupons with usage: %w", err)
	}
	return rows, nil
}
