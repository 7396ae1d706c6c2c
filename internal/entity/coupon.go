package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type CouponType string

const (
	CouponTypePercentage CouponType = "PERCENTAGE"
	CouponTypeFixed      CouponType = "FIXED"
)

// Coupon represents the coupon table with a dependent coupon_usage log.
type Coupon struct {
	ID         int             `db:"id"`
	CompanyID  int             `db:"company_id"`
	Code       string          `db:"code"`
	Type       CouponType      `db:"type"`
	Value      decimal.Decimal `db:"value"`
	UsageLimit int             `db:"usage_limit"`
	IsActive   bool            `db:"is_active"`
	ValidFrom  time.Time       `db:"valid_from"`
	ValidTo    time.Time       `db:"valid_to"`
}

// CouponUsageStats is a coupon joined with its redemption activity in a window.
type CouponUsageStats struct {
	Coupon
	UsageCount   int             `db:"usage_count"`
	OrderRevenue decimal.Decimal `db:"order_revenue"`
}
