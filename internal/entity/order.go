package entity

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates the order lifecycle. The current status must always
// equal the most recent order_status_history entry.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusReturned   OrderStatus = "RETURNED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
)

// Order represents the customer_order table.
type Order struct {
	ID            int             `db:"id"`
	CompanyID     int             `db:"company_id"`
	Status        OrderStatus     `db:"status"`
	Total         decimal.Decimal `db:"total"`
	Shipping      decimal.Decimal `db:"shipping"`
	PaymentMethod sql.NullString  `db:"payment_method"`
	Governorate   sql.NullString  `db:"governorate"`
	City          sql.NullString  `db:"city"`
	CustomerID    sql.NullInt64   `db:"customer_id"`
	CreatedBy     sql.NullInt64   `db:"created_by"`
	ConfirmedBy   sql.NullInt64   `db:"confirmed_by"`
	CouponID      sql.NullInt64   `db:"coupon_id"`
	CreatedAt     time.Time       `db:"created_at"`
}

// OrderStatusChange represents one append-only order_status_history row.
type OrderStatusChange struct {
	ID        int         `db:"id"`
	OrderID   int         `db:"order_id"`
	Status    OrderStatus `db:"status"`
	ChangedAt time.Time   `db:"changed_at"`
}

// DayOrderTotals is a per-calendar-day order rollup used by the day-level
// analytics series.
type DayOrderTotals struct {
	Orders  int
	Revenue decimal.Decimal
}

// OrderItem represents the order_item table. ProductID is nullable: items
// keep their snapshot name/price even if the product is later deleted.
type OrderItem struct {
	ID           int             `db:"id"`
	OrderID      int             `db:"order_id"`
	ProductID    sql.NullInt64   `db:"product_id"`
	ProductName  string          `db:"product_name"`
	ProductColor sql.NullString  `db:"product_color"`
	ProductSize  sql.NullString  `db:"product_size"`
	Price        decimal.Decimal `db:"price"`
	Quantity     int             `db:"quantity"`
}
