package entity

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// ConversionEventType enumerates the tracked funnel actions.
type ConversionEventType string

const (
	EventAddToCart ConversionEventType = "add_to_cart"
	EventCheckout  ConversionEventType = "checkout"
	EventPurchase  ConversionEventType = "purchase"
)

// ConversionEvent represents the conversion_event table. OrderID is only set
// when it resolves to an order of the same company; missing references
// degrade to null rather than rejecting the event.
type ConversionEvent struct {
	ID        int                 `db:"id"`
	CompanyID int                 `db:"company_id"`
	SessionID string              `db:"session_id"`
	EventType ConversionEventType `db:"event_type"`
	ProductID sql.NullInt64       `db:"product_id"`
	OrderID   sql.NullInt64       `db:"order_id"`
	Value     decimal.NullDecimal `db:"value"`
	Metadata  sql.NullString      `db:"metadata"`
	CreatedAt time.Time           `db:"created_at"`
}

type ConversionEventInsert struct {
	SessionID string
	EventType ConversionEventType
	ProductID *int
	OrderID   *int
	Value     *decimal.Decimal
	Metadata  string
}

// ProductEventCounts holds per-product funnel event counts for a window,
// produced by a single grouped read to avoid per-product queries.
type ProductEventCounts struct {
	ProductID int `db:"product_id"`
	Views     int `db:"views"`
	AddToCart int `db:"add_to_carts"`
	Purchases int `db:"purchases"`
}
