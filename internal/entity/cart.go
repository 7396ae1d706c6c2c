package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// GuestCart represents the guest_cart table. Items is the serialized item
// list; use ParseCartItems to decode it.
type GuestCart struct {
	ID        int             `db:"id"`
	CompanyID int             `db:"company_id"`
	CartID    string          `db:"cart_id"`
	Items     string          `db:"items"`
	Total     decimal.Decimal `db:"total"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
	ExpiresAt time.Time       `db:"expires_at"`
}

// Abandoned reports whether the cart is past expiry and was never converted
// into a guest order.
func (gc GuestCart) Abandoned(now time.Time, converted map[string]bool) bool {
	return gc.ExpiresAt.Before(now) && !converted[gc.CartID]
}

// CartItem is the embedded value schema of a serialized guest cart line.
type CartItem struct {
	ProductName string  `json:"productName"`
	Category    string  `json:"category,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// ParseCartItems decodes a serialized guest cart item list. A failure here is
// a countable outcome: callers skip the cart's item contribution but keep the
// cart in totals.
func ParseCartItems(raw string) ([]CartItem, error) {
	if raw == "" {
		return nil, nil
	}
	var items []CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode cart items: %w", err)
	}
	return items, nil
}
