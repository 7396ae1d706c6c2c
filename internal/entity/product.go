package entity

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Product represents the product table joined with its optional category.
// CostPrice may be absent; profit math falls back to price * 0.6.
type Product struct {
	ID         int                 `db:"id"`
	CompanyID  int                 `db:"company_id"`
	Name       string              `db:"name"`
	Price      decimal.Decimal     `db:"price"`
	CostPrice  decimal.NullDecimal `db:"cost_price"`
	Stock      int                 `db:"stock"`
	CategoryID sql.NullInt64       `db:"category_id"`
	Category   sql.NullString      `db:"category"`
	IsActive   bool                `db:"is_active"`
}

// Customer represents the customer table.
type Customer struct {
	ID          int            `db:"id"`
	CompanyID   int            `db:"company_id"`
	Name        string         `db:"name"`
	Phone       string         `db:"phone"`
	Governorate sql.NullString `db:"governorate"`
	City        sql.NullString `db:"city"`
}
