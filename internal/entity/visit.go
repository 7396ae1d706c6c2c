package entity

import (
	"database/sql"
	"time"
)

// StoreVisit represents the store_visit table. One row per storefront
// session entry, immutable after creation.
type StoreVisit struct {
	ID          int            `db:"id"`
	CompanyID   int            `db:"company_id"`
	SessionID   string         `db:"session_id"`
	IPAddress   sql.NullString `db:"ip_address"`
	UserAgent   sql.NullString `db:"user_agent"`
	Referrer    sql.NullString `db:"referrer"`
	LandingPage sql.NullString `db:"landing_page"`
	VisitedAt   time.Time      `db:"visited_at"`
}

type StoreVisitInsert struct {
	SessionID   string
	IPAddress   string
	UserAgent   string
	Referrer    string
	LandingPage string
}

// ProductVisit represents the product_visit table.
type ProductVisit struct {
	ID        int            `db:"id"`
	CompanyID int            `db:"company_id"`
	ProductID int            `db:"product_id"`
	SessionID string         `db:"session_id"`
	Source    sql.NullString `db:"source"`
	VisitedAt time.Time      `db:"visited_at"`
}

type ProductVisitInsert struct {
	ProductID int
	SessionID string
	Source    string
}
