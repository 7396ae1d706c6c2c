package dependency

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/souqops/analytics-manager/internal/entity"
)

type (
	ContextStore interface {
		Tx(ctx context.Context, fn func(ctx context.Context, store Repository) error) error
	}

	Companies interface {
		// CompanyExists checks whether the company id resolves to a live tenant.
		CompanyExists(ctx context.Context, companyID int) (bool, error)
	}

	// Visits covers reads over store/product visit logs plus the best-effort
	// tracking writes consumed by the storefront.
	Visits interface {
		TrackStoreVisit(ctx context.Context, companyID int, v entity.StoreVisitInsert) (int, error)
		TrackProductVisit(ctx context.Context, companyID int, v entity.ProductVisitInsert) (int, error)
		CountStoreVisits(ctx context.Context, companyID int, tr entity.TimeRange) (int, error)
		CountUniqueVisitors(ctx context.Context, companyID int, tr entity.TimeRange) (int, error)
		CountProductVisits(ctx context.Context, companyID int, tr entity.TimeRange) (int, error)
		CountVisitsForProduct(ctx context.Context, companyID, productID int, tr entity.TimeRange) (int, error)
		StoreVisitsByDay(ctx context.Context, companyID int, tr entity.TimeRange) (map[string]int, error)
		ProductVisitsByDay(ctx context.Context, companyID int, tr entity.TimeRange) (map[string]int, error)
	}

	Events interface {
		TrackConversionEvent(ctx context.Context, companyID int, e entity.ConversionEventInsert) (int, error)
		CountEventsByType(ctx context.Context, companyID int, tr entity.TimeRange, et entity.ConversionEventType) (int, error)
		CountEventsForProduct(ctx context.Context, companyID, productID int, tr entity.TimeRange, et entity.ConversionEventType) (int, error)
		SumEventValues(ctx context.Context, companyID int, tr entity.TimeRange, et entity.ConversionEventType) (decimal.Decimal, error)
		// ProductEventBreakdown returns per-product view/cart/purchase counts for
		// every product with at least one view in the window, in one grouped read.
		ProductEventBreakdown(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.ProductEventCounts, error)
	}

	Orders interface {
		OrdersInWindow(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.Order, error)
		DeliveredOrdersInWindow(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.Order, error)
		OrderItemsForOrders(ctx context.Context, orderIDs []int) ([]entity.OrderItem, error)
		StatusHistoryForOrders(ctx context.Context, orderIDs []int) ([]entity.OrderStatusChange, error)
		OrderExists(ctx context.Context, companyID, orderID int) (bool, error)
		OrdersByDay(ctx context.Context, companyID int, tr entity.TimeRange) (map[string]entity.DayOrderTotals, error)
	}

	Products interface {
		ProductsByCompany(ctx context.Context, companyID int, activeOnly bool) ([]entity.Product, error)
		ProductByID(ctx context.Context, companyID, productID int) (*entity.Product, error)
		// UnitsSoldByProduct returns delivered units per product over the window.
		UnitsSoldByProduct(ctx context.Context, companyID int, tr entity.TimeRange) (map[int]int, error)
	}

	Customers interface {
		CustomersByCompany(ctx context.Context, companyID int) ([]entity.Customer, error)
	}

	Coupons interface {
		CouponsWithUsage(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.CouponUsageStats, error)
	}

	Carts interface {
		GuestCartsInWindow(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.GuestCart, error)
		// ConvertedCartIDs returns the cart ids that have a matching guest order.
		ConvertedCartIDs(ctx context.Context, companyID int) (map[string]bool, error)
	}

	// DB is the query execution surface shared by live connections and
	// transactions.
	DB interface {
		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
		QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
		QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row
		ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	}

	// Repository groups the tenant-scoped readers and tracking writers the
	// analytics engines consume. All aggregation state stays on the request's
	// call stack; the repository only performs scoped reads and pure inserts.
	Repository interface {
		ContextStore
		Companies() Companies
		Visits() Visits
		Events() Events
		Orders() Orders
		Products() Products
		Customers() Customers
		Coupons() Coupons
		Carts() Carts
		Ping(ctx context.Context) error
		Now() time.Time
		Close()
	}
)
