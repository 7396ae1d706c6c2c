package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/souqops/analytics-manager/internal/apperr"
	"github.com/souqops/analytics-manager/internal/dependency"
	"github.com/souqops/analytics-manager/internal/entity"
)

// fakeRepo is an in-memory dependency.Repository. Window filtering mirrors
// the store's half-open [from, to) semantics; a zero bound is unbounded.
type fakeRepo struct {
	companies     map[int]bool
	storeVisits   []entity.StoreVisit
	productVisits []entity.ProductVisit
	events        []entity.ConversionEvent
	orders        []entity.Order
	items         []entity.OrderItem
	history       []entity.OrderStatusChange
	products      []entity.Product
	customers     []entity.Customer
	coupons       []entity.CouponUsageStats
	carts         []entity.GuestCart
	converted     map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		companies: map[int]bool{1: true},
		converted: map[string]bool{},
	}
}

func within(t time.Time, tr entity.TimeRange) bool {
	if !tr.From.IsZero() && t.Before(tr.From) {
		return false
	}
	if !tr.To.IsZero() && !t.Before(tr.To) {
		return false
	}
	return true
}

func (f *fakeRepo) Tx(ctx context.Context, fn func(ctx context.Context, store dependency.Repository) error) error {
	return fn(ctx, f)
}

func (f *fakeRepo) Companies() dependency.Companies { return f }
func (f *fakeRepo) Visits() dependency.Visits       { return f }
func (f *fakeRepo) Events() dependency.Events       { return f }
func (f *fakeRepo) Orders() dependency.Orders       { return f }
func (f *fakeRepo) Products() dependency.Products   { return f }
func (f *fakeRepo) Customers() dependency.Customers { return f }
func (f *fakeRepo) Coupons() dependency.Coupons     { return f }
func (f *fakeRepo) Carts() dependency.Carts         { return f }

func (f *fakeRepo) Ping(ctx context.Context) error { return nil }
func (f *fakeRepo) Now() time.Time                 { return time.Now() }
func (f *fakeRepo) Close()                         {}

func (f *fakeRepo) CompanyExists(ctx context.Context, companyID int) (bool, error) {
	return f.companies[companyID], nil
}

func (f *fakeRepo) TrackStoreVisit(ctx context.Context, companyID int, v entity.StoreVisitInsert) (int, error) {
	f.storeVisits = append(f.storeVisits, entity.StoreVisit{
		ID:        len(f.storeVisits) + 1,
		CompanyID: companyID,
		SessionID: v.SessionID,
		VisitedAt: time.Now(),
	})
	return len(f.storeVisits), nil
}

func (f *fakeRepo) TrackProductVisit(ctx context.Context, companyID int, v entity.ProductVisitInsert) (int, error) {
	f.productVisits = append(f.productVisits, entity.ProductVisit{
		ID:        len(f.productVisits) + 1,
		CompanyID: companyID,
		ProductID: v.ProductID,
		SessionID: v.SessionID,
		VisitedAt: time.Now(),
	})
	return len(f.productVisits), nil
}

func (f *fakeRepo) CountStoreVisits(ctx context.Context, companyID int, tr entity.TimeRange) (int, error) {
	n := 0
	for _, v := range f.storeVisits {
		if v.CompanyID == companyID && within(v.VisitedAt, tr) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CountUniqueVisitors(ctx context.Context, companyID int, tr entity.TimeRange) (int, error) {
	sessions := map[string]bool{}
	for _, v := range f.storeVisits {
		if v.CompanyID == companyID && within(v.VisitedAt, tr) {
			sessions[v.SessionID] = true
		}
	}
	return len(sessions), nil
}

func (f *fakeRepo) CountProductVisits(ctx context.Context, companyID int, tr entity.TimeRange) (int, error) {
	n := 0
	for _, v := range f.productVisits {
		if v.CompanyID == companyID && within(v.VisitedAt, tr) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CountVisitsForProduct(ctx context.Context, companyID, productID int, tr entity.TimeRange) (int, error) {
	n := 0
	for _, v := range f.productVisits {
		if v.CompanyID == companyID && v.ProductID == productID && within(v.VisitedAt, tr) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) StoreVisitsByDay(ctx context.Context, companyID int, tr entity.TimeRange) (map[string]int, error) {
	days := map[string]int{}
	for _, v := range f.storeVisits {
		if v.CompanyID == companyID && within(v.VisitedAt, tr) {
			days[v.VisitedAt.Format("2006-01-02")]++
		}
	}
	return days, nil
}

func (f *fakeRepo) ProductVisitsByDay(ctx context.Context, companyID int, tr entity.TimeRange) (map[string]int, error) {
	days := map[string]int{}
	for _, v := range f.productVisits {
		if v.CompanyID == companyID && within(v.VisitedAt, tr) {
			days[v.VisitedAt.Format("2006-01-02")]++
		}
	}
	return days, nil
}

func (f *fakeRepo) TrackConversionEvent(ctx context.Context, companyID int, e entity.ConversionEventInsert) (int, error) {
	ev := entity.ConversionEvent{
		ID:        len(f.events) + 1,
		CompanyID: companyID,
		SessionID: e.SessionID,
		EventType: e.EventType,
		CreatedAt: time.Now(),
	}
	if e.ProductID != nil {
		ev.ProductID.Valid = true
		ev.ProductID.Int64 = int64(*e.ProductID)
	}
	if e.OrderID != nil {
		ev.OrderID.Valid = true
		ev.OrderID.Int64 = int64(*e.OrderID)
	}
	if e.Value != nil {
		ev.Value = decimal.NewNullDecimal(*e.Value)
	}
	f.events = append(f.events, ev)
	return ev.ID, nil
}

func (f *fakeRepo) CountEventsByType(ctx context.Context, companyID int, tr entity.TimeRange, et entity.ConversionEventType) (int, error) {
	n := 0
	for _, e := range f.events {
		if e.CompanyID == companyID && e.EventType == et && within(e.CreatedAt, tr) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CountEventsForProduct(ctx context.Context, companyID, productID int, tr entity.TimeRange, et entity.ConversionEventType) (int, error) {
	n := 0
	for _, e := range f.events {
		if e.CompanyID == companyID && e.EventType == et &&
			e.ProductID.Valid && int(e.ProductID.Int64) == productID && within(e.CreatedAt, tr) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) SumEventValues(ctx context.Context, companyID int, tr entity.TimeRange, et entity.ConversionEventType) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range f.events {
		if e.CompanyID == companyID && e.EventType == et && e.Value.Valid && within(e.CreatedAt, tr) {
			sum = sum.Add(e.Value.Decimal)
		}
	}
	return sum, nil
}

func (f *fakeRepo) ProductEventBreakdown(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.ProductEventCounts, error) {
	counts := map[int]*entity.ProductEventCounts{}
	for _, v := range f.productVisits {
		if v.CompanyID != companyID || !within(v.VisitedAt, tr) {
			continue
		}
		c, ok := counts[v.ProductID]
		if !ok {
			c = &entity.ProductEventCounts{ProductID: v.ProductID}
			counts[v.ProductID] = c
		}
		c.Views++
	}
	for _, e := range f.events {
		if e.CompanyID != companyID || !e.ProductID.Valid || !within(e.CreatedAt, tr) {
			continue
		}
		c, ok := counts[int(e.ProductID.Int64)]
		if !ok {
			continue
		}
		switch e.EventType {
		case entity.EventAddToCart:
			c.AddToCart++
		case entity.EventPurchase:
			c.Purchases++
		}
	}
	result := make([]entity.ProductEventCounts, 0, len(counts))
	for _, c := range counts {
		result = append(result, *c)
	}
	return result, nil
}

func (f *fakeRepo) OrdersInWindow(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.Order, error) {
	var result []entity.Order
	for _, o := range f.orders {
		if o.CompanyID == companyID && within(o.CreatedAt, tr) {
			result = append(result, o)
		}
	}
	return result, nil
}

func (f *fakeRepo) DeliveredOrdersInWindow(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.Order, error) {
	var result []entity.Order
	for _, o := range f.orders {
		if o.CompanyID == companyID && o.Status == entity.OrderStatusDelivered && within(o.CreatedAt, tr) {
			result = append(result, o)
		}
	}
	return result, nil
}

func (f *fakeRepo) OrderItemsForOrders(ctx context.Context, orderIDs []int) ([]entity.OrderItem, error) {
	wanted := map[int]bool{}
	for _, id := range orderIDs {
		wanted[id] = true
	}
	var result []entity.OrderItem
	for _, item := range f.items {
		if wanted[item.OrderID] {
			result = append(result, item)
		}
	}
	return result, nil
}

func (f *fakeRepo) StatusHistoryForOrders(ctx context.Context, orderIDs []int) ([]entity.OrderStatusChange, error) {
	wanted := map[int]bool{}
	for _, id := range orderIDs {
		wanted[id] = true
	}
	var result []entity.OrderStatusChange
	for _, h := range f.history {
		if wanted[h.OrderID] {
			result = append(result, h)
		}
	}
	return result, nil
}

func (f *fakeRepo) OrderExists(ctx context.Context, companyID, orderID int) (bool, error) {
	for _, o := range f.orders {
		if o.ID == orderID && o.CompanyID == companyID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) OrdersByDay(ctx context.Context, companyID int, tr entity.TimeRange) (map[string]entity.DayOrderTotals, error) {
	days := map[string]entity.DayOrderTotals{}
	for _, o := range f.orders {
		if o.CompanyID != companyID || !within(o.CreatedAt, tr) {
			continue
		}
		key := o.CreatedAt.Format("2006-01-02")
		day := days[key]
		day.Orders++
		day.Revenue = day.Revenue.Add(o.Total)
		days[key] = day
	}
	return days, nil
}

func (f *fakeRepo) ProductsByCompany(ctx context.Context, companyID int, activeOnly bool) ([]entity.Product, error) {
	var result []entity.Product
	for _, p := range f.products {
		if p.CompanyID != companyID {
			continue
		}
		if activeOnly && !p.IsActive {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func (f *fakeRepo) ProductByID(ctx context.Context, companyID, productID int) (*entity.Product, error) {
	for _, p := range f.products {
		if p.ID == productID && p.CompanyID == companyID {
			return &p, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeRepo) UnitsSoldByProduct(ctx context.Context, companyID int, tr entity.TimeRange) (map[int]int, error) {
	delivered := map[int]bool{}
	for _, o := range f.orders {
		if o.CompanyID == companyID && o.Status == entity.OrderStatusDelivered && within(o.CreatedAt, tr) {
			delivered[o.ID] = true
		}
	}
	units := map[int]int{}
	for _, item := range f.items {
		if delivered[item.OrderID] && item.ProductID.Valid {
			units[int(item.ProductID.Int64)] += item.Quantity
		}
	}
	return units, nil
}

func (f *fakeRepo) CustomersByCompany(ctx context.Context, companyID int) ([]entity.Customer, error) {
	var result []entity.Customer
	for _, c := range f.customers {
		if c.CompanyID == companyID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (f *fakeRepo) CouponsWithUsage(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.CouponUsageStats, error) {
	var result []entity.CouponUsageStats
	for _, c := range f.coupons {
		if c.CompanyID == companyID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (f *fakeRepo) GuestCartsInWindow(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.GuestCart, error) {
	var result []entity.GuestCart
	for _, c := range f.carts {
		if c.CompanyID == companyID && within(c.CreatedAt, tr) {
			result = append(result, c)
		}
	}
	return result, nil
}

func (f *fakeRepo) ConvertedCartIDs(ctx context.Context, companyID int) (map[string]bool, error) {
	return f.converted, nil
}
