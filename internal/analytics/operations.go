package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/souqops/analytics-manager/internal/entity"
)

const (
	topReturnedProducts = 10
	topRegions          = 10

	// Status transitions taking longer than 30 days or recorded before the
	// order existed are treated as data errors and dropped from averages.
	maxTransitionHours = 720
)

// CODReport measures cash-on-delivery performance against the whole order
// book for the window.
func (e *Engine) CODReport(ctx context.Context, companyID int, tr entity.TimeRange) (*entity.CODReport, error) {
	orders, err := e.rep.Orders().OrdersInWindow(ctx, companyID, tr)
	if err != nil {
		return nil, fmt.Errorf("cod report: %w", err)
	}

	report := &entity.CODReport{TotalOrders: len(orders)}
	var collected decimal.Decimal
	for _, o := range orders {
		if PaymentMethodOrDefault(o.PaymentMethod) != "cod" {
			continue
		}
		report.CODOrders++
		switch o.Status {
		case entity.OrderStatusDelivered:
			report.Delivered++
			collected = collected.Add(o.Total)
		case entity.OrderStatusCancelled:
			report.Cancelled++
		case entity.OrderStatusReturned:
			report.Returned++
		}
	}
	report.CODShare = SafeRatio(float64(report.CODOrders), float64(report.TotalOrders))
	report.DeliveryRate = SafeRatio(float64(report.Delivered), float64(report.CODOrders))
	report.CancellationRate = SafeRatio(float64(report.Cancelled), float64(report.CODOrders))
	report.ReturnRate = SafeRatio(float64(report.Returned), float64(report.CODOrders))
	report.CollectedRevenue = Money(collected)
	return report, nil
}

// ReturnsReport aggregates returned and refunded orders, ranking the most
// returned products by quantity.
func (e *Engine) ReturnsReport(ctx context.Context, companyID int, tr entity.TimeRange) (*entity.ReturnsReport, error) {
	orders, err := e.rep.Orders().OrdersInWindow(ctx, companyID, tr)
	if err != nil {
		return nil, fmt.Errorf("returns report: %w", err)
	}

	report := &entity.ReturnsReport{TotalOrders: len(orders)}
	var lost decimal.Decimal
	var returnedIDs []int
	for _, o := range orders {
		switch o.Status {
		case entity.OrderStatusReturned:
			report.Returned++
		case entity.OrderStatusRefunded:
			report.Refunded++
		default:
			continue
		}
		lost = lost.Add(o.Total)
		returnedIDs = append(returnedIDs, o.ID)
	}
	report.ReturnRate = SafeRatio(float64(report.Returned), float64(report.TotalOrders))
	report.RefundRate = SafeRatio(float64(report.Refunded), float64(report.TotalOrders))
	report.LostRevenue = Money(lost)

	items, err := e.rep.Orders().OrderItemsForOrders(ctx, returnedIDs)
	if err != nil {
		return nil, fmt.Errorf("returns report: %w", err)
	}
	type returned struct {
		quantity int
		value    decimal.Decimal
	}
	byName := map[string]*returned{}
	for _, item := range items {
		r, ok := byName[item.ProductName]
		if !ok {
			r = &returned{}
			byName[item.ProductName] = r
		}
		r.quantity += item.Quantity
		r.value = r.value.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	for name, r := range byName {
		report.TopReturned = append(report.TopReturned, entity.ReturnedProduct{
			ProductName: name,
			Quantity:    r.quantity,
			Value:       Money(r.value),
		})
	}
	sort.SliceStable(report.TopReturned, func(i, j int) bool {
		return report.TopReturned[i].Quantity > report.TopReturned[j].Quantity
	})
	if len(report.TopReturned) > topReturnedProducts {
		report.TopReturned = report.TopReturned[:topReturnedProducts]
	}
	return report, nil
}

// DeliveryReport combines the window delivery rate with average
// created→confirmed→shipped→delivered transition times read from the status
// history log. Only the first occurrence of each status counts; negative or
// implausibly long gaps are discarded.
func (e *Engine) DeliveryReport(ctx context.Context, companyID int, tr entity.TimeRange) (*entity.DeliveryReport, error) {
	orders, err := e.rep.Orders().OrdersInWindow(ctx, companyID, tr)
	if err != nil {
		return nil, fmt.Errorf("delivery report: %w", err)
	}
	orderIDs := make([]int, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
	}
	history, err := e.rep.Orders().StatusHistoryForOrders(ctx, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("delivery report: %w", err)
	}

	report := &entity.DeliveryReport{TotalOrders: len(orders)}
	for _, o := range orders {
		switch o.Status {
		case entity.OrderStatusDelivered:
			report.Delivered++
		case entity.OrderStatusShipped:
			report.Shipped++
		case entity.OrderStatusCancelled:
			report.Cancelled++
		}
	}
	report.DeliveryRate = SafeRatio(float64(report.Delivered), float64(report.TotalOrders))

	type transitions struct {
		confirmed, shipped, delivered entity.OrderStatusChange
	}
	firstSeen := map[int]*transitions{}
	for _, h := range history {
		t, ok := firstSeen[h.OrderID]
		if !ok {
			t = &transitions{}
			firstSeen[h.OrderID] = t
		}
		switch h.Status {
		case entity.OrderStatusConfirmed:
			if t.confirmed.ID == 0 {
				t.confirmed = h
			}
		case entity.OrderStatusShipped:
			if t.shipped.ID == 0 {
				t.shipped = h
			}
		case entity.OrderStatusDelivered:
			if t.delivered.ID == 0 {
				t.delivered = h
			}
		}
	}

	var confirmHours, shipHours, deliverHours []float64
	appendGap := func(dst *[]float64, from, to entity.OrderStatusChange) {
		if from.ID == 0 || to.ID == 0 {
			return
		}
		hours := to.ChangedAt.Sub(from.ChangedAt).Hours()
		if hours < 0 || hours >= maxTransitionHours {
			return
		}
		*dst = append(*dst, hours)
	}
	for _, o := range orders {
		t, ok := firstSeen[o.ID]
		if !ok {
			continue
		}
		if t.confirmed.ID != 0 {
			hours := t.confirmed.ChangedAt.Sub(o.CreatedAt).Hours()
			if hours >= 0 && hours < maxTransitionHours {
				confirmHours = append(confirmHours, hours)
			}
		}
		appendGap(&shipHours, t.confirmed, t.shipped)
		appendGap(&deliverHours, t.shipped, t.delivered)
	}
	report.AvgConfirmationHours = SafeAverage(confirmHours)
	report.AvgShippingHours = SafeAverage(shipHours)
	report.AvgDeliveryHours = SafeAverage(deliverHours)
	return report, nil
}

// PaymentMethods groups orders by normalized payment method with each
// method's share and delivery rate, ordered by revenue.
func (e *Engine) PaymentMethods(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.PaymentMethodStats, error) {
	orders, err := e.rep.Orders().OrdersInWindow(ctx, companyID, tr)
	if err != nil {
		return nil, fmt.Errorf("payment methods: %w", err)
	}

	type methodAccum struct {
		orders, delivered int
		revenue           decimal.Decimal
	}
	byMethod := map[string]*methodAccum{}
	for _, o := range orders {
		method := PaymentMethodOrDefault(o.PaymentMethod)
		a, ok := byMethod[method]
		if !ok {
			a = &methodAccum{}
			byMethod[method] = a
		}
		a.orders++
		if o.Status == entity.OrderStatusDelivered {
			a.delivered++
			a.revenue = a.revenue.Add(o.Total)
		}
	}

	stats := make([]entity.PaymentMethodStats, 0, len(byMethod))
	for method, a := range byMethod {
		stats = append(stats, entity.PaymentMethodStats{
			Method:       method,
			Orders:       a.orders,
			Revenue:      Money(a.revenue),
			Share:        SafeRatio(float64(a.orders), float64(len(orders))),
			DeliveryRate: SafeRatio(float64(a.delivered), float64(a.orders)),
		})
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Revenue > stats[j].Revenue })
	return stats, nil
}

// Regions groups orders by shipping region, falling back governorate → city
// → "unspecified", and returns the top regions by revenue.
func (e *Engine) Regions(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.RegionStats, error) {
	orders, err := e.rep.Orders().OrdersInWindow(ctx, companyID, tr)
	if err != nil {
		return nil, fmt.Errorf("regions: %w", err)
	}

	type regionAccum struct {
		orders, delivered int
		revenue           decimal.Decimal
	}
	byRegion := map[string]*regionAccum{}
	for _, o := range orders {
		region := RegionOrDefault(o.Governorate, o.City)
		a, ok := byRegion[region]
		if !ok {
			a = &regionAccum{}
			byRegion[region] = a
		}
		a.orders++
		a.revenue = a.revenue.Add(o.Total)
		if o.Status == entity.OrderStatusDelivered {
			a.delivered++
		}
	}

	stats := make([]entity.RegionStats, 0, len(byRegion))
	for region, a := range byRegion {
		stats = append(stats, entity.RegionStats{
			Region:        region,
			Orders:        a.orders,
			Revenue:       Money(a.revenue),
			AvgOrderValue: Round2(Money(a.revenue) / float64(a.orders)),
			DeliveryRate:  SafeRatio(float64(a.delivered), float64(a.orders)),
		})
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Revenue > stats[j].Revenue })
	if len(stats) > topRegions {
		stats = stats[:topRegions]
	}
	return stats, nil
}

// Team reports per-staff order handling: orders created, orders confirmed,
// and the delivery rate plus delivered revenue of the orders they created.
func (e *Engine) Team(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.TeamMemberStats, error) {
	orders, err := e.rep.Orders().OrdersInWindow(ctx, companyID, tr)
	if err != nil {
		return nil, fmt.Errorf("team: %w", err)
	}

	type memberAccum struct {
		created, confirmed, delivered int
		revenue                       decimal.Decimal
	}
	byMember := map[int]*memberAccum{}
	member := func(userID int) *memberAccum {
		a, ok := byMember[userID]
		if !ok {
			a = &memberAccum{}
			byMember[userID] = a
		}
		return a
	}
	for _, o := range orders {
		if o.CreatedBy.Valid {
			a := member(int(o.CreatedBy.Int64))
			a.created++
			if o.Status == entity.OrderStatusDelivered {
				a.delivered++
				a.revenue = a.revenue.Add(o.Total)
			}
		}
		if o.ConfirmedBy.Valid {
			member(int(o.ConfirmedBy.Int64)).confirmed++
		}
	}

	stats := make([]entity.TeamMemberStats, 0, len(byMember))
	for userID, a := range byMember {
		stats = append(stats, entity.TeamMemberStats{
			UserID:          userID,
			OrdersCreated:   a.created,
			OrdersConfirmed: a.confirmed,
			Delivered:       a.delivered,
			DeliveryRate:    SafeRatio(float64(a.delivered), float64(a.created)),
			Revenue:         Money(a.revenue),
		})
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].OrdersCreated > stats[j].OrdersCreated })
	return stats, nil
}
