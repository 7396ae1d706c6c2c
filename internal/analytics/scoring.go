package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/souqops/analytics-manager/internal/entity"
	"golang.org/x/sync/errgroup"
)

// CustomerScores computes the 0-100 quality score for every customer with at
// least one order. A zero tr means all-time; otherwise orders are filtered to
// the window. The fold runs over two batch reads, never per-customer queries.
func (e *Engine) CustomerScores(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.CustomerScore, error) {
	var (
		customers []entity.Customer
		orders    []entity.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		customers, err = e.rep.Customers().CustomersByCompany(gctx, companyID)
		return err
	})
	g.Go(func() (err error) {
		orders, err = e.rep.Orders().OrdersInWindow(gctx, companyID, tr)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("customer scores: %w", err)
	}

	type customerOrders struct {
		total     int
		delivered int
		spent     decimal.Decimal
		lastOrder int64 // unix
	}
	byCustomer := make(map[int]*customerOrders)
	for _, o := range orders {
		if !o.CustomerID.Valid {
			continue
		}
		id := int(o.CustomerID.Int64)
		co, ok := byCustomer[id]
		if !ok {
			co = &customerOrders{}
			byCustomer[id] = co
		}
		co.total++
		if o.Status == entity.OrderStatusDelivered {
			co.delivered++
			co.spent = co.spent.Add(o.Total)
		}
		if ts := o.CreatedAt.Unix(); ts > co.lastOrder {
			co.lastOrder = ts
		}
	}

	now := e.now()
	scores := make([]entity.CustomerScore, 0, len(byCustomer))
	for _, c := range customers {
		co, ok := byCustomer[c.ID]
		if !ok || co.total == 0 {
			// Customers with zero orders are excluded entirely.
			continue
		}
		daysSince := int(now.Unix()-co.lastOrder) / 86400
		spent := Money(co.spent)

		s := entity.CustomerScore{
			CustomerID:         c.ID,
			Name:               c.Name,
			Phone:              c.Phone,
			TotalOrders:        co.total,
			DeliveredOrders:    co.delivered,
			TotalSpent:         spent,
			DaysSinceLastOrder: daysSince,
			FrequencyPoints:    frequencyPoints(co.total),
			MonetaryPoints:     monetaryPoints(spent),
			RecencyPoints:      recencyPoints(daysSince),
			CompletionPoints:   co.delivered * 20 / co.total,
		}
		s.Score = clampScore(s.FrequencyPoints + s.MonetaryPoints + s.RecencyPoints + s.CompletionPoints)
		s.Tier = customerTier(s.Score)
		scores = append(scores, s)
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	return scores, nil
}

func frequencyPoints(orders int) int {
	switch {
	case orders >= 10:
		return 30
	case orders >= 5:
		return 20
	case orders >= 3:
		return 10
	case orders >= 1:
		return 5
	default:
		return 0
	}
}

func monetaryPoints(deliveredTotal float64) int {
	switch {
	case deliveredTotal >= 10000:
		return 30
	case deliveredTotal >= 5000:
		return 20
	case deliveredTotal >= 2000:
		return 10
	case deliveredTotal >= 500:
		return 5
	default:
		return 0
	}
}

func recencyPoints(daysSinceLastOrder int) int {
	switch {
	case daysSinceLastOrder <= 7:
		return 20
	case daysSinceLastOrder <= 30:
		return 15
	case daysSinceLastOrder <= 90:
		return 10
	case daysSinceLastOrder <= 180:
		return 5
	default:
		return 0
	}
}

func customerTier(score int) string {
	switch {
	case score >= 80:
		return "VIP"
	case score >= 60:
		return "high"
	case score >= 40:
		return "medium"
	default:
		return "low"
	}
}

func clampScore(score int) int {
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

// ProductHealthScores computes the 0-100 health score for every active
// product. Window stats (units, margin, delivery rate) use the given range;
// the discontinue rule looks at all-time order counts, so the fold runs over
// one all-time batch of orders and filters the window in memory.
func (e *Engine) ProductHealthScores(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.ProductHealth, error) {
	products, err := e.rep.Products().ProductsByCompany(ctx, companyID, true)
	if err != nil {
		return nil, fmt.Errorf("product health: %w", err)
	}
	orders, err := e.rep.Orders().OrdersInWindow(ctx, companyID, entity.TimeRange{})
	if err != nil {
		return nil, fmt.Errorf("product health: %w", err)
	}
	orderIDs := make([]int, len(orders))
	ordersByID := make(map[int]entity.Order, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
		ordersByID[o.ID] = o
	}
	items, err := e.rep.Orders().OrderItemsForOrders(ctx, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("product health: %w", err)
	}

	productsByID := make(map[int]entity.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}

	type productStats struct {
		units            int
		revenue          decimal.Decimal
		cogs             decimal.Decimal
		windowOrders     map[int]bool
		deliveredOrders  map[int]bool
		historicalOrders map[int]bool
	}
	stats := make(map[int]*productStats)
	inWindow := func(o entity.Order) bool {
		if tr.IsZero() {
			return true
		}
		return !o.CreatedAt.Before(tr.From) && o.CreatedAt.Before(tr.To)
	}
	for _, item := range items {
		if !item.ProductID.Valid {
			continue
		}
		pid := int(item.ProductID.Int64)
		o, ok := ordersByID[item.OrderID]
		if !ok {
			continue
		}
		ps, ok := stats[pid]
		if !ok {
			ps = &productStats{
				windowOrders:     map[int]bool{},
				deliveredOrders:  map[int]bool{},
				historicalOrders: map[int]bool{},
			}
			stats[pid] = ps
		}
		ps.historicalOrders[o.ID] = true
		if !inWindow(o) {
			continue
		}
		ps.windowOrders[o.ID] = true
		if o.Status == entity.OrderStatusDelivered {
			ps.deliveredOrders[o.ID] = true
			qty := decimal.NewFromInt(int64(item.Quantity))
			ps.units += item.Quantity
			ps.revenue = ps.revenue.Add(item.Price.Mul(qty))
			ps.cogs = ps.cogs.Add(UnitCostForItem(item, productsByID).Mul(qty))
		}
	}

	result := make([]entity.ProductHealth, 0, len(products))
	for _, p := range products {
		ps, ok := stats[p.ID]
		if !ok {
			ps = &productStats{
				windowOrders:    map[int]bool{},
				deliveredOrders: map[int]bool{},
			}
		}
		historical := len(ps.historicalOrders)
		if historical == 0 && p.Stock == 0 {
			// Nothing to score: never ordered and out of stock.
			continue
		}

		margin := SafeRatioDec(ps.revenue.Sub(ps.cogs), ps.revenue)
		deliveryRate := SafeRatio(float64(len(ps.deliveredOrders)), float64(len(ps.windowOrders)))

		h := entity.ProductHealth{
			ProductID:      p.ID,
			Name:           p.Name,
			UnitsSold:      ps.units,
			Revenue:        Money(ps.revenue),
			Margin:         margin,
			DeliveryRate:   deliveryRate,
			Stock:          p.Stock,
			TotalOrders:    len(ps.windowOrders),
			SalesPoints:    salesVolumePoints(ps.units),
			MarginPoints:   marginPoints(margin),
			DeliveryPoints: deliveryPoints(deliveryRate),
			StockPoints:    stockPoints(p.Stock),
		}
		h.Score = clampScore(h.SalesPoints + h.MarginPoints + h.DeliveryPoints + h.StockPoints)
		h.Recommendation = recommendation(h.Score, historical)
		result = append(result, h)
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].Score > result[j].Score })
	return result, nil
}

func salesVolumePoints(units int) int {
	switch {
	case units >= 100:
		return 25
	case units >= 50:
		return 20
	case units >= 20:
		return 15
	case units >= 10:
		return 10
	case units >= 1:
		return 5
	default:
		return 0
	}
}

func marginPoints(marginPct float64) int {
	switch {
	case marginPct >= 40:
		return 25
	case marginPct >= 30:
		return 20
	case marginPct >= 20:
		return 15
	case marginPct >= 10:
		return 10
	case marginPct > 0:
		return 5
	default:
		return 0
	}
}

func deliveryPoints(ratePct float64) int {
	switch {
	case ratePct >= 90:
		return 25
	case ratePct >= 75:
		return 20
	case ratePct >= 60:
		return 15
	case ratePct >= 40:
		return 10
	case ratePct > 0:
		return 5
	default:
		return 0
	}
}

func stockPoints(stock int) int {
	switch {
	case stock >= 50:
		return 25
	case stock >= 20:
		return 20
	case stock >= 10:
		return 15
	case stock >= 5:
		return 10
	case stock > 0:
		return 5
	default:
		return 0
	}
}

func recommendation(score, historicalOrders int) string {
	switch {
	case score >= 80:
		return "expand"
	case score >= 60:
		return "continue"
	case score >= 40:
		return "improve"
	case score < 20 && historicalOrders > 5:
		return "discontinue"
	default:
		return "review"
	}
}
