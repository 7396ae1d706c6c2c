package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/souqops/analytics-manager/internal/entity"
)

const topProfitProducts = 20

// ProfitReport aggregates profitability over delivered orders in the window.
// Revenue comes from line items, shipping from the order header; COGS falls
// back to price * 0.6 per unit when a product has no recorded cost price.
func (e *Engine) ProfitReport(ctx context.Context, companyID int, tr entity.TimeRange) (*entity.ProfitReport, error) {
	orders, err := e.rep.Orders().DeliveredOrdersInWindow(ctx, companyID, tr)
	if err != nil {
		return nil, fmt.Errorf("profit report: %w", err)
	}
	orderIDs := make([]int, len(orders))
	ordersByID := make(map[int]entity.Order, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
		ordersByID[o.ID] = o
	}
	items, err := e.rep.Orders().OrderItemsForOrders(ctx, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("profit report: %w", err)
	}
	products, err := e.rep.Products().ProductsByCompany(ctx, companyID, false)
	if err != nil {
		return nil, fmt.Errorf("profit report: %w", err)
	}
	productsByID := make(map[int]entity.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}

	type profitAccum struct {
		units   int
		orders  map[int]bool
		revenue decimal.Decimal
		cogs    decimal.Decimal
	}
	var (
		revenue, cogs decimal.Decimal
		byProduct     = map[int]*profitAccum{}
		byCategory    = map[string]*profitAccum{}
		byDay         = map[string]*profitAccum{}
		productName   = map[int]string{}
	)
	for _, item := range items {
		o, ok := ordersByID[item.OrderID]
		if !ok {
			continue
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		lineRevenue := item.Price.Mul(qty)
		lineCOGS := UnitCostForItem(item, productsByID).Mul(qty)
		revenue = revenue.Add(lineRevenue)
		cogs = cogs.Add(lineCOGS)

		if item.ProductID.Valid {
			pid := int(item.ProductID.Int64)
			a, ok := byProduct[pid]
			if !ok {
				a = &profitAccum{orders: map[int]bool{}}
				byProduct[pid] = a
			}
			a.units += item.Quantity
			a.orders[o.ID] = true
			a.revenue = a.revenue.Add(lineRevenue)
			a.cogs = a.cogs.Add(lineCOGS)
			productName[pid] = item.ProductName
		}

		category := "uncategorized"
		if item.ProductID.Valid {
			if p, ok := productsByID[int(item.ProductID.Int64)]; ok && p.Category.Valid {
				category = p.Category.String
			}
		}
		ca, ok := byCategory[category]
		if !ok {
			ca = &profitAccum{orders: map[int]bool{}}
			byCategory[category] = ca
		}
		ca.units += item.Quantity
		ca.revenue = ca.revenue.Add(lineRevenue)
		ca.cogs = ca.cogs.Add(lineCOGS)

		day := o.CreatedAt.Format("2006-01-02")
		da, ok := byDay[day]
		if !ok {
			da = &profitAccum{orders: map[int]bool{}}
			byDay[day] = da
		}
		da.orders[o.ID] = true
		da.revenue = da.revenue.Add(lineRevenue)
		da.cogs = da.cogs.Add(lineCOGS)
	}

	var shipping decimal.Decimal
	for _, o := range orders {
		shipping = shipping.Add(o.Shipping)
	}

	report := &entity.ProfitReport{
		Revenue:    Money(revenue),
		COGS:       Money(cogs),
		Shipping:   Money(shipping),
		OrderCount: len(orders),
	}
	gross := revenue.Sub(cogs)
	net := gross.Sub(shipping)
	report.GrossProfit = Money(gross)
	report.NetProfit = Money(net)
	report.Margin = SafeRatioDec(net, revenue)

	for pid, a := range byProduct {
		profit := a.revenue.Sub(a.cogs)
		report.TopProducts = append(report.TopProducts, entity.ProductProfit{
			ProductID: pid,
			Name:      productName[pid],
			Units:     a.units,
			Revenue:   Money(a.revenue),
			COGS:      Money(a.cogs),
			Profit:    Money(profit),
			Margin:    SafeRatioDec(profit, a.revenue),
		})
	}
	sort.SliceStable(report.TopProducts, func(i, j int) bool {
		return report.TopProducts[i].Profit > report.TopProducts[j].Profit
	})
	if len(report.TopProducts) > topProfitProducts {
		report.TopProducts = report.TopProducts[:topProfitProducts]
	}

	for category, a := range byCategory {
		profit := a.revenue.Sub(a.cogs)
		report.Categories = append(report.Categories, entity.CategoryProfit{
			Category: category,
			Units:    a.units,
			Revenue:  Money(a.revenue),
			COGS:     Money(a.cogs),
			Profit:   Money(profit),
			Margin:   SafeRatioDec(profit, a.revenue),
		})
	}
	sort.SliceStable(report.Categories, func(i, j int) bool {
		return report.Categories[i].Profit > report.Categories[j].Profit
	})

	for day, a := range byDay {
		report.Daily = append(report.Daily, entity.DailyProfit{
			Date:    day,
			Orders:  len(a.orders),
			Revenue: Money(a.revenue),
			COGS:    Money(a.cogs),
			Profit:  Money(a.revenue.Sub(a.cogs)),
		})
	}
	sort.SliceStable(report.Daily, func(i, j int) bool {
		return report.Daily[i].Date < report.Daily[j].Date
	})

	return report, nil
}
