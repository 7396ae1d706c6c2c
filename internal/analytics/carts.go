package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/souqops/analytics-manager/internal/entity"
	"golang.org/x/sync/errgroup"
)

const topAbandonedProducts = 10

// AbandonedCarts aggregates guest carts created in the window that expired
// without converting into an order. Carts whose serialized items fail to
// decode are counted but contribute no products or lost revenue.
func (e *Engine) AbandonedCarts(ctx context.Context, companyID int, tr entity.TimeRange) (*entity.AbandonedCartReport, error) {
	var (
		carts     []entity.GuestCart
		converted map[string]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		carts, err = e.rep.Carts().GuestCartsInWindow(gctx, companyID, tr)
		return err
	})
	g.Go(func() (err error) {
		converted, err = e.rep.Carts().ConvertedCartIDs(gctx, companyID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("abandoned carts: %w", err)
	}

	now := e.now()
	report := &entity.AbandonedCartReport{TotalCarts: len(carts)}

	type abandoned struct {
		quantity int
		value    decimal.Decimal
	}
	byProduct := map[string]*abandoned{}
	var lost decimal.Decimal
	for _, cart := range carts {
		if converted[cart.CartID] {
			report.ConvertedCarts++
			continue
		}
		if !cart.Abandoned(now, converted) {
			continue
		}
		report.AbandonedCarts++
		items, err := entity.ParseCartItems(cart.Items)
		if err != nil {
			report.UnparsableCarts++
			continue
		}
		for _, item := range items {
			value := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
			lost = lost.Add(value)
			a, ok := byProduct[item.ProductName]
			if !ok {
				a = &abandoned{}
				byProduct[item.ProductName] = a
			}
			a.quantity += item.Quantity
			a.value = a.value.Add(value)
		}
	}
	report.AbandonmentRate = SafeRatio(float64(report.AbandonedCarts), float64(report.TotalCarts))
	report.LostRevenue = Money(lost)

	for name, a := range byProduct {
		report.TopAbandoned = append(report.TopAbandoned, entity.AbandonedProduct{
			ProductName: name,
			Quantity:    a.quantity,
			Value:       Money(a.value),
		})
	}
	sort.SliceStable(report.TopAbandoned, func(i, j int) bool {
		return report.TopAbandoned[i].Quantity > report.TopAbandoned[j].Quantity
	})
	if len(report.TopAbandoned) > topAbandonedProducts {
		report.TopAbandoned = report.TopAbandoned[:topAbandonedProducts]
	}
	return report, nil
}
