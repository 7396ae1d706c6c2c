package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/souqops/analytics-manager/internal/entity"
	"golang.org/x/sync/errgroup"
)

// Funnel stage names, in order.
const (
	stageStoreVisit  = "storeVisit"
	stageProductView = "productView"
	stageAddToCart   = "addToCart"
	stageCheckout    = "checkout"
	stageOrderPlaced = "orderPlaced"
	stageDelivered   = "delivered"
)

// StoreFunnel computes the store-level conversion funnel for a window. The
// mutually independent counts are fetched concurrently.
func (e *Engine) StoreFunnel(ctx context.Context, companyID int, tr entity.TimeRange) (*entity.StoreFunnel, error) {
	var (
		visits, unique, views       int
		carts, checkouts, purchases int
		ordersPlaced, delivered     int
		revenue                     decimal.Decimal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		visits, err = e.rep.Visits().CountStoreVisits(gctx, companyID, tr)
		return err
	})
	g.Go(func() (err error) {
		unique, err = e.rep.Visits().CountUniqueVisitors(gctx, companyID, tr)
		return err
	})
	g.Go(func() (err error) {
		views, err = e.rep.Visits().CountProductVisits(gctx, companyID, tr)
		return err
	})
	g.Go(func() (err error) {
		carts, err = e.rep.Events().CountEventsByType(gctx, companyID, tr, entity.EventAddToCart)
		return err
	})
	g.Go(func() (err error) {
		checkouts, err = e.rep.Events().CountEventsByType(gctx, companyID, tr, entity.EventCheckout)
		return err
	})
	g.Go(func() (err error) {
		purchases, err = e.rep.Events().CountEventsByType(gctx, companyID, tr, entity.EventPurchase)
		return err
	})
	g.Go(func() (err error) {
		revenue, err = e.rep.Events().SumEventValues(gctx, companyID, tr, entity.EventPurchase)
		return err
	})
	g.Go(func() error {
		orders, err := e.rep.Orders().OrdersInWindow(gctx, companyID, tr)
		if err != nil {
			return err
		}
		ordersPlaced = len(orders)
		for _, o := range orders {
			if o.Status == entity.OrderStatusDelivered {
				delivered++
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("store funnel counts: %w", err)
	}

	f := &entity.StoreFunnel{
		TotalVisits:       visits,
		UniqueVisitors:    unique,
		TotalProductViews: views,
		AddToCarts:        carts,
		Checkouts:         checkouts,
		Purchases:         purchases,
		TotalRevenue:      Money(revenue),
		ConversionRate:    SafeRatio(float64(purchases), float64(visits)),
		EngagementRate:    SafeRatio(float64(purchases), float64(views)),
		AddToCartRate:     SafeRatio(float64(carts), float64(views)),
		CheckoutRate:      SafeRatio(float64(checkouts), float64(carts)),
	}
	if purchases > 0 {
		f.AvgOrderValue = Round2(Money(revenue) / float64(purchases))
	}
	// The checkout stage may be missing from a store's instrumentation; fall
	// back to add-to-carts so a skipped stage doesn't zero the rate.
	if checkouts > 0 {
		f.PurchaseRate = SafeRatio(float64(purchases), float64(checkouts))
	} else {
		f.PurchaseRate = SafeRatio(float64(purchases), float64(carts))
	}

	f.Stages = buildStages([]stageCount{
		{stageStoreVisit, visits},
		{stageProductView, views},
		{stageAddToCart, carts},
		{stageCheckout, checkouts},
		{stageOrderPlaced, ordersPlaced},
		{stageDelivered, delivered},
	})
	f.BiggestDropOff = biggestDropOff(f.Stages)

	return f, nil
}

type stageCount struct {
	name  string
	count int
}

// buildStages computes each stage's conversion against the previous stage's
// count; the first stage is pinned to 100.
func buildStages(counts []stageCount) []entity.FunnelStage {
	stages := make([]entity.FunnelStage, len(counts))
	for i, sc := range counts {
		rate := 100.0
		if i > 0 {
			rate = SafeRatio(float64(sc.count), float64(counts[i-1].count))
		}
		stages[i] = entity.FunnelStage{Name: sc.name, Count: sc.count, ConversionRate: rate}
	}
	return stages
}

// biggestDropOff scans adjacent stage pairs and reports the single largest
// drop; ties keep the first pair found. Stages with a zero current count are
// skipped to avoid division by zero.
func biggestDropOff(stages []entity.FunnelStage) *entity.DropOff {
	var worst *entity.DropOff
	for i := 0; i+1 < len(stages); i++ {
		if stages[i].Count == 0 {
			continue
		}
		drop := Round2(100 - float64(stages[i+1].Count)/float64(stages[i].Count)*100)
		if worst == nil || drop > worst.DropRate {
			worst = &entity.DropOff{
				FromStage: stages[i].Name,
				ToStage:   stages[i+1].Name,
				DropRate:  drop,
			}
		}
	}
	return worst
}

// ProductFunnel computes the view→cart→purchase pipeline for one product.
// The product must belong to the company; a cross-tenant id surfaces as
// apperr.ErrNotFound from the store.
func (e *Engine) ProductFunnel(ctx context.Context, companyID, productID int, tr entity.TimeRange) (*entity.ProductFunnel, error) {
	product, err := e.rep.Products().ProductByID(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}

	var views, carts, purchases int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		views, err = e.rep.Visits().CountVisitsForProduct(gctx, companyID, productID, tr)
		return err
	})
	g.Go(func() (err error) {
		carts, err = e.rep.Events().CountEventsForProduct(gctx, companyID, productID, tr, entity.EventAddToCart)
		return err
	})
	g.Go(func() (err error) {
		purchases, err = e.rep.Events().CountEventsForProduct(gctx, companyID, productID, tr, entity.EventPurchase)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("product funnel counts: %w", err)
	}

	return &entity.ProductFunnel{
		ProductID:          productID,
		ProductName:        product.Name,
		Views:              views,
		AddToCarts:         carts,
		Purchases:          purchases,
		ViewToCartRate:     SafeRatio(float64(carts), float64(views)),
		CartToPurchaseRate: SafeRatio(float64(purchases), float64(carts)),
		ConversionRate:     SafeRatio(float64(purchases), float64(views)),
	}, nil
}

// ConversionRate computes the bare store conversion rate for a window.
func (e *Engine) ConversionRate(ctx context.Context, companyID int, tr entity.TimeRange) (*entity.ConversionReport, error) {
	var visits, purchases int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		visits, err = e.rep.Visits().CountStoreVisits(gctx, companyID, tr)
		return err
	})
	g.Go(func() (err error) {
		purchases, err = e.rep.Events().CountEventsByType(gctx, companyID, tr, entity.EventPurchase)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("conversion rate counts: %w", err)
	}
	return &entity.ConversionReport{
		TotalVisits:    visits,
		Purchases:      purchases,
		ConversionRate: SafeRatio(float64(purchases), float64(visits)),
	}, nil
}

// TopProducts ranks products with at least one view in the window by their
// view→purchase conversion rate.
func (e *Engine) TopProducts(ctx context.Context, companyID int, tr entity.TimeRange, limit int) ([]entity.ProductPerformance, error) {
	if limit <= 0 {
		limit = 10
	}

	var (
		breakdown []entity.ProductEventCounts
		products  []entity.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		breakdown, err = e.rep.Events().ProductEventBreakdown(gctx, companyID, tr)
		return err
	})
	g.Go(func() (err error) {
		products, err = e.rep.Products().ProductsByCompany(gctx, companyID, false)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}

	byID := make(map[int]entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	result := make([]entity.ProductPerformance, 0, len(breakdown))
	for _, b := range breakdown {
		if b.Views == 0 {
			continue
		}
		perf := entity.ProductPerformance{
			ProductID:      b.ProductID,
			Views:          b.Views,
			AddToCarts:     b.AddToCart,
			Purchases:      b.Purchases,
			ConversionRate: SafeRatio(float64(b.Purchases), float64(b.Views)),
		}
		if p, ok := byID[b.ProductID]; ok {
			perf.Name = p.Name
			perf.Price = Money(p.Price)
		}
		result = append(result, perf)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ConversionRate > result[j].ConversionRate
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Daily builds the day-level visit/view/order series over the window, one
// point per calendar day with zero-filled gaps.
func (e *Engine) Daily(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.DailyPoint, error) {
	var (
		visits map[string]int
		views  map[string]int
		orders map[string]entity.DayOrderTotals
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		visits, err = e.rep.Visits().StoreVisitsByDay(gctx, companyID, tr)
		return err
	})
	g.Go(func() (err error) {
		views, err = e.rep.Visits().ProductVisitsByDay(gctx, companyID, tr)
		return err
	})
	g.Go(func() (err error) {
		orders, err = e.rep.Orders().OrdersByDay(gctx, companyID, tr)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("daily series: %w", err)
	}

	var days []entity.DailyPoint
	from := tr.From
	to := tr.To
	if from.IsZero() || to.IsZero() {
		return days, nil
	}
	for cur := truncateDay(from); !cur.After(to); cur = cur.AddDate(0, 0, 1) {
		key := cur.Format("2006-01-02")
		point := entity.DailyPoint{
			Date:         key,
			Visits:       visits[key],
			ProductViews: views[key],
		}
		if day, ok := orders[key]; ok {
			point.Orders = day.Orders
			point.Revenue = Money(day.Revenue)
		}
		days = append(days, point)
	}
	return days, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
