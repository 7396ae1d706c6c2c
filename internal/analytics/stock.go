package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/souqops/analytics-manager/internal/entity"
	"golang.org/x/sync/errgroup"
)

const (
	velocityWindowDays = 30
	reorderCoverDays   = 30

	// noStockoutDays marks products with no measurable sell-through.
	noStockoutDays = 999
)

// StockForecast projects days-until-stockout for active products from their
// trailing 30-day delivered sales velocity, independent of any requested
// reporting window.
func (e *Engine) StockForecast(ctx context.Context, companyID int) (*entity.StockForecast, error) {
	now := e.now()
	velocityWindow := entity.TimeRange{
		From: now.AddDate(0, 0, -velocityWindowDays),
		To:   now,
	}

	var (
		products  []entity.Product
		unitsSold map[int]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = e.rep.Products().ProductsByCompany(gctx, companyID, true)
		return err
	})
	g.Go(func() (err error) {
		unitsSold, err = e.rep.Products().UnitsSoldByProduct(gctx, companyID, velocityWindow)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("stock forecast: %w", err)
	}

	forecast := &entity.StockForecast{Products: make([]entity.StockForecastItem, 0, len(products))}
	for _, p := range products {
		units := unitsSold[p.ID]
		daily := float64(units) / velocityWindowDays

		item := entity.StockForecastItem{
			ProductID:         p.ID,
			Name:              p.Name,
			Stock:             p.Stock,
			UnitsSold30d:      units,
			DailyAvgSales:     Round2(daily),
			DaysUntilStockout: noStockoutDays,
			SuggestedReorder:  int(math.Ceil(daily * reorderCoverDays)),
			Overstocked:       units > 0 && float64(p.Stock)/float64(units) > 3,
		}
		if daily > 0 {
			item.DaysUntilStockout = int(math.Floor(float64(p.Stock) / daily))
		}
		item.Urgency = stockUrgency(item.DaysUntilStockout)
		switch item.Urgency {
		case "critical":
			forecast.CriticalCount++
		case "warning":
			forecast.WarningCount++
		}
		forecast.Products = append(forecast.Products, item)
	}

	sort.SliceStable(forecast.Products, func(i, j int) bool {
		return forecast.Products[i].DaysUntilStockout < forecast.Products[j].DaysUntilStockout
	})
	return forecast, nil
}

func stockUrgency(daysUntilStockout int) string {
	switch {
	case daysUntilStockout <= 7:
		return "critical"
	case daysUntilStockout <= 14:
		return "warning"
	case daysUntilStockout <= 30:
		return "moderate"
	default:
		return "safe"
	}
}
