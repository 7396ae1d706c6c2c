package analytics

import (
	"context"
	"fmt"

	"github.com/souqops/analytics-manager/internal/entity"
	"golang.org/x/sync/errgroup"
)

// DashboardSummary assembles the overview widgets in one call: funnel, profit
// and top products over the same window.
func (e *Engine) DashboardSummary(ctx context.Context, companyID int, tr entity.TimeRange) (*entity.DashboardSummary, error) {
	summary := &entity.DashboardSummary{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary.Funnel, err = e.StoreFunnel(gctx, companyID, tr)
		return err
	})
	g.Go(func() (err error) {
		summary.Profit, err = e.ProfitReport(gctx, companyID, tr)
		return err
	})
	g.Go(func() (err error) {
		summary.TopProducts, err = e.TopProducts(gctx, companyID, tr, 5)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}
	return summary, nil
}
