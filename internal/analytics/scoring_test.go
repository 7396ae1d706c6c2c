package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/souqops/analytics-manager/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCustomerOrders(f *fakeRepo, customerID, n int, status entity.OrderStatus, total float64, at time.Time) {
	for i := 0; i < n; i++ {
		f.orders = append(f.orders, entity.Order{
			ID:         len(f.orders) + 1,
			CompanyID:  testCompany,
			Status:     status,
			Total:      decimal.NewFromFloat(total),
			CustomerID: sql.NullInt64{Valid: true, Int64: int64(customerID)},
			CreatedAt:  at,
		})
	}
}

func TestCustomerScoresTopTier(t *testing.T) {
	f := newFakeRepo()
	f.customers = []entity.Customer{{ID: 7, CompanyID: testCompany, Name: "Amira", Phone: "0100"}}
	seedCustomerOrders(f, 7, 10, entity.OrderStatusDelivered, 1100, testNow.AddDate(0, 0, -2))

	scores, err := testEngine(f).CustomerScores(context.Background(), testCompany, entity.TimeRange{})
	require.NoError(t, err)
	require.Len(t, scores, 1)

	s := scores[0]
	assert.Equal(t, 30, s.FrequencyPoints) // 10 orders
	assert.Equal(t, 30, s.MonetaryPoints)  // 11000 delivered
	assert.Equal(t, 20, s.RecencyPoints)   // 2 days ago
	assert.Equal(t, 20, s.CompletionPoints)
	assert.Equal(t, 100, s.Score)
	assert.Equal(t, "VIP", s.Tier)
}

func TestCustomerScoresMonetaryCountsDeliveredOnly(t *testing.T) {
	f := newFakeRepo()
	f.customers = []entity.Customer{{ID: 1, CompanyID: testCompany, Name: "Omar"}}
	seedCustomerOrders(f, 1, 1, entity.OrderStatusDelivered, 600, testNow.AddDate(0, 0, -3))
	seedCustomerOrders(f, 1, 2, entity.OrderStatusCancelled, 50000, testNow.AddDate(0, 0, -3))

	scores, err := testEngine(f).CustomerScores(context.Background(), testCompany, entity.TimeRange{})
	require.NoError(t, err)
	require.Len(t, scores, 1)

	s := scores[0]
	assert.Equal(t, 600.0, s.TotalSpent)
	assert.Equal(t, 5, s.MonetaryPoints) // cancelled totals don't count
	assert.Equal(t, 10, s.FrequencyPoints)
	assert.Equal(t, 6, s.CompletionPoints) // floor(1/3 * 20)
}

func TestCustomerScoresExcludesZeroOrderCustomers(t *testing.T) {
	f := newFakeRepo()
	f.customers = []entity.Customer{
		{ID: 1, CompanyID: testCompany, Name: "Active"},
		{ID: 2, CompanyID: testCompany, Name: "Browser"},
	}
	seedCustomerOrders(f, 1, 1, entity.OrderStatusPending, 100, testNow.AddDate(0, 0, -1))

	scores, err := testEngine(f).CustomerScores(context.Background(), testCompany, entity.TimeRange{})
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, "Active", scores[0].Name)
}

func TestCustomerScoresSortedDescending(t *testing.T) {
	f := newFakeRepo()
	f.customers = []entity.Customer{
		{ID: 1, CompanyID: testCompany, Name: "Low"},
		{ID: 2, CompanyID: testCompany, Name: "High"},
	}
	seedCustomerOrders(f, 1, 1, entity.OrderStatusPending, 10, testNow.AddDate(0, 0, -200))
	seedCustomerOrders(f, 2, 10, entity.OrderStatusDelivered, 2000, testNow.AddDate(0, 0, -1))

	scores, err := testEngine(f).CustomerScores(context.Background(), testCompany, entity.TimeRange{})
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "High", scores[0].Name)
	assert.Greater(t, scores[0].Score, scores[1].Score)
}

func TestCustomerTierBoundaries(t *testing.T) {
	assert.Equal(t, "VIP", customerTier(80))
	assert.Equal(t, "high", customerTier(79))
	assert.Equal(t, "high", customerTier(60))
	assert.Equal(t, "medium", customerTier(59))
	assert.Equal(t, "medium", customerTier(40))
	assert.Equal(t, "low", customerTier(39))
	assert.Equal(t, "low", customerTier(0))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 100, clampScore(120))
	assert.Equal(t, 0, clampScore(-5))
	assert.Equal(t, 55, clampScore(55))
}

func seedHealthProduct(f *fakeRepo, productID int, stock int, cost *int) {
	p := entity.Product{
		ID:        productID,
		CompanyID: testCompany,
		Name:      fmt.Sprintf("product-%d", productID),
		Price:     decimal.NewFromInt(100),
		Stock:     stock,
		IsActive:  true,
	}
	if cost != nil {
		p.CostPrice = decimal.NewNullDecimal(decimal.NewFromInt(int64(*cost)))
	}
	f.products = append(f.products, p)
}

func seedDeliveredOrderWithItem(f *fakeRepo, productID, qty int, price float64, at time.Time) int {
	id := len(f.orders) + 1
	f.orders = append(f.orders, entity.Order{
		ID: id, CompanyID: testCompany, Status: entity.OrderStatusDelivered,
		Total: decimal.NewFromFloat(price * float64(qty)), CreatedAt: at,
	})
	f.items = append(f.items, entity.OrderItem{
		ID: len(f.items) + 1, OrderID: id,
		ProductID: sql.NullInt64{Valid: true, Int64: int64(productID)},
		ProductName: fmt.Sprintf("product-%d", productID),
		Price:       decimal.NewFromFloat(price), Quantity: qty,
	})
	return id
}

func TestProductHealthScoresLadders(t *testing.T) {
	f := newFakeRepo()
	cost := 50
	seedHealthProduct(f, 1, 60, &cost)
	// 100 delivered units at 100 each, cost 50: margin 50%, delivery 100%.
	for i := 0; i < 10; i++ {
		seedDeliveredOrderWithItem(f, 1, 10, 100, testNow.AddDate(0, 0, -1))
	}

	health, err := testEngine(f).ProductHealthScores(context.Background(), testCompany, testWindow())
	require.NoError(t, err)
	require.Len(t, health, 1)

	h := health[0]
	assert.Equal(t, 100, h.UnitsSold)
	assert.Equal(t, 25, h.SalesPoints)
	assert.Equal(t, 25, h.MarginPoints)
	assert.Equal(t, 25, h.DeliveryPoints)
	assert.Equal(t, 25, h.StockPoints)
	assert.Equal(t, 100, h.Score)
	assert.Equal(t, "expand", h.Recommendation)
}

func TestProductHealthExcludesDeadStocklessProducts(t *testing.T) {
	f := newFakeRepo()
	seedHealthProduct(f, 1, 0, nil)  // never ordered, no stock
	seedHealthProduct(f, 2, 10, nil) // never ordered, has stock

	health, err := testEngine(f).ProductHealthScores(context.Background(), testCompany, testWindow())
	require.NoError(t, err)
	require.Len(t, health, 1)
	assert.Equal(t, 2, health[0].ProductID)
}

func TestProductHealthDiscontinueNeedsHistory(t *testing.T) {
	f := newFakeRepo()
	seedHealthProduct(f, 1, 0, nil)
	// Six historical orders outside the window, nothing recent: score
	// collapses but the order history justifies "discontinue".
	for i := 0; i < 6; i++ {
		id := len(f.orders) + 1
		f.orders = append(f.orders, entity.Order{
			ID: id, CompanyID: testCompany, Status: entity.OrderStatusCancelled,
			CreatedAt: testNow.AddDate(0, 0, -120),
		})
		f.items = append(f.items, entity.OrderItem{
			ID: len(f.items) + 1, OrderID: id,
			ProductID: sql.NullInt64{Valid: true, Int64: 1},
			Price:     decimal.NewFromInt(100), Quantity: 1,
		})
	}

	health, err := testEngine(f).ProductHealthScores(context.Background(), testCompany, testWindow())
	require.NoError(t, err)
	require.Len(t, health, 1)
	assert.Equal(t, "discontinue", health[0].Recommendation)
}

func TestRecommendationMapping(t *testing.T) {
	assert.Equal(t, "expand", recommendation(80, 0))
	assert.Equal(t, "continue", recommendation(60, 0))
	assert.Equal(t, "improve", recommendation(40, 0))
	assert.Equal(t, "discontinue", recommendation(10, 6))
	assert.Equal(t, "review", recommendation(10, 2))
	assert.Equal(t, "review", recommendation(25, 100))
}

func TestMarginAndDeliveryLadders(t *testing.T) {
	assert.Equal(t, 25, marginPoints(40))
	assert.Equal(t, 20, marginPoints(30))
	assert.Equal(t, 5, marginPoints(0.5))
	assert.Equal(t, 0, marginPoints(0))

	assert.Equal(t, 25, deliveryPoints(90))
	assert.Equal(t, 10, deliveryPoints(40))
	assert.Equal(t, 0, deliveryPoints(0))

	assert.Equal(t, 25, salesVolumePoints(100))
	assert.Equal(t, 5, salesVolumePoints(1))
	assert.Equal(t, 0, salesVolumePoints(0))

	assert.Equal(t, 25, stockPoints(50))
	assert.Equal(t, 5, stockPoints(1))
	assert.Equal(t, 0, stockPoints(0))
}
