package analytics

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/souqops/analytics-manager/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(f *fakeRepo, status entity.OrderStatus, method string, total float64) int {
	id := len(f.orders) + 1
	o := entity.Order{
		ID: id, CompanyID: testCompany, Status: status,
		Total:     decimal.NewFromFloat(total),
		CreatedAt: testNow.AddDate(0, 0, -1),
	}
	if method != "" {
		o.PaymentMethod = sql.NullString{Valid: true, String: method}
	}
	f.orders = append(f.orders, o)
	return id
}

func TestCODReport(t *testing.T) {
	f := newFakeRepo()
	seedOrder(f, entity.OrderStatusDelivered, "cod", 100)
	seedOrder(f, entity.OrderStatusDelivered, "cod", 150)
	seedOrder(f, entity.OrderStatusCancelled, "cod", 80)
	seedOrder(f, entity.OrderStatusReturned, "COD", 60)
	seedOrder(f, entity.OrderStatusDelivered, "card", 500)

	report, err := testEngine(f).CODReport(context.Background(), testCompany, testWindow())
	require.NoError(t, err)

	assert.Equal(t, 5, report.TotalOrders)
	assert.Equal(t, 4, report.CODOrders)
	assert.Equal(t, 80.0, report.CODShare)
	assert.Equal(t, 2, report.Delivered)
	assert.Equal(t, 1, report.Cancelled)
	assert.Equal(t, 1, report.Returned)
	assert.Equal(t, 50.0, report.DeliveryRate)
	assert.Equal(t, 25.0, report.CancellationRate)
	assert.Equal(t, 25.0, report.ReturnRate)
	assert.Equal(t, 250.0, report.CollectedRevenue)
}

func TestReturnsReport(t *testing.T) {
	f := newFakeRepo()
	returned := seedOrder(f, entity.OrderStatusReturned, "cod", 120)
	seedOrder(f, entity.OrderStatusRefunded, "card", 80)
	seedOrder(f, entity.OrderStatusDelivered, "card", 500)
	seedOrder(f, entity.OrderStatusDelivered, "card", 500)
	f.items = append(f.items, entity.OrderItem{
		ID: 1, OrderID: returned, ProductName: "Vase",
		Price: decimal.NewFromInt(60), Quantity: 2,
	})

	report, err := testEngine(f).ReturnsReport(context.Background(), testCompany, testWindow())
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalOrders)
	assert.Equal(t, 1, report.Returned)
	assert.Equal(t, 1, report.Refunded)
	assert.Equal(t, 25.0, report.ReturnRate)
	assert.Equal(t, 25.0, report.RefundRate)
	assert.Equal(t, 200.0, report.LostRevenue)

	require.Len(t, report.TopReturned, 1)
	assert.Equal(t, "Vase", report.TopReturned[0].ProductName)
	assert.Equal(t, 2, report.TopReturned[0].Quantity)
	assert.Equal(t, 120.0, report.TopReturned[0].Value)
}

func seedStatusChange(f *fakeRepo, orderID int, status entity.OrderStatus, at time.Time) {
	f.history = append(f.history, entity.OrderStatusChange{
		ID: len(f.history) + 1, OrderID: orderID, Status: status, ChangedAt: at,
	})
}

func TestDeliveryReportTransitionTimes(t *testing.T) {
	f := newFakeRepo()
	id := seedOrder(f, entity.OrderStatusDelivered, "cod", 100)
	created := f.orders[id-1].CreatedAt
	seedStatusChange(f, id, entity.OrderStatusConfirmed, created.Add(2*time.Hour))
	seedStatusChange(f, id, entity.OrderStatusShipped, created.Add(6*time.Hour))
	seedStatusChange(f, id, entity.OrderStatusDelivered, created.Add(12*time.Hour))

	report, err := testEngine(f).DeliveryReport(context.Background(), testCompany, testWindow())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Delivered)
	assert.Equal(t, 100.0, report.DeliveryRate)
	assert.Equal(t, 2.0, report.AvgConfirmationHours)
	assert.Equal(t, 4.0, report.AvgShippingHours)
	assert.Equal(t, 6.0, report.AvgDeliveryHours)
}

func TestDeliveryReportDiscardsOutliers(t *testing.T) {
	f := newFakeRepo()
	id := seedOrder(f, entity.OrderStatusDelivered, "cod", 100)
	created := f.orders[id-1].CreatedAt
	// Backdated confirmation and a 45-day shipping gap are both data errors.
	seedStatusChange(f, id, entity.OrderStatusConfirmed, created.Add(-time.Hour))
	seedStatusChange(f, id, entity.OrderStatusShipped, created.Add(45*24*time.Hour))

	clean := seedOrder(f, entity.OrderStatusConfirmed, "cod", 50)
	seedStatusChange(f, clean, entity.OrderStatusConfirmed, f.orders[clean-1].CreatedAt.Add(3*time.Hour))

	report, err := testEngine(f).DeliveryReport(context.Background(), testCompany, testWindow())
	require.NoError(t, err)

	assert.Equal(t, 3.0, report.AvgConfirmationHours)
	assert.Equal(t, 0.0, report.AvgShippingHours)
}

func TestDeliveryReportUsesFirstOccurrence(t *testing.T) {
	f := newFakeRepo()
	id := seedOrder(f, entity.OrderStatusDelivered, "cod", 100)
	created := f.orders[id-1].CreatedAt
	seedStatusChange(f, id, entity.OrderStatusConfirmed, created.Add(time.Hour))
	// A second confirmation entry must not move the measurement.
	seedStatusChange(f, id, entity.OrderStatusConfirmed, created.Add(10*time.Hour))

	report, err := testEngine(f).DeliveryReport(context.Background(), testCompany, testWindow())
	require.NoError(t, err)
	assert.Equal(t, 1.0, report.AvgConfirmationHours)
}

func TestPaymentMethods(t *testing.T) {
	f := newFakeRepo()
	seedOrder(f, entity.OrderStatusDelivered, "cod", 100)
	seedOrder(f, entity.OrderStatusCancelled, "cod", 50)
	seedOrder(f, entity.OrderStatusDelivered, "card", 400)
	seedOrder(f, entity.OrderStatusPending, "", 30)

	stats, err := testEngine(f).PaymentMethods(context.Background(), testCompany, testWindow())
	require.NoError(t, err)
	require.Len(t, stats, 3)

	// Ordered by delivered revenue.
	assert.Equal(t, "card", stats[0].Method)
	assert.Equal(t, 400.0, stats[0].Revenue)
	assert.Equal(t, "cod", stats[1].Method)
	assert.Equal(t, 50.0, stats[1].Share)
	assert.Equal(t, 50.0, stats[1].DeliveryRate)
	assert.Equal(t, "unspecified", stats[2].Method)
}

func TestRegions(t *testing.T) {
	f := newFakeRepo()
	id := seedOrder(f, entity.OrderStatusDelivered, "cod", 300)
	f.orders[id-1].Governorate = sql.NullString{Valid: true, String: "Cairo"}
	id = seedOrder(f, entity.OrderStatusPending, "cod", 100)
	f.orders[id-1].City = sql.NullString{Valid: true, String: "Alexandria"}
	seedOrder(f, entity.OrderStatusPending, "cod", 40)

	stats, err := testEngine(f).Regions(context.Background(), testCompany, testWindow())
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, "Cairo", stats[0].Region)
	assert.Equal(t, 300.0, stats[0].Revenue)
	assert.Equal(t, 100.0, stats[0].DeliveryRate)
	assert.Equal(t, "Alexandria", stats[1].Region)
	assert.Equal(t, "unspecified", stats[2].Region)
}

func TestTeam(t *testing.T) {
	f := newFakeRepo()
	id := seedOrder(f, entity.OrderStatusDelivered, "cod", 200)
	f.orders[id-1].CreatedBy = sql.NullInt64{Valid: true, Int64: 5}
	f.orders[id-1].ConfirmedBy = sql.NullInt64{Valid: true, Int64: 6}
	id = seedOrder(f, entity.OrderStatusCancelled, "cod", 100)
	f.orders[id-1].CreatedBy = sql.NullInt64{Valid: true, Int64: 5}

	stats, err := testEngine(f).Team(context.Background(), testCompany, testWindow())
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, 5, stats[0].UserID)
	assert.Equal(t, 2, stats[0].OrdersCreated)
	assert.Equal(t, 1, stats[0].Delivered)
	assert.Equal(t, 50.0, stats[0].DeliveryRate)
	assert.Equal(t, 200.0, stats[0].Revenue)

	assert.Equal(t, 6, stats[1].UserID)
	assert.Equal(t, 1, stats[1].OrdersConfirmed)
	assert.Equal(t, 0, stats[1].OrdersCreated)
}

func TestCouponPerformance(t *testing.T) {
	f := newFakeRepo()
	f.coupons = []entity.CouponUsageStats{
		{
			Coupon: entity.Coupon{
				ID: 1, CompanyID: testCompany, Code: "SUMMER10",
				Type: entity.CouponTypePercentage, Value: decimal.NewFromInt(10),
				UsageLimit: 100, IsActive: true,
			},
			UsageCount:   25,
			OrderRevenue: decimal.NewFromInt(5000),
		},
		{
			Coupon: entity.Coupon{
				ID: 2, CompanyID: testCompany, Code: "FLAT50",
				Type: entity.CouponTypeFixed, Value: decimal.NewFromInt(50),
			},
			UsageCount:   40,
			OrderRevenue: decimal.NewFromInt(8000),
		},
	}

	stats, err := testEngine(f).CouponPerformance(context.Background(), testCompany, testWindow())
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, "FLAT50", stats[0].Code)
	assert.Equal(t, 0.0, stats[0].UsageRate) // unlimited coupon
	assert.Equal(t, "SUMMER10", stats[1].Code)
	assert.Equal(t, 25.0, stats[1].UsageRate)
	assert.Equal(t, 5000.0, stats[1].OrderRevenue)
}

func TestDashboardSummary(t *testing.T) {
	f := newFakeRepo()
	seedVisits(f, 10)
	f.products = []entity.Product{
		{ID: 1, CompanyID: testCompany, Name: "Mug", Price: decimal.NewFromInt(20), IsActive: true},
	}
	seedDeliveredOrderWithItem(f, 1, 1, 20, testNow.Add(-time.Hour))

	summary, err := testEngine(f).DashboardSummary(context.Background(), testCompany, testWindow())
	require.NoError(t, err)

	require.NotNil(t, summary.Funnel)
	assert.Equal(t, 10, summary.Funnel.TotalVisits)
	require.NotNil(t, summary.Profit)
	assert.Equal(t, 20.0, summary.Profit.Revenue)
}
