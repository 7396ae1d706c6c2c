package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/souqops/analytics-manager/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCart(f *fakeRepo, items string, expiresAt time.Time) string {
	cartID := uuid.NewString()
	f.carts = append(f.carts, entity.GuestCart{
		ID:        len(f.carts) + 1,
		CompanyID: testCompany,
		CartID:    cartID,
		Items:     items,
		CreatedAt: testNow.AddDate(0, 0, -2),
		ExpiresAt: expiresAt,
	})
	return cartID
}

func TestAbandonedCartsScenario(t *testing.T) {
	f := newFakeRepo()
	expired := testNow.Add(-time.Hour)
	live := testNow.Add(time.Hour)

	seedCart(f, `[{"productName":"Mug","price":50,"quantity":2}]`, expired)
	seedCart(f, `[{"productName":"Mug","price":50,"quantity":1},{"productName":"Lamp","price":200,"quantity":1}]`, expired)
	converted := seedCart(f, `[{"productName":"Chair","price":500,"quantity":1}]`, expired)
	f.converted[converted] = true
	seedCart(f, `[{"productName":"Desk","price":900,"quantity":1}]`, live)

	report, err := testEngine(f).AbandonedCarts(context.Background(), testCompany, testWindow())
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalCarts)
	assert.Equal(t, 2, report.AbandonedCarts)
	assert.Equal(t, 1, report.ConvertedCarts)
	assert.Equal(t, 50.0, report.AbandonmentRate)
	assert.Equal(t, 350.0, report.LostRevenue)

	require.NotEmpty(t, report.TopAbandoned)
	assert.Equal(t, "Mug", report.TopAbandoned[0].ProductName)
	assert.Equal(t, 3, report.TopAbandoned[0].Quantity)
	assert.Equal(t, 150.0, report.TopAbandoned[0].Value)
}

func TestAbandonedCartsUnparsableItems(t *testing.T) {
	f := newFakeRepo()
	expired := testNow.Add(-time.Hour)
	seedCart(f, `{not json`, expired)
	seedCart(f, `[{"productName":"Mug","price":50,"quantity":1}]`, expired)

	report, err := testEngine(f).AbandonedCarts(context.Background(), testCompany, testWindow())
	require.NoError(t, err)

	// The broken cart still counts as abandoned but contributes no items.
	assert.Equal(t, 2, report.AbandonedCarts)
	assert.Equal(t, 1, report.UnparsableCarts)
	assert.Equal(t, 50.0, report.LostRevenue)
}

func TestAbandonedCartsEmpty(t *testing.T) {
	f := newFakeRepo()
	report, err := testEngine(f).AbandonedCarts(context.Background(), testCompany, testWindow())
	require.NoError(t, err)

	assert.Equal(t, 0, report.TotalCarts)
	assert.Equal(t, 0.0, report.AbandonmentRate)
	assert.Empty(t, report.TopAbandoned)
}
