package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/ctp"
	"github.com/uriel-reyes/sellertools-sub000/pkg/errors"
)

func reportOrder(createdAt string, totalCents int64, lineItems ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"id": "order-" + createdAt, "version": 1, "orderState": "Complete",
		"createdAt":  createdAt,
		"totalPrice": map[string]interface{}{"centAmount": totalCents, "currencyCode": "USD"},
		"lineItems":  lineItems,
	}
}

func reportLineItem(productID, name, sku string, qty, totalCents int64) map[string]interface{} {
	return map[string]interface{}{
		"productId": productID, "name": name, "quantity": qty,
		"variant":    map[string]interface{}{"sku": sku},
		"totalPrice": map[string]interface{}{"centAmount": totalCents, "currencyCode": "USD"},
	}
}

func TestSalesAggregatesDailyAndTopProducts(t *testing.T) {
	var gotWhere string
	client := newStubClient(t, func(query string, vars map[string]interface{}) (interface{}, []ctp.GraphQLError) {
		require.Contains(t, query, "query reportOrders")
		gotWhere = vars["where"].(string)
		return map[string]interface{}{
			"orders": map[string]interface{}{
				"total": 3,
				"results": []map[string]interface{}{
					reportOrder("2026-08-01T09:00:00.000Z", 3000,
						reportLineItem("prod-a", "Widget", "W-1", 2, 2000),
						reportLineItem("prod-b", "Gadget", "G-1", 1, 1000),
					),
					reportOrder("2026-08-01T17:30:00.000Z", 1000,
						reportLineItem("prod-b", "Gadget", "G-1", 1, 1000),
					),
					reportOrder("2026-08-02T11:00:00.000Z", 2000,
						reportLineItem("prod-a", "Widget", "W-1", 2, 2000),
					),
				},
			},
		}, nil
	})
	svc := NewReportService(client, zap.NewNop())

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	summary, err := svc.Sales(context.Background(), "store-1", from, to, 5)
	require.NoError(t, err)

	assert.Contains(t, gotWhere, `store(key="store-1")`)
	assert.Contains(t, gotWhere, `createdAt >= "2026-08-01T00:00:00Z"`)
	assert.Contains(t, gotWhere, `createdAt <= "2026-08-03T00:00:00Z"`)

	assert.Equal(t, int64(3), summary.OrderCount)
	assert.Equal(t, int64(6000), summary.RevenueCents)
	assert.Equal(t, int64(2000), summary.AvgOrderValueCents)
	assert.Equal(t, "USD", summary.CurrencyCode)

	require.Len(t, summary.Daily, 2)
	assert.Equal(t, DailySales{Date: "2026-08-01", OrderCount: 2, RevenueCents: 4000}, summary.Daily[0])
	assert.Equal(t, DailySales{Date: "2026-08-02", OrderCount: 1, RevenueCents: 2000}, summary.Daily[1])

	require.Len(t, summary.TopProducts, 2)
	assert.Equal(t, "prod-a", summary.TopProducts[0].ProductID)
	assert.Equal(t, int64(4), summary.TopProducts[0].Quantity)
	assert.Equal(t, int64(4000), summary.TopProducts[0].RevenueCents)
	assert.Equal(t, "prod-b", summary.TopProducts[1].ProductID)
}

func TestSalesPagesThroughAllOrders(t *testing.T) {
	calls := 0
	client := newStubClient(t, func(query string, vars map[string]interface{}) (interface{}, []ctp.GraphQLError) {
		calls++
		offset := int(vars["offset"].(float64))
		results := []map[string]interface{}{}
		// Two full pages plus one order on the third.
		count := reportPageSize
		if offset >= 2*reportPageSize {
			count = 1
		}
		for i := 0; i < count; i++ {
			results = append(results, reportOrder("2026-08-01T09:00:00.000Z", 100))
		}
		return map[string]interface{}{
			"orders": map[string]interface{}{
				"total":   2*reportPageSize + 1,
				"results": results,
			},
		}, nil
	})
	svc := NewReportService(client, zap.NewNop())

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	summary, err := svc.Sales(context.Background(), "store-1", from, to, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, int64(2*reportPageSize+1), summary.OrderCount)
	assert.Equal(t, int64((2*reportPageSize+1)*100), summary.RevenueCents)
}

func TestSalesTruncatesTopProducts(t *testing.T) {
	items := []map[string]interface{}{}
	for i := 0; i < 8; i++ {
		items = append(items, reportLineItem(
			string(rune('a'+i)), "Product", "", int64(8-i), int64((8-i)*100)))
	}
	client := newStubClient(t, func(string, map[string]interface{}) (interface{}, []ctp.GraphQLError) {
		return map[string]interface{}{
			"orders": map[string]interface{}{
				"total":   1,
				"results": []map[string]interface{}{reportOrder("2026-08-01T09:00:00.000Z", 3600, items...)},
			},
		}, nil
	})
	svc := NewReportService(client, zap.NewNop())

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	summary, err := svc.Sales(context.Background(), "store-1", from, to, 3)
	require.NoError(t, err)
	require.Len(t, summary.TopProducts, 3)
	assert.Equal(t, int64(8), summary.TopProducts[0].Quantity)
}

func TestSalesRejectsInvertedRange(t *testing.T) {
	svc := NewReportService(nil, zap.NewNop())
	now := time.Now()
	_, err := svc.Sales(context.Background(), "store-1", now, now.Add(-time.Hour), 5)
	var verr *errors.ErrValidation
	require.ErrorAs(t, err, &verr)
}
