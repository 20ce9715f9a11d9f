package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/ctp"
	"github.com/uriel-reyes/sellertools-sub000/internal/domain"
	"github.com/uriel-reyes/sellertools-sub000/pkg/errors"
)

const reportPageSize = 100

// DailySales is one day's bucket in the sales report.
type DailySales struct {
	Date         string `json:"date"`
	OrderCount   int64  `json:"orderCount"`
	RevenueCents int64  `json:"revenueCents"`
}

// ProductSales aggregates one product's sold quantity and revenue.
type ProductSales struct {
	ProductID    string `json:"productId"`
	Name         string `json:"name"`
	SKU          string `json:"sku,omitempty"`
	Quantity     int64  `json:"quantity"`
	RevenueCents int64  `json:"revenueCents"`
}

// SalesSummary is the store's sales report over a date range.
type SalesSummary struct {
	StoreKey           string         `json:"storeKey"`
	From               time.Time      `json:"from"`
	To                 time.Time      `json:"to"`
	OrderCount         int64          `json:"orderCount"`
	RevenueCents       int64          `json:"revenueCents"`
	CurrencyCode       string         `json:"currencyCode"`
	AvgOrderValueCents int64          `json:"avgOrderValueCents"`
	Daily              []DailySales   `json:"daily"`
	TopProducts        []ProductSales `json:"topProducts"`
}

// ReportService aggregates store orders into sales reports. The platform has
// no aggregation API the console can use, so orders are paged through and
// summed here.
type ReportService struct {
	client *ctp.Client
	logger *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(client *ctp.Client, logger *zap.Logger) *ReportService {
	return &ReportService{client: client, logger: logger}
}

// Sales builds the store's sales summary for the date range.
func (s *ReportService) Sales(ctx context.Context, storeKey string, from, to time.Time, topN int) (*SalesSummary, error) {
	if !to.After(from) {
		return nil, &errors.ErrValidation{Message: "report range end must be after start"}
	}
	if topN <= 0 {
		topN = 5
	}

	where := fmt.Sprintf("%s and createdAt >= %q and createdAt <= %q",
		storeWhere(storeKey), from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))

	summary := &SalesSummary{StoreKey: storeKey, From: from, To: to, CurrencyCode: PriceCurrency}
	daily := make(map[string]*DailySales)
	products := make(map[string]*ProductSales)

	for offset := 0; ; offset += reportPageSize {
		orders, total, err := s.fetchReportPage(ctx, where, offset)
		if err != nil {
			return nil, err
		}
		for _, order := range orders {
			summary.OrderCount++
			summary.RevenueCents += order.TotalPrice.CentAmount
			if order.TotalPrice.CurrencyCode != "" {
				summary.CurrencyCode = order.TotalPrice.CurrencyCode
			}

			day := order.CreatedAt.UTC().Format("2006-01-02")
			bucket, ok := daily[day]
			if !ok {
				bucket = &DailySales{Date: day}
				daily[day] = bucket
			}
			bucket.OrderCount++
			bucket.RevenueCents += order.TotalPrice.CentAmount

			for _, li := range order.LineItems {
				entry, ok := products[li.ProductID]
				if !ok {
					entry = &ProductSales{ProductID: li.ProductID, Name: li.Name, SKU: li.SKU}
					products[li.ProductID] = entry
				}
				entry.Quantity += li.Quantity
				entry.RevenueCents += li.TotalPrice.CentAmount
			}
		}
		if int64(offset+reportPageSize) >= total {
			break
		}
	}

	if summary.OrderCount > 0 {
		summary.AvgOrderValueCents = summary.RevenueCents / summary.OrderCount
	}

	summary.Daily = make([]DailySales, 0, len(daily))
	for _, bucket := range daily {
		summary.Daily = append(summary.Daily, *bucket)
	}
	sort.Slice(summary.Daily, func(i, j int) bool { return summary.Daily[i].Date < summary.Daily[j].Date })

	summary.TopProducts = make([]ProductSales, 0, len(products))
	for _, entry := range products {
		summary.TopProducts = append(summary.TopProducts, *entry)
	}
	sort.Slice(summary.TopProducts, func(i, j int) bool {
		if summary.TopProducts[i].Quantity != summary.TopProducts[j].Quantity {
			return summary.TopProducts[i].Quantity > summary.TopProducts[j].Quantity
		}
		return summary.TopProducts[i].RevenueCents > summary.TopProducts[j].RevenueCents
	})
	if len(summary.TopProducts) > topN {
		summary.TopProducts = summary.TopProducts[:topN]
	}

	return summary, nil
}

func (s *ReportService) fetchReportPage(ctx context.Context, where string, offset int) ([]domain.Order, int64, error) {
	resp, err := s.client.Execute(ctx, ctp.ReportOrdersQuery, map[string]interface{}{
		"where":  where,
		"sort":   []string{"createdAt asc"},
		"limit":  reportPageSize,
		"offset": offset,
	})
	if err != nil {
		return nil, 0, &errors.ErrRemote{Operation: "report orders", Err: err}
	}

	var result struct {
		Orders struct {
			Total   int64 `json:"total"`
			Results []struct {
				orderFields
				LineItems []struct {
					ProductID string `json:"productId"`
					Name      string `json:"name"`
					Quantity  int64  `json:"quantity"`
					Variant   struct {
						SKU string `json:"sku"`
					} `json:"variant"`
					TotalPrice domain.Money `json:"totalPrice"`
				} `json:"lineItems"`
			} `json:"results"`
		} `json:"orders"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, 0, fmt.Errorf("failed to decode report orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(result.Orders.Results))
	for _, r := range result.Orders.Results {
		order := r.toDomain()
		for _, li := range r.LineItems {
			order.LineItems = append(order.LineItems, domain.LineItem{
				ProductID:  li.ProductID,
				Name:       li.Name,
				SKU:        li.Variant.SKU,
				Quantity:   li.Quantity,
				TotalPrice: li.TotalPrice,
			})
		}
		orders = append(orders, order)
	}
	return orders, result.Orders.Total, nil
}
