package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/ctp"
	"github.com/uriel-reyes/sellertools-sub000/internal/domain"
	"github.com/uriel-reyes/sellertools-sub000/internal/seq"
	"github.com/uriel-reyes/sellertools-sub000/pkg/errors"
)

// CustomerPage is one fetched page of store customers.
type CustomerPage struct {
	Customers []domain.Customer `json:"customers"`
	Total     int64             `json:"total"`
	Page      int               `json:"page"`
	PerPage   int               `json:"perPage"`
	StoreKey  string            `json:"storeKey"`
}

// CustomerService reads store customers. Customers are never mutated here;
// the console only displays them and cross-references their orders.
type CustomerService struct {
	client *ctp.Client
	logger *zap.Logger

	tracker  seq.Tracker
	mu       sync.Mutex
	snapshot *CustomerPage
}

// NewCustomerService creates a new customer service
func NewCustomerService(client *ctp.Client, logger *zap.Logger) *CustomerService {
	return &CustomerService{client: client, logger: logger}
}

// List fetches a page of customers belonging to the store.
func (s *CustomerService) List(ctx context.Context, storeKey string, opts ListOptions) (*CustomerPage, error) {
	opts = opts.Normalize()
	token := s.tracker.Begin()

	resp, err := s.client.Execute(ctx, ctp.CustomersQuery, map[string]interface{}{
		"where":  storeWhere(storeKey),
		"sort":   []string{opts.SortClause()},
		"limit":  opts.PerPage,
		"offset": opts.Offset(),
	})
	if err != nil {
		return nil, &errors.ErrRemote{Operation: "customers", Err: err}
	}

	var result struct {
		Customers struct {
			Total   int64 `json:"total"`
			Results []struct {
				ID            string                   `json:"id"`
				Version       int64                    `json:"version"`
				Email         string                   `json:"email"`
				FirstName     string                   `json:"firstName"`
				LastName      string                   `json:"lastName"`
				CreatedAt     time.Time                `json:"createdAt"`
				CustomerGroup *domain.CustomerGroupRef `json:"customerGroup"`
			} `json:"results"`
		} `json:"customers"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode customers: %w", err)
	}

	page := &CustomerPage{
		Customers: make([]domain.Customer, 0, len(result.Customers.Results)),
		Total:     result.Customers.Total,
		Page:      opts.Page,
		PerPage:   opts.PerPage,
		StoreKey:  storeKey,
	}
	for _, r := range result.Customers.Results {
		page.Customers = append(page.Customers, domain.Customer{
			ID:            r.ID,
			Version:       r.Version,
			Email:         r.Email,
			FirstName:     r.FirstName,
			LastName:      r.LastName,
			CreatedAt:     r.CreatedAt,
			CustomerGroup: r.CustomerGroup,
		})
	}

	s.mu.Lock()
	s.tracker.Commit(token, func() { s.snapshot = page })
	s.mu.Unlock()

	return page, nil
}

// Snapshot returns the most recently committed page, if any.
func (s *CustomerService) Snapshot() *CustomerPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Get fetches one customer with addresses and custom fields.
func (s *CustomerService) Get(ctx context.Context, id string) (*domain.Customer, error) {
	resp, err := s.client.Execute(ctx, ctp.CustomerByIDQuery, map[string]interface{}{"id": id})
	if err != nil {
		return nil, &errors.ErrRemote{Operation: "customer", Err: err}
	}

	var result struct {
		Customer *struct {
			ID            string                   `json:"id"`
			Version       int64                    `json:"version"`
			Email         string                   `json:"email"`
			FirstName     string                   `json:"firstName"`
			LastName      string                   `json:"lastName"`
			CreatedAt     time.Time                `json:"createdAt"`
			CustomerGroup *domain.CustomerGroupRef `json:"customerGroup"`
			Addresses     []domain.Address         `json:"addresses"`
			Custom        *struct {
				CustomFieldsRaw []struct {
					Name  string          `json:"name"`
					Value json.RawMessage `json:"value"`
				} `json:"customFieldsRaw"`
			} `json:"custom"`
		} `json:"customer"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode customer: %w", err)
	}
	if result.Customer == nil {
		return nil, &errors.ErrNotFound{Resource: "customer", ID: id}
	}

	r := result.Customer
	customer := &domain.Customer{
		ID:            r.ID,
		Version:       r.Version,
		Email:         r.Email,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		CreatedAt:     r.CreatedAt,
		CustomerGroup: r.CustomerGroup,
		Addresses:     r.Addresses,
	}
	if r.Custom != nil {
		for _, field := range r.Custom.CustomFieldsRaw {
			var value any
			_ = json.Unmarshal(field.Value, &value)
			customer.CustomFields = append(customer.CustomFields, domain.CustomField{Name: field.Name, Value: value})
		}
	}
	return customer, nil
}

// Orders cross-references the customer's orders within the store.
func (s *CustomerService) Orders(ctx context.Context, storeKey, customerID string, opts ListOptions) (*OrderPage, error) {
	opts = opts.Normalize()
	resp, err := s.client.Execute(ctx, ctp.OrdersQuery, map[string]interface{}{
		"where":  fmt.Sprintf("%s and customerId=%q", storeWhere(storeKey), customerID),
		"sort":   []string{opts.SortClause()},
		"limit":  opts.PerPage,
		"offset": opts.Offset(),
	})
	if err != nil {
		return nil, &errors.ErrRemote{Operation: "customer orders", Err: err}
	}

	var result struct {
		Orders struct {
			Total   int64         `json:"total"`
			Results []orderFields `json:"results"`
		} `json:"orders"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode customer orders: %w", err)
	}

	page := &OrderPage{
		Orders:   make([]domain.Order, 0, len(result.Orders.Results)),
		Total:    result.Orders.Total,
		Page:     opts.Page,
		PerPage:  opts.PerPage,
		StoreKey: storeKey,
	}
	for _, r := range result.Orders.Results {
		page.Orders = append(page.Orders, r.toDomain())
	}
	return page, nil
}
