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

// OrderPage is one fetched page of store orders.
type OrderPage struct {
	Orders   []domain.Order `json:"orders"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PerPage  int            `json:"perPage"`
	StoreKey string         `json:"storeKey"`
}

type OrderService struct {
	client *ctp.Client
	logger *zap.Logger

	// Latest-wins guard: a page fetched for a store key the caller has
	// already navigated away from must not overwrite the newer snapshot.
	tracker  seq.Tracker
	mu       sync.Mutex
	snapshot *OrderPage
}

// NewOrderService creates a new order service
func NewOrderService(client *ctp.Client, logger *zap.Logger) *OrderService {
	return &OrderService{client: client, logger: logger}
}

// List fetches a page of orders scoped to the store, with server-side sort
// and offset pagination.
func (s *OrderService) List(ctx context.Context, storeKey string, opts ListOptions) (*OrderPage, error) {
	opts = opts.Normalize()
	token := s.tracker.Begin()

	resp, err := s.client.Execute(ctx, ctp.OrdersQuery, map[string]interface{}{
		"where":  storeWhere(storeKey),
		"sort":   []string{opts.SortClause()},
		"limit":  opts.PerPage,
		"offset": opts.Offset(),
	})
	if err != nil {
		return nil, &errors.ErrRemote{Operation: "orders", Err: err}
	}

	var result struct {
		Orders struct {
			Total   int64        `json:"total"`
			Results []orderFields `json:"results"`
		} `json:"orders"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
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

	s.mu.Lock()
	s.tracker.Commit(token, func() { s.snapshot = page })
	s.mu.Unlock()

	return page, nil
}

// Snapshot returns the most recently committed page, if any.
func (s *OrderService) Snapshot() *OrderPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Get fetches one order with line items for the detail view.
func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	resp, err := s.client.Execute(ctx, ctp.OrderByIDQuery, map[string]interface{}{"id": id})
	if err != nil {
		return nil, &errors.ErrRemote{Operation: "order", Err: err}
	}

	var result struct {
		Order *struct {
			orderFields
			LineItems []struct {
				ID        string `json:"id"`
				ProductID string `json:"productId"`
				Name      string `json:"name"`
				Quantity  int64  `json:"quantity"`
				Variant   struct {
					SKU string `json:"sku"`
				} `json:"variant"`
				TotalPrice domain.Money `json:"totalPrice"`
			} `json:"lineItems"`
		} `json:"order"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}
	if result.Order == nil {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id}
	}

	order := result.Order.toDomain()
	for _, li := range result.Order.LineItems {
		order.LineItems = append(order.LineItems, domain.LineItem{
			ID:         li.ID,
			ProductID:  li.ProductID,
			Name:       li.Name,
			SKU:        li.Variant.SKU,
			Quantity:   li.Quantity,
			TotalPrice: li.TotalPrice,
		})
	}
	return &order, nil
}

// ChangeOrderState changes the business order status, version-guarded.
func (s *OrderService) ChangeOrderState(ctx context.Context, id string, version int64, state domain.OrderState) (*domain.Order, error) {
	if !state.IsValid() {
		return nil, &errors.ErrValidation{Message: fmt.Sprintf("invalid order state %q", state)}
	}
	actions := []map[string]interface{}{
		{"changeOrderState": ctp.ChangeOrderStateAction{OrderState: string(state)}},
	}
	return s.update(ctx, id, version, actions)
}

// TransitionState moves the order's workflow state reference, version-guarded.
func (s *OrderService) TransitionState(ctx context.Context, id string, version int64, stateKey string) (*domain.Order, error) {
	if stateKey == "" {
		return nil, &errors.ErrValidation{Message: "state key is required"}
	}
	actions := []map[string]interface{}{
		{"transitionState": ctp.TransitionStateAction{State: ctp.StateResourceIdentifier{Key: stateKey}}},
	}
	return s.update(ctx, id, version, actions)
}

func (s *OrderService) update(ctx context.Context, id string, version int64, actions []map[string]interface{}) (*domain.Order, error) {
	resp, err := s.client.Execute(ctx, ctp.UpdateOrderMutation, map[string]interface{}{
		"id":      id,
		"version": version,
		"actions": actions,
	})
	if err != nil {
		return nil, remoteOrConflict("updateOrder", "order", id, version, err)
	}

	var result struct {
		UpdateOrder struct {
			ID         string            `json:"id"`
			Version    int64             `json:"version"`
			OrderState domain.OrderState `json:"orderState"`
			State      *domain.StateRef  `json:"state"`
		} `json:"updateOrder"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode order update: %w", err)
	}

	s.logger.Info("Order updated",
		zap.String("order_id", id),
		zap.Int64("version", result.UpdateOrder.Version),
		zap.String("order_state", string(result.UpdateOrder.OrderState)),
	)
	return &domain.Order{
		ID:         result.UpdateOrder.ID,
		Version:    result.UpdateOrder.Version,
		OrderState: result.UpdateOrder.OrderState,
		State:      result.UpdateOrder.State,
	}, nil
}

// orderFields is the shared slice of order fields the list and detail
// queries both return. Raw timestamps are kept; display formatting is a
// response-layer concern.
type orderFields struct {
	ID            string            `json:"id"`
	Version       int64             `json:"version"`
	OrderNumber   string            `json:"orderNumber"`
	CreatedAt     time.Time         `json:"createdAt"`
	OrderState    domain.OrderState `json:"orderState"`
	TotalPrice    domain.Money      `json:"totalPrice"`
	State         *domain.StateRef  `json:"state"`
	CustomerID    string            `json:"customerId"`
	CustomerEmail string            `json:"customerEmail"`
}

func (f orderFields) toDomain() domain.Order {
	return domain.Order{
		ID:            f.ID,
		Version:       f.Version,
		OrderNumber:   f.OrderNumber,
		CreatedAt:     f.CreatedAt,
		OrderState:    f.OrderState,
		TotalPrice:    f.TotalPrice,
		State:         f.State,
		CustomerID:    f.CustomerID,
		CustomerEmail: f.CustomerEmail,
	}
}
