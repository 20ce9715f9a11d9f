package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/ctp"
	"github.com/uriel-reyes/sellertools-sub000/internal/domain"
	"github.com/uriel-reyes/sellertools-sub000/pkg/errors"
)

func TestListOrdersScopesToStore(t *testing.T) {
	var gotWhere string
	var gotSort []interface{}
	client := newStubClient(t, func(query string, vars map[string]interface{}) (interface{}, []ctp.GraphQLError) {
		require.Contains(t, query, "query storeOrders")
		gotWhere = vars["where"].(string)
		gotSort = vars["sort"].([]interface{})
		return map[string]interface{}{
			"orders": map[string]interface{}{
				"total": 1,
				"results": []map[string]interface{}{{
					"id": "order-1", "version": 2, "orderNumber": "1001",
					"createdAt":  "2026-08-01T10:00:00.000Z",
					"orderState": "Open",
					"totalPrice": map[string]interface{}{"centAmount": 4999, "currencyCode": "USD"},
				}},
			},
		}, nil
	})
	svc := NewOrderService(client, zap.NewNop())

	page, err := svc.List(context.Background(), "store-1", ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, `store(key="store-1")`, gotWhere)
	require.Len(t, gotSort, 1)
	assert.Equal(t, "createdAt desc", gotSort[0])
	require.Len(t, page.Orders, 1)
	assert.Equal(t, domain.OrderStateOpen, page.Orders[0].OrderState)
	assert.Equal(t, int64(4999), page.Orders[0].TotalPrice.CentAmount)
	assert.Equal(t, "store-1", page.StoreKey)

	// The committed snapshot matches what List returned.
	assert.Equal(t, page, svc.Snapshot())
}

func TestGetOrderNotFound(t *testing.T) {
	client := newStubClient(t, func(string, map[string]interface{}) (interface{}, []ctp.GraphQLError) {
		return map[string]interface{}{"order": nil}, nil
	})
	svc := NewOrderService(client, zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	var nf *errors.ErrNotFound
	require.ErrorAs(t, err, &nf)
}

func TestChangeOrderStateSendsAction(t *testing.T) {
	var gotActions []interface{}
	client := newStubClient(t, func(query string, vars map[string]interface{}) (interface{}, []ctp.GraphQLError) {
		require.Contains(t, query, "mutation updateOrder")
		assert.Equal(t, float64(3), vars["version"])
		gotActions = vars["actions"].([]interface{})
		return map[string]interface{}{
			"updateOrder": map[string]interface{}{"id": "order-1", "version": 4, "orderState": "Confirmed"},
		}, nil
	})
	svc := NewOrderService(client, zap.NewNop())

	order, err := svc.ChangeOrderState(context.Background(), "order-1", 3, domain.OrderStateConfirmed)
	require.NoError(t, err)
	assert.Equal(t, int64(4), order.Version)
	assert.Equal(t, domain.OrderStateConfirmed, order.OrderState)

	require.Len(t, gotActions, 1)
	action := gotActions[0].(map[string]interface{})["changeOrderState"].(map[string]interface{})
	assert.Equal(t, "Confirmed", action["orderState"])
}

func TestChangeOrderStateRejectsUnknownState(t *testing.T) {
	svc := NewOrderService(nil, zap.NewNop())
	_, err := svc.ChangeOrderState(context.Background(), "order-1", 3, domain.OrderState("Shipped"))
	var verr *errors.ErrValidation
	require.ErrorAs(t, err, &verr)
}

func TestTransitionStateSendsStateKey(t *testing.T) {
	var gotActions []interface{}
	client := newStubClient(t, func(query string, vars map[string]interface{}) (interface{}, []ctp.GraphQLError) {
		gotActions = vars["actions"].([]interface{})
		return map[string]interface{}{
			"updateOrder": map[string]interface{}{
				"id": "order-1", "version": 5, "orderState": "Open",
				"state": map[string]interface{}{"id": "state-1", "key": "packed", "name": "Packed"},
			},
		}, nil
	})
	svc := NewOrderService(client, zap.NewNop())

	order, err := svc.TransitionState(context.Background(), "order-1", 4, "packed")
	require.NoError(t, err)
	require.NotNil(t, order.State)
	assert.Equal(t, "packed", order.State.Key)

	action := gotActions[0].(map[string]interface{})["transitionState"].(map[string]interface{})
	state := action["state"].(map[string]interface{})
	assert.Equal(t, "packed", state["key"])
}

func TestTransitionStateRequiresKey(t *testing.T) {
	svc := NewOrderService(nil, zap.NewNop())
	_, err := svc.TransitionState(context.Background(), "order-1", 4, "")
	var verr *errors.ErrValidation
	require.ErrorAs(t, err, &verr)
}

func TestOrderUpdateStaleVersionConflict(t *testing.T) {
	client := newStubClient(t, func(query string, vars map[string]interface{}) (interface{}, []ctp.GraphQLError) {
		if strings.Contains(query, "mutation updateOrder") {
			return nil, concurrentModification()
		}
		return nil, nil
	})
	svc := NewOrderService(client, zap.NewNop())

	_, err := svc.ChangeOrderState(context.Background(), "order-1", 2, domain.OrderStateComplete)
	var conflict *errors.ErrVersionConflict
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(2), conflict.Version)
}
