package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/ctp"
	"github.com/uriel-reyes/sellertools-sub000/internal/domain"
	"github.com/uriel-reyes/sellertools-sub000/pkg/errors"
)

// fakeVariantPrice is one price row held by the fake product below.
type fakeVariantPrice struct {
	ID         string
	ChannelKey string
	CentAmount int64
	Currency   string
}

// fakeProduct emulates the platform's product price state: an action list
// mutates it, the prices query reads it back, and every successful update
// bumps the version.
type fakeProduct struct {
	mu      sync.Mutex
	version int64
	current []fakeVariantPrice

	updateCalls int
}

func (f *fakeProduct) handle(t *testing.T, query string, vars map[string]interface{}) (interface{}, []ctp.GraphQLError) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.Contains(query, "query productPrices"):
		return f.pricesPayload(), nil
	case strings.Contains(query, "mutation updateProduct"):
		f.updateCalls++
		version := int64(vars["version"].(float64))
		if version != f.version {
			return nil, concurrentModification()
		}
		f.applyActions(t, vars["actions"].([]interface{}))
		f.version++
		return map[string]interface{}{
			"updateProduct": map[string]interface{}{"id": "prod-1", "version": f.version},
		}, nil
	default:
		t.Fatalf("unexpected query: %s", query)
		return nil, nil
	}
}

func (f *fakeProduct) applyActions(t *testing.T, actions []interface{}) {
	t.Helper()
	for _, raw := range actions {
		action := raw.(map[string]interface{})
		if rp, ok := action["removePrice"]; ok {
			priceID := rp.(map[string]interface{})["priceId"].(string)
			kept := f.current[:0]
			for _, p := range f.current {
				if p.ID != priceID {
					kept = append(kept, p)
				}
			}
			f.current = kept
		}
		if ap, ok := action["addPrice"]; ok {
			price := ap.(map[string]interface{})["price"].(map[string]interface{})
			value := price["value"].(map[string]interface{})
			entry := fakeVariantPrice{
				ID:         fmt.Sprintf("price-%d", len(f.current)+100),
				CentAmount: int64(value["centAmount"].(float64)),
				Currency:   value["currencyCode"].(string),
			}
			if ch, ok := price["channel"].(map[string]interface{}); ok {
				entry.ChannelKey = ch["key"].(string)
			}
			f.current = append(f.current, entry)
		}
	}
}

func (f *fakeProduct) pricesPayload() interface{} {
	prices := make([]map[string]interface{}, 0, len(f.current))
	for _, p := range f.current {
		row := map[string]interface{}{
			"id":    p.ID,
			"value": map[string]interface{}{"centAmount": p.CentAmount, "currencyCode": p.Currency},
		}
		if p.ChannelKey != "" {
			row["channel"] = map[string]interface{}{"key": p.ChannelKey}
		}
		prices = append(prices, row)
	}
	variant := map[string]interface{}{"id": 1, "sku": "SKU-1", "prices": prices}
	return map[string]interface{}{
		"product": map[string]interface{}{
			"id":      "prod-1",
			"version": f.version,
			"masterData": map[string]interface{}{
				"current": map[string]interface{}{"masterVariant": variant},
				"staged":  map[string]interface{}{"masterVariant": variant},
			},
		},
	}
}

func newTestPriceService(t *testing.T, product *fakeProduct) (*PriceService, *MemoryCheckpointStore) {
	t.Helper()
	client := newStubClient(t, func(query string, vars map[string]interface{}) (interface{}, []ctp.GraphQLError) {
		return product.handle(t, query, vars)
	})
	store := NewMemoryCheckpointStore()
	svc := NewPriceService(client, store, time.Millisecond, zap.NewNop())
	svc.SetSleepForTesting(func(context.Context, time.Duration) error { return nil })
	return svc, store
}

func TestUpdatePriceReplacesExistingChannelPrice(t *testing.T) {
	product := &fakeProduct{
		version: 3,
		current: []fakeVariantPrice{
			{ID: "price-old", ChannelKey: "store-1", CentAmount: 999, Currency: "USD"},
			{ID: "price-other", ChannelKey: "store-2", CentAmount: 500, Currency: "USD"},
		},
	}
	svc, store := newTestPriceService(t, product)

	wf, err := svc.UpdatePrice(context.Background(), UpdatePriceRequest{
		ProductID:  "prod-1",
		ChannelKey: "store-1",
		Price:      12.49,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PriceWorkflowCommitted, wf.State)
	assert.Equal(t, int64(1249), wf.CentAmount)

	// Exactly one USD price for the channel, and the other channel untouched.
	var mine, others int
	for _, p := range product.current {
		switch p.ChannelKey {
		case "store-1":
			mine++
			assert.Equal(t, int64(1249), p.CentAmount)
		case "store-2":
			others++
			assert.Equal(t, int64(500), p.CentAmount)
		}
	}
	assert.Equal(t, 1, mine)
	assert.Equal(t, 1, others)

	// Committed workflows leave no checkpoint behind.
	remaining, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestUpdatePriceAddsWhenNoExistingPrice(t *testing.T) {
	product := &fakeProduct{version: 1}
	svc, _ := newTestPriceService(t, product)

	wf, err := svc.UpdatePrice(context.Background(), UpdatePriceRequest{
		ProductID:  "prod-1",
		ChannelKey: "store-1",
		Price:      5,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PriceWorkflowCommitted, wf.State)
	require.Len(t, product.current, 1)
	assert.Equal(t, int64(500), product.current[0].CentAmount)
	assert.Equal(t, "store-1", product.current[0].ChannelKey)
}

func TestUpdatePriceRoundsToMinorUnits(t *testing.T) {
	product := &fakeProduct{version: 1}
	svc, _ := newTestPriceService(t, product)

	// 19.995 * 100 is 1999.4999... in float64; rounding must still yield 2000.
	wf, err := svc.UpdatePrice(context.Background(), UpdatePriceRequest{
		ProductID:  "prod-1",
		ChannelKey: "store-1",
		Price:      19.995,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), wf.CentAmount)
}

func TestUpdatePriceRejectsNonPositive(t *testing.T) {
	svc, _ := newTestPriceService(t, &fakeProduct{version: 1})

	_, err := svc.UpdatePrice(context.Background(), UpdatePriceRequest{
		ProductID:  "prod-1",
		ChannelKey: "store-1",
		Price:      0,
	})
	var verr *errors.ErrValidation
	require.ErrorAs(t, err, &verr)
}

func TestResumeAfterFailureBetweenPhases(t *testing.T) {
	product := &fakeProduct{
		version: 2,
		current: []fakeVariantPrice{
			{ID: "price-old", ChannelKey: "store-1", CentAmount: 999, Currency: "USD"},
		},
	}
	svc, store := newTestPriceService(t, product)

	// First update removes the old price, then dies on the add.
	client := newStubClient(t, func(query string, vars map[string]interface{}) (interface{}, []ctp.GraphQLError) {
		if strings.Contains(query, "mutation updateProduct") && product.updateCalls == 1 {
			product.mu.Lock()
			product.updateCalls++
			product.mu.Unlock()
			return nil, []ctp.GraphQLError{{Message: "connection reset"}}
		}
		return product.handle(t, query, vars)
	})
	failing := NewPriceService(client, store, time.Millisecond, zap.NewNop())
	failing.SetSleepForTesting(func(context.Context, time.Duration) error { return nil })

	_, err := failing.UpdatePrice(context.Background(), UpdatePriceRequest{
		ProductID:  "prod-1",
		ChannelKey: "store-1",
		Price:      20,
	})
	require.Error(t, err)

	// The checkpoint recorded the completed removal, so the variant is
	// currently without a price for the channel.
	interrupted, err := svc.ListInterrupted(context.Background())
	require.NoError(t, err)
	require.Len(t, interrupted, 1)
	assert.Equal(t, domain.PriceWorkflowRemoved, interrupted[0].State)
	assert.Empty(t, product.current)

	// Resume finishes the add and verify phases.
	wf, err := svc.Resume(context.Background(), interrupted[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PriceWorkflowCommitted, wf.State)
	require.Len(t, product.current, 1)
	assert.Equal(t, int64(2000), product.current[0].CentAmount)

	remaining, err := svc.ListInterrupted(context.Background())
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestResumePendingRelocatesPrice(t *testing.T) {
	product := &fakeProduct{
		version: 5,
		current: []fakeVariantPrice{
			{ID: "price-old", ChannelKey: "store-1", CentAmount: 999, Currency: "USD"},
		},
	}
	svc, store := newTestPriceService(t, product)

	wf := &domain.PriceWorkflow{
		ID:         "wf-pending",
		ProductID:  "prod-1",
		ChannelKey: "store-1",
		Currency:   "USD",
		CentAmount: 1500,
		State:      domain.PriceWorkflowPending,
		// Stale version on purpose; PENDING resumes must re-read everything.
		ProductVersion: 1,
		UpdatedAt:      time.Now().Add(-time.Hour),
	}
	require.NoError(t, store.Save(context.Background(), wf))

	resumed, err := svc.Resume(context.Background(), "wf-pending")
	require.NoError(t, err)
	assert.Equal(t, domain.PriceWorkflowCommitted, resumed.State)
	require.Len(t, product.current, 1)
	assert.Equal(t, int64(1500), product.current[0].CentAmount)
}

func TestResumeRejectsCommittedWorkflow(t *testing.T) {
	svc, store := newTestPriceService(t, &fakeProduct{version: 1})

	wf := &domain.PriceWorkflow{ID: "wf-done", State: domain.PriceWorkflowCommitted, UpdatedAt: time.Now()}
	require.NoError(t, store.Save(context.Background(), wf))

	_, err := svc.Resume(context.Background(), "wf-done")
	var verr *errors.ErrValidation
	require.ErrorAs(t, err, &verr)
}

func TestUpdatePriceStaleVersionSurfacesConflict(t *testing.T) {
	product := &fakeProduct{
		version: 4,
		current: []fakeVariantPrice{
			{ID: "price-old", ChannelKey: "store-1", CentAmount: 999, Currency: "USD"},
		},
	}
	client := newStubClient(t, func(query string, vars map[string]interface{}) (interface{}, []ctp.GraphQLError) {
		if strings.Contains(query, "mutation updateProduct") {
			return nil, concurrentModification()
		}
		return product.handle(t, query, vars)
	})
	svc := NewPriceService(client, NewMemoryCheckpointStore(), time.Millisecond, zap.NewNop())
	svc.SetSleepForTesting(func(context.Context, time.Duration) error { return nil })

	_, err := svc.UpdatePrice(context.Background(), UpdatePriceRequest{
		ProductID:  "prod-1",
		ChannelKey: "store-1",
		Price:      10,
	})
	var conflict *errors.ErrVersionConflict
	require.ErrorAs(t, err, &conflict)
}
