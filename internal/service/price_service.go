package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/ctp"
	"github.com/uriel-reyes/sellertools-sub000/internal/domain"
	"github.com/uriel-reyes/sellertools-sub000/pkg/errors"
)

// PriceCurrency is the only currency this console manages prices in.
const PriceCurrency = "USD"

// CheckpointContainer is the platform custom-object container holding
// in-flight price workflows. Keeping them remote preserves the rule that this
// codebase owns no persistence.
const CheckpointContainer = "price-workflows"

// CheckpointStore persists price-workflow checkpoints just long enough to
// resume a run interrupted between the remove and add phases.
type CheckpointStore interface {
	Save(ctx context.Context, wf *domain.PriceWorkflow) error
	Get(ctx context.Context, id string) (*domain.PriceWorkflow, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.PriceWorkflow, error)
}

// UpdatePriceRequest is the target state for a variant's channel price.
type UpdatePriceRequest struct {
	ProductID string
	// ChannelKey scopes the price to the seller's store.
	ChannelKey string
	// Price is the new decimal price; it is converted to minor units by
	// rounding Price*100.
	Price float64
	// KnownPriceID optionally names the price to replace; when empty the
	// sequencer searches current then staged prices for the channel/USD pair.
	KnownPriceID string
}

// PriceService replaces a variant's channel price. The platform only supports
// independent add/remove price actions, so the sequence is remove+publish,
// settle, add+publish, verify - checkpointed at each phase so an interrupted
// run never strands the variant without a price for the channel.
type PriceService struct {
	client      *ctp.Client
	checkpoints CheckpointStore
	settleDelay time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	logger      *zap.Logger
}

// NewPriceService creates a new price service
func NewPriceService(client *ctp.Client, checkpoints CheckpointStore, settleDelay time.Duration, logger *zap.Logger) *PriceService {
	return &PriceService{
		client:      client,
		checkpoints: checkpoints,
		settleDelay: settleDelay,
		sleep:       sleepContext,
		logger:      logger,
	}
}

// SetSleepForTesting replaces the settle-delay sleep.
func (s *PriceService) SetSleepForTesting(sleep func(ctx context.Context, d time.Duration) error) {
	s.sleep = sleep
}

// UpdatePrice runs the full sequence and returns the committed workflow.
func (s *PriceService) UpdatePrice(ctx context.Context, req UpdatePriceRequest) (*domain.PriceWorkflow, error) {
	if req.Price <= 0 {
		return nil, &errors.ErrValidation{Message: "price must be greater than zero"}
	}

	version, variantID, existingID, err := s.locateExisting(ctx, req.ProductID, req.ChannelKey, req.KnownPriceID)
	if err != nil {
		return nil, err
	}

	wf := &domain.PriceWorkflow{
		ID:             uuid.New().String(),
		ProductID:      req.ProductID,
		VariantID:      variantID,
		ChannelKey:     req.ChannelKey,
		Currency:       PriceCurrency,
		CentAmount:     int64(math.Round(req.Price * 100)),
		State:          domain.PriceWorkflowPending,
		ProductVersion: version,
		RemovedPriceID: existingID,
		UpdatedAt:      time.Now(),
	}
	if err := s.checkpoints.Save(ctx, wf); err != nil {
		return nil, fmt.Errorf("failed to checkpoint price workflow: %w", err)
	}

	return s.run(ctx, wf, existingID != "")
}

// Resume picks up an interrupted workflow from its last checkpointed phase.
func (s *PriceService) Resume(ctx context.Context, workflowID string) (*domain.PriceWorkflow, error) {
	wf, err := s.checkpoints.Get(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if !wf.State.Resumable() {
		return nil, &errors.ErrValidation{Message: fmt.Sprintf("workflow %s is %s and cannot be resumed", wf.ID, wf.State)}
	}

	switch wf.State {
	case domain.PriceWorkflowPending:
		// Nothing mutated yet; re-locate the existing price in case the
		// product moved on since the checkpoint was written.
		version, variantID, existingID, err := s.locateExisting(ctx, wf.ProductID, wf.ChannelKey, "")
		if err != nil {
			return nil, err
		}
		wf.ProductVersion = version
		wf.VariantID = variantID
		wf.RemovedPriceID = existingID
		return s.run(ctx, wf, existingID != "")
	case domain.PriceWorkflowRemoved:
		if err := s.addPhase(ctx, wf); err != nil {
			return nil, err
		}
		return wf, s.verifyPhase(ctx, wf)
	case domain.PriceWorkflowAdded:
		return wf, s.verifyPhase(ctx, wf)
	default:
		return wf, nil
	}
}

// ListInterrupted returns the checkpoints still waiting on a resume.
func (s *PriceService) ListInterrupted(ctx context.Context) ([]domain.PriceWorkflow, error) {
	workflows, err := s.checkpoints.List(ctx)
	if err != nil {
		return nil, err
	}
	resumable := workflows[:0]
	for _, wf := range workflows {
		if wf.State.Resumable() {
			resumable = append(resumable, wf)
		}
	}
	return resumable, nil
}

func (s *PriceService) run(ctx context.Context, wf *domain.PriceWorkflow, hasExisting bool) (*domain.PriceWorkflow, error) {
	if hasExisting {
		if err := s.removePhase(ctx, wf); err != nil {
			return nil, err
		}
		// Give the platform time to settle the removal before the next
		// read-modify-write. This is a heuristic, not a guarantee; the
		// right interval depends on the platform's consistency behavior.
		if err := s.sleep(ctx, s.settleDelay); err != nil {
			return nil, err
		}
	} else {
		wf.State = domain.PriceWorkflowRemoved
		wf.UpdatedAt = time.Now()
		if err := s.checkpoints.Save(ctx, wf); err != nil {
			return nil, fmt.Errorf("failed to checkpoint price workflow: %w", err)
		}
	}

	if err := s.addPhase(ctx, wf); err != nil {
		return nil, err
	}
	if err := s.verifyPhase(ctx, wf); err != nil {
		return nil, err
	}
	return wf, nil
}

func (s *PriceService) removePhase(ctx context.Context, wf *domain.PriceWorkflow) error {
	actions := []map[string]interface{}{
		{"removePrice": ctp.RemovePriceAction{PriceID: wf.RemovedPriceID}},
		{"publish": ctp.PublishAction{}},
	}
	version, err := s.updateProduct(ctx, wf.ProductID, wf.ProductVersion, actions)
	if err != nil {
		return err
	}

	wf.State = domain.PriceWorkflowRemoved
	wf.ProductVersion = version
	wf.UpdatedAt = time.Now()
	if err := s.checkpoints.Save(ctx, wf); err != nil {
		return fmt.Errorf("failed to checkpoint removal: %w", err)
	}
	s.logger.Info("Price removed",
		zap.String("workflow_id", wf.ID),
		zap.String("product_id", wf.ProductID),
		zap.String("price_id", wf.RemovedPriceID),
	)
	return nil
}

func (s *PriceService) addPhase(ctx context.Context, wf *domain.PriceWorkflow) error {
	actions := []map[string]interface{}{
		{"addPrice": ctp.AddPriceAction{
			VariantID: wf.VariantID,
			Price: ctp.PriceDraftInput{
				Value:   ctp.MoneyInput{CentAmount: wf.CentAmount, CurrencyCode: wf.Currency},
				Channel: &ctp.ChannelResourceIdentifier{Key: wf.ChannelKey},
			},
		}},
		{"publish": ctp.PublishAction{}},
	}
	version, err := s.updateProduct(ctx, wf.ProductID, wf.ProductVersion, actions)
	if err != nil {
		return err
	}

	wf.State = domain.PriceWorkflowAdded
	wf.ProductVersion = version
	wf.UpdatedAt = time.Now()
	if err := s.checkpoints.Save(ctx, wf); err != nil {
		return fmt.Errorf("failed to checkpoint addition: %w", err)
	}
	s.logger.Info("Price added",
		zap.String("workflow_id", wf.ID),
		zap.String("product_id", wf.ProductID),
		zap.Int64("cent_amount", wf.CentAmount),
	)
	return nil
}

// verifyPhase re-fetches the product and confirms the invariant: exactly one
// price for the (channel, USD) pair, carrying the requested amount.
func (s *PriceService) verifyPhase(ctx context.Context, wf *domain.PriceWorkflow) error {
	_, _, current, _, err := s.fetchPrices(ctx, wf.ProductID)
	if err != nil {
		return err
	}

	var matches []domain.Price
	for _, p := range current {
		if p.ChannelKey == wf.ChannelKey && p.Value.CurrencyCode == wf.Currency {
			matches = append(matches, p)
		}
	}
	if len(matches) != 1 {
		return fmt.Errorf("expected exactly one %s price for channel %q after update, found %d",
			wf.Currency, wf.ChannelKey, len(matches))
	}
	if matches[0].Value.CentAmount != wf.CentAmount {
		return fmt.Errorf("price for channel %q is %d, expected %d",
			wf.ChannelKey, matches[0].Value.CentAmount, wf.CentAmount)
	}

	wf.State = domain.PriceWorkflowCommitted
	wf.UpdatedAt = time.Now()
	if err := s.checkpoints.Delete(ctx, wf.ID); err != nil {
		// The update itself succeeded; a leftover committed checkpoint is
		// only noise for the sweeper.
		s.logger.Warn("Failed to delete committed checkpoint", zap.String("workflow_id", wf.ID), zap.Error(err))
	}
	s.logger.Info("Price update committed",
		zap.String("workflow_id", wf.ID),
		zap.String("product_id", wf.ProductID),
		zap.String("channel_key", wf.ChannelKey),
	)
	return nil
}

// locateExisting re-fetches the product's prices and finds the price to
// replace. Current prices are searched first, then staged: an edited but
// unpublished price only exists in staged.
func (s *PriceService) locateExisting(ctx context.Context, productID, channelKey, knownPriceID string) (version int64, variantID int64, priceID string, err error) {
	version, variantID, current, staged, err := s.fetchPrices(ctx, productID)
	if err != nil {
		return 0, 0, "", err
	}
	if knownPriceID != "" {
		return version, variantID, knownPriceID, nil
	}
	for _, p := range current {
		if p.ChannelKey == channelKey && p.Value.CurrencyCode == PriceCurrency {
			return version, variantID, p.ID, nil
		}
	}
	for _, p := range staged {
		if p.ChannelKey == channelKey && p.Value.CurrencyCode == PriceCurrency {
			return version, variantID, p.ID, nil
		}
	}
	return version, variantID, "", nil
}

func (s *PriceService) fetchPrices(ctx context.Context, productID string) (version int64, variantID int64, current, staged []domain.Price, err error) {
	resp, execErr := s.client.Execute(ctx, ctp.ProductPricesQuery, map[string]interface{}{"id": productID})
	if execErr != nil {
		return 0, 0, nil, nil, &errors.ErrRemote{Operation: "productPrices", Err: execErr}
	}

	var result struct {
		Product *struct {
			ID         string `json:"id"`
			Version    int64  `json:"version"`
			MasterData struct {
				Current struct {
					MasterVariant variantFields `json:"masterVariant"`
				} `json:"current"`
				Staged struct {
					MasterVariant variantFields `json:"masterVariant"`
				} `json:"staged"`
			} `json:"masterData"`
		} `json:"product"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return 0, 0, nil, nil, fmt.Errorf("failed to decode product prices: %w", err)
	}
	if result.Product == nil {
		return 0, 0, nil, nil, &errors.ErrNotFound{Resource: "product", ID: productID}
	}

	currentVariant := result.Product.MasterData.Current.MasterVariant.toDomain()
	stagedVariant := result.Product.MasterData.Staged.MasterVariant.toDomain()
	return result.Product.Version, currentVariant.ID, currentVariant.Prices, stagedVariant.Prices, nil
}

func (s *PriceService) updateProduct(ctx context.Context, id string, version int64, actions []map[string]interface{}) (int64, error) {
	resp, err := s.client.Execute(ctx, ctp.UpdateProductMutation, map[string]interface{}{
		"id":      id,
		"version": version,
		"actions": actions,
	})
	if err != nil {
		return 0, remoteOrConflict("updateProduct", "product", id, version, err)
	}

	var result struct {
		UpdateProduct struct {
			ID      string `json:"id"`
			Version int64  `json:"version"`
		} `json:"updateProduct"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return 0, fmt.Errorf("failed to decode product update: %w", err)
	}
	return result.UpdateProduct.Version, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// MemoryCheckpointStore keeps checkpoints in process memory. Used by tests
// and as a fallback when no remote container is configured.
type MemoryCheckpointStore struct {
	mu        sync.Mutex
	workflows map[string]domain.PriceWorkflow
}

func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{workflows: make(map[string]domain.PriceWorkflow)}
}

func (m *MemoryCheckpointStore) Save(_ context.Context, wf *domain.PriceWorkflow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workflows[wf.ID] = *wf
	return nil
}

func (m *MemoryCheckpointStore) Get(_ context.Context, id string) (*domain.PriceWorkflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wf, ok := m.workflows[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "price workflow", ID: id}
	}
	return &wf, nil
}

func (m *MemoryCheckpointStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.workflows, id)
	return nil
}

func (m *MemoryCheckpointStore) List(_ context.Context) ([]domain.PriceWorkflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.PriceWorkflow, 0, len(m.workflows))
	for _, wf := range m.workflows {
		out = append(out, wf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}
