package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/ctp"
	"github.com/uriel-reyes/sellertools-sub000/internal/domain"
	"github.com/uriel-reyes/sellertools-sub000/internal/predicate"
	"github.com/uriel-reyes/sellertools-sub000/pkg/errors"
)

const promotionLocale = "en-US"

// PromotionInput is the console-level promotion form.
type PromotionInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
	// ApplyTo is "all" or "conditions".
	ApplyTo    string                `json:"applyTo"`
	Conditions []predicate.Condition `json:"conditions"`
	// ValueType is "percentage" or "absolute".
	ValueType     string  `json:"valueType"`
	DiscountValue float64 `json:"discountValue"`
	CurrencyCode  string  `json:"currencyCode"`
	SortOrder     string  `json:"sortOrder"`
}

// PromotionForEdit is a promotion plus its predicate parsed back into
// conditions. Fragments outside the known grammar come back tagged
// Unsupported so the edit form can refuse or show them rather than lose them.
type PromotionForEdit struct {
	Promotion  domain.Promotion      `json:"promotion"`
	ChannelKey string                `json:"channelKey"`
	Conditions []predicate.Condition `json:"conditions"`
	// Editable is false when any fragment is unsupported; saving the form
	// would rewrite the predicate and drop those clauses.
	Editable bool `json:"editable"`
}

type PromotionService struct {
	client *ctp.Client
	logger *zap.Logger
}

// NewPromotionService creates a new promotion service
func NewPromotionService(client *ctp.Client, logger *zap.Logger) *PromotionService {
	return &PromotionService{client: client, logger: logger}
}

// ValidateSortOrder enforces the form-layer invariant the platform API does
// not: the sort order must be a decimal strictly between 0 and 1.
func ValidateSortOrder(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return &errors.ErrValidation{
			Message: "sort order must be a number",
			Fields:  map[string]string{"sortOrder": "not a number"},
		}
	}
	if v <= 0 || v >= 1 {
		return &errors.ErrValidation{
			Message: "sort order must be a decimal between 0 and 1",
			Fields:  map[string]string{"sortOrder": "out of range"},
		}
	}
	return nil
}

// BuildValue converts the form's discount value into the platform value
// shape: percentages become permyriad (15% -> 1500), absolute amounts become
// minor units (12.50 -> 1250).
func BuildValue(input PromotionInput) (ctp.CartDiscountValueInput, error) {
	switch input.ValueType {
	case "percentage":
		return ctp.CartDiscountValueInput{
			Relative: &ctp.RelativeValueInput{Permyriad: int64(math.Round(input.DiscountValue * 100))},
		}, nil
	case "absolute":
		currency := input.CurrencyCode
		if currency == "" {
			currency = PriceCurrency
		}
		return ctp.CartDiscountValueInput{
			Absolute: &ctp.AbsoluteValueInput{
				Money: []ctp.MoneyInput{{
					CentAmount:   int64(math.Round(input.DiscountValue * 100)),
					CurrencyCode: currency,
				}},
			},
		}, nil
	default:
		return ctp.CartDiscountValueInput{}, &errors.ErrValidation{
			Message: fmt.Sprintf("unknown value type %q", input.ValueType),
		}
	}
}

// buildPredicate renders the form's conditions into the platform predicate.
// "apply to all" yields the bare channel clause.
func buildPredicate(channelKey string, input PromotionInput) (string, error) {
	if input.ApplyTo == "all" {
		return predicate.Build(channelKey, nil)
	}
	return predicate.Build(channelKey, input.Conditions)
}

// Create creates a store-scoped cart discount.
func (s *PromotionService) Create(ctx context.Context, channelKey string, input PromotionInput) (*domain.Promotion, error) {
	if input.Name == "" {
		return nil, &errors.ErrValidation{Message: "name is required"}
	}
	if err := ValidateSortOrder(input.SortOrder); err != nil {
		return nil, err
	}
	value, err := BuildValue(input)
	if err != nil {
		return nil, err
	}
	pred, err := buildPredicate(channelKey, input)
	if err != nil {
		return nil, err
	}

	draft := ctp.CartDiscountDraft{
		Name:          []ctp.LocalizedStringInput{{Locale: promotionLocale, Value: input.Name}},
		CartPredicate: pred,
		Target: &ctp.CartDiscountTargetInput{
			LineItems: &ctp.LineItemsTargetInput{Predicate: "1 = 1"},
		},
		Value:     value,
		SortOrder: input.SortOrder,
		IsActive:  input.IsActive,
	}
	if input.Description != "" {
		draft.Description = []ctp.LocalizedStringInput{{Locale: promotionLocale, Value: input.Description}}
	}

	resp, err := s.client.Execute(ctx, ctp.CreateCartDiscountMutation, map[string]interface{}{"draft": draft})
	if err != nil {
		return nil, &errors.ErrRemote{Operation: "createCartDiscount", Err: err}
	}

	var result struct {
		CreateCartDiscount struct {
			ID            string `json:"id"`
			Version       int64  `json:"version"`
			CartPredicate string `json:"cartPredicate"`
			SortOrder     string `json:"sortOrder"`
		} `json:"createCartDiscount"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode cart discount create: %w", err)
	}

	s.logger.Info("Promotion created",
		zap.String("promotion_id", result.CreateCartDiscount.ID),
		zap.String("channel_key", channelKey),
	)
	return &domain.Promotion{
		ID:        result.CreateCartDiscount.ID,
		Version:   result.CreateCartDiscount.Version,
		Name:      input.Name,
		Predicate: result.CreateCartDiscount.CartPredicate,
		SortOrder: result.CreateCartDiscount.SortOrder,
		IsActive:  input.IsActive,
	}, nil
}

// Update rewrites a promotion from the form state, version-guarded.
func (s *PromotionService) Update(ctx context.Context, id string, version int64, channelKey string, input PromotionInput) (int64, error) {
	if err := ValidateSortOrder(input.SortOrder); err != nil {
		return 0, err
	}
	value, err := BuildValue(input)
	if err != nil {
		return 0, err
	}
	pred, err := buildPredicate(channelKey, input)
	if err != nil {
		return 0, err
	}

	actions := []map[string]interface{}{
		{"changeName": map[string]interface{}{
			"name": []ctp.LocalizedStringInput{{Locale: promotionLocale, Value: input.Name}},
		}},
		{"setDescription": map[string]interface{}{
			"description": []ctp.LocalizedStringInput{{Locale: promotionLocale, Value: input.Description}},
		}},
		{"changeCartPredicate": map[string]interface{}{"cartPredicate": pred}},
		{"changeValue": map[string]interface{}{"value": value}},
		{"changeSortOrder": map[string]interface{}{"sortOrder": input.SortOrder}},
		{"changeIsActive": map[string]interface{}{"isActive": input.IsActive}},
	}

	resp, err := s.client.Execute(ctx, ctp.UpdateCartDiscountMutation, map[string]interface{}{
		"id":      id,
		"version": version,
		"actions": actions,
	})
	if err != nil {
		return 0, remoteOrConflict("updateCartDiscount", "promotion", id, version, err)
	}

	var result struct {
		UpdateCartDiscount struct {
			ID      string `json:"id"`
			Version int64  `json:"version"`
		} `json:"updateCartDiscount"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return 0, fmt.Errorf("failed to decode cart discount update: %w", err)
	}
	return result.UpdateCartDiscount.Version, nil
}

// Delete removes a promotion, version-guarded.
func (s *PromotionService) Delete(ctx context.Context, id string, version int64) error {
	_, err := s.client.Execute(ctx, ctp.DeleteCartDiscountMutation, map[string]interface{}{
		"id":      id,
		"version": version,
	})
	if err != nil {
		return remoteOrConflict("deleteCartDiscount", "promotion", id, version, err)
	}
	s.logger.Info("Promotion deleted", zap.String("promotion_id", id))
	return nil
}

// List fetches promotions and keeps only those whose predicate targets the
// store's channel. The platform's where grammar cannot match inside the
// predicate text, so the channel filter is applied here.
func (s *PromotionService) List(ctx context.Context, channelKey string, opts ListOptions) ([]domain.Promotion, error) {
	opts = opts.Normalize()
	resp, err := s.client.Execute(ctx, ctp.CartDiscountsQuery, map[string]interface{}{
		"sort":   []string{"createdAt desc"},
		"limit":  maxPerPage,
		"offset": 0,
	})
	if err != nil {
		return nil, &errors.ErrRemote{Operation: "cartDiscounts", Err: err}
	}

	var result struct {
		CartDiscounts struct {
			Total   int64                `json:"total"`
			Results []cartDiscountFields `json:"results"`
		} `json:"cartDiscounts"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode cart discounts: %w", err)
	}

	var promotions []domain.Promotion
	for _, r := range result.CartDiscounts.Results {
		promo := r.toDomain()
		if predicate.Parse(promo.Predicate).ChannelKey == channelKey {
			promotions = append(promotions, promo)
		}
	}

	// Client-side pagination over the filtered set.
	start := opts.Offset()
	if start >= len(promotions) {
		return []domain.Promotion{}, nil
	}
	end := start + opts.PerPage
	if end > len(promotions) {
		end = len(promotions)
	}
	return promotions[start:end], nil
}

// GetForEdit fetches one promotion and parses its predicate back into
// conditions for the edit form. A lossy predicate marks the form read-only.
func (s *PromotionService) GetForEdit(ctx context.Context, id string) (*PromotionForEdit, error) {
	resp, err := s.client.Execute(ctx, ctp.CartDiscountByIDQuery, map[string]interface{}{"id": id})
	if err != nil {
		return nil, &errors.ErrRemote{Operation: "cartDiscount", Err: err}
	}

	var result struct {
		CartDiscount *cartDiscountFields `json:"cartDiscount"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode cart discount: %w", err)
	}
	if result.CartDiscount == nil {
		return nil, &errors.ErrNotFound{Resource: "promotion", ID: id}
	}

	promo := result.CartDiscount.toDomain()
	parsed := predicate.Parse(promo.Predicate)
	return &PromotionForEdit{
		Promotion:  promo,
		ChannelKey: parsed.ChannelKey,
		Conditions: parsed.Conditions,
		Editable:   !parsed.HasUnsupported(),
	}, nil
}

type cartDiscountFields struct {
	ID            string `json:"id"`
	Version       int64  `json:"version"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	IsActive      bool   `json:"isActive"`
	SortOrder     string `json:"sortOrder"`
	CartPredicate string `json:"cartPredicate"`
	Target        *struct {
		Type      string `json:"type"`
		Predicate string `json:"predicate"`
	} `json:"target"`
	Value struct {
		Type      string `json:"type"`
		Permyriad int64  `json:"permyriad"`
		Money     []struct {
			CentAmount   int64  `json:"centAmount"`
			CurrencyCode string `json:"currencyCode"`
		} `json:"money"`
	} `json:"value"`
}

func (f cartDiscountFields) toDomain() domain.Promotion {
	promo := domain.Promotion{
		ID:          f.ID,
		Version:     f.Version,
		Name:        f.Name,
		Description: f.Description,
		IsActive:    f.IsActive,
		SortOrder:   f.SortOrder,
		Predicate:   f.CartPredicate,
	}
	if f.Target != nil {
		promo.Target = f.Target.Type
	}
	switch f.Value.Type {
	case "relative":
		promo.Value = domain.PromotionValue{Type: domain.PromotionValueRelative, Permyriad: f.Value.Permyriad}
	case "absolute":
		value := domain.PromotionValue{Type: domain.PromotionValueAbsolute}
		if len(f.Value.Money) > 0 {
			value.Money = &domain.Money{
				CentAmount:   f.Value.Money[0].CentAmount,
				CurrencyCode: f.Value.Money[0].CurrencyCode,
			}
		}
		promo.Value = value
	}
	return promo
}
