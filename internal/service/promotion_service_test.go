package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/ctp"
	"github.com/uriel-reyes/sellertools-sub000/internal/predicate"
	"github.com/uriel-reyes/sellertools-sub000/pkg/errors"
)

func TestBuildValuePercentageToPermyriad(t *testing.T) {
	value, err := BuildValue(PromotionInput{ValueType: "percentage", DiscountValue: 15})
	require.NoError(t, err)
	require.NotNil(t, value.Relative)
	assert.Equal(t, int64(1500), value.Relative.Permyriad)
	assert.Nil(t, value.Absolute)
}

func TestBuildValueFractionalPercentage(t *testing.T) {
	value, err := BuildValue(PromotionInput{ValueType: "percentage", DiscountValue: 7.5})
	require.NoError(t, err)
	assert.Equal(t, int64(750), value.Relative.Permyriad)
}

func TestBuildValueAbsoluteToMinorUnits(t *testing.T) {
	value, err := BuildValue(PromotionInput{ValueType: "absolute", DiscountValue: 12.5})
	require.NoError(t, err)
	require.NotNil(t, value.Absolute)
	require.Len(t, value.Absolute.Money, 1)
	assert.Equal(t, int64(1250), value.Absolute.Money[0].CentAmount)
	assert.Equal(t, "USD", value.Absolute.Money[0].CurrencyCode)
}

func TestBuildValueAbsoluteKeepsExplicitCurrency(t *testing.T) {
	value, err := BuildValue(PromotionInput{ValueType: "absolute", DiscountValue: 10, CurrencyCode: "EUR"})
	require.NoError(t, err)
	assert.Equal(t, "EUR", value.Absolute.Money[0].CurrencyCode)
}

func TestBuildValueRejectsUnknownType(t *testing.T) {
	_, err := BuildValue(PromotionInput{ValueType: "mystery", DiscountValue: 10})
	var verr *errors.ErrValidation
	require.ErrorAs(t, err, &verr)
}

func TestValidateSortOrder(t *testing.T) {
	assert.NoError(t, ValidateSortOrder("0.5"))
	assert.NoError(t, ValidateSortOrder("0.000001"))
	assert.NoError(t, ValidateSortOrder("0.999999"))

	for _, bad := range []string{"0", "1", "1.5", "-0.3", "abc", ""} {
		err := ValidateSortOrder(bad)
		var verr *errors.ErrValidation
		require.ErrorAs(t, err, &verr, "sortOrder %q should be rejected", bad)
	}
}

func TestCreatePromotionScopesPredicateToChannel(t *testing.T) {
	var draft ctp.CartDiscountDraft
	client := newStubClient(t, func(query string, vars map[string]interface{}) (interface{}, []ctp.GraphQLError) {
		require.Contains(t, query, "mutation createCartDiscount")
		raw := vars["draft"].(map[string]interface{})
		draft.CartPredicate = raw["cartPredicate"].(string)
		draft.SortOrder = raw["sortOrder"].(string)
		return map[string]interface{}{
			"createCartDiscount": map[string]interface{}{
				"id":            "promo-1",
				"version":       1,
				"cartPredicate": raw["cartPredicate"],
				"sortOrder":     raw["sortOrder"],
			},
		}, nil
	})
	svc := NewPromotionService(client, zap.NewNop())

	promo, err := svc.Create(context.Background(), "store-1", PromotionInput{
		Name:          "Summer sale",
		ApplyTo:       "all",
		ValueType:     "percentage",
		DiscountValue: 15,
		SortOrder:     "0.42",
		IsActive:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, "promo-1", promo.ID)
	assert.Equal(t, `channel.key = "store-1"`, draft.CartPredicate)
	assert.Equal(t, "0.42", draft.SortOrder)
}

func TestCreatePromotionRequiresName(t *testing.T) {
	svc := NewPromotionService(nil, zap.NewNop())
	_, err := svc.Create(context.Background(), "store-1", PromotionInput{
		ValueType: "percentage", DiscountValue: 10, SortOrder: "0.5",
	})
	var verr *errors.ErrValidation
	require.ErrorAs(t, err, &verr)
}

func TestListPromotionsFiltersByChannel(t *testing.T) {
	mine, err := predicate.Build("store-1", nil)
	require.NoError(t, err)
	theirs, err := predicate.Build("store-2", nil)
	require.NoError(t, err)

	client := newStubClient(t, func(query string, vars map[string]interface{}) (interface{}, []ctp.GraphQLError) {
		require.Contains(t, query, "query cartDiscounts")
		return map[string]interface{}{
			"cartDiscounts": map[string]interface{}{
				"total": 2,
				"results": []map[string]interface{}{
					{"id": "promo-mine", "version": 1, "cartPredicate": mine, "sortOrder": "0.4",
						"value": map[string]interface{}{"type": "relative", "permyriad": 1500}},
					{"id": "promo-theirs", "version": 1, "cartPredicate": theirs, "sortOrder": "0.5",
						"value": map[string]interface{}{"type": "relative", "permyriad": 1000}},
				},
			},
		}, nil
	})
	svc := NewPromotionService(client, zap.NewNop())

	promotions, err := svc.List(context.Background(), "store-1", ListOptions{})
	require.NoError(t, err)
	require.Len(t, promotions, 1)
	assert.Equal(t, "promo-mine", promotions[0].ID)
}

func TestGetForEditMarksForeignPredicateReadOnly(t *testing.T) {
	foreign := `customer.customerGroup.key = "vip" and channel.key = "store-1"`
	client := newStubClient(t, func(query string, vars map[string]interface{}) (interface{}, []ctp.GraphQLError) {
		return map[string]interface{}{
			"cartDiscount": map[string]interface{}{
				"id": "promo-1", "version": 3, "name": "VIP only",
				"cartPredicate": foreign, "sortOrder": "0.4",
				"value": map[string]interface{}{"type": "relative", "permyriad": 500},
			},
		}, nil
	})
	svc := NewPromotionService(client, zap.NewNop())

	result, err := svc.GetForEdit(context.Background(), "promo-1")
	require.NoError(t, err)
	assert.False(t, result.Editable)
	assert.Equal(t, "store-1", result.ChannelKey)
}

func TestGetForEditNotFound(t *testing.T) {
	client := newStubClient(t, func(string, map[string]interface{}) (interface{}, []ctp.GraphQLError) {
		return map[string]interface{}{"cartDiscount": nil}, nil
	})
	svc := NewPromotionService(client, zap.NewNop())

	_, err := svc.GetForEdit(context.Background(), "missing")
	var nf *errors.ErrNotFound
	require.ErrorAs(t, err, &nf)
}

func TestUpdatePromotionStaleVersionConflict(t *testing.T) {
	client := newStubClient(t, func(query string, vars map[string]interface{}) (interface{}, []ctp.GraphQLError) {
		if strings.Contains(query, "mutation updateCartDiscount") {
			return nil, concurrentModification()
		}
		return nil, nil
	})
	svc := NewPromotionService(client, zap.NewNop())

	_, err := svc.Update(context.Background(), "promo-1", 2, "store-1", PromotionInput{
		Name: "Sale", ValueType: "percentage", DiscountValue: 10, SortOrder: "0.5",
	})
	var conflict *errors.ErrVersionConflict
	require.ErrorAs(t, err, &conflict)
}
