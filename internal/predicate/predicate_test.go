package predicate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildApplyToAllIsChannelClauseOnly(t *testing.T) {
	pred, err := Build("store-a", nil)
	require.NoError(t, err)
	assert.Equal(t, `channel.key = "store-a"`, pred)
}

func TestBuildJoinsConditionsBeforeChannelClause(t *testing.T) {
	pred, err := Build("store-a", []Condition{
		{Type: TypeSKU, Operator: OpIs, Value: "SKU-1"},
		{Type: TypeCategory, Operator: OpContains, Value: "shoes"},
	})
	require.NoError(t, err)
	assert.Equal(t, `sku = "SKU-1" and categories.key contains "shoes" and channel.key = "store-a"`, pred)
}

func TestBuildAttributeCondition(t *testing.T) {
	pred, err := Build("store-a", []Condition{
		{Type: TypeAttribute, Attribute: "color", Operator: OpIsNot, Value: "red"},
	})
	require.NoError(t, err)
	assert.Equal(t, `attributes.color != "red" and channel.key = "store-a"`, pred)
}

func TestBuildRejectsAttributeWithoutKey(t *testing.T) {
	_, err := Build("store-a", []Condition{
		{Type: TypeAttribute, Operator: OpIs, Value: "red"},
	})
	assert.Error(t, err)
}

func TestRoundTripEveryOperatorAndType(t *testing.T) {
	operators := []Operator{OpIs, OpIsNot, OpContains, OpDoesNotContain, OpIsGreaterThan, OpIsLessThan}
	types := []ConditionType{TypeSKU, TypeCategory}

	for _, typ := range types {
		for _, op := range operators {
			t.Run(fmt.Sprintf("%s_%s", typ, op), func(t *testing.T) {
				in := []Condition{{Type: typ, Operator: op, Value: "some value"}}
				pred, err := Build("store-a", in)
				require.NoError(t, err)

				parsed := Parse(pred)
				assert.Equal(t, "store-a", parsed.ChannelKey)
				require.Len(t, parsed.Conditions, 1)
				assert.Equal(t, in[0], parsed.Conditions[0])
				assert.False(t, parsed.HasUnsupported())
			})
		}
	}
}

func TestRoundTripMultipleConditions(t *testing.T) {
	in := []Condition{
		{Type: TypeSKU, Operator: OpDoesNotContain, Value: "CLEARANCE"},
		{Type: TypeCategory, Operator: OpIs, Value: "summer-2025"},
		{Type: TypeSKU, Operator: OpIsGreaterThan, Value: "SKU-100"},
	}
	pred, err := Build("west-store", in)
	require.NoError(t, err)

	parsed := Parse(pred)
	assert.Equal(t, "west-store", parsed.ChannelKey)
	assert.Equal(t, in, parsed.Conditions)
}

func TestRoundTripQuotedValue(t *testing.T) {
	in := []Condition{{Type: TypeSKU, Operator: OpIs, Value: `say "hi" \ bye`}}
	pred, err := Build("store-a", in)
	require.NoError(t, err)

	parsed := Parse(pred)
	require.Len(t, parsed.Conditions, 1)
	assert.Equal(t, in[0].Value, parsed.Conditions[0].Value)
}

func TestParseAttributeFragmentIsUnsupported(t *testing.T) {
	// Attribute conditions are printable but not re-parseable; they must
	// come back tagged, not dropped.
	pred, err := Build("store-a", []Condition{
		{Type: TypeAttribute, Attribute: "color", Operator: OpIs, Value: "red"},
	})
	require.NoError(t, err)

	parsed := Parse(pred)
	assert.Equal(t, "store-a", parsed.ChannelKey)
	require.Len(t, parsed.Conditions, 1)
	assert.Equal(t, TypeUnsupported, parsed.Conditions[0].Type)
	assert.Equal(t, `attributes.color = "red"`, parsed.Conditions[0].Raw)
	assert.True(t, parsed.HasUnsupported())
}

func TestParseForeignPredicateKeepsRawFragment(t *testing.T) {
	parsed := Parse(`lineItemTotal(sku = "X") > "10 USD" and channel.key = "store-a"`)
	assert.Equal(t, "store-a", parsed.ChannelKey)
	require.Len(t, parsed.Conditions, 1)
	assert.Equal(t, TypeUnsupported, parsed.Conditions[0].Type)
	assert.Equal(t, `lineItemTotal(sku = "X") > "10 USD"`, parsed.Conditions[0].Raw)
}

func TestParseChannelOnly(t *testing.T) {
	parsed := Parse(`channel.key = "store-a"`)
	assert.Equal(t, "store-a", parsed.ChannelKey)
	assert.Empty(t, parsed.Conditions)
}

func TestSplitDoesNotCutInsideQuotes(t *testing.T) {
	in := []Condition{{Type: TypeSKU, Operator: OpIs, Value: "black and white"}}
	pred, err := Build("store-a", in)
	require.NoError(t, err)

	parsed := Parse(pred)
	require.Len(t, parsed.Conditions, 1)
	assert.Equal(t, "black and white", parsed.Conditions[0].Value)
}
