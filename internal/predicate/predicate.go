// Package predicate builds and parses the platform's textual cart-discount
// predicate grammar. Conditions are kept as a small typed AST with a
// deterministic printer; the parser is total and tags fragments it cannot
// understand as Unsupported instead of dropping them.
package predicate

import (
	"fmt"
	"strings"
)

// ConditionType selects the attribute path a condition matches against.
type ConditionType string

const (
	TypeSKU       ConditionType = "sku"
	TypeCategory  ConditionType = "category"
	TypeAttribute ConditionType = "attribute"
	// TypeUnsupported marks a parsed fragment outside the known grammar.
	// The raw fragment is preserved so the caller can show it or refuse
	// the edit, rather than silently losing it.
	TypeUnsupported ConditionType = "unsupported"
)

// Operator is the UI-level comparison operator.
type Operator string

const (
	OpIs             Operator = "is"
	OpIsNot          Operator = "isNot"
	OpContains       Operator = "contains"
	OpDoesNotContain Operator = "doesNotContain"
	OpIsGreaterThan  Operator = "isGreaterThan"
	OpIsLessThan     Operator = "isLessThan"
)

// Condition is one clause of a promotion's eligibility predicate.
type Condition struct {
	Type     ConditionType `json:"type"`
	// Attribute is the attribute key, only set for TypeAttribute.
	Attribute string   `json:"attribute,omitempty"`
	Operator  Operator `json:"operator,omitempty"`
	Value     string   `json:"value,omitempty"`
	// Raw carries the original fragment for TypeUnsupported.
	Raw string `json:"raw,omitempty"`
}

func (c Condition) path() (string, error) {
	switch c.Type {
	case TypeSKU:
		return "sku", nil
	case TypeCategory:
		return "categories.key", nil
	case TypeAttribute:
		if c.Attribute == "" {
			return "", fmt.Errorf("attribute condition requires an attribute key")
		}
		return "attributes." + c.Attribute, nil
	default:
		return "", fmt.Errorf("cannot print condition of type %q", c.Type)
	}
}

// Print renders one condition as a predicate clause.
func (c Condition) Print() (string, error) {
	path, err := c.path()
	if err != nil {
		return "", err
	}
	value := quote(c.Value)
	switch c.Operator {
	case OpIs:
		return fmt.Sprintf("%s = %s", path, value), nil
	case OpIsNot:
		return fmt.Sprintf("%s != %s", path, value), nil
	case OpContains:
		return fmt.Sprintf("%s contains %s", path, value), nil
	case OpDoesNotContain:
		return fmt.Sprintf("not(%s contains %s)", path, value), nil
	case OpIsGreaterThan:
		return fmt.Sprintf("%s > %s", path, value), nil
	case OpIsLessThan:
		return fmt.Sprintf("%s < %s", path, value), nil
	default:
		return "", fmt.Errorf("unknown operator %q", c.Operator)
	}
}

// Build joins the condition clauses with "and" and appends the channel clause,
// which is always present. An empty condition list ("apply to all products")
// yields the channel clause alone.
func Build(channelKey string, conditions []Condition) (string, error) {
	clauses := make([]string, 0, len(conditions)+1)
	for _, c := range conditions {
		clause, err := c.Print()
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}
	clauses = append(clauses, channelClause(channelKey))
	return strings.Join(clauses, " and "), nil
}

func channelClause(channelKey string) string {
	return fmt.Sprintf("channel.key = %s", quote(channelKey))
}

func quote(v string) string {
	escaped := strings.ReplaceAll(v, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

func unquote(v string) string {
	unescaped := strings.ReplaceAll(v, `\"`, `"`)
	return strings.ReplaceAll(unescaped, `\\`, `\`)
}
