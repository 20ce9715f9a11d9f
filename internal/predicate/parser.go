package predicate

import (
	"regexp"
	"strings"
)

const quotedValue = `"((?:[^"\\]|\\.)*)"`

var (
	channelRe = regexp.MustCompile(`^channel\.key = ` + quotedValue + `$`)
	notRe     = regexp.MustCompile(`^not\((sku|categories\.key) contains ` + quotedValue + `\)$`)
	binaryRe  = regexp.MustCompile(`^(sku|categories\.key) (=|!=|>|<|contains) ` + quotedValue + `$`)
)

// Parsed is the result of parsing a predicate string back into conditions.
type Parsed struct {
	ChannelKey string
	Conditions []Condition
}

// HasUnsupported reports whether any fragment fell outside the known grammar.
// Attribute conditions and predicates authored outside this console land here.
func (p Parsed) HasUnsupported() bool {
	for _, c := range p.Conditions {
		if c.Type == TypeUnsupported {
			return true
		}
	}
	return false
}

// Parse splits a predicate on "and" and pattern-matches each fragment against
// the shapes the builder emits. The channel clause is stripped into
// ChannelKey. Every fragment is accounted for: unknown ones come back as
// Unsupported conditions carrying the raw text.
func Parse(pred string) Parsed {
	var out Parsed
	for _, frag := range splitFragments(pred) {
		if m := channelRe.FindStringSubmatch(frag); m != nil && out.ChannelKey == "" {
			out.ChannelKey = unquote(m[1])
			continue
		}
		out.Conditions = append(out.Conditions, parseFragment(frag))
	}
	return out
}

// splitFragments splits on " and " at paren depth zero so a not(...) clause
// is never cut apart.
func splitFragments(pred string) []string {
	var frags []string
	depth := 0
	inString := false
	start := 0
	for i := 0; i < len(pred); i++ {
		switch pred[i] {
		case '\\':
			if inString {
				i++ // skip escaped char
			}
		case '"':
			inString = !inString
		case '(':
			if !inString {
				depth++
			}
		case ')':
			if !inString {
				depth--
			}
		}
		if !inString && depth == 0 && strings.HasPrefix(pred[i:], " and ") {
			frags = append(frags, strings.TrimSpace(pred[start:i]))
			i += len(" and ") - 1
			start = i + 1
		}
	}
	if tail := strings.TrimSpace(pred[start:]); tail != "" {
		frags = append(frags, tail)
	}
	return frags
}

func parseFragment(frag string) Condition {
	if m := notRe.FindStringSubmatch(frag); m != nil {
		return Condition{
			Type:     pathType(m[1]),
			Operator: OpDoesNotContain,
			Value:    unquote(m[2]),
		}
	}
	if m := binaryRe.FindStringSubmatch(frag); m != nil {
		op, ok := operatorFor(m[2])
		if ok {
			return Condition{
				Type:     pathType(m[1]),
				Operator: op,
				Value:    unquote(m[3]),
			}
		}
	}
	return Condition{Type: TypeUnsupported, Raw: frag}
}

func pathType(path string) ConditionType {
	if path == "sku" {
		return TypeSKU
	}
	return TypeCategory
}

func operatorFor(symbol string) (Operator, bool) {
	switch symbol {
	case "=":
		return OpIs, true
	case "!=":
		return OpIsNot, true
	case ">":
		return OpIsGreaterThan, true
	case "<":
		return OpIsLessThan, true
	case "contains":
		return OpContains, true
	default:
		return "", false
	}
}
