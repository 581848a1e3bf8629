package feedback

import (
	"fmt"
	"strings"
)

// Class is the sentiment bucket assigned to a piece of feedback.
type Class string

// Feedback classes.
const (
	ClassPositive Class = "positive"
	ClassNegative Class = "negative"
	ClassNeutral  Class = "neutral"
)

// Rule forces a class when Contains occurs in the lower-cased analysed text.
// Rules correct known misreadings of the polarity scorer on short or
// translated input.
type Rule struct {
	Contains string `koanf:"contains" json:"contains"`
	Class    Class  `koanf:"class" json:"class"`
}

// DefaultRules returns the built-in keyword overrides.
func DefaultRules() []Rule {
	return []Rule{
		{Contains: "alright", Class: ClassPositive},
		{Contains: "dissatisfied", Class: ClassNegative},
		{Contains: "unattended", Class: ClassNegative},
		{Contains: "not well", Class: ClassNegative},
		{Contains: "mal", Class: ClassNegative},
	}
}

// ValidateRules rejects rules with no text or a class other than positive
// or negative.
func ValidateRules(rules []Rule) error {
	for i, r := range rules {
		if strings.TrimSpace(r.Contains) == "" {
			return fmt.Errorf("%w: rule %d has empty text", ErrInvalidRule, i)
		}
		if r.Class != ClassPositive && r.Class != ClassNegative {
			return fmt.Errorf("%w: rule %d (%q) has class %q", ErrInvalidRule, i, r.Contains, r.Class)
		}
	}
	return nil
}

// ruleSet is the compiled, lower-cased form of a rule list.
type ruleSet struct {
	positive []string
	negative []string
}

func compileRules(rules []Rule) ruleSet {
	var rs ruleSet
	for _, r := range rules {
		needle := strings.ToLower(r.Contains)
		switch r.Class {
		case ClassPositive:
			rs.positive = append(rs.positive, needle)
		case ClassNegative:
			rs.negative = append(rs.negative, needle)
		}
	}
	return rs
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// classify applies polarity and keyword rules; positive is checked first.
func (rs ruleSet) classify(polarity float64, text string) Class {
	lower := strings.ToLower(text)
	switch {
	case polarity > 0 || containsAny(lower, rs.positive):
		return ClassPositive
	case polarity < 0 || containsAny(lower, rs.negative):
		return ClassNegative
	default:
		return ClassNeutral
	}
}
