package crisis

import (
	"regexp"
	"strings"
)

// Assessment is the outcome of classifying one utterance. It is ephemeral:
// callers consume it immediately and never persist it on its own.
type Assessment struct {
	// Crisis is the minimal contract callers need: is this a genuine
	// self-harm/crisis disclosure.
	Crisis bool `json:"crisis"`
	// Category labels the disclosure kind when Crisis is true.
	Category string `json:"category,omitempty"`
	// Rule names the table entry that decided the outcome, empty when no
	// rule matched.
	Rule string `json:"rule,omitempty"`
}

// Classifier applies the ordered rule table to raw user text.
//
// The classifier defaults to not-crisis on empty or unmatched input. The
// surrounding system must not rely on it as the only safety gate: a rule
// gap suppresses a genuine crisis silently, which is why recall on the
// crisis pass is the highest-priority tested property.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier with the default rule table.
func NewClassifier() *Classifier {
	return NewClassifierWithRules(defaultRules)
}

// NewClassifierWithRules creates a classifier with a custom rule table,
// preserving table order within each pass.
func NewClassifierWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

var punctuation = regexp.MustCompile(`[.,!?;:()\[\]{}"]`)
var whitespace = regexp.MustCompile(`\s+`)

// normalize lower-cases the input and strips punctuation that would
// defeat phrase patterns. Apostrophes are kept: contractions carry
// meaning here ("can't cope").
func normalize(text string) string {
	t := strings.ToLower(text)
	t = punctuation.ReplaceAllString(t, "")
	t = whitespace.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// Classify decides whether the text discloses genuine crisis risk.
//
// Three ordered passes, first match wins per pass:
//  1. harmless idiom patterns short-circuit to not-crisis;
//  2. direct first-person crisis patterns classify crisis;
//  3. if the text contains a bare ambiguous token, narrower
//     first-person-reflexive context patterns decide; otherwise the
//     default is not-crisis.
func (c *Classifier) Classify(text string) Assessment {
	input := normalize(text)
	if input == "" {
		return Assessment{Crisis: false}
	}

	for _, rule := range c.pass(PassHarmless) {
		if rule.Pattern.MatchString(input) {
			return Assessment{Crisis: false, Rule: rule.Name}
		}
	}

	for _, rule := range c.pass(PassCrisis) {
		if rule.Pattern.MatchString(input) {
			return Assessment{Crisis: true, Category: rule.Category, Rule: rule.Name}
		}
	}

	if ambiguousTokens.MatchString(input) {
		for _, rule := range c.pass(PassAmbiguous) {
			if rule.Pattern.MatchString(input) {
				return Assessment{Crisis: true, Category: rule.Category, Rule: rule.Name}
			}
		}
	}

	return Assessment{Crisis: false}
}

// pass returns the rules of one pass in table order.
func (c *Classifier) pass(p Pass) []Rule {
	out := make([]Rule, 0, len(c.rules))
	for _, r := range c.rules {
		if r.Pass == p {
			out = append(out, r)
		}
	}
	return out
}
