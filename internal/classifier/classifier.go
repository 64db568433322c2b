// Package classifier assigns categories to transactions by keyword matching.
package classifier

import (
	"strings"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

// Classifier matches descriptions against an ordered rule table.
// It holds its own copy of the rules and is safe for concurrent use.
type Classifier struct {
	version string
	rules   []Rule
}

// New builds a Classifier from a rule set. Keywords are lower-cased once here.
func New(rs RuleSet) *Classifier {
	rules := make([]Rule, 0, len(rs.Rules))
	for _, r := range rs.Rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		rules = append(rules, Rule{Category: r.Category, Keywords: kws})
	}
	return &Classifier{version: rs.Version, rules: rules}
}

// NewDefault builds a Classifier over DefaultRules.
func NewDefault() *Classifier {
	return New(DefaultRules())
}

// Version returns the version of the loaded rule table.
func (c *Classifier) Version() string {
	return c.version
}

// Classify returns the category of the first rule with a keyword contained in
// the description, or CategoryOther.
func (c *Classifier) Classify(description string) finance.Category {
	category, _ := c.Match(description)
	return category
}

// Match is Classify plus the keyword that matched ("" when none did).
func (c *Classifier) Match(description string) (finance.Category, string) {
	desc := strings.ToLower(description)
	if strings.TrimSpace(desc) == "" {
		return finance.CategoryOther, ""
	}
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(desc, kw) {
				return r.Category, kw
			}
		}
	}
	return finance.CategoryOther, ""
}

// ClassifyAll returns a copy of txns where uncategorized expenses (empty or
// "other") carry the classified category. Income entries are tagged income.
func (c *Classifier) ClassifyAll(txns []finance.Transaction) []finance.Transaction {
	out := make([]finance.Transaction, len(txns))
	for i, t := range txns {
		if t.IsIncome() {
			if t.Category == "" {
				t.Category = finance.CategoryIncome
			}
		} else if t.Category == "" || t.Category == finance.CategoryOther {
			t.Category = c.Classify(t.Description)
		}
		out[i] = t
	}
	return out
}
