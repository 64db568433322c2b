package classifier

import (
	"fmt"
	"os"

	"github.com/castlemilk/pfinance/insights/internal/finance"
	"gopkg.in/yaml.v3"
)

// Rule maps a category to the keywords that select it.
type Rule struct {
	Category finance.Category `yaml:"category"`
	Keywords []string         `yaml:"keywords"`
}

// RuleSet is an ordered, versioned list of rules. Earlier rules win.
type RuleSet struct {
	Version string `yaml:"version"`
	Rules   []Rule `yaml:"rules"`
}

// DefaultRules returns the built-in rule table.
func DefaultRules() RuleSet {
	return RuleSet{
		Version: "2024.1",
		Rules: []Rule{
			{Category: finance.CategoryFood, Keywords: []string{
				"grocer", "supermarket", "restaurant", "cafe", "coffee", "bakery", "pizza",
				"burger", "sushi", "food", "eats", "doordash", "deliveroo", "mcdonald",
				"starbucks", "kfc", "subway", "woolworths", "coles", "aldi", "whole foods",
				"lunch", "dinner", "breakfast",
			}},
			{Category: finance.CategoryTransport, Keywords: []string{
				"uber", "lyft", "taxi", "fuel", "petrol", "gas station", "shell", "chevron",
				"parking", "toll", "train", "metro", "transit", "airline", "flight", "opal",
			}},
			{Category: finance.CategoryUtilities, Keywords: []string{
				"electric", "power", "water", "gas bill", "internet", "broadband", "phone bill",
				"mobile", "telstra", "optus", "verizon", "comcast", "utility", "council rates",
			}},
			{Category: finance.CategoryEntertainment, Keywords: []string{
				"cinema", "movie", "theatre", "theater", "concert", "ticketmaster", "steam",
				"playstation", "xbox", "nintendo", "bowling", "museum", "festival",
			}},
			{Category: finance.CategoryShopping, Keywords: []string{
				"amazon", "ebay", "walmart", "target", "ikea", "kmart", "bunnings", "mall",
				"clothing", "apparel", "shoes", "electronics", "store",
			}},
			{Category: finance.CategoryHealth, Keywords: []string{
				"pharmacy", "chemist", "doctor", "dentist", "hospital", "clinic", "medical",
				"physio", "gym", "fitness", "health", "walgreens", "cvs",
			}},
			{Category: finance.CategoryEducation, Keywords: []string{
				"tuition", "school", "university", "college", "course", "udemy", "coursera",
				"textbook", "books", "education",
			}},
			{Category: finance.CategorySubscription, Keywords: []string{
				"netflix", "spotify", "hulu", "disney+", "youtube premium", "apple music",
				"icloud", "subscription", "membership", "patreon", "prime video",
			}},
		},
	}
}

// ParseRules decodes a YAML rule table.
func ParseRules(data []byte) (RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("failed to parse rules YAML: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return RuleSet{}, err
	}
	return rs, nil
}

// LoadRules reads a YAML rule table from disk.
func LoadRules(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

// Validate checks that every rule names a category and has at least one keyword.
func (rs RuleSet) Validate() error {
	for i, r := range rs.Rules {
		if r.Category == "" {
			return finance.NewValidationError(finance.ErrInvalidArgument, "rules", "rule %d has no category", i)
		}
		if len(r.Keywords) == 0 {
			return finance.NewValidationError(finance.ErrInvalidArgument, "rules", "rule %d (%s) has no keywords", i, r.Category)
		}
	}
	return nil
}
