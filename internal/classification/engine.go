package classification

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kosarica/grooming-service/internal/types"
)

// DefaultGroomingKeywords mark an item as grooming revenue when no configured
// rule matches it. Anything else falls back to store revenue.
var DefaultGroomingKeywords = []string{
	"grooming",
	"servicio",
	"corte",
	"baño",
	"deslanado",
	"cepillado",
}

// Flags are the revenue lines a transaction touches. Both may be set.
type Flags struct {
	IsGrooming bool `json:"is_grooming"`
	IsStore    bool `json:"is_store"`
}

// Predicate reports whether a folded item field matches
type Predicate func(field string) bool

// Rule is a compiled predicate with the target it assigns on match
type Rule struct {
	ID        string
	Keyword   string
	MatchType types.MatchType
	Target    types.RevenueTarget
	match     Predicate
}

// Matches tests the predicate against the item name and category
func (r Rule) Matches(name, category string) bool {
	if r.match(name) {
		return true
	}
	return category != "" && r.match(category)
}

// Engine evaluates an ordered rule list. It is immutable and safe for
// concurrent use.
type Engine struct {
	rules    []Rule
	defaults []string
}

// NewEngine compiles rules ordered by Position. Rules with an empty keyword or
// an unknown match type or target are skipped; use ValidateRules to reject them.
func NewEngine(rules []types.ClassificationRule) *Engine {
	ordered := make([]types.ClassificationRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	e := &Engine{
		rules:    make([]Rule, 0, len(ordered)),
		defaults: make([]string, 0, len(DefaultGroomingKeywords)),
	}
	for _, r := range ordered {
		compiled, ok := compile(r)
		if !ok {
			continue
		}
		e.rules = append(e.rules, compiled)
	}
	for _, kw := range DefaultGroomingKeywords {
		e.defaults = append(e.defaults, Fold(kw))
	}
	return e
}

func compile(r types.ClassificationRule) (Rule, bool) {
	kw := Fold(r.Keyword)
	if kw == "" {
		return Rule{}, false
	}
	if r.Target != types.TargetGrooming && r.Target != types.TargetStore {
		return Rule{}, false
	}

	var p Predicate
	switch r.MatchType {
	case types.MatchExact:
		p = func(field string) bool { return field == kw }
	case types.MatchContains:
		p = func(field string) bool { return strings.Contains(field, kw) }
	default:
		return Rule{}, false
	}
	return Rule{ID: r.ID, Keyword: r.Keyword, MatchType: r.MatchType, Target: r.Target, match: p}, true
}

// Rules returns the compiled rules in evaluation order
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// ItemTarget returns the revenue line of a single item. The first matching
// rule wins; otherwise the default keywords decide.
func (e *Engine) ItemTarget(item types.LineItem) types.RevenueTarget {
	name := Fold(item.Name)
	category := ""
	if item.Category != nil {
		category = Fold(*item.Category)
	}

	for _, r := range e.rules {
		if r.Matches(name, category) {
			return r.Target
		}
	}

	for _, kw := range e.defaults {
		if strings.Contains(name, kw) || strings.Contains(category, kw) {
			return types.TargetGrooming
		}
	}
	return types.TargetStore
}

// Classify derives the flags of a transaction from its items. A transaction
// without items is a manual charge and counts as store revenue.
func (e *Engine) Classify(items []types.LineItem) Flags {
	if len(items) == 0 {
		return Flags{IsStore: true}
	}

	var f Flags
	for _, item := range items {
		switch e.ItemTarget(item) {
		case types.TargetGrooming:
			f.IsGrooming = true
		default:
			f.IsStore = true
		}
		if f.IsGrooming && f.IsStore {
			break
		}
	}
	return f
}

// Classify compiles rules and classifies items in one call
func Classify(items []types.LineItem, rules []types.ClassificationRule) Flags {
	return NewEngine(rules).Classify(items)
}

// ErrInvalidRule reports a rule that cannot be stored
type ErrInvalidRule struct {
	Index  int
	Reason string
}

func (e ErrInvalidRule) Error() string {
	return fmt.Sprintf("invalid rule at index %d: %s", e.Index, e.Reason)
}

// ValidateRules checks rules before they are persisted
func ValidateRules(rules []types.ClassificationRule) error {
	for i, r := range rules {
		if Fold(r.Keyword) == "" {
			return ErrInvalidRule{Index: i, Reason: "keyword is required"}
		}
		if r.MatchType != types.MatchExact && r.MatchType != types.MatchContains {
			return ErrInvalidRule{Index: i, Reason: fmt.Sprintf("unknown match type %q", r.MatchType)}
		}
		if r.Target != types.TargetGrooming && r.Target != types.TargetStore {
			return ErrInvalidRule{Index: i, Reason: fmt.Sprintf("unknown target %q", r.Target)}
		}
	}
	return nil
}
