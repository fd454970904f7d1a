// Package classify assigns expense categories to new ledger records by
// learning from the working ledger's previously categorized rows.
package classify

import "github.com/startupcfo/mayordomo/internal/model"

// KnowledgeBase maps concept strings to expense types. It preserves the
// working ledger's row order so that equal-score fuzzy matches break ties
// deterministically in favor of the first-learned concept.
type KnowledgeBase struct {
	categories map[string]string
	concepts   []string
}

// BuildKnowledgeBase learns concept to category mappings from every working
// ledger row where both fields are present. It is rebuilt fresh on each
// classification run and never persisted. The first mapping seen for a
// concept wins.
func BuildKnowledgeBase(working *model.Ledger) *KnowledgeBase {
	kb := &KnowledgeBase{categories: make(map[string]string)}
	if working == nil {
		return kb
	}
	for i := range working.Records {
		r := &working.Records[i]
		if r.Sentinel || r.Concept == "" || r.ExpenseType == "" {
			continue
		}
		if _, seen := kb.categories[r.Concept]; seen {
			continue
		}
		kb.categories[r.Concept] = r.ExpenseType
		kb.concepts = append(kb.concepts, r.Concept)
	}
	return kb
}

// Lookup returns the category for an exact concept match. Case-sensitive.
func (kb *KnowledgeBase) Lookup(concept string) (string, bool) {
	category, ok := kb.categories[concept]
	return category, ok
}

// Concepts returns the known concepts in learning order.
func (kb *KnowledgeBase) Concepts() []string {
	return kb.concepts
}

// Len returns the number of known concepts.
func (kb *KnowledgeBase) Len() int {
	return len(kb.concepts)
}
