package classify

import (
	"log/slog"

	"github.com/schollz/progressbar/v3"
	"github.com/startupcfo/mayordomo/internal/model"
)

const (
	// ReviewCategory marks records no known concept could explain.
	ReviewCategory = "NEW - NEEDS REVIEW"
	// MatchThreshold is the minimum token-set score for a fuzzy suggestion
	// to be accepted.
	MatchThreshold = 70
	// ExactConfidence is assigned to exact concept matches.
	ExactConfidence = 100
)

// Classifier assigns expense types to missing records from a knowledge base
// learned out of the working ledger.
type Classifier struct {
	logger       *slog.Logger
	showProgress bool
}

// NewClassifier creates a classifier. The progress bar covers the fuzzy scan
// over the historical concepts, the one potentially slow stage of a run.
func NewClassifier(logger *slog.Logger, showProgress bool) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{logger: logger, showProgress: showProgress}
}

// Classify enriches every missing record with an expense type and a 0-100
// confidence score. Passthrough when there is nothing to classify. The input
// slice is not mutated.
func (c *Classifier) Classify(missing []model.LedgerRecord, working *model.Ledger) []model.LedgerRecord {
	if len(missing) == 0 {
		return missing
	}

	kb := BuildKnowledgeBase(working)
	c.logger.Info("learned historical classifications", "concepts", kb.Len())

	var bar *progressbar.ProgressBar
	if c.showProgress {
		bar = progressbar.Default(int64(len(missing)), "classifying")
	}

	enriched := make([]model.LedgerRecord, len(missing))
	for i := range missing {
		rec := missing[i]
		rec.ExpenseType, rec.Confidence = c.suggest(kb, rec.Concept)
		rec.Classified = true
		enriched[i] = rec
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	c.logger.Info("classification finished", "records", len(enriched))
	return enriched
}

// suggest resolves one concept: exact match first, then the best token-set
// fuzzy match over the known concepts. Equal scores keep the first-learned
// concept, which is stable because the knowledge base preserves insertion
// order.
func (c *Classifier) suggest(kb *KnowledgeBase, concept string) (string, int) {
	if category, ok := kb.Lookup(concept); ok {
		return category, ExactConfidence
	}
	if kb.Len() == 0 {
		return ReviewCategory, 0
	}

	bestScore := -1
	bestConcept := ""
	for _, known := range kb.Concepts() {
		if score := TokenSetRatio(concept, known); score > bestScore {
			bestScore = score
			bestConcept = known
		}
	}

	if bestScore >= MatchThreshold {
		category, _ := kb.Lookup(bestConcept)
		return category, bestScore
	}
	return ReviewCategory, bestScore
}
