package classify

import (
	"testing"
	"time"

	"github.com/startupcfo/mayordomo/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func historyLedger(pairs ...[2]string) *model.Ledger {
	l := &model.Ledger{Label: "InputPL"}
	for _, p := range pairs {
		l.Records = append(l.Records, model.LedgerRecord{Concept: p[0], ExpenseType: p[1]})
	}
	l.Records = append(l.Records, model.LedgerRecord{EntryNumber: "END", Sentinel: true})
	return l
}

func missingRecord(concept string) model.LedgerRecord {
	d := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	return model.LedgerRecord{EntryNumber: "9", Date: &d, Concept: concept}
}

func TestBuildKnowledgeBase(t *testing.T) {
	l := historyLedger(
		[2]string{"Office rent", "Admin"},
		[2]string{"Cloud hosting", "IT"},
	)
	// Rows missing either field never enter the knowledge base.
	l.Records = append(l.Records,
		model.LedgerRecord{Concept: "Uncategorized thing"},
		model.LedgerRecord{ExpenseType: "Orphan category"},
	)

	kb := BuildKnowledgeBase(l)
	assert.Equal(t, 2, kb.Len())
	assert.Equal(t, []string{"Office rent", "Cloud hosting"}, kb.Concepts())

	category, ok := kb.Lookup("Office rent")
	require.True(t, ok)
	assert.Equal(t, "Admin", category)

	_, ok = kb.Lookup("office rent") // exact lookup is case-sensitive
	assert.False(t, ok)
}

func TestBuildKnowledgeBaseFirstMappingWins(t *testing.T) {
	kb := BuildKnowledgeBase(historyLedger(
		[2]string{"Office rent", "Admin"},
		[2]string{"Office rent", "Facilities"},
	))
	category, _ := kb.Lookup("Office rent")
	assert.Equal(t, "Admin", category)
	assert.Equal(t, 1, kb.Len())
}

func TestClassifyExactMatch(t *testing.T) {
	c := NewClassifier(nil, false)
	enriched := c.Classify(
		[]model.LedgerRecord{missingRecord("Office rent")},
		historyLedger([2]string{"Office rent", "Admin"}),
	)

	require.Len(t, enriched, 1)
	assert.Equal(t, "Admin", enriched[0].ExpenseType)
	assert.Equal(t, ExactConfidence, enriched[0].Confidence)
	assert.True(t, enriched[0].Classified)
}

func TestClassifyFuzzyMatchDifferentCase(t *testing.T) {
	// Exact lookup misses on case, the token-set match still lands.
	c := NewClassifier(nil, false)
	enriched := c.Classify(
		[]model.LedgerRecord{missingRecord("OFFICE RENT")},
		historyLedger([2]string{"Office rent", "Admin"}),
	)

	require.Len(t, enriched, 1)
	assert.Equal(t, "Admin", enriched[0].ExpenseType)
	assert.GreaterOrEqual(t, enriched[0].Confidence, MatchThreshold)
}

func TestClassifyEmptyKnowledgeBase(t *testing.T) {
	c := NewClassifier(nil, false)
	enriched := c.Classify(
		[]model.LedgerRecord{missingRecord("Anything at all")},
		&model.Ledger{Label: "InputPL"},
	)

	require.Len(t, enriched, 1)
	assert.Equal(t, ReviewCategory, enriched[0].ExpenseType)
	assert.Zero(t, enriched[0].Confidence)
}

func TestClassifyBelowThresholdNeedsReview(t *testing.T) {
	c := NewClassifier(nil, false)
	enriched := c.Classify(
		[]model.LedgerRecord{missingRecord("zzz qqq unrelated")},
		historyLedger([2]string{"Office rent", "Admin"}),
	)

	require.Len(t, enriched, 1)
	assert.Equal(t, ReviewCategory, enriched[0].ExpenseType)
	assert.Less(t, enriched[0].Confidence, MatchThreshold)
}

func TestClassifyTieBreakKeepsFirstLearnedConcept(t *testing.T) {
	// Both knowledge-base entries score identically against the new
	// concept; the first-learned one must win, deterministically.
	history := historyLedger(
		[2]string{"alpha beta", "First"},
		[2]string{"beta alpha", "Second"},
	)
	c := NewClassifier(nil, false)

	for i := 0; i < 10; i++ {
		enriched := c.Classify([]model.LedgerRecord{missingRecord("beta alpha gamma")}, history)
		require.Len(t, enriched, 1)
		assert.Equal(t, "First", enriched[0].ExpenseType)
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	history := historyLedger(
		[2]string{"Office rent", "Admin"},
		[2]string{"Cloud hosting EU", "IT"},
	)
	c := NewClassifier(nil, false)
	in := []model.LedgerRecord{missingRecord("Cloud hosting")}

	first := c.Classify(in, history)
	second := c.Classify(in, history)
	assert.Equal(t, first[0].ExpenseType, second[0].ExpenseType)
	assert.Equal(t, first[0].Confidence, second[0].Confidence)
}

func TestClassifyPassthroughOnEmptyInput(t *testing.T) {
	c := NewClassifier(nil, false)
	assert.Empty(t, c.Classify(nil, historyLedger()))
	assert.Empty(t, c.Classify([]model.LedgerRecord{}, historyLedger()))
}

func TestClassifyDoesNotMutateInput(t *testing.T) {
	c := NewClassifier(nil, false)
	in := []model.LedgerRecord{missingRecord("Office rent")}
	_ = c.Classify(in, historyLedger([2]string{"Office rent", "Admin"}))
	assert.Empty(t, in[0].ExpenseType)
	assert.False(t, in[0].Classified)
}
