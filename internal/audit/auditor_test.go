package audit

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/startupcfo/mayordomo/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func record(entry string, d *time.Time, balance float64, concept string) model.LedgerRecord {
	return model.LedgerRecord{
		EntryNumber: entry,
		Date:        d,
		Balance:     decimal.NewFromFloat(balance),
		Concept:     concept,
	}
}

func cleanLedger() *model.Ledger {
	return &model.Ledger{
		Label: "Test",
		Records: []model.LedgerRecord{
			record("1", date(2025, 1, 15), 100.50, "Office rent"),
			record("2", date(2025, 1, 20), 200.75, "Cloud hosting"),
			{EntryNumber: "END", Sentinel: true},
		},
	}
}

func TestAuditNeverFailsOnEmptyInput(t *testing.T) {
	assert.Empty(t, Audit(nil))
	assert.Empty(t, Audit(&model.Ledger{Label: "Test"}))
}

func TestAuditCleanLedgerHasNoWarnings(t *testing.T) {
	assert.Empty(t, Audit(cleanLedger()))
}

func TestAuditDetectsNegativeAmounts(t *testing.T) {
	l := cleanLedger()
	neg := record("3", date(2025, 2, 1), 50, "Refund")
	neg.Debit = decimal.NewFromFloat(-10)
	neg.Credit = decimal.NewFromFloat(-5)
	l.Records = append(l.Records, neg)

	warnings := Audit(l)
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0].Message, `"Debe"`)
	assert.Contains(t, warnings[1].Message, `"Haber"`)
	assert.Equal(t, "Test", warnings[0].Label)
	// Record index 3 is spreadsheet row 5.
	assert.Contains(t, warnings[0].Message, "[5]")
}

func TestAuditDetectsBlankCriticalFields(t *testing.T) {
	l := &model.Ledger{
		Label: "Test",
		Records: []model.LedgerRecord{
			record("", date(2025, 1, 15), 1, "A"),
			record("2", nil, 2, "B"),
			record("3", date(2025, 1, 17), 3, ""),
		},
	}

	warnings := Audit(l)
	messages := make([]string, len(warnings))
	for i, w := range warnings {
		messages[i] = w.Message
	}
	joined := ""
	for _, m := range messages {
		joined += m + "\n"
	}
	assert.Contains(t, joined, `"Concepto"`)
	assert.Contains(t, joined, `"Nº Asiento"`)
	assert.Contains(t, joined, `"Fecha"`)
}

func TestAuditSentinelIsExcluded(t *testing.T) {
	// The sentinel has a blank date, blank concept, and duplicates nothing;
	// none of that may surface as a finding.
	l := &model.Ledger{
		Label: "Test",
		Records: []model.LedgerRecord{
			record("1", date(2025, 1, 15), 100.50, "Office rent"),
			{EntryNumber: "END", Sentinel: true},
			{EntryNumber: "END", Sentinel: true},
		},
	}
	assert.Empty(t, Audit(l))
}

func TestAuditDetectsExactDuplicateGroups(t *testing.T) {
	l := cleanLedger()
	l.Records = append(l.Records,
		record("1", date(2025, 1, 15), 100.50, "Office rent"),
		record("1", date(2025, 1, 15), 100.50, "Office rent"),
	)

	warnings := Audit(l)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "1 exact duplicate key groups")
	assert.Contains(t, warnings[0].Message, "3 rows")
}

func TestAuditDetectsInconsistentBalances(t *testing.T) {
	l := cleanLedger()
	// Same entry number and date, different balance: a logical conflict,
	// not an exact duplicate.
	l.Records = append(l.Records, record("1", date(2025, 1, 15), 999.99, "Office rent"))

	warnings := Audit(l)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "more than one distinct balance")
}
