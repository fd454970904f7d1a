// Package audit provides the read-only quality scan over a ledger and the
// opt-in removal of exact duplicate rows.
package audit

import (
	"fmt"
	"strings"

	"github.com/startupcfo/mayordomo/internal/model"
	"github.com/startupcfo/mayordomo/internal/schema"
)

// maxExampleRows caps how many example row numbers a warning carries.
const maxExampleRows = 5

// Warning is one human-readable quality finding, tagged with the ledger it
// was found in. Warnings are advisory and never block the pipeline.
type Warning struct {
	Label   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Label, w.Message)
}

// Audit scans a ledger for quality defects without mutating it. All checks
// run independently; every finding is reported. A nil or empty ledger yields
// no warnings and the function never fails.
func Audit(l *model.Ledger) []Warning {
	if l.Empty() {
		return nil
	}

	var warnings []Warning
	warnings = append(warnings, negativeAmounts(l)...)
	warnings = append(warnings, blankCriticalFields(l)...)
	warnings = append(warnings, exactDuplicateGroups(l)...)
	warnings = append(warnings, inconsistentBalances(l)...)
	return warnings
}

// sheetRow converts a record index to the on-screen spreadsheet row,
// accounting for the header row.
func sheetRow(i int) int { return i + 2 }

func negativeAmounts(l *model.Ledger) []Warning {
	type check struct {
		column string
		value  func(*model.LedgerRecord) bool
	}
	checks := []check{
		{schema.ColDebit, func(r *model.LedgerRecord) bool { return r.Debit.IsNegative() }},
		{schema.ColCredit, func(r *model.LedgerRecord) bool { return r.Credit.IsNegative() }},
	}

	var warnings []Warning
	for _, c := range checks {
		count := 0
		var rows []int
		for i := range l.Records {
			r := &l.Records[i]
			if r.Sentinel || !c.value(r) {
				continue
			}
			count++
			if len(rows) < maxExampleRows {
				rows = append(rows, sheetRow(i))
			}
		}
		if count > 0 {
			warnings = append(warnings, Warning{
				Label:   l.Label,
				Message: fmt.Sprintf("%d negative values in column %q (example rows %v)", count, c.column, rows),
			})
		}
	}
	return warnings
}

func blankCriticalFields(l *model.Ledger) []Warning {
	type check struct {
		column string
		blank  func(*model.LedgerRecord) bool
	}
	checks := []check{
		{schema.ColConcept, func(r *model.LedgerRecord) bool { return strings.TrimSpace(r.Concept) == "" }},
		{schema.ColEntryNumber, func(r *model.LedgerRecord) bool { return strings.TrimSpace(r.EntryNumber) == "" }},
		{schema.ColDate, func(r *model.LedgerRecord) bool { return r.Date == nil }},
	}

	var warnings []Warning
	for _, c := range checks {
		count := 0
		var rows []int
		for i := range l.Records {
			r := &l.Records[i]
			if r.Sentinel || !c.blank(r) {
				continue
			}
			count++
			if len(rows) < maxExampleRows {
				rows = append(rows, sheetRow(i))
			}
		}
		if count > 0 {
			warnings = append(warnings, Warning{
				Label:   l.Label,
				Message: fmt.Sprintf("%d blank cells in critical column %q (example rows %v)", count, c.column, rows),
			})
		}
	}
	return warnings
}

func exactDuplicateGroups(l *model.Ledger) []Warning {
	groups := make(map[model.CompositeKey][]int)
	var order []model.CompositeKey
	for i := range l.Records {
		if l.Records[i].Sentinel {
			continue
		}
		k := l.Records[i].Key()
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	groupCount, affected := 0, 0
	var example []int
	for _, k := range order {
		rows := groups[k]
		if len(rows) <= 1 {
			continue
		}
		groupCount++
		affected += len(rows)
		if example == nil {
			for _, i := range rows {
				if len(example) == maxExampleRows {
					break
				}
				example = append(example, sheetRow(i))
			}
		}
	}
	if groupCount == 0 {
		return nil
	}
	return []Warning{{
		Label: l.Label,
		Message: fmt.Sprintf("%d exact duplicate key groups covering %d rows (example rows %v)",
			groupCount, affected, example),
	}}
}

// inconsistentBalances flags (entry number, date) pairs mapping to more than
// one distinct balance: logically the same entry reported with conflicting
// amounts, which is distinct from an exact duplicate.
func inconsistentBalances(l *model.Ledger) []Warning {
	type pair struct {
		entry string
		date  string
	}
	balances := make(map[pair]map[string]struct{})
	for i := range l.Records {
		r := &l.Records[i]
		if r.Sentinel {
			continue
		}
		k := r.Key()
		p := pair{entry: k.EntryNumber, date: k.Date}
		if balances[p] == nil {
			balances[p] = make(map[string]struct{})
		}
		balances[p][k.Balance] = struct{}{}
	}

	count := 0
	for _, seen := range balances {
		if len(seen) > 1 {
			count++
		}
	}
	if count == 0 {
		return nil
	}
	return []Warning{{
		Label: l.Label,
		Message: fmt.Sprintf("%d entry/date pairs carry more than one distinct balance (conflicting duplicates)",
			count),
	}}
}
