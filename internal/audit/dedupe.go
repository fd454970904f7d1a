package audit

import (
	"fmt"

	"github.com/startupcfo/mayordomo/internal/model"
)

// RemoveExactDuplicates returns a copy of the ledger with every duplicate
// composite-key group reduced to its first occurrence, in original order.
// Sentinel rows are never removed, never counted, and keep their original
// relative position. The operation is deterministic: identical input yields
// identical output. An empty ledger is a no-op.
func RemoveExactDuplicates(l *model.Ledger) (*model.Ledger, int, string) {
	if l.Empty() {
		return l, 0, ""
	}

	seen := make(map[model.CompositeKey]struct{}, len(l.Records))
	cleaned := &model.Ledger{
		Label:   l.Label,
		Records: make([]model.LedgerRecord, 0, len(l.Records)),
	}

	removed, groups := 0, 0
	for i := range l.Records {
		r := l.Records[i]
		if r.Sentinel {
			cleaned.Records = append(cleaned.Records, r)
			continue
		}
		k := r.Key()
		if _, dup := seen[k]; dup {
			removed++
			continue
		}
		seen[k] = struct{}{}
		cleaned.Records = append(cleaned.Records, r)
	}

	if removed == 0 {
		return l, 0, ""
	}

	// Count the groups that lost rows, for the summary only.
	counts := make(map[model.CompositeKey]int)
	for i := range l.Records {
		if !l.Records[i].Sentinel {
			counts[l.Records[i].Key()]++
		}
	}
	for _, n := range counts {
		if n > 1 {
			groups++
		}
	}

	summary := fmt.Sprintf("[%s] removed %d exact duplicate rows across %d groups", l.Label, removed, groups)
	return cleaned, removed, summary
}
