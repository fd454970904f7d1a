// Package recon computes the set difference between the authoritative source
// ledger and the maintained working ledger.
package recon

import (
	"fmt"

	"github.com/startupcfo/mayordomo/internal/common"
	"github.com/startupcfo/mayordomo/internal/model"
)

// FindMissing returns every source record whose composite identity key
// (entry number, date, balance) appears nowhere in the working ledger. The
// match is exact on the triple, never fuzzy; the result preserves source
// order and never contains a sentinel row. It is a pure function.
func FindMissing(working, source *model.Ledger) ([]model.LedgerRecord, error) {
	if working == nil || source == nil {
		return nil, fmt.Errorf("cannot reconcile: %w", common.ErrMissingLedger)
	}

	known := working.KeySet()
	var missing []model.LedgerRecord
	for i := range source.Records {
		r := source.Records[i]
		if r.Sentinel {
			continue
		}
		if _, ok := known[r.Key()]; !ok {
			missing = append(missing, r)
		}
	}
	return missing, nil
}
