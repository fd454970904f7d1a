// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRecord represents a single transaction row in either ledger.
// Monetary fields are always rounded to two decimal places by the normalizer
// (half away from zero).
type LedgerRecord struct {
	Date        *time.Time // nil only on the sentinel row or a blank cell
	EntryNumber string
	Document    string
	Concept     string
	Account     string
	AccountName string
	MonthLabel  string // "abr/25" style, empty when no valid date
	ExpenseType string // empty until classified
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Balance     decimal.Decimal
	Net         decimal.Decimal
	Confidence  int // 0-100, meaningful only when Classified
	Classified  bool
	Sentinel    bool
}

// CompositeKey is the identity triple deciding whether two rows represent
// the same transaction.
type CompositeKey struct {
	EntryNumber string
	Date        string // "2006-01-02", empty when the date is absent
	Balance     string // fixed two-decimal rendering
}

// Key returns the record's composite identity key.
func (r *LedgerRecord) Key() CompositeKey {
	k := CompositeKey{
		EntryNumber: r.EntryNumber,
		Balance:     r.Balance.StringFixed(2),
	}
	if r.Date != nil {
		k.Date = r.Date.Format("2006-01-02")
	}
	return k
}

func (k CompositeKey) String() string {
	return fmt.Sprintf("%s|%s|%s", k.EntryNumber, k.Date, k.Balance)
}

// Ledger is an ordered sequence of records as loaded from one spreadsheet.
// A well-formed working ledger carries at most one sentinel record.
type Ledger struct {
	Label   string
	Records []LedgerRecord
}

// DataRecords returns the non-sentinel records in original order.
func (l *Ledger) DataRecords() []LedgerRecord {
	out := make([]LedgerRecord, 0, len(l.Records))
	for _, r := range l.Records {
		if !r.Sentinel {
			out = append(out, r)
		}
	}
	return out
}

// KeySet returns the set of composite keys of all non-sentinel records.
func (l *Ledger) KeySet() map[CompositeKey]struct{} {
	keys := make(map[CompositeKey]struct{}, len(l.Records))
	for i := range l.Records {
		if l.Records[i].Sentinel {
			continue
		}
		keys[l.Records[i].Key()] = struct{}{}
	}
	return keys
}

// Empty reports whether the ledger holds no records at all.
func (l *Ledger) Empty() bool {
	return l == nil || len(l.Records) == 0
}
