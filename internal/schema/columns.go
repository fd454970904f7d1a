// Package schema defines the canonical column set of the working ledger,
// the composite identity key, and the header renames applied to the
// source (Mayor) ledger.
package schema

import "strings"

// Canonical working-ledger headers, in persisted column order.
const (
	ColEntryNumber = "Nº Asiento"
	ColDate        = "Fecha"
	ColDocument    = "Documento"
	ColConcept     = "Concepto"
	ColAccount     = "Cuenta"
	ColDebit       = "Debe"
	ColCredit      = "Haber"
	ColBalance     = "Saldo"
	ColAccountName = "Nombre cuenta"
	ColNet         = "Neto"
	ColMonth       = "Mes"
	ColExpenseType = "Tipo de gasto"
)

// SentinelMarker terminates real data in the working ledger. It lives in
// the entry-number column and is matched case-insensitively after trimming.
const SentinelMarker = "END"

// ColumnKind tags each canonical column with the value representation it
// carries, decided once at normalization so downstream stages switch on a
// closed set instead of probing cell values.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindDate
	KindMoney
	// KindMonthLabel is textual but must be written with an explicit text
	// format so the spreadsheet does not reinterpret "abr/25" as a date.
	KindMonthLabel
)

// Column pairs a canonical header with its kind.
type Column struct {
	Name string
	Kind ColumnKind
}

// Columns is the full canonical working-ledger schema in column order.
// The sentinel marker is a row marker, not a column, and is deliberately
// absent from this set.
var Columns = []Column{
	{ColEntryNumber, KindText},
	{ColDate, KindDate},
	{ColDocument, KindText},
	{ColConcept, KindText},
	{ColAccount, KindText},
	{ColDebit, KindMoney},
	{ColCredit, KindMoney},
	{ColBalance, KindMoney},
	{ColAccountName, KindText},
	{ColNet, KindMoney},
	{ColMonth, KindMonthLabel},
	{ColExpenseType, KindText},
}

// RequiredWorkingColumns lists every header the raw working ledger must carry.
func RequiredWorkingColumns() []string {
	names := make([]string, len(Columns))
	for i, c := range Columns {
		names[i] = c.Name
	}
	return names
}

// RequiredSourceColumns lists the minimum headers the source ledger must
// carry after renaming: the composite key plus the concept.
func RequiredSourceColumns() []string {
	return []string{ColEntryNumber, ColDate, ColBalance, ColConcept}
}

// KeyColumns form the composite identity key. Two rows describe the same
// transaction iff this triple is equal; concept and account are deliberately
// excluded so a re-described economic event is not flagged as new.
var KeyColumns = []string{ColEntryNumber, ColDate, ColBalance}

// SourceRenames maps the source ledger's alternate headers to canonical ones.
var SourceRenames = map[string]string{
	"Net":   ColNet,
	"Month": ColMonth,
}

// MonthAbbrev is the fixed Spanish month abbreviation table used for the
// derived month label ("ene/25", "abr/25", ...).
var MonthAbbrev = [12]string{
	"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sep", "oct", "nov", "dic",
}

// IsSentinel reports whether a raw entry-number cell is the sentinel marker.
func IsSentinel(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), SentinelMarker)
}
