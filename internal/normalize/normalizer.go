// Package normalize turns raw spreadsheet tables into typed ledgers:
// canonical headers, parsed dates, derived month labels, and monetary
// values rounded to two decimals.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/startupcfo/mayordomo/internal/common"
	"github.com/startupcfo/mayordomo/internal/model"
	"github.com/startupcfo/mayordomo/internal/schema"
	"github.com/startupcfo/mayordomo/internal/xlsx"
	"github.com/xuri/excelize/v2"
)

// dateLayouts covers the renderings excelize produces for date cells plus
// the formats the ledgers have historically carried.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"01-02-06",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
	time.RFC3339,
}

// RenameHeaders returns a copy of the headers with the source ledger's
// alternate names (Net, Month) replaced by the canonical ones.
func RenameHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if canonical, ok := schema.SourceRenames[h]; ok {
			h = canonical
		}
		out[i] = h
	}
	return out
}

// Normalize converts a raw table into a typed ledger. When isSource is set
// the source ledger's alternate headers are renamed first. A date cell that
// fails to parse and is neither blank nor the sentinel row is a fatal
// structural error reporting spreadsheet row numbers (data row i is row i+1
// on screen, accounting for the header).
func Normalize(t *xlsx.Table, isSource bool) (*model.Ledger, error) {
	if t == nil {
		return nil, common.ErrMissingLedger
	}

	table := *t
	if isSource {
		table.Headers = RenameHeaders(t.Headers)
	}

	ledger := &model.Ledger{
		Label:   table.Label,
		Records: make([]model.LedgerRecord, 0, len(table.Rows)),
	}

	var badRows []int
	var badExample string

	for i, row := range table.Rows {
		entry := table.Cell(row, schema.ColEntryNumber)
		rec := model.LedgerRecord{
			EntryNumber: entry,
			Sentinel:    schema.IsSentinel(entry),
			Document:    table.Cell(row, schema.ColDocument),
			Concept:     table.Cell(row, schema.ColConcept),
			Account:     table.Cell(row, schema.ColAccount),
			AccountName: table.Cell(row, schema.ColAccountName),
			ExpenseType: table.Cell(row, schema.ColExpenseType),
			Debit:       parseMoney(table.Cell(row, schema.ColDebit)),
			Credit:      parseMoney(table.Cell(row, schema.ColCredit)),
			Balance:     parseMoney(table.Cell(row, schema.ColBalance)),
			Net:         parseMoney(table.Cell(row, schema.ColNet)),
		}

		if raw := table.Cell(row, schema.ColDate); raw != "" && !rec.Sentinel {
			d, err := ParseDate(raw)
			if err != nil {
				badRows = append(badRows, i+2)
				if badExample == "" {
					badExample = raw
				}
			} else {
				rec.Date = &d
			}
		}

		// The month label is always re-derived from the known-valid date;
		// a pre-existing label that cannot be confirmed is not trusted.
		rec.MonthLabel = MonthLabel(rec.Date)

		ledger.Records = append(ledger.Records, rec)
	}

	if len(badRows) > 0 {
		return nil, &common.StructuralError{
			Label:   table.Label,
			Reason:  fmt.Sprintf("column %q has unparseable dates", schema.ColDate),
			Rows:    badRows,
			Example: badExample,
		}
	}
	return ledger, nil
}

// ParseDate parses a rendered date cell, accepting the known layouts plus
// raw Excel serial numbers.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, raw); err == nil {
			return d, nil
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 {
		if d, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

// MonthLabel derives the "abr/25" style label from a date, or the empty
// string (not null, the column stays textual) when there is no valid date.
func MonthLabel(d *time.Time) string {
	if d == nil {
		return ""
	}
	return fmt.Sprintf("%s/%02d", schema.MonthAbbrev[d.Month()-1], d.Year()%100)
}

// parseMoney parses a monetary cell into a two-decimal value. Both "1.234,56"
// and "1,234.56" digit groupings are accepted; anything unparseable becomes
// zero. Rounding is half away from zero: 100.126 normalizes to 100.13.
func parseMoney(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}

	dot := strings.LastIndex(raw, ".")
	comma := strings.LastIndex(raw, ",")
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		// European grouping: dots group thousands, comma is the decimal mark.
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.Replace(raw, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		raw = strings.ReplaceAll(raw, ",", "")
	case comma >= 0:
		raw = strings.Replace(raw, ",", ".", 1)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d.Round(2)
}
