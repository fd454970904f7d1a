package xlsx

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/startupcfo/mayordomo/internal/common"
	"github.com/startupcfo/mayordomo/internal/model"
	"github.com/startupcfo/mayordomo/internal/schema"
	"github.com/xuri/excelize/v2"
)

// WriterConfig holds the configuration for the merge writer.
type WriterConfig struct {
	OutputPath     string
	HighlightBelow int // confidence under this value gets the review fill
}

// DefaultWriterConfig returns a WriterConfig with sensible defaults.
func DefaultWriterConfig(outputPath string) WriterConfig {
	return WriterConfig{
		OutputPath:     outputPath,
		HighlightBelow: 80,
	}
}

// Validate checks if the configuration is valid.
func (c WriterConfig) Validate() error {
	if c.OutputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if c.HighlightBelow < 0 || c.HighlightBelow > 100 {
		return fmt.Errorf("highlight threshold must be within 0-100, got %d", c.HighlightBelow)
	}
	return nil
}

// MergeWriter inserts classified records into an existing working artifact,
// keeping exactly one sentinel row and the artifact's prior data intact.
type MergeWriter struct {
	logger *slog.Logger
	config WriterConfig
}

// NewMergeWriter creates a merge writer for the given output location.
func NewMergeWriter(config WriterConfig, logger *slog.Logger) (*MergeWriter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MergeWriter{config: config, logger: logger}, nil
}

// cellStyles holds the precomputed style IDs for each column kind, plus the
// low-confidence highlight variants.
type cellStyles struct {
	date      int
	dateWarn  int
	text      int
	textWarn  int
	money     int
	moneyWarn int
	warn      int
}

var reviewFill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFF2CC"}}

func newCellStyles(f *excelize.File) (cellStyles, error) {
	var st cellStyles
	var err error

	dateFmt := "dd/mm/yyyy"
	if st.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt}); err != nil {
		return st, err
	}
	if st.dateWarn, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt, Fill: reviewFill}); err != nil {
		return st, err
	}
	// Format 49 is the literal text format: it keeps "abr/25" from being
	// reinterpreted as a date by the host application.
	if st.text, err = f.NewStyle(&excelize.Style{NumFmt: 49}); err != nil {
		return st, err
	}
	if st.textWarn, err = f.NewStyle(&excelize.Style{NumFmt: 49, Fill: reviewFill}); err != nil {
		return st, err
	}
	if st.money, err = f.NewStyle(&excelize.Style{NumFmt: 4}); err != nil { // #,##0.00
		return st, err
	}
	if st.moneyWarn, err = f.NewStyle(&excelize.Style{NumFmt: 4, Fill: reviewFill}); err != nil {
		return st, err
	}
	if st.warn, err = f.NewStyle(&excelize.Style{Fill: reviewFill}); err != nil {
		return st, err
	}
	return st, nil
}

// Merge inserts the classified records into the working artifact at
// templatePath immediately above its sentinel row and persists the result to
// the configured output path. When normalized is non-nil, every existing data
// row before the insertion point is rewritten from the normalized values to
// correct historically corrupted cells. The template is never modified in
// place: all mutations happen in memory and are saved only after every step
// succeeded.
func (w *MergeWriter) Merge(records []model.LedgerRecord, templatePath string, normalized *model.Ledger) error {
	if len(records) == 0 {
		w.logger.Info("no records to merge")
		return nil
	}
	if w.config.OutputPath == templatePath {
		return &common.ArtifactWriteError{Path: w.config.OutputPath, Err: fmt.Errorf("output path equals the working artifact; refusing to overwrite in place")}
	}

	f, err := excelize.OpenFile(templatePath)
	if err != nil {
		return &common.MissingInputError{Path: templatePath, Err: err}
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return &common.ArtifactWriteError{Path: w.config.OutputPath, Err: err}
	}

	cols := columnIndexes(rows)
	idCol := cols[schema.ColEntryNumber]
	if idCol == 0 {
		idCol = 1
	}

	plan := PlanMerge(identityColumn(rows, idCol), len(records))
	if plan.Append {
		w.logger.Warn("sentinel row not found, appending at end of sheet",
			"artifact", templatePath, "row", plan.InsertRow)
	} else {
		w.logger.Info("found sentinel row",
			"row", plan.SentinelRow, "inserting", len(records))
	}

	st, err := newCellStyles(f)
	if err != nil {
		return &common.ArtifactWriteError{Path: w.config.OutputPath, Err: err}
	}

	// Collapse duplicate sentinels, highest row first.
	for _, row := range plan.DuplicateRows {
		if err := f.RemoveRow(sheet, row); err != nil {
			return &common.ArtifactWriteError{Path: w.config.OutputPath, Err: err}
		}
	}
	if len(plan.DuplicateRows) > 0 {
		w.logger.Info("collapsed duplicate sentinel rows", "removed", len(plan.DuplicateRows))
	}

	if normalized != nil {
		if err := w.rewriteExisting(f, sheet, plan, normalized, cols, st); err != nil {
			return err
		}
	}

	// In append mode there is nothing below the block to shift down.
	if !plan.Append {
		if err := f.InsertRows(sheet, plan.InsertRow, len(records)); err != nil {
			return &common.ArtifactWriteError{Path: w.config.OutputPath, Err: err}
		}
	}

	for i := range records {
		rec := &records[i]
		highlight := rec.Classified && rec.Confidence < w.config.HighlightBelow
		if err := w.writeRecord(f, sheet, plan.InsertRow+i, rec, cols, st, highlight); err != nil {
			return err
		}
	}

	if !plan.Append {
		if err := w.sweepStraySentinels(f, sheet, idCol, len(rows)-len(plan.DuplicateRows)+len(records), plan.RecheckRow); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(w.config.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &common.ArtifactWriteError{Path: w.config.OutputPath, Err: err}
		}
	}
	if err := f.SaveAs(w.config.OutputPath); err != nil {
		return &common.ArtifactWriteError{Path: w.config.OutputPath, Err: err}
	}

	w.logger.Info("merge completed",
		"added", len(records), "output", w.config.OutputPath)
	return nil
}

// rewriteExisting rewrites every data row before the insertion point from the
// normalized ledger. Row i+2 of the sheet corresponds to normalized record i;
// sentinel records are skipped.
func (w *MergeWriter) rewriteExisting(f *excelize.File, sheet string, plan MergePlan, normalized *model.Ledger, cols map[string]int, st cellStyles) error {
	first, last := plan.RewriteRows()
	rewritten := 0
	for row := first; row <= last; row++ {
		idx := row - 2
		if idx < 0 || idx >= len(normalized.Records) {
			break
		}
		rec := &normalized.Records[idx]
		if rec.Sentinel {
			continue
		}
		if err := w.writeRecord(f, sheet, row, rec, cols, st, false); err != nil {
			return err
		}
		rewritten++
	}
	if rewritten > 0 {
		w.logger.Info("rewrote existing rows from normalized data", "rows", rewritten)
	}
	return nil
}

// sweepStraySentinels deletes any sentinel reading that survived outside the
// expected row. Insertion shifts everything below the block down, so the one
// legitimate sentinel must sit exactly at expectedRow; anything else is a
// leftover from a previously corrupted artifact.
func (w *MergeWriter) sweepStraySentinels(f *excelize.File, sheet string, idCol, totalRows, expectedRow int) error {
	var stray []int
	for row := 2; row <= totalRows; row++ {
		if row == expectedRow {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(idCol, row)
		if err != nil {
			return &common.ArtifactWriteError{Path: w.config.OutputPath, Err: err}
		}
		v, err := f.GetCellValue(sheet, cell)
		if err != nil {
			return &common.ArtifactWriteError{Path: w.config.OutputPath, Err: err}
		}
		if schema.IsSentinel(v) {
			stray = append(stray, row)
		}
	}
	for i := len(stray) - 1; i >= 0; i-- {
		if err := f.RemoveRow(sheet, stray[i]); err != nil {
			return &common.ArtifactWriteError{Path: w.config.OutputPath, Err: err}
		}
	}
	if len(stray) > 0 {
		w.logger.Info("removed stray sentinel rows after insertion", "rows", stray)
	}
	return nil
}

// writeRecord writes one record to the given 1-based sheet row, applying the
// column-kind formats and, when highlight is set, the manual-review fill.
func (w *MergeWriter) writeRecord(f *excelize.File, sheet string, row int, rec *model.LedgerRecord, cols map[string]int, st cellStyles, highlight bool) error {
	for _, c := range schema.Columns {
		col := cols[c.Name]
		if col == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return &common.ArtifactWriteError{Path: w.config.OutputPath, Err: err}
		}

		style := 0
		switch c.Kind {
		case schema.KindDate:
			if rec.Date != nil {
				if err := f.SetCellValue(sheet, cell, *rec.Date); err != nil {
					return &common.ArtifactWriteError{Path: w.config.OutputPath, Err: err}
				}
			} else if err := f.SetCellStr(sheet, cell, ""); err != nil {
				return &common.ArtifactWriteError{Path: w.config.OutputPath, Err: err}
			}
			style = st.date
			if highlight {
				style = st.dateWarn
			}
		case schema.KindMonthLabel:
			if err := f.SetCellStr(sheet, cell, rec.MonthLabel); err != nil {
				return &common.ArtifactWriteError{Path: w.config.OutputPath, Err: err}
			}
			style = st.text
			if highlight {
				style = st.textWarn
			}
		case schema.KindMoney:
			if err := f.SetCellValue(sheet, cell, moneyValue(rec, c.Name).InexactFloat64()); err != nil {
				return &common.ArtifactWriteError{Path: w.config.OutputPath, Err: err}
			}
			style = st.money
			if highlight {
				style = st.moneyWarn
			}
		default:
			if err := f.SetCellStr(sheet, cell, textValue(rec, c.Name)); err != nil {
				return &common.ArtifactWriteError{Path: w.config.OutputPath, Err: err}
			}
			if highlight {
				style = st.warn
			}
		}

		if style != 0 {
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return &common.ArtifactWriteError{Path: w.config.OutputPath, Err: err}
			}
		}
	}
	return nil
}

func columnIndexes(rows [][]string) map[string]int {
	cols := make(map[string]int)
	if len(rows) == 0 {
		return cols
	}
	for i, h := range rows[0] {
		cols[strings.TrimSpace(h)] = i + 1
	}
	return cols
}

func identityColumn(rows [][]string, idCol int) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		if idCol-1 < len(row) {
			out[i] = row[idCol-1]
		}
	}
	return out
}

func moneyValue(rec *model.LedgerRecord, column string) decimal.Decimal {
	switch column {
	case schema.ColDebit:
		return rec.Debit
	case schema.ColCredit:
		return rec.Credit
	case schema.ColBalance:
		return rec.Balance
	case schema.ColNet:
		return rec.Net
	}
	return decimal.Zero
}

func textValue(rec *model.LedgerRecord, column string) string {
	switch column {
	case schema.ColEntryNumber:
		return rec.EntryNumber
	case schema.ColDocument:
		return rec.Document
	case schema.ColConcept:
		return rec.Concept
	case schema.ColAccount:
		return rec.Account
	case schema.ColAccountName:
		return rec.AccountName
	case schema.ColExpenseType:
		return rec.ExpenseType
	}
	return ""
}
