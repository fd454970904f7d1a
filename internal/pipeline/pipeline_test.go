package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/startupcfo/mayordomo/internal/common"
	"github.com/startupcfo/mayordomo/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var workingHeaders = []any{
	"Nº Asiento", "Fecha", "Documento", "Concepto", "Cuenta",
	"Debe", "Haber", "Saldo", "Nombre cuenta", "Neto", "Mes", "Tipo de gasto",
}

var sourceHeaders = []any{
	"Nº Asiento", "Fecha", "Documento", "Concepto", "Cuenta",
	"Debe", "Haber", "Saldo", "Nombre cuenta", "Net", "Month",
}

func buildWorkbook(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

func readColumn(t *testing.T, path string, col int) []string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)

	out := make([]string, len(rows))
	for i, row := range rows {
		if col-1 < len(row) {
			out[i] = row[col-1]
		}
	}
	return out
}

type yesConfirmer struct{ asked int }

func (c *yesConfirmer) Confirm(_ context.Context, _ string) (bool, error) {
	c.asked++
	return true, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeFixtures(t *testing.T, dir string) (working, source string) {
	working = filepath.Join(dir, "InputPL.xlsx")
	source = filepath.Join(dir, "Mayor.xlsx")

	buildWorkbook(t, working, [][]any{
		workingHeaders,
		{"1", "2025-01-15", "D1", "Office rent", "621", 0, 0, 100.50, "", 0, "ene/25", "Admin"},
		{"2", "2025-01-20", "D2", "Cloud hosting", "629", 0, 0, 200.75, "", 0, "ene/25", "IT"},
		{"3", "2025-02-10", "D3", "Nomina enero", "640", 0, 0, 150.00, "", 0, "feb/25", "Payroll"},
		{"END"},
	})
	buildWorkbook(t, source, [][]any{
		sourceHeaders,
		{"1", "2025-01-15", "D1", "Office rent", "621", 0, 0, 100.50, "", 0, "2025-01-15"},
		{"2", "2025-01-20", "D2", "Cloud hosting", "629", 0, 0, 200.75, "", 0, "2025-01-20"},
		{"3", "2025-02-10", "D3", "Nomina enero", "640", 0, 0, 150.00, "", 0, "2025-02-10"},
		{"4", "2025-03-15", "D4", "OFFICE RENT", "621", 0, 0, 300.00, "", 0, "2025-03-15"},
		{"5", "2025-03-20", "D5", "Something brand new", "700", 0, 0, 400.00, "", 0, "2025-03-20"},
	})
	return working, source
}

func TestRunAddsMissingClassifiedRecords(t *testing.T) {
	dir := t.TempDir()
	working, source := writeFixtures(t, dir)
	output := filepath.Join(dir, "out", "InputPL_updated.xlsx")

	result, err := Run(context.Background(), Options{
		WorkingPath: working,
		SourcePath:  source,
		OutputPath:  output,
	}, testLogger(), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.NewRecords)
	assert.Equal(t, 2, result.Added)

	ids := readColumn(t, output, 1)
	require.Len(t, ids, 7)
	assert.Equal(t, []string{"Nº Asiento", "1", "2", "3", "4", "5", "END"}, ids)

	// "OFFICE RENT" fuzzy-matches the learned "Office rent" concept.
	categories := readColumn(t, output, 12)
	assert.Equal(t, "Admin", categories[4])
	// Nothing in history resembles the other record.
	assert.Equal(t, "NEW - NEEDS REVIEW", categories[5])

	// The month label is re-derived from the date.
	months := readColumn(t, output, 11)
	assert.Equal(t, "mar/25", months[4])

	sentinels := 0
	for _, v := range ids {
		if schema.IsSentinel(v) {
			sentinels++
		}
	}
	assert.Equal(t, 1, sentinels)
}

func TestRunNothingToAdd(t *testing.T) {
	dir := t.TempDir()
	working := filepath.Join(dir, "InputPL.xlsx")
	buildWorkbook(t, working, [][]any{
		workingHeaders,
		{"1", "2025-01-15", "D1", "Office rent", "621", 0, 0, 100.50, "", 0, "ene/25", "Admin"},
		{"END"},
	})
	source := filepath.Join(dir, "Mayor.xlsx")
	buildWorkbook(t, source, [][]any{
		sourceHeaders,
		{"1", "2025-01-15", "D1", "Office rent", "621", 0, 0, 100.50, "", 0, "2025-01-15"},
	})
	output := filepath.Join(dir, "out.xlsx")

	result, err := Run(context.Background(), Options{
		WorkingPath: working,
		SourcePath:  source,
		OutputPath:  output,
	}, testLogger(), nil)
	require.NoError(t, err)

	assert.Zero(t, result.NewRecords)
	assert.Zero(t, result.Added)
	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr), "no output artifact when there is nothing to add")
}

func TestRunMissingWorkingColumnsIsStructural(t *testing.T) {
	dir := t.TempDir()
	working := filepath.Join(dir, "InputPL.xlsx")
	buildWorkbook(t, working, [][]any{
		{"Nº Asiento", "Fecha"}, // far from the canonical schema
		{"1", "2025-01-15"},
	})
	source := filepath.Join(dir, "Mayor.xlsx")
	buildWorkbook(t, source, [][]any{sourceHeaders})

	_, err := Run(context.Background(), Options{
		WorkingPath: working,
		SourcePath:  source,
		OutputPath:  filepath.Join(dir, "out.xlsx"),
	}, testLogger(), nil)
	require.Error(t, err)

	var structural *common.StructuralError
	assert.True(t, errors.As(err, &structural))
	assert.True(t, common.IsFatalInput(err))
}

func TestRunMissingInputFile(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "Mayor.xlsx")
	buildWorkbook(t, source, [][]any{sourceHeaders})

	_, err := Run(context.Background(), Options{
		WorkingPath: filepath.Join(dir, "nope.xlsx"),
		SourcePath:  source,
		OutputPath:  filepath.Join(dir, "out.xlsx"),
	}, testLogger(), nil)
	require.Error(t, err)

	var missing *common.MissingInputError
	assert.True(t, errors.As(err, &missing))
}

func TestRunDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	working, source := writeFixtures(t, dir)
	output := filepath.Join(dir, "out.xlsx")

	result, err := Run(context.Background(), Options{
		WorkingPath: working,
		SourcePath:  source,
		OutputPath:  output,
		DryRun:      true,
	}, testLogger(), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.NewRecords)
	assert.Zero(t, result.Added)
	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunDedupePromptsAndRemoves(t *testing.T) {
	dir := t.TempDir()
	working := filepath.Join(dir, "InputPL.xlsx")
	buildWorkbook(t, working, [][]any{
		workingHeaders,
		{"1", "2025-01-15", "D1", "Office rent", "621", 0, 0, 100.50, "", 0, "ene/25", "Admin"},
		{"END"},
	})
	source := filepath.Join(dir, "Mayor.xlsx")
	buildWorkbook(t, source, [][]any{
		sourceHeaders,
		{"4", "2025-03-15", "D4", "New record", "621", 0, 0, 300.00, "", 0, "2025-03-15"},
		{"4", "2025-03-15", "D4", "New record again", "621", 0, 0, 300.00, "", 0, "2025-03-15"},
	})
	output := filepath.Join(dir, "out.xlsx")

	confirmer := &yesConfirmer{}
	result, err := Run(context.Background(), Options{
		WorkingPath: working,
		SourcePath:  source,
		OutputPath:  output,
		OfferDedupe: true,
	}, testLogger(), confirmer)
	require.NoError(t, err)

	assert.Equal(t, 1, confirmer.asked, "duplicate removal is never silent")
	assert.Equal(t, 1, result.DuplicatesRemoved)
	assert.Equal(t, 1, result.NewRecords)
	assert.Equal(t, 1, result.Added)
}
