// Package pipeline orchestrates the strictly sequential reconciliation run:
// load and normalize both ledgers, audit, optionally remove duplicates,
// diff, classify, and merge the result into the working artifact.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/startupcfo/mayordomo/internal/audit"
	"github.com/startupcfo/mayordomo/internal/classify"
	"github.com/startupcfo/mayordomo/internal/model"
	"github.com/startupcfo/mayordomo/internal/normalize"
	"github.com/startupcfo/mayordomo/internal/recon"
	"github.com/startupcfo/mayordomo/internal/schema"
	"github.com/startupcfo/mayordomo/internal/xlsx"
)

// Ledger labels used in warnings and errors.
const (
	WorkingLabel = "InputPL"
	SourceLabel  = "Mayor"
)

// Confirmer answers the pipeline's yes/no decision points.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Options configures a reconciliation run.
type Options struct {
	WorkingPath     string
	SourcePath      string
	OutputPath      string
	RewriteExisting bool // rewrite pre-sentinel rows from normalized data
	OfferDedupe     bool // offer removal when exact duplicates are found
	DryRun          bool // stop before writing the artifact
	ShowProgress    bool
}

// Result summarizes a run. NewRecords distinguishes "nothing to add" from a
// merge of Added rows.
type Result struct {
	Warnings          []audit.Warning
	DuplicatesRemoved int
	NewRecords        int
	Added             int
}

// Run executes the full pipeline. Each stage fully consumes its
// predecessor's output; the merge writer is the only stage with side
// effects and it persists nothing until every mutation has succeeded.
func Run(ctx context.Context, opts Options, logger *slog.Logger, confirm Confirmer) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	result := &Result{}

	working, err := loadWorking(opts.WorkingPath)
	if err != nil {
		return nil, err
	}
	source, err := loadSource(opts.SourcePath)
	if err != nil {
		return nil, err
	}

	result.Warnings = append(result.Warnings, audit.Audit(working)...)
	result.Warnings = append(result.Warnings, audit.Audit(source)...)
	for _, w := range result.Warnings {
		logger.Warn(w.Message, "ledger", w.Label)
	}

	if opts.OfferDedupe {
		source, err = offerDedupe(ctx, source, logger, confirm, result)
		if err != nil {
			return nil, err
		}
	}

	missing, err := recon.FindMissing(working, source)
	if err != nil {
		return nil, err
	}
	result.NewRecords = len(missing)
	logger.Info("reconciliation finished", "new_records", len(missing))
	if len(missing) == 0 {
		return result, nil
	}

	classifier := classify.NewClassifier(logger, opts.ShowProgress)
	enriched := classifier.Classify(missing, working)

	if opts.DryRun {
		logger.Info("dry run, skipping merge", "would_add", len(enriched))
		return result, nil
	}

	writer, err := xlsx.NewMergeWriter(xlsx.DefaultWriterConfig(opts.OutputPath), logger)
	if err != nil {
		return nil, err
	}
	var rewriteFrom *model.Ledger
	if opts.RewriteExisting {
		rewriteFrom = working
	}
	if err := writer.Merge(enriched, opts.WorkingPath, rewriteFrom); err != nil {
		return nil, err
	}

	result.Added = len(enriched)
	return result, nil
}

// loadWorking loads and normalizes the working ledger, validating the full
// canonical column set on the raw input.
func loadWorking(path string) (*model.Ledger, error) {
	table, err := xlsx.LoadTable(path, WorkingLabel)
	if err != nil {
		return nil, err
	}
	if err := normalize.ValidateColumns(table.Headers, schema.RequiredWorkingColumns(), WorkingLabel); err != nil {
		return nil, err
	}
	return normalize.Normalize(table, false)
}

// loadSource loads and normalizes the source ledger, validating the key
// columns plus concept after header renaming.
func loadSource(path string) (*model.Ledger, error) {
	table, err := xlsx.LoadTable(path, SourceLabel)
	if err != nil {
		return nil, err
	}
	renamed := normalize.RenameHeaders(table.Headers)
	if err := normalize.ValidateColumns(renamed, schema.RequiredSourceColumns(), SourceLabel); err != nil {
		return nil, err
	}
	return normalize.Normalize(table, true)
}

// offerDedupe asks the user before removing exact duplicates from the source
// ledger. Working-ledger duplicates are only reported: removing them here
// would desynchronize the in-memory copy from the persisted artifact, which
// the rewrite path corrects instead.
func offerDedupe(ctx context.Context, source *model.Ledger, logger *slog.Logger, confirm Confirmer, result *Result) (*model.Ledger, error) {
	cleaned, removed, summary := audit.RemoveExactDuplicates(source)
	if removed == 0 {
		return source, nil
	}
	if confirm == nil {
		logger.Warn("duplicates found but no confirmer available, keeping rows", "rows", removed)
		return source, nil
	}

	question := fmt.Sprintf("Remove %d exact duplicate rows from %s?", removed, source.Label)
	ok, err := confirm.Confirm(ctx, question)
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.Info("duplicate removal declined", "ledger", source.Label)
		return source, nil
	}

	logger.Info(summary)
	result.DuplicatesRemoved = removed
	return cleaned, nil
}
