package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/startupcfo/mayordomo/internal/cli"
	"github.com/startupcfo/mayordomo/internal/pipeline"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile the working ledger against the Mayor and merge new records",
		Long: `Run the full pipeline: normalize both spreadsheets, audit their quality,
find Mayor records missing from the working ledger, classify them from the
historical categories, and insert them above the END sentinel row.

The original working file is never modified; the merged result is written to
a separate output file.`,
		RunE: runReconcile,
	}

	cmd.Flags().StringP("working", "w", "", "working ledger xlsx (InputPL)")
	cmd.Flags().StringP("source", "s", "", "source ledger xlsx (Mayor)")
	cmd.Flags().StringP("output", "o", "", "output path (default: <working>_updated.xlsx)")
	cmd.Flags().Bool("rewrite", false, "rewrite existing rows from normalized data to fix corrupted cells")
	cmd.Flags().Bool("dedupe", false, "offer removal of exact duplicate rows before reconciling")
	cmd.Flags().BoolP("yes", "y", false, "answer yes to every prompt")
	cmd.Flags().Bool("dry-run", false, "classify but do not write the output file")
	_ = cmd.MarkFlagRequired("working")
	_ = cmd.MarkFlagRequired("source")

	_ = viper.BindPFlag("run.working", cmd.Flags().Lookup("working"))
	_ = viper.BindPFlag("run.source", cmd.Flags().Lookup("source"))
	_ = viper.BindPFlag("run.output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("run.rewrite", cmd.Flags().Lookup("rewrite"))
	_ = viper.BindPFlag("run.dedupe", cmd.Flags().Lookup("dedupe"))
	_ = viper.BindPFlag("run.yes", cmd.Flags().Lookup("yes"))
	_ = viper.BindPFlag("run.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	workingPath := viper.GetString("run.working")
	sourcePath := viper.GetString("run.source")
	outputPath := viper.GetString("run.output")
	if outputPath == "" {
		outputPath = defaultOutputPath(workingPath)
	}
	if outputPath == workingPath {
		return fmt.Errorf("output path must differ from the working ledger path")
	}

	slog.Info(cli.FormatTitle("Reconciling ledgers"))
	slog.Info("Inputs", "working", workingPath, "source", sourcePath, "output", outputPath)

	opts := pipeline.Options{
		WorkingPath:     workingPath,
		SourcePath:      sourcePath,
		OutputPath:      outputPath,
		RewriteExisting: viper.GetBool("run.rewrite"),
		OfferDedupe:     viper.GetBool("run.dedupe"),
		DryRun:          viper.GetBool("run.dry_run"),
		ShowProgress:    true,
	}
	prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout(), viper.GetBool("run.yes"))

	result, err := pipeline.Run(ctx, opts, slog.Default(), prompter)
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		cmd.Println(cli.FormatWarning(w.String()))
	}
	switch {
	case result.NewRecords == 0:
		cmd.Println(cli.FormatSuccess("No new records found; working ledger is up to date"))
	case opts.DryRun:
		cmd.Println(cli.FormatSuccess(fmt.Sprintf("Dry run: %d new records would be added", result.NewRecords)))
	default:
		cmd.Println(cli.FormatSuccess(fmt.Sprintf("Added %d records to %s", result.Added, outputPath)))
	}
	return nil
}

func defaultOutputPath(workingPath string) string {
	ext := filepath.Ext(workingPath)
	stem := strings.TrimSuffix(workingPath, ext)
	if ext == "" {
		ext = ".xlsx"
	}
	return stem + "_updated" + ext
}
