package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/startupcfo/mayordomo/internal/audit"
	"github.com/startupcfo/mayordomo/internal/cli"
	"github.com/startupcfo/mayordomo/internal/normalize"
	"github.com/startupcfo/mayordomo/internal/pipeline"
	"github.com/startupcfo/mayordomo/internal/xlsx"
)

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit one spreadsheet's data quality without changing anything",
		Long: `Normalize a ledger file and report quality findings: negative amounts,
blank critical fields, exact duplicate rows, and entries whose balance is
inconsistent across duplicates. Warnings are advisory; the exit code is zero
even when findings exist.`,
		RunE: runAudit,
	}

	cmd.Flags().StringP("file", "f", "", "ledger xlsx to audit")
	cmd.Flags().Bool("source", false, "treat the file as the Mayor ledger (apply header renames)")
	_ = cmd.MarkFlagRequired("file")

	_ = viper.BindPFlag("audit.file", cmd.Flags().Lookup("file"))
	_ = viper.BindPFlag("audit.source", cmd.Flags().Lookup("source"))

	return cmd
}

func runAudit(cmd *cobra.Command, _ []string) error {
	path := viper.GetString("audit.file")
	isSource := viper.GetBool("audit.source")

	label := pipeline.WorkingLabel
	if isSource {
		label = pipeline.SourceLabel
	}

	table, err := xlsx.LoadTable(path, label)
	if err != nil {
		return err
	}
	ledger, err := normalize.Normalize(table, isSource)
	if err != nil {
		return err
	}

	warnings := audit.Audit(ledger)
	if len(warnings) == 0 {
		cmd.Println(cli.FormatSuccess("No quality findings"))
		return nil
	}
	for _, w := range warnings {
		cmd.Println(cli.FormatWarning(w.String()))
	}
	return nil
}
