package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/amlstack/advisor/engine/document"
	"github.com/amlstack/advisor/engine/report"
	"github.com/amlstack/advisor/pkg/config"
	"github.com/amlstack/advisor/pkg/logger"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// AdviseCmd runs one advisory query end to end and writes the markdown
// report to disk.
func AdviseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Run an AML advisory query and write a markdown report",
		RunE:  runAdvise,
	}
	cmd.Flags().String("query", "", "The AML question or scenario to analyze")
	cmd.Flags().String("documents-dir", "./aml_documents", "Directory with supporting documents")
	cmd.Flags().String("output-report", "aml_advice.md", "Path for the generated report")
	cmd.Flags().StringArray("collection", nil, "Override a category collection (category=collection_name, repeatable)")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func runAdvise(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	query, _ := cmd.Flags().GetString("query")
	documentsDir, _ := cmd.Flags().GetString("documents-dir")
	outputReport, _ := cmd.Flags().GetString("output-report")
	overrides, _ := cmd.Flags().GetStringArray("collection")
	if !cmd.Flags().Changed("documents-dir") {
		documentsDir = cfg.Documents.Dir
	}

	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	pipeline, err := rt.pipeline(buildMapping(ctx, overrides), nil)
	if err != nil {
		return err
	}

	documents := document.Load(ctx, documentsDir)
	log.Info("Starting advisory run", "query", query, "documents", len(documents))

	advice, err := pipeline.Run(ctx, query, documents)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(fmt.Sprintf("Advisory run failed: %v", err)))
		return err
	}

	markdown, err := report.Render(advice)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputReport, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", outputReport, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("Report written to %s", outputReport)))
	fmt.Fprintln(out)
	fmt.Fprintln(out, headingStyle.Render("Executive Summary"))
	fmt.Fprintln(out, advice.Result.ExecutiveSummary)
	return nil
}
