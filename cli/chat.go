package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/amlstack/advisor/engine/advisory"
	"github.com/amlstack/advisor/engine/document"
	"github.com/amlstack/advisor/engine/report"
	"github.com/amlstack/advisor/pkg/config"
)

// ChatCmd runs an interactive session: each line is a full advisory run
// with progress streamed as it happens.
func ChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive AML advisory session",
		RunE:  runChat,
	}
	cmd.Flags().String("documents-dir", "./aml_documents", "Directory with supporting documents")
	cmd.Flags().StringArray("collection", nil, "Override a category collection (category=collection_name, repeatable)")
	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	documentsDir, _ := cmd.Flags().GetString("documents-dir")
	overrides, _ := cmd.Flags().GetStringArray("collection")
	if !cmd.Flags().Changed("documents-dir") {
		documentsDir = cfg.Documents.Dir
	}

	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	sink := advisory.NewChannelSink(64)
	pipeline, err := rt.pipeline(buildMapping(ctx, overrides), sink)
	if err != nil {
		return err
	}
	documents := document.Load(ctx, documentsDir)

	out := cmd.OutOrStdout()
	var printMu sync.Mutex
	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range sink.Events() {
			printMu.Lock()
			fmt.Fprintln(out, renderEvent(event))
			printMu.Unlock()
		}
	}()

	fmt.Fprintln(out, headingStyle.Render("AML Advisory Chat"))
	fmt.Fprintln(out, "Type a question, or \"exit\" to quit.")
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			break
		}
		advice, err := pipeline.Run(ctx, query, documents)
		if err != nil {
			printMu.Lock()
			fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("Run failed: %v", err)))
			printMu.Unlock()
			continue
		}
		markdown, err := report.Render(advice)
		if err != nil {
			printMu.Lock()
			fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("Render failed: %v", err)))
			printMu.Unlock()
			continue
		}
		printMu.Lock()
		fmt.Fprintln(out)
		fmt.Fprintln(out, markdown)
		printMu.Unlock()
	}
	sink.Close()
	<-done
	if err := scanner.Err(); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func renderEvent(event advisory.Event) string {
	label := string(event.Type)
	if event.Category != "" {
		label += " [" + event.Category.String() + "]"
	}
	switch event.Type {
	case advisory.EventSpecialistFailed, advisory.EventRunFailed:
		return errorStyle.Render("• " + label)
	case advisory.EventRunCompleted, advisory.EventSpecialistCompleted, advisory.EventSynthesisCompleted:
		return successStyle.Render("• " + label)
	default:
		return warnStyle.Render("• " + label)
	}
}
