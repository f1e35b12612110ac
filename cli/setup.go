package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amlstack/advisor/engine/core"
	"github.com/amlstack/advisor/engine/knowledge"
	"github.com/amlstack/advisor/pkg/config"
)

const probeQuery = "suspicious transaction reporting requirements"

// SetupCmd verifies the environment before a first advisory run: the
// configuration loads, the vector store answers, and every category
// collection (plus the fallback) responds to a test search.
func SetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Verify configuration and knowledge store connectivity",
		RunE:  runSetup,
	}
}

func runSetup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("✗ configuration: %v", err)))
		return err
	}
	fmt.Fprintln(out, successStyle.Render("✓ configuration loaded"))

	rt, err := newRuntime(cfg)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("✗ knowledge store: %v", err)))
		return err
	}
	defer rt.Close(ctx)

	known, err := rt.store.Collections(ctx)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("✗ knowledge store unreachable: %v", err)))
		return err
	}
	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf(
		"✓ knowledge store reachable (%s, %d collections)", cfg.Store.Provider, len(known))))

	mapping := knowledge.NewMapping()
	available := 0
	probed := 0
	for _, category := range core.AllCategories() {
		collection, _ := mapping.Resolve(category)
		probed++
		if probeCollection(ctx, rt, collection) {
			available++
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✓ %s -> %s", category, collection)))
		} else {
			fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("✗ %s -> %s (search failed)", category, collection)))
		}
	}
	probed++
	if probeCollection(ctx, rt, knowledge.FallbackCollection) {
		available++
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✓ fallback -> %s", knowledge.FallbackCollection)))
	} else {
		fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("✗ fallback -> %s (search failed)", knowledge.FallbackCollection)))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, headingStyle.Render(fmt.Sprintf("%d/%d collections available", available, probed)))
	return nil
}

func probeCollection(ctx context.Context, rt *runtime, collection string) bool {
	base, err := knowledge.NewBase(rt.store, rt.embedder, collection, knowledge.WithNumResults(1))
	if err != nil {
		return false
	}
	_, err = base.SearchKnowledge(ctx, probeQuery)
	return err == nil
}
