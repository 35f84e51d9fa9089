package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Write a short LLM digest of your sprint",
	Long: `Summarize your work items in a sprint and ask Claude for a short
stand-up style digest.

Requires ANTHROPIC_API_KEY environment variable or anthropic.api_key in config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return digestRun(cmd.Context(), querySprint)
	},
}

func init() {
	digestCmd.Flags().StringVarP(&querySprint, "sprint", "s", "", "Sprint name, e.g. \"Sprint 37\" (required)")
	_ = digestCmd.MarkFlagRequired("sprint")
	rootCmd.AddCommand(digestCmd)
}

func digestRun(ctx context.Context, sprint string) error {
	client := newLLMClient()
	if client == nil {
		return fmt.Errorf("ANTHROPIC_API_KEY not set (set env var or anthropic.api_key in config)")
	}

	summary, err := sprintSummary(ctx, sprint)
	if err != nil {
		return err
	}

	ui.VerboseLog("Digesting %d work items with %s", summary.TotalCount, client.Model())
	if dryRun {
		ui.DryRunMsg("Would send %d work items to %s", summary.TotalCount, client.Model())
		return nil
	}

	digest, err := client.Digest(ctx, summary)
	if err != nil {
		return fmt.Errorf("digest sprint: %w", err)
	}
	fmt.Fprintln(ui.Out, digest)
	return nil
}
