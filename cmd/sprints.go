package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/adosprint/internal/models"
	"github.com/joescharf/adosprint/internal/output"
	"github.com/joescharf/adosprint/internal/sprints"
)

var (
	queryJSON   bool
	querySprint string
)

var sprintsCmd = &cobra.Command{
	Use:   "sprints",
	Short: "List the team's sprints",
	Long:  "List the team's sprints, current first, then future, then past.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sprintsRun(cmd.Context())
	},
}

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "List your work items in a sprint",
	Long:  "List the work items in a sprint that you created or are assigned to.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return itemsRun(cmd.Context(), querySprint)
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print a condensed JSON summary of a sprint",
	Long: `Print titles, descriptions and comment texts of your work items in a
sprint as JSON. The output is meant to be pasted into an LLM prompt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return summaryRun(cmd.Context(), querySprint)
	},
}

func init() {
	sprintsCmd.Flags().BoolVar(&queryJSON, "json", false, "Print raw JSON")
	itemsCmd.Flags().BoolVar(&queryJSON, "json", false, "Print raw JSON")

	for _, c := range []*cobra.Command{itemsCmd, summaryCmd} {
		c.Flags().StringVarP(&querySprint, "sprint", "s", "", "Sprint name, e.g. \"Sprint 37\" (required)")
		_ = c.MarkFlagRequired("sprint")
	}

	rootCmd.AddCommand(sprintsCmd)
	rootCmd.AddCommand(itemsCmd)
	rootCmd.AddCommand(summaryCmd)
}

func sprintsRun(ctx context.Context) error {
	pat, err := localPAT()
	if err != nil {
		return err
	}
	svc := newSprintService(newLogger())

	list, err := svc.ListSprints(ctx, pat)
	if err != nil {
		return err
	}
	if queryJSON {
		return printJSON(list)
	}
	if list.Total == 0 {
		ui.Info("No sprints found.")
		return nil
	}

	table := ui.Table([]string{"Sprint", "Time Frame", "Start", "Finish", "Path"})
	for _, sp := range list.Sprints {
		_ = table.Append([]string{
			sp.Name,
			output.TimeFrameColor(string(sp.Phase())),
			shortDate(sp.StartDate),
			shortDate(sp.FinishDate),
			sp.Path,
		})
	}
	return table.Render()
}

func itemsRun(ctx context.Context, sprint string) error {
	pat, err := localPAT()
	if err != nil {
		return err
	}
	svc := newSprintService(newLogger())

	result, err := svc.WorkItems(ctx, sprint, pat)
	if err != nil {
		return err
	}
	if queryJSON {
		return printJSON(result)
	}
	if result.TotalCount == 0 {
		ui.Info("No work items in %s.", output.Cyan(sprint))
		return nil
	}

	table := ui.Table([]string{"ID", "Type", "State", "Title", "Assigned To", "Comments"})
	for _, wi := range result.WorkItems {
		_ = table.Append([]string{
			strconv.Itoa(wi.ID),
			wi.Type,
			output.StateColor(wi.State),
			wi.Title,
			deref(wi.AssignedTo),
			strconv.Itoa(wi.CommentsCount),
		})
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintln(ui.Out)
	ui.Info("%d work items in %s", result.TotalCount, output.Cyan(sprint))
	return nil
}

func summaryRun(ctx context.Context, sprint string) error {
	summary, err := sprintSummary(ctx, sprint)
	if err != nil {
		return err
	}
	return printJSON(summary)
}

func sprintSummary(ctx context.Context, sprint string) (models.Summary, error) {
	pat, err := localPAT()
	if err != nil {
		return models.Summary{}, err
	}
	svc := newSprintService(newLogger())

	result, err := svc.WorkItems(ctx, sprint, pat)
	if err != nil {
		return models.Summary{}, err
	}
	return sprints.Summarize(result), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(ui.Out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// shortDate trims an ISO timestamp to its date part.
func shortDate(s *string) string {
	d := deref(s)
	if i := strings.IndexByte(d, 'T'); i > 0 {
		return d[:i]
	}
	return d
}
