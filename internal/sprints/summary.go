package sprints

import (
	"strings"

	"github.com/joescharf/adosprint/internal/models"
)

// Summarize reduces a query result to titles, non-empty descriptions and
// non-empty comment texts. Items with comments always carry a comments list,
// even when every text was empty.
func Summarize(result *models.SprintWorkItems) models.Summary {
	items := make([]models.SummaryItem, 0, len(result.WorkItems))
	for _, wi := range result.WorkItems {
		si := models.SummaryItem{Title: wi.Title}
		if strings.TrimSpace(wi.Description) != "" {
			si.Description = wi.Description
		}
		if len(wi.Comments) > 0 {
			si.Comments = make([]string, 0, len(wi.Comments))
		}
		for _, c := range wi.Comments {
			if c.Text != "" {
				si.Comments = append(si.Comments, c.Text)
			}
		}
		items = append(items, si)
	}
	return models.Summary{
		Sprint:     result.Sprint,
		TotalCount: result.TotalCount,
		Items:      items,
	}
}
