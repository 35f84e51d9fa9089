// Package sprints answers sprint-scoped questions against Azure DevOps:
// which sprints exist, and which work items in a sprint belong to the caller.
package sprints

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/joescharf/adosprint/internal/devops"
	"github.com/joescharf/adosprint/internal/models"
	"github.com/joescharf/adosprint/internal/sanitize"
)

// Tracker is the subset of the Azure DevOps client the service needs.
type Tracker interface {
	Configured() bool
	Project() string
	Wiql(ctx context.Context, pat, query string) (devops.WiqlResponse, error)
	WorkItemsBatch(ctx context.Context, pat string, ids []int) ([]devops.WorkItem, error)
	Comments(ctx context.Context, pat string, id int) ([]devops.Comment, error)
	TeamIterations(ctx context.Context, pat string) ([]devops.Iteration, error)
	WorkItemWebURL(id int) string
}

// Service runs sprint queries. It keeps no state between calls.
type Service struct {
	tracker Tracker
	log     *slog.Logger
}

// NewService creates a Service. A nil logger falls back to slog.Default().
func NewService(t Tracker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{tracker: t, log: logger}
}

// Configured reports whether an Azure DevOps organization and project are set.
func (s *Service) Configured() bool { return s.tracker.Configured() }

func (s *Service) validate(pat string) error {
	if !s.tracker.Configured() {
		return ErrNotConfigured
	}
	if pat == "" {
		return ErrAuthRequired
	}
	return nil
}

// ListSprints returns the team's sprints ordered current, future, past.
// Sprints with the same time frame keep their Azure DevOps order.
func (s *Service) ListSprints(ctx context.Context, pat string) (*models.SprintList, error) {
	if err := s.validate(pat); err != nil {
		return nil, err
	}

	iterations, err := s.tracker.TeamIterations(ctx, pat)
	if err != nil {
		return nil, upstream("failed to fetch sprints", err)
	}

	sprints := make([]models.Sprint, 0, len(iterations))
	for _, it := range iterations {
		sp := models.Sprint{
			Name:       it.Name,
			Path:       it.Path,
			StartDate:  it.Attributes.StartDate,
			FinishDate: it.Attributes.FinishDate,
		}
		if it.Attributes.TimeFrame != nil {
			tf := models.TimeFrame(*it.Attributes.TimeFrame)
			sp.TimeFrame = &tf
		}
		sprints = append(sprints, sp)
	}
	slices.SortStableFunc(sprints, func(a, b models.Sprint) int {
		return cmp.Compare(a.Phase().Rank(), b.Phase().Rank())
	})

	return &models.SprintList{Total: len(sprints), Sprints: sprints}, nil
}

// WorkItems returns the work items under the sprint's iteration path that the
// PAT owner created or is assigned to, most recently changed first.
func (s *Service) WorkItems(ctx context.Context, sprint, pat string) (*models.SprintWorkItems, error) {
	if err := s.validate(pat); err != nil {
		return nil, err
	}

	resp, err := s.tracker.Wiql(ctx, pat, buildWiql(s.tracker.Project(), sprint))
	if err != nil {
		return nil, upstream("WIQL query failed", err)
	}

	result := &models.SprintWorkItems{Sprint: sprint, WorkItems: []models.WorkItem{}}
	if len(resp.WorkItems) == 0 {
		return result, nil
	}

	ids := make([]int, len(resp.WorkItems))
	for i, ref := range resp.WorkItems {
		ids[i] = ref.ID
	}

	raw, err := s.fetchDetails(ctx, pat, ids)
	if err != nil {
		return nil, err
	}

	for _, wi := range raw {
		result.WorkItems = append(result.WorkItems, s.reshape(ctx, pat, wi))
	}
	result.TotalCount = len(result.WorkItems)
	return result, nil
}

// fetchDetails pulls work items in sequential batches of devops.MaxBatchSize.
// A batch rejected by Azure DevOps is skipped; a transport failure aborts.
func (s *Service) fetchDetails(ctx context.Context, pat string, ids []int) ([]devops.WorkItem, error) {
	var all []devops.WorkItem
	for batch := range slices.Chunk(ids, devops.MaxBatchSize) {
		items, err := s.tracker.WorkItemsBatch(ctx, pat, batch)
		if err != nil {
			var se *devops.StatusError
			if errors.As(err, &se) {
				s.log.Warn("skipping work item batch", "size", len(batch), "status", se.StatusCode)
				continue
			}
			return nil, fmt.Errorf("Azure DevOps API error: %w", err)
		}
		all = append(all, items...)
	}
	return all, nil
}

func (s *Service) reshape(ctx context.Context, pat string, wi devops.WorkItem) models.WorkItem {
	f := wi.Fields
	item := models.WorkItem{
		ID:            wi.ID,
		Title:         textField(f, "System.Title", "N/A"),
		State:         textField(f, "System.State", "N/A"),
		Type:          textField(f, "System.WorkItemType", "N/A"),
		AssignedTo:    displayName(f["System.AssignedTo"]),
		CreatedBy:     displayName(f["System.CreatedBy"]),
		CreatedDate:   stringField(f, "System.CreatedDate"),
		ChangedDate:   stringField(f, "System.ChangedDate"),
		ChangedBy:     displayName(f["System.ChangedBy"]),
		Description:   sanitize.StripHTML(textField(f, "System.Description", "")),
		Tags:          stringField(f, "System.Tags"),
		IterationPath: stringField(f, "System.IterationPath"),
		CommentsCount: intField(f, "System.CommentCount"),
		WebURL:        s.tracker.WorkItemWebURL(wi.ID),
	}
	if item.CommentsCount > 0 {
		item.Comments = s.comments(ctx, pat, wi.ID)
	}
	return item
}

// comments is best-effort: any failure yields no comments.
func (s *Service) comments(ctx context.Context, pat string, id int) []models.Comment {
	raw, err := s.tracker.Comments(ctx, pat, id)
	if err != nil {
		s.log.Warn("fetch comments failed", "work_item", id, "error", err)
		return nil
	}
	if len(raw) == 0 {
		return nil
	}
	out := make([]models.Comment, 0, len(raw))
	for _, c := range raw {
		mc := models.Comment{
			ID:          c.ID,
			Text:        sanitize.StripHTML(c.Text),
			CreatedDate: c.CreatedDate,
		}
		if c.CreatedBy != nil {
			name := c.CreatedBy.DisplayName
			mc.CreatedBy = &name
		}
		out = append(out, mc)
	}
	return out
}

// buildWiql selects items under project\sprint created by or assigned to @Me.
func buildWiql(project, sprint string) string {
	iterationPath := project + `\` + sprint
	return "SELECT [System.Id] " +
		"FROM WorkItems " +
		"WHERE [System.IterationPath] UNDER '" + strings.ReplaceAll(iterationPath, "'", "''") + "' " +
		"AND ([System.CreatedBy] = @Me OR [System.AssignedTo] = @Me) " +
		"ORDER BY [System.ChangedDate] DESC"
}

// displayName accepts either an identity object or a plain string.
func displayName(v any) *string {
	switch val := v.(type) {
	case map[string]any:
		if name, ok := val["displayName"].(string); ok {
			return &name
		}
	case string:
		return &val
	}
	return nil
}

func stringField(fields map[string]any, key string) *string {
	if s, ok := fields[key].(string); ok {
		return &s
	}
	return nil
}

func textField(fields map[string]any, key, fallback string) string {
	if s, ok := fields[key].(string); ok {
		return s
	}
	return fallback
}

func intField(fields map[string]any, key string) int {
	switch n := fields[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}
