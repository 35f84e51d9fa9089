package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/adosprint/internal/models"
)

func TestBuildDigestPrompt(t *testing.T) {
	t.Run("with items", func(t *testing.T) {
		summary := models.Summary{
			Sprint:     "Sprint 37",
			TotalCount: 2,
			Items: []models.SummaryItem{
				{Title: "Fix login", Description: "Login fails on Safari"},
				{Title: "Add export", Comments: []string{"blocked on API review"}},
			},
		}
		system, user, err := buildDigestPrompt(summary)
		require.NoError(t, err)

		assert.Contains(t, system, "digest")
		assert.Contains(t, system, "Do not invent")

		assert.Contains(t, user, "Sprint 37")
		assert.Contains(t, user, "Fix login")
		assert.Contains(t, user, "Login fails on Safari")
		assert.Contains(t, user, "blocked on API review")
	})

	t.Run("empty sprint", func(t *testing.T) {
		system, user, err := buildDigestPrompt(models.Summary{Sprint: "Sprint 1", Items: []models.SummaryItem{}})
		require.NoError(t, err)

		assert.Contains(t, system, "no work items")
		assert.Contains(t, user, `"items": []`)
	})
}

func TestNewClient(t *testing.T) {
	c := NewClient("key", "claude-haiku-4-5-20251001")
	require.NotNil(t, c)
	assert.Equal(t, "claude-haiku-4-5-20251001", c.Model())
}
