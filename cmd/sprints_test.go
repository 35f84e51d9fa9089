package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/adosprint/internal/models"
)

// fakeAzureServer serves canned Azure DevOps responses for the query commands.
func fakeAzureServer(t *testing.T) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/_apis/wit/wiql"):
			_, _ = io.WriteString(w, `{"workItems":[{"id":42}]}`)
		case strings.HasSuffix(r.URL.Path, "/_apis/wit/workitems"):
			_, _ = io.WriteString(w, `{"value":[{"id":42,"fields":{
				"System.Title":"Fix login","System.State":"Active","System.WorkItemType":"Bug",
				"System.AssignedTo":{"displayName":"Ada"},"System.Description":"<p>broken on Safari</p>"}}]}`)
		case strings.HasSuffix(r.URL.Path, "/_apis/work/teamsettings/iterations"):
			_, _ = io.WriteString(w, `{"value":[
				{"name":"Sprint 36","path":"Fabrikam\\Sprint 36","attributes":{"timeFrame":"past","startDate":"2024-02-15T00:00:00Z"}},
				{"name":"Sprint 37","path":"Fabrikam\\Sprint 37","attributes":{"timeFrame":"current","startDate":"2024-03-01T00:00:00Z"}}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)

	viper.Set("base_url", ts.URL)
	viper.Set("org", "contoso")
	viper.Set("project", "Fabrikam")
	viper.Set("pat", "test-pat")
}

func outString() string {
	return ui.Out.(*bytes.Buffer).String()
}

func TestSprintsRun(t *testing.T) {
	testEnv(t)
	fakeAzureServer(t)
	queryJSON = false

	require.NoError(t, sprintsRun(context.Background()))
	out := outString()
	assert.Contains(t, out, "Sprint 37")
	assert.Contains(t, out, "2024-03-01")
	assert.Less(t, strings.Index(out, "Sprint 37"), strings.Index(out, "Sprint 36"), "current sprint listed first")
}

func TestSprintsRun_JSON(t *testing.T) {
	testEnv(t)
	fakeAzureServer(t)
	queryJSON = true
	t.Cleanup(func() { queryJSON = false })

	require.NoError(t, sprintsRun(context.Background()))

	var list models.SprintList
	require.NoError(t, json.Unmarshal([]byte(outString()), &list))
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, "Sprint 37", list.Sprints[0].Name)
}

func TestSprintsRun_NoPAT(t *testing.T) {
	testEnv(t)
	fakeAzureServer(t)
	viper.Set("pat", "")

	err := sprintsRun(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AZURE_PAT")
}

func TestItemsRun(t *testing.T) {
	testEnv(t)
	fakeAzureServer(t)
	queryJSON = false

	require.NoError(t, itemsRun(context.Background(), "Sprint 37"))
	out := outString()
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "Fix login")
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "1 work items")
}

func TestItemsRun_NotConfigured(t *testing.T) {
	testEnv(t)
	fakeAzureServer(t)
	viper.Set("project", "")

	err := itemsRun(context.Background(), "Sprint 37")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration is incomplete")
}

func TestSummaryRun(t *testing.T) {
	testEnv(t)
	fakeAzureServer(t)

	require.NoError(t, summaryRun(context.Background(), "Sprint 37"))
	assert.JSONEq(t,
		`{"sprint":"Sprint 37","total_count":1,"items":[{"title":"Fix login","description":"broken on Safari"}]}`,
		outString())
}

func TestDigestRun_NoAPIKey(t *testing.T) {
	testEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "")

	err := digestRun(context.Background(), "Sprint 37")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestDigestRun_DryRun(t *testing.T) {
	testEnv(t)
	fakeAzureServer(t)
	viper.Set("anthropic.api_key", "sk-test")
	dryRun = true
	ui.DryRun = true
	t.Cleanup(func() { dryRun = false })

	require.NoError(t, digestRun(context.Background(), "Sprint 37"))
	assert.Contains(t, ui.ErrOut.(*bytes.Buffer).String(), "Would send 1 work items")
}

func TestShortDate(t *testing.T) {
	d := "2024-03-01T00:00:00Z"
	assert.Equal(t, "2024-03-01", shortDate(&d))
	assert.Equal(t, "", shortDate(nil))
}

func TestNewAPIServer_BadTimezone(t *testing.T) {
	testEnv(t)
	viper.Set("timezone", "Mars/Olympus")

	_, err := newAPIServer(newLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timezone")
}

func TestNewAPIServer_Health(t *testing.T) {
	testEnv(t)

	srv, err := newAPIServer(newLogger())
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "+08:00")
}
