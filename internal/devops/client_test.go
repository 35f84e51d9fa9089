package devops

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(Config{BaseURL: ts.URL, Organization: "contoso", Project: "Fabrikam"}, nil)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{Organization: "contoso", Project: "Fabrikam"}, nil)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, "Fabrikam", c.team)
	assert.True(t, c.Configured())

	assert.False(t, NewClient(Config{Organization: "contoso"}, nil).Configured())
	assert.False(t, NewClient(Config{Project: "Fabrikam"}, nil).Configured())
}

func TestWorkItemWebURL(t *testing.T) {
	c := NewClient(Config{Organization: "contoso", Project: "Fabrikam"}, nil)
	assert.Equal(t, "https://dev.azure.com/contoso/Fabrikam/_workitems/edit/42", c.WorkItemWebURL(42))
}

func TestBasicAuthToken(t *testing.T) {
	decoded, err := base64.StdEncoding.DecodeString(basicAuthToken("secret"))
	require.NoError(t, err)
	assert.Equal(t, ":secret", string(decoded))
}

func TestWiql(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/contoso/Fabrikam/_apis/wit/wiql", r.URL.Path)
		assert.Equal(t, "7.1", r.URL.Query().Get("api-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Empty(t, user)
		assert.Equal(t, "my-pat", pass)

		var req WiqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotQuery = req.Query
		_, _ = io.WriteString(w, `{"queryType":"flat","workItems":[{"id":1},{"id":7}]}`)
	})

	resp, err := c.Wiql(context.Background(), "my-pat", "SELECT [System.Id] FROM WorkItems")
	require.NoError(t, err)
	assert.Equal(t, "SELECT [System.Id] FROM WorkItems", gotQuery)
	require.Len(t, resp.WorkItems, 2)
	assert.Equal(t, 7, resp.WorkItems[1].ID)
}

func TestWiql_StatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, "bad token")
	})

	_, err := c.Wiql(context.Background(), "pat", "q")
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, "bad token", se.Body)
	assert.Contains(t, err.Error(), "status 401")
}

func TestWiql_NonAuthoritativeIsStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNonAuthoritativeInfo)
		_, _ = io.WriteString(w, "<html>Sign in</html>")
	})

	_, err := c.Wiql(context.Background(), "expired", "q")
	var se *StatusError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, http.StatusNonAuthoritativeInfo, se.StatusCode)
	assert.Equal(t, "<html>Sign in</html>", se.Body)
}

func TestWorkItemsBatch_NonAuthoritativeIsStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNonAuthoritativeInfo)
		_, _ = io.WriteString(w, "<html>Sign in</html>")
	})

	_, err := c.WorkItemsBatch(context.Background(), "expired", []int{1, 2})
	var se *StatusError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, http.StatusNonAuthoritativeInfo, se.StatusCode)
}

func TestWorkItemsBatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/contoso/Fabrikam/_apis/wit/workitems", r.URL.Path)
		assert.Equal(t, "3,4", r.URL.Query().Get("ids"))
		assert.Equal(t, "all", r.URL.Query().Get("$expand"))
		_, _ = io.WriteString(w, `{"count":2,"value":[
			{"id":3,"fields":{"System.Title":"three","System.CommentCount":2}},
			{"id":4,"fields":{"System.Title":"four"}}]}`)
	})

	items, err := c.WorkItemsBatch(context.Background(), "pat", []int{3, 4})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "three", items[0].Fields["System.Title"])
	assert.EqualValues(t, 2, items[0].Fields["System.CommentCount"])
}

func TestWorkItemsBatch_TooManyIDs(t *testing.T) {
	c := NewClient(Config{Organization: "o", Project: "p"}, nil)
	_, err := c.WorkItemsBatch(context.Background(), "pat", make([]int, MaxBatchSize+1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")
}

func TestComments(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contoso/Fabrikam/_apis/wit/workItems/12/comments", r.URL.Path)
		assert.Equal(t, "7.1-preview.3", r.URL.Query().Get("api-version"))
		_, _ = io.WriteString(w, `{"totalCount":1,"count":1,"comments":[
			{"id":5,"text":"<p>looks good</p>","createdBy":{"displayName":"Ada"},"createdDate":"2024-03-01T10:00:00Z"}]}`)
	})

	comments, err := c.Comments(context.Background(), "pat", 12)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, 5, comments[0].ID)
	require.NotNil(t, comments[0].CreatedBy)
	assert.Equal(t, "Ada", comments[0].CreatedBy.DisplayName)
	require.NotNil(t, comments[0].CreatedDate)
	assert.Equal(t, "2024-03-01T10:00:00Z", *comments[0].CreatedDate)
}

func TestTeamIterations(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contoso/Fabrikam/Fabrikam Team/_apis/work/teamsettings/iterations", r.URL.Path)
		_, _ = io.WriteString(w, `{"count":1,"value":[{"id":"a","name":"Sprint 1","path":"Fabrikam\\Sprint 1",
			"attributes":{"startDate":"2024-01-01T00:00:00Z","finishDate":"2024-01-14T00:00:00Z","timeFrame":"past"}}]}`)
	}))
	t.Cleanup(ts.Close)
	c := NewClient(Config{BaseURL: ts.URL, Organization: "contoso", Project: "Fabrikam", Team: "Fabrikam Team"}, nil)

	iterations, err := c.TeamIterations(context.Background(), "pat")
	require.NoError(t, err)
	require.Len(t, iterations, 1)
	assert.Equal(t, `Fabrikam\Sprint 1`, iterations[0].Path)
	require.NotNil(t, iterations[0].Attributes.TimeFrame)
	assert.Equal(t, "past", *iterations[0].Attributes.TimeFrame)
}

func TestStatusError_TruncatesBody(t *testing.T) {
	err := &StatusError{Op: "wiql", StatusCode: 500, Body: strings.Repeat("x", 5000)}
	assert.True(t, strings.HasSuffix(err.Error(), "..."))
	assert.Less(t, len(err.Error()), 2100)
}
