// Package devops is a minimal Azure DevOps REST client. Every call is
// authenticated with the caller's PAT; the client itself holds no credential.
package devops

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://dev.azure.com"

	// MaxBatchSize is the largest id list the work items endpoint accepts.
	MaxBatchSize = 200

	apiVersion         = "7.1"
	commentsAPIVersion = "7.1-preview.3"

	queryTimeout     = 15 * time.Second
	detailTimeout    = 15 * time.Second
	commentTimeout   = 10 * time.Second
	iterationTimeout = 10 * time.Second
)

// Config identifies the organization, project and team to talk to.
type Config struct {
	BaseURL      string
	Organization string
	Project      string
	Team         string // defaults to Project
}

// StatusError is returned for any response other than 200 OK.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, truncateBody([]byte(e.Body)))
}

// Client talks to a single Azure DevOps project.
type Client struct {
	baseURL string
	org     string
	project string
	team    string
	http    *http.Client
	log     *slog.Logger
}

// NewClient creates a client. A nil logger falls back to slog.Default().
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	team := cfg.Team
	if team == "" {
		team = cfg.Project
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		org:     cfg.Organization,
		project: cfg.Project,
		team:    team,
		http: &http.Client{
			Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
		},
		log: logger,
	}
}

// Configured reports whether organization and project are both set.
func (c *Client) Configured() bool {
	return c.org != "" && c.project != ""
}

// Project returns the configured project name.
func (c *Client) Project() string { return c.project }

// Wiql runs a WIQL query and returns the matching work item references.
func (c *Client) Wiql(ctx context.Context, pat, query string) (WiqlResponse, error) {
	body, err := json.Marshal(WiqlRequest{Query: query})
	if err != nil {
		return WiqlResponse{}, err
	}
	params := url.Values{}
	params.Set("api-version", apiVersion)
	respBody, err := c.do(ctx, "wiql", queryTimeout, http.MethodPost, c.projectURL("_apis/wit/wiql"), params, pat, body)
	if err != nil {
		return WiqlResponse{}, err
	}
	var resp WiqlResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return WiqlResponse{}, fmt.Errorf("decode wiql response: %w", err)
	}
	return resp, nil
}

// WorkItemsBatch fetches full details, relations included, for up to MaxBatchSize ids.
func (c *Client) WorkItemsBatch(ctx context.Context, pat string, ids []int) ([]WorkItem, error) {
	if len(ids) > MaxBatchSize {
		return nil, fmt.Errorf("batch of %d ids exceeds limit of %d", len(ids), MaxBatchSize)
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	params := url.Values{}
	params.Set("ids", strings.Join(parts, ","))
	params.Set("$expand", "all")
	params.Set("api-version", apiVersion)
	respBody, err := c.do(ctx, "work items", detailTimeout, http.MethodGet, c.projectURL("_apis/wit/workitems"), params, pat, nil)
	if err != nil {
		return nil, err
	}
	var resp WorkItemsResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decode work items response: %w", err)
	}
	return resp.Value, nil
}

// Comments returns the comment thread of a single work item.
func (c *Client) Comments(ctx context.Context, pat string, id int) ([]Comment, error) {
	params := url.Values{}
	params.Set("api-version", commentsAPIVersion)
	path := fmt.Sprintf("_apis/wit/workItems/%d/comments", id)
	respBody, err := c.do(ctx, "comments", commentTimeout, http.MethodGet, c.projectURL(path), params, pat, nil)
	if err != nil {
		return nil, err
	}
	var resp CommentList
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decode comments response: %w", err)
	}
	return resp.Comments, nil
}

// TeamIterations lists the iterations (sprints) of the configured team.
func (c *Client) TeamIterations(ctx context.Context, pat string) ([]Iteration, error) {
	params := url.Values{}
	params.Set("api-version", apiVersion)
	u := joinURL(c.baseURL, url.PathEscape(c.org), url.PathEscape(c.project), url.PathEscape(c.team),
		"_apis/work/teamsettings/iterations")
	respBody, err := c.do(ctx, "iterations", iterationTimeout, http.MethodGet, u, params, pat, nil)
	if err != nil {
		return nil, err
	}
	var resp IterationsResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decode iterations response: %w", err)
	}
	return resp.Value, nil
}

// WorkItemWebURL is the browser link for a work item.
func (c *Client) WorkItemWebURL(id int) string {
	return fmt.Sprintf("%s/%s/%s/_workitems/edit/%d", c.baseURL, c.org, c.project, id)
}

func (c *Client) projectURL(path string) string {
	return joinURL(c.baseURL, url.PathEscape(c.org), url.PathEscape(c.project), path)
}

func (c *Client) do(ctx context.Context, op string, timeout time.Duration, method, fullURL string, params url.Values, pat string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Basic "+basicAuthToken(pat))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}
	c.log.Debug("azure devops request",
		"op", op,
		"method", method,
		"url", req.URL.Redacted(),
		"status", resp.StatusCode,
		"duration", time.Since(start))

	// Azure DevOps answers a bad PAT with 203 and an HTML sign-in page.
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

// basicAuthToken encodes the PAT as the password of an empty-username basic auth pair.
func basicAuthToken(pat string) string {
	return base64.StdEncoding.EncodeToString([]byte(":" + pat))
}

func truncateBody(body []byte) string {
	const limit = 2048
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}

func joinURL(base string, parts ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	for _, p := range parts {
		b.WriteString("/")
		b.WriteString(strings.Trim(p, "/"))
	}
	return b.String()
}
