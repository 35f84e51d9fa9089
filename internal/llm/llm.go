package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joescharf/adosprint/internal/models"
)

// Client wraps the Anthropic API for sprint digests.
type Client struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewClient creates an LLM client with the given API key and model.
func NewClient(apiKey, model string) *Client {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &Client{
		api:   &client,
		model: anthropic.Model(model),
	}
}

// Model returns the model name used for digests.
func (c *Client) Model() string { return string(c.model) }

// buildDigestPrompt constructs the system and user prompts for a sprint digest.
func buildDigestPrompt(summary models.Summary) (system string, user string, err error) {
	system = `You write short status digests of a developer's Azure DevOps sprint. You receive a JSON object with the sprint name, a total count, and a list of work items. Each item has a title and may have a description and a list of comment texts.

Rules:
- Start with one sentence naming the sprint and how many work items it has
- Then one bullet per work item: the title, followed by at most one sentence drawn from its description or latest comments
- Mention blockers or open questions that appear in comments
- Do not invent work items, people, or dates that are not in the input
- If there are no work items, say so in one sentence
- Plain text only, no markdown headings`

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("marshal summary: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Sprint summary:\n\n")
	sb.Write(data)
	user = sb.String()
	return system, user, nil
}

// Digest asks the LLM for a plain-text digest of the sprint summary.
func (c *Client) Digest(ctx context.Context, summary models.Summary) (string, error) {
	systemPrompt, userPrompt, err := buildDigestPrompt(summary)
	if err != nil {
		return "", err
	}

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 2048,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no text content in API response")
	}
	return text, nil
}
