package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is used when the configuration does not name one.
const DefaultModel = "claude-3-5-haiku-latest"

const improveSystemPrompt = `You are an editor improving text in a policy document under review.
Rewrite the text the user provides: fix grammar, tighten wording, and keep the meaning and tone.
If an instruction is given, follow it. Do not add new facts.
Respond with JSON only, no code fences: {"improved_text": "...", "reason": "one sentence explaining the change"}`

// Client wraps the Anthropic API for the improve-text call.
type Client struct {
	client *anthropic.Client
	model  string
}

// NewClient creates a new Anthropic client with the given API key.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &Client{
		client: &client,
		model:  model,
	}, nil
}

// improveResponse is the JSON shape the system prompt asks the model for.
type improveResponse struct {
	ImprovedText string `json:"improved_text"`
	Reason       string `json:"reason"`
}

// ImproveText asks the model for an improved rendition of text. instruction
// steers the rewrite when non-empty. The reason comes from the model's own
// output; when the model ignores the JSON contract the raw text is treated
// as the rewrite and the reason is left empty.
func (c *Client) ImproveText(ctx context.Context, text, instruction string) (improved, reason string, err error) {
	prompt := fmt.Sprintf("TEXT TO IMPROVE:\n%s", text)
	if instruction != "" {
		prompt = fmt.Sprintf("INSTRUCTION:\n%s\n\n%s", instruction, prompt)
	}

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: improveSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var out strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	raw := strings.TrimSpace(out.String())
	if raw == "" {
		return "", "", fmt.Errorf("empty model response")
	}

	var parsed improveResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil || parsed.ImprovedText == "" {
		return raw, "", nil
	}

	return parsed.ImprovedText, parsed.Reason, nil
}

// stripFences removes a surrounding markdown code fence, which some models
// add despite the prompt saying not to.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 3 {
		return s
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}
