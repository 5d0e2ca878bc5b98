package llm

import (
	"context"
	"fmt"
)

// Disabled stands in for the Anthropic client when no API key is configured.
type Disabled struct{}

// ImproveText always fails.
func (Disabled) ImproveText(ctx context.Context, text, instruction string) (string, string, error) {
	return "", "", fmt.Errorf("improve endpoint disabled: no API key configured")
}
