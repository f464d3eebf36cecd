// Package claude implements the analysis.Provider interface on top of the
// official Anthropic SDK.
package claude

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/linnemanlabs/sentinel/internal/analysis"
)

const requestTimeout = 120 * time.Second

// Client sends one-shot generation requests to the Claude API.
type Client struct {
	api   anthropic.Client
	model anthropic.Model
}

// New creates a Claude provider with the given API key and model name.
func New(apiKey, model string) *Client {
	return &Client{
		api: anthropic.NewClient(
			option.WithAPIKey(apiKey),
			option.WithRequestTimeout(requestTimeout),
		),
		model: anthropic.Model(model),
	}
}

// Generate sends the request as a single user turn and returns the
// concatenated text content.
func (c *Client) Generate(ctx context.Context, req *analysis.Request) (*analysis.Completion, error) {
	msg, err := c.api.Messages.New(ctx, toParams(c.model, req))
	if err != nil {
		return nil, fmt.Errorf("claude: send message: %w", err)
	}
	return fromMessage(msg), nil
}

func toParams(model anthropic.Model, req *analysis.Request) anthropic.MessageNewParams {
	return anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: req.MaxTokens,
		System:    []anthropic.TextBlockParam{{Text: req.System}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
}

func fromMessage(msg *anthropic.Message) *analysis.Completion {
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return &analysis.Completion{
		Text:         sb.String(),
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
	}
}
