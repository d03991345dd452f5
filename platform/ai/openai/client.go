// Package openai adapts any OpenAI-compatible chat-completions API to the
// neutral ai.Provider contract.
package openai

import (
	"context"
	"fmt"
	"strings"

	"receptionist_backend/platform/ai"

	openai "github.com/sashabaranov/go-openai"
)

// Config for an OpenAI-compatible endpoint.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client implements ai.Provider on top of the chat-completions API.
type Client struct {
	config Config
	client *openai.Client
}

// New creates a provider client. BaseURL may point at any compatible server.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &Client{
		config: cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}, nil
}

func (c *Client) Name() string {
	return "openai:" + c.config.Model
}

// Generate requests a plain text completion without tools.
func (c *Client) Generate(ctx context.Context, messages []ai.Message) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.config.Model,
		Messages: convertMessages(messages),
	})
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai generate: empty choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// CreateChatCompletion performs one tool-augmented round.
func (c *Client) CreateChatCompletion(ctx context.Context, messages []ai.Message, tools []ai.ToolDef, choice ai.ToolChoice) (ai.Message, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.config.Model,
		Messages: convertMessages(messages),
		Tools:    convertTools(tools),
	}
	if choice.Forced() {
		req.ToolChoice = openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: choice.Name},
		}
	} else if len(req.Tools) > 0 {
		req.ToolChoice = "auto"
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return ai.Message{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return ai.Message{}, fmt.Errorf("openai chat completion: empty choices")
	}

	return convertResponse(resp.Choices[0].Message), nil
}

func convertMessages(messages []ai.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		if m.Role == ai.RoleTool {
			msg.Name = m.Name
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func convertTools(tools []ai.ToolDef) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

func convertResponse(msg openai.ChatCompletionMessage) ai.Message {
	out := ai.Message{
		Role:    ai.RoleAssistant,
		Content: strings.TrimSpace(msg.Content),
	}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ai.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out
}
