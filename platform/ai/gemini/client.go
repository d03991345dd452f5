// Package gemini adapts the Google Gemini API to the neutral ai.Provider
// contract via the official genai SDK.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"receptionist_backend/platform/ai"

	"google.golang.org/genai"
)

// Config for the Gemini backend.
type Config struct {
	APIKey string
	Model  string
}

// Client implements ai.Provider on top of genai.
type Client struct {
	config Config
	client *genai.Client
}

// New creates a Gemini provider client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Client{config: cfg, client: client}, nil
}

func (c *Client) Name() string {
	return "gemini:" + c.config.Model
}

// Generate requests a plain text completion without tools.
func (c *Client) Generate(ctx context.Context, messages []ai.Message) (string, error) {
	contents, system := convertMessages(messages)
	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.config.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	return strings.TrimSpace(resp.Text()), nil
}

// CreateChatCompletion performs one tool-augmented round.
func (c *Client) CreateChatCompletion(ctx context.Context, messages []ai.Message, tools []ai.ToolDef, choice ai.ToolChoice) (ai.Message, error) {
	contents, system := convertMessages(messages)
	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if len(tools) > 0 {
		config.Tools = convertTools(tools)
	}
	if choice.Forced() {
		config.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{choice.Name},
			},
		}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.config.Model, contents, config)
	if err != nil {
		return ai.Message{}, fmt.Errorf("gemini chat completion: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ai.Message{}, fmt.Errorf("gemini chat completion: empty candidates")
	}

	return convertResponse(resp.Candidates[0].Content), nil
}

// convertMessages maps neutral messages to genai contents. System messages
// are collected into a single system instruction because Gemini carries them
// outside the content list.
func convertMessages(messages []ai.Message) ([]*genai.Content, string) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case ai.RoleSystem:
			if strings.TrimSpace(m.Content) != "" {
				system = append(system, m.Content)
			}
		case ai.RoleAssistant:
			parts := make([]*genai.Part, 0, 1+len(m.ToolCalls))
			if strings.TrimSpace(m.Content) != "" {
				parts = append(parts, genai.NewPartFromText(m.Content))
			}
			for _, tc := range m.ToolCalls {
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   tc.ID,
						Name: tc.Name,
						Args: decodeArgs(tc.Arguments),
					},
				})
			}
			if len(parts) > 0 {
				contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})
			}
		case ai.RoleTool:
			contents = append(contents, &genai.Content{
				Role: genai.RoleUser,
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						ID:       m.ToolCallID,
						Name:     m.Name,
						Response: map[string]any{"output": m.Content},
					},
				}},
			})
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	return contents, strings.Join(system, "\n\n")
}

func convertTools(tools []ai.ToolDef) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:                 t.Name,
			Description:          t.Description,
			ParametersJsonSchema: t.Parameters,
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func convertResponse(content *genai.Content) ai.Message {
	out := ai.Message{Role: ai.RoleAssistant}
	var text strings.Builder

	for _, part := range content.Parts {
		if part == nil {
			continue
		}
		if part.FunctionCall != nil {
			args, _ := json.Marshal(part.FunctionCall.Args)
			out.ToolCalls = append(out.ToolCalls, ai.ToolCall{
				ID:        part.FunctionCall.ID,
				Name:      part.FunctionCall.Name,
				Arguments: string(args),
			})
			continue
		}
		if strings.TrimSpace(part.Text) != "" {
			if text.Len() > 0 {
				text.WriteString("\n")
			}
			text.WriteString(part.Text)
		}
	}

	out.Content = strings.TrimSpace(text.String())
	return out
}

func decodeArgs(raw string) map[string]any {
	args := map[string]any{}
	if raw == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]any{"_raw": raw}
	}
	return args
}
