// Package openrouter adapts the OpenAI SDK, pointed at OpenRouter, to the
// contract.ChatModel boundary.
package openrouter

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	contractx "github.com/vinayakrana/Hotel-Chat-BE/agent/contract"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`
}

// Configured reports whether an API key is present. The health endpoint
// uses it to report degraded mode.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// NewClient creates an OpenAI SDK client configured for OpenRouter.
func NewClient(cfg Config) (*openaisdk.Client, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("openrouter api key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if trimmed := strings.TrimRight(cfg.BaseURL, "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}

	// OpenRouter attribution headers.
	if cfg.SiteURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.SiteURL))
	}
	if cfg.SiteName != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.SiteName))
	}

	client := openaisdk.NewClient(opts...)
	return &client, nil
}

// Model implements contract.ChatModel over chat completions.
type Model struct {
	client *openaisdk.Client
	cfg    Config
}

var _ contractx.ChatModel = (*Model)(nil)

func NewModel(cfg Config) (*Model, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Model{client: client, cfg: cfg}, nil
}

func (m *Model) Complete(ctx context.Context, messages []contractx.Message, tools []contractx.ToolSchema) (contractx.Message, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model:               shared.ChatModel(m.cfg.Model),
		Messages:            toSDKMessages(messages),
		Temperature:         openaisdk.Float(m.cfg.Temperature),
		MaxCompletionTokens: openaisdk.Int(int64(m.cfg.MaxCompletionToken)),
	}
	if len(tools) > 0 {
		params.Tools = toSDKTools(tools)
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return contractx.Message{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return contractx.Message{}, fmt.Errorf("chat completion returned no choices")
	}

	choice := resp.Choices[0].Message
	turn := contractx.Message{
		Role:    contractx.MessageRoleAssistant,
		Content: choice.Content,
	}
	for _, call := range choice.ToolCalls {
		turn.ToolCalls = append(turn.ToolCalls, contractx.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return turn, nil
}

func toSDKMessages(messages []contractx.Message) []openaisdk.ChatCompletionMessageParamUnion {
	out := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case contractx.MessageRoleSystem:
			out = append(out, openaisdk.SystemMessage(msg.Content))
		case contractx.MessageRoleUser:
			out = append(out, openaisdk.UserMessage(msg.Content))
		case contractx.MessageRoleAssistant:
			out = append(out, assistantMessage(msg))
		case contractx.MessageRoleTool:
			out = append(out, openaisdk.ToolMessage(msg.Content, msg.ToolCallID))
		}
	}
	return out
}

func assistantMessage(msg contractx.Message) openaisdk.ChatCompletionMessageParamUnion {
	assistant := openaisdk.ChatCompletionAssistantMessageParam{}
	if msg.Content != "" {
		assistant.Content.OfString = openaisdk.String(msg.Content)
	}
	for _, call := range msg.ToolCalls {
		assistant.ToolCalls = append(assistant.ToolCalls, openaisdk.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openaisdk.ChatCompletionMessageFunctionToolCallParam{
				ID: call.ID,
				Function: openaisdk.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			},
		})
	}
	return openaisdk.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
}

func toSDKTools(tools []contractx.ToolSchema) []openaisdk.ChatCompletionToolUnionParam {
	out := make([]openaisdk.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, openaisdk.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openaisdk.String(t.Description),
			Parameters:  shared.FunctionParameters(t.Parameters),
		}))
	}
	return out
}
