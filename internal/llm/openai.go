package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"interpagent/internal/logging"
	"interpagent/internal/tools"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client openai.Client
	model  string
}

// NewOpenAIClient creates a client. Retries are disabled: a transport
// failure surfaces on the first attempt.
func NewOpenAIClient(cfg Config) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

func (c *OpenAIClient) Provider() Provider { return ProviderOpenAI }
func (c *OpenAIClient) Model() string      { return c.model }

// StartChat opens a session with the given instructions and tool set.
func (c *OpenAIClient) StartChat(system string, defs []tools.Definition) (Session, error) {
	params := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, d := range defs {
		schema, err := d.Parameters()
		if err != nil {
			return nil, err
		}
		params = append(params, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        d.Name,
				Description: openai.String(d.Description),
				Parameters:  openai.FunctionParameters(schema),
			},
		})
	}

	s := &openAISession{client: c, tools: params}
	if system != "" {
		s.messages = append(s.messages, openai.SystemMessage(system))
	}
	return s, nil
}

type openAISession struct {
	client   *OpenAIClient
	tools    []openai.ChatCompletionToolParam
	messages []openai.ChatCompletionMessageParamUnion
	pending  map[string]bool
}

func (s *openAISession) Send(ctx context.Context, text string) (*Response, error) {
	s.messages = append(s.messages, openai.UserMessage(text))
	return s.complete(ctx)
}

func (s *openAISession) SendToolResults(ctx context.Context, results []ToolResult) (*Response, error) {
	for _, r := range results {
		if !s.pending[r.ToolUseID] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownToolCall, r.ToolUseID)
		}
		s.messages = append(s.messages, openai.ToolMessage(r.Content, r.ToolUseID))
	}
	return s.complete(ctx)
}

func (s *openAISession) complete(ctx context.Context) (*Response, error) {
	c := s.client
	params := openai.ChatCompletionNewParams{
		Messages: s.messages,
		Model:    openai.ChatModel(c.model),
	}
	if len(s.tools) > 0 {
		params.Tools = s.tools
	}

	start := time.Now()
	logging.APIDebug("[OpenAI] chat completion: model=%s messages=%d tools=%d", c.model, len(s.messages), len(s.tools))

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			logging.APIError("[OpenAI] API returned status %d after %v", apiErr.StatusCode, time.Since(start))
		} else {
			logging.APIError("[OpenAI] request failed after %v: %v", time.Since(start), err)
		}
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	choice := completion.Choices[0]
	s.messages = append(s.messages, choice.Message.ToParam())

	resp := &Response{
		Text:       choice.Message.Content,
		StopReason: openAIStopReason(choice.FinishReason),
		Usage: UsageMetadata{
			InputTokens:  int(completion.Usage.PromptTokens),
			OutputTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:  int(completion.Usage.TotalTokens),
		},
	}
	s.pending = make(map[string]bool, len(choice.Message.ToolCalls))
	for _, tc := range choice.Message.ToolCalls {
		s.pending[tc.ID] = true
		resp.ToolCalls = append(resp.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}

	logging.API("[OpenAI] completed in %v text_len=%d tool_calls=%d stop_reason=%s",
		time.Since(start), len(resp.Text), len(resp.ToolCalls), resp.StopReason)
	return resp, nil
}

func openAIStopReason(reason string) string {
	switch reason {
	case "stop":
		return StopEndTurn
	case "tool_calls", "function_call":
		return StopToolUse
	case "length":
		return StopMaxTokens
	default:
		return StopOther
	}
}
