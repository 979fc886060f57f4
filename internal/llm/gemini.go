package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"interpagent/internal/logging"
	"interpagent/internal/tools"
)

// GeminiClient talks to the Gemini API through the genai SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a client for the Gemini API backend.
func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		timeout := cfg.Timeout
		cc.HTTPOptions.Timeout = &timeout
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.Model}, nil
}

func (c *GeminiClient) Provider() Provider { return ProviderGemini }
func (c *GeminiClient) Model() string      { return c.model }

// StartChat opens a session with the given instructions and tool set.
func (c *GeminiClient) StartChat(system string, defs []tools.Definition) (Session, error) {
	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if len(defs) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(defs))
		for _, d := range defs {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:                 d.Name,
				Description:          d.Description,
				ParametersJsonSchema: d.Schema,
			})
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	return &geminiSession{client: c, config: config}, nil
}

type geminiSession struct {
	client   *GeminiClient
	config   *genai.GenerateContentConfig
	contents []*genai.Content

	// pending maps the IDs handed out in the last reply to the original
	// calls. Gemini may omit IDs; those get a generated one.
	pending map[string]*genai.FunctionCall
}

func (s *geminiSession) Send(ctx context.Context, text string) (*Response, error) {
	s.contents = append(s.contents, genai.NewContentFromText(text, genai.RoleUser))
	return s.generate(ctx)
}

func (s *geminiSession) SendToolResults(ctx context.Context, results []ToolResult) (*Response, error) {
	parts := make([]*genai.Part, 0, len(results))
	for _, r := range results {
		call, ok := s.pending[r.ToolUseID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownToolCall, r.ToolUseID)
		}
		key := "output"
		if r.IsError {
			key = "error"
		}
		parts = append(parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
			ID:       call.ID,
			Name:     call.Name,
			Response: map[string]any{key: r.Content},
		}})
	}
	s.contents = append(s.contents, genai.NewContentFromParts(parts, genai.RoleUser))
	return s.generate(ctx)
}

func (s *geminiSession) generate(ctx context.Context) (*Response, error) {
	c := s.client
	start := time.Now()
	logging.APIDebug("[Gemini] generate content: model=%s contents=%d", c.model, len(s.contents))

	result, err := c.client.Models.GenerateContent(ctx, c.model, s.contents, s.config)
	if err != nil {
		logging.APIError("[Gemini] request failed after %v: %v", time.Since(start), err)
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, ErrEmptyResponse
	}

	cand := result.Candidates[0]
	s.contents = append(s.contents, cand.Content)

	resp := &Response{}
	var text strings.Builder
	s.pending = make(map[string]*genai.FunctionCall)
	for _, part := range cand.Content.Parts {
		switch {
		case part.FunctionCall != nil:
			fc := part.FunctionCall
			args, err := json.Marshal(fc.Args)
			if err != nil {
				return nil, fmt.Errorf("marshal args of %s: %w", fc.Name, err)
			}
			id := fc.ID
			if id == "" {
				id = "call_" + uuid.NewString()
			}
			s.pending[id] = fc
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{ID: id, Name: fc.Name, Arguments: args})
		case part.Text != "" && !part.Thought:
			text.WriteString(part.Text)
		}
	}
	resp.Text = text.String()
	resp.StopReason = geminiStopReason(cand.FinishReason, len(resp.ToolCalls) > 0)
	if u := result.UsageMetadata; u != nil {
		resp.Usage = UsageMetadata{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}

	logging.API("[Gemini] completed in %v text_len=%d tool_calls=%d stop_reason=%s",
		time.Since(start), len(resp.Text), len(resp.ToolCalls), resp.StopReason)
	return resp, nil
}

// Gemini reports STOP even when the turn ends in function calls.
func geminiStopReason(reason genai.FinishReason, hasCalls bool) string {
	if hasCalls {
		return StopToolUse
	}
	switch reason {
	case genai.FinishReasonStop, "":
		return StopEndTurn
	case genai.FinishReasonMaxTokens:
		return StopMaxTokens
	default:
		return StopOther
	}
}
