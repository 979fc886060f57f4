package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interpagent/internal/config"
)

const toolCallReply = `{
  "id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "test-model",
  "choices": [{"index": 0, "finish_reason": "tool_calls", "message": {
    "role": "assistant", "content": null,
    "tool_calls": [{"id": "call_1", "type": "function", "function": {"name": "w_abs", "arguments": "{\"x\": -3}"}}]
  }}],
  "usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

const textReply = `{
  "id": "chatcmpl-2", "object": "chat.completion", "created": 2, "model": "test-model",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "3"}}],
  "usage": {"prompt_tokens": 20, "completion_tokens": 1, "total_tokens": 21}
}`

// chatServer replies with canned completions in order and keeps the
// request bodies.
type chatServer struct {
	mu      sync.Mutex
	replies []string
	bodies  []map[string]any
}

func (s *chatServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(data, &body)
	s.bodies = append(s.bodies, body)
	if len(s.replies) == 0 {
		http.Error(w, `{"error":{"message":"unexpected request"}}`, http.StatusInternalServerError)
		return
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, reply)
}

func (s *chatServer) requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bodies)
}

// isolate clears the environment the command reads and runs the test in an
// empty directory.
func isolate(t *testing.T) {
	t.Helper()
	for _, k := range []string{config.EnvModelName, config.EnvAPIKey, config.EnvEndpoint, config.EnvProvider, config.EnvLogLevel} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func configure(t *testing.T, endpoint string) {
	t.Helper()
	t.Setenv(config.EnvModelName, "test-model")
	t.Setenv(config.EnvAPIKey, "sk-test")
	t.Setenv(config.EnvEndpoint, endpoint)
}

type run struct {
	out *bytes.Buffer
	err error
}

func execute(ctx context.Context, stdin io.Reader, terminal bool, args ...string) run {
	out := &bytes.Buffer{}
	a := &app{
		stdin:      stdin,
		stdout:     out,
		stderr:     io.Discard,
		isTerminal: func() bool { return terminal },
	}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return run{out: out, err: err}
}

func TestMissingSettingsFailBeforeAnyRequest(t *testing.T) {
	isolate(t)
	srv := &chatServer{replies: []string{textReply}}
	ts := httptest.NewServer(srv)
	defer ts.Close()
	t.Setenv(config.EnvEndpoint, ts.URL)

	r := execute(context.Background(), strings.NewReader(""), false, "abs(-3)")
	require.ErrorIs(t, r.err, config.ErrMissingSetting)
	assert.Equal(t, "missing required setting: OPENAI_MODEL_NAME, OPENAI_API_KEY", r.err.Error())
	assert.Empty(t, r.out.String())
	assert.Zero(t, srv.requests())
}

func TestQueryRoundTrip(t *testing.T) {
	isolate(t)
	srv := &chatServer{replies: []string{toolCallReply, textReply}}
	ts := httptest.NewServer(srv)
	defer ts.Close()
	configure(t, ts.URL)

	r := execute(context.Background(), strings.NewReader(""), false, "abs(-3)")
	require.NoError(t, r.err)
	assert.Equal(t, "Response: 3\n", r.out.String())

	require.Equal(t, 2, srv.requests())
	first := srv.bodies[0]["messages"].([]any)
	assert.Equal(t, "abs(-3)", first[1].(map[string]any)["content"])
	assert.Len(t, srv.bodies[0]["tools"], 50)

	second := srv.bodies[1]["messages"].([]any)
	toolMsg := second[len(second)-1].(map[string]any)
	assert.Equal(t, "tool", toolMsg["role"])
	assert.Equal(t, "3", toolMsg["content"])
}

func TestQueryFlagBeatsPositionalAndPipe(t *testing.T) {
	isolate(t)
	srv := &chatServer{replies: []string{textReply}}
	ts := httptest.NewServer(srv)
	defer ts.Close()
	configure(t, ts.URL)

	r := execute(context.Background(), strings.NewReader("piped"), false, "-q", "from flag", "positional")
	require.NoError(t, r.err)
	require.Equal(t, 1, srv.requests())
	first := srv.bodies[0]["messages"].([]any)
	assert.Equal(t, "from flag", first[1].(map[string]any)["content"])
}

func TestPipedQuery(t *testing.T) {
	isolate(t)
	srv := &chatServer{replies: []string{textReply}}
	ts := httptest.NewServer(srv)
	defer ts.Close()
	configure(t, ts.URL)

	r := execute(context.Background(), strings.NewReader("  len('abc')\n"), false)
	require.NoError(t, r.err)
	first := srv.bodies[0]["messages"].([]any)
	assert.Equal(t, "len('abc')", first[1].(map[string]any)["content"])
}

func TestNoQueryExitsCleanly(t *testing.T) {
	isolate(t)
	srv := &chatServer{}
	ts := httptest.NewServer(srv)
	defer ts.Close()
	configure(t, ts.URL)

	r := execute(context.Background(), strings.NewReader(""), false)
	require.NoError(t, r.err)
	assert.Equal(t, "Query: \nNo query provided. Exiting.\n", r.out.String())
	assert.Zero(t, srv.requests())
}

func TestEmptyPromptedLineIsSent(t *testing.T) {
	isolate(t)
	srv := &chatServer{replies: []string{textReply}}
	ts := httptest.NewServer(srv)
	defer ts.Close()
	configure(t, ts.URL)

	r := execute(context.Background(), strings.NewReader("\n"), true)
	require.NoError(t, r.err)
	assert.Equal(t, "Query: Response: 3\n", r.out.String())
	require.Equal(t, 1, srv.requests())
	first := srv.bodies[0]["messages"].([]any)
	assert.Empty(t, first[1].(map[string]any)["content"])
}

func TestInterruptedPromptExitsCleanly(t *testing.T) {
	isolate(t)
	srv := &chatServer{}
	ts := httptest.NewServer(srv)
	defer ts.Close()
	configure(t, ts.URL)

	pr, pw := io.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := execute(ctx, pr, true)
	require.NoError(t, r.err)
	assert.Equal(t, "Query: \nNo query provided. Exiting.\n", r.out.String())
	assert.Zero(t, srv.requests())
}

func TestAgentErrorIsReported(t *testing.T) {
	isolate(t)
	srv := &chatServer{}
	ts := httptest.NewServer(srv)
	defer ts.Close()
	configure(t, ts.URL)

	r := execute(context.Background(), strings.NewReader(""), false, "abs(-3)")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "agent run failed")
	assert.NotContains(t, r.out.String(), "Response:")
}

func TestConfigFileSelectsRounds(t *testing.T) {
	isolate(t)
	srv := &chatServer{replies: []string{toolCallReply, toolCallReply}}
	ts := httptest.NewServer(srv)
	defer ts.Close()
	configure(t, ts.URL)

	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_tool_rounds: 1\n"), 0644))

	r := execute(context.Background(), strings.NewReader(""), false, "--config", path, "abs(-3)")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "tool call rounds exceeded")
}

func TestToolsListing(t *testing.T) {
	isolate(t)

	r := execute(context.Background(), strings.NewReader(""), false, "tools")
	require.NoError(t, r.err)

	lines := strings.Split(strings.TrimRight(r.out.String(), "\n"), "\n")
	require.Len(t, lines, 50)
	assert.Equal(t, "w_abs(x) - Return the absolute value of a number.", lines[0])
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "w_zip("), lines[len(lines)-1])
}

func TestUnexpectedArgs(t *testing.T) {
	isolate(t)
	r := execute(context.Background(), strings.NewReader(""), false, "a", "b")
	assert.Error(t, r.err)
}
