package agent

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaudeGenerateToolUse(t *testing.T) {
	var gotRequest anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &gotRequest))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"content": [
				{"type": "text", "text": "I'll record the contact info."},
				{"type": "tool_use", "id": "toolu_01", "name": "set_contact_info", "input": {"name": "Jane Doe", "email": "jane@example.com"}}
			],
			"stop_reason": "tool_use",
			"usage": {"input_tokens": 120, "output_tokens": 45}
		}`))
	}))
	defer server.Close()

	chatModel, err := NewClaudeChatModel("test-key", "", server.URL)
	require.NoError(t, err)

	err = chatModel.BindTools([]*schema.ToolInfo{{
		Name: "set_contact_info",
		Desc: "记录联系方式",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"name":  {Type: schema.String, Desc: "姓名", Required: true},
			"email": {Type: schema.String, Desc: "邮箱"},
		}),
	}})
	require.NoError(t, err)

	resp, err := chatModel.Generate(context.Background(), []*schema.Message{
		schema.UserMessage("extract the contact info"),
	})
	require.NoError(t, err)

	// 请求侧：工具定义已转换为 Anthropic 格式
	require.Len(t, gotRequest.Tools, 1)
	assert.Equal(t, "set_contact_info", gotRequest.Tools[0].Name)
	assert.Equal(t, "object", gotRequest.Tools[0].InputSchema["type"])
	props, ok := gotRequest.Tools[0].InputSchema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "name")
	assert.Contains(t, props, "email")

	// 响应侧：tool_use 映射为 ToolCalls，stop_reason 映射为 tool_calls
	assert.Equal(t, schema.Assistant, resp.Role)
	assert.Equal(t, "I'll record the contact info.", resp.Content)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "toolu_01", resp.ToolCalls[0].ID)
	assert.Equal(t, "set_contact_info", resp.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"name": "Jane Doe", "email": "jane@example.com"}`, resp.ToolCalls[0].Function.Arguments)
	require.NotNil(t, resp.ResponseMeta)
	assert.Equal(t, "tool_calls", resp.ResponseMeta.FinishReason)
	assert.Equal(t, 165, resp.ResponseMeta.Usage.TotalTokens)
}

func TestClaudeGenerateEndTurn(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_02",
			"type": "message",
			"role": "assistant",
			"content": [{"type": "text", "text": "All done."}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer server.Close()

	chatModel, err := NewClaudeChatModel("test-key", "", server.URL)
	require.NoError(t, err)

	resp, err := chatModel.Generate(context.Background(), []*schema.Message{
		schema.UserMessage("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "All done.", resp.Content)
	assert.Empty(t, resp.ToolCalls)
	assert.Equal(t, "stop", resp.ResponseMeta.FinishReason)
}

func TestClaudeGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"max_tokens required"}}`))
	}))
	defer server.Close()

	chatModel, err := NewClaudeChatModel("test-key", "", server.URL)
	require.NoError(t, err)

	_, err = chatModel.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_tokens required")
}

func TestConvertMessagesMergesConsecutiveToolResults(t *testing.T) {
	system, out, err := convertMessages([]*schema.Message{
		schema.SystemMessage("You are a resume parser."),
		schema.UserMessage("parse this"),
		{
			Role: schema.Assistant,
			ToolCalls: []schema.ToolCall{
				{ID: "t1", Function: schema.FunctionCall{Name: "add_education", Arguments: `{"institution":"MIT"}`}},
				{ID: "t2", Function: schema.FunctionCall{Name: "add_experience", Arguments: `{"position":"Engineer","company":"Acme"}`}},
			},
		},
		schema.ToolMessage("Added core education entry for MIT", "t1"),
		schema.ToolMessage("Added experience entry for Engineer at Acme", "t2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "You are a resume parser.", system)

	// user + assistant + 合并后的一条tool_result消息
	require.Len(t, out, 3)

	assistant := out[1]
	assert.Equal(t, "assistant", assistant.Role)
	require.Len(t, assistant.Content, 2)
	assert.Equal(t, "tool_use", assistant.Content[0].Type)
	assert.Equal(t, "t1", assistant.Content[0].ID)

	// 连续的tool消息必须合并为一条user消息，每个结果一个tool_result块
	merged := out[2]
	assert.Equal(t, "user", merged.Role)
	require.Len(t, merged.Content, 2)
	assert.Equal(t, "tool_result", merged.Content[0].Type)
	assert.Equal(t, "t1", merged.Content[0].ToolUseID)
	assert.Equal(t, "Added core education entry for MIT", merged.Content[0].Content)
	assert.Equal(t, "tool_result", merged.Content[1].Type)
	assert.Equal(t, "t2", merged.Content[1].ToolUseID)
}

// 多个请求并发复用同一个基础模型时各自WithTools的绑定必须互不干扰
func TestClaudeWithToolsReturnsIsolatedInstance(t *testing.T) {
	base, err := NewClaudeChatModel("test-key", "", "http://localhost:1")
	require.NoError(t, err)

	boundA, err := base.WithTools([]*schema.ToolInfo{{Name: "tool_a", Desc: "first"}})
	require.NoError(t, err)

	boundB, err := base.WithTools([]*schema.ToolInfo{{Name: "tool_b", Desc: "second"}})
	require.NoError(t, err)

	// 基础实例保持未绑定状态
	assert.Empty(t, base.boundTools)

	modelA, ok := boundA.(*ClaudeChatModel)
	require.True(t, ok)
	require.Len(t, modelA.boundTools, 1)
	assert.Equal(t, "tool_a", modelA.boundTools[0].Name)

	modelB, ok := boundB.(*ClaudeChatModel)
	require.True(t, ok)
	require.Len(t, modelB.boundTools, 1)
	assert.Equal(t, "tool_b", modelB.boundTools[0].Name)
}

// TestClaudeGenerateLive 对真实 API 的冒烟测试，仅在配置了 ANTHROPIC_API_KEY 时运行
func TestClaudeGenerateLive(t *testing.T) {
	_ = godotenv.Load("../../.env")
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" || apiKey == "test_api_key" {
		t.Skip("未设置 ANTHROPIC_API_KEY，跳过真实 API 测试")
	}

	chatModel, err := NewClaudeChatModel(apiKey, os.Getenv("ANTHROPIC_MODEL"), os.Getenv("ANTHROPIC_API_URL"))
	require.NoError(t, err)

	resp, err := chatModel.Generate(context.Background(), []*schema.Message{
		schema.UserMessage("Reply with exactly one word: pong"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Content)
}
