package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTool 记录每次调用的参数，便于断言调用顺序
type recordingTool struct {
	name  string
	calls *[]string
	err   error
}

func (r *recordingTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: r.name,
		Desc: "test tool " + r.name,
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"value": {Type: schema.String, Desc: "任意值", Required: true},
		}),
	}, nil
}

func (r *recordingTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	*r.calls = append(*r.calls, r.name+":"+argumentsInJSON)
	if r.err != nil {
		return "", r.err
	}
	return "ok from " + r.name, nil
}

func toolCall(id, name, args string) schema.ToolCall {
	return schema.ToolCall{
		ID:       id,
		Function: schema.FunctionCall{Name: name, Arguments: args},
	}
}

func TestExtractEngineDispatchesAllToolCallsInOrder(t *testing.T) {
	ctx := context.Background()
	var calls []string

	mock := NewMockChatClientSequential([]MockResponse{
		{
			ToolCalls: []schema.ToolCall{
				toolCall("call_1", "tool_a", `{"value":"first"}`),
				toolCall("call_2", "tool_b", `{"value":"second"}`),
				toolCall("call_3", "tool_a", `{"value":"third"}`),
			},
		},
		{Content: "done"},
	})

	engine, err := NewExtractEngine(ctx, mock, []tool.InvokableTool{
		&recordingTool{name: "tool_a", calls: &calls},
		&recordingTool{name: "tool_b", calls: &calls},
	})
	require.NoError(t, err)

	final, err := engine.Run(ctx, "extract things")
	require.NoError(t, err)
	assert.Equal(t, "done", final)

	// 三个工具调用全部按顺序执行
	require.Equal(t, []string{
		`tool_a:{"value":"first"}`,
		`tool_b:{"value":"second"}`,
		`tool_a:{"value":"third"}`,
	}, calls)

	// 第二轮模型收到的消息：user + assistant + 3条tool消息，且与调用顺序一一对应
	require.Len(t, mock.ReceivedMessages, 2)
	secondTurn := mock.ReceivedMessages[1]
	require.Len(t, secondTurn, 5)
	assert.Equal(t, schema.User, secondTurn[0].Role)
	assert.Equal(t, schema.Assistant, secondTurn[1].Role)
	for i, wantID := range []string{"call_1", "call_2", "call_3"} {
		msg := secondTurn[2+i]
		assert.Equal(t, schema.Tool, msg.Role)
		assert.Equal(t, wantID, msg.ToolCallID)
	}
}

func TestExtractEngineUnknownToolContinues(t *testing.T) {
	ctx := context.Background()
	var calls []string

	mock := NewMockChatClientSequential([]MockResponse{
		{ToolCalls: []schema.ToolCall{toolCall("call_1", "no_such_tool", `{}`)}},
		{Content: "recovered"},
	})

	engine, err := NewExtractEngine(ctx, mock, []tool.InvokableTool{
		&recordingTool{name: "tool_a", calls: &calls},
	})
	require.NoError(t, err)

	final, err := engine.Run(ctx, "extract")
	require.NoError(t, err, "未知工具不应终止对话")
	assert.Equal(t, "recovered", final)

	secondTurn := mock.ReceivedMessages[1]
	toolMsg := secondTurn[len(secondTurn)-1]
	assert.Equal(t, schema.Tool, toolMsg.Role)
	assert.Equal(t, "unknown tool: no_such_tool", toolMsg.Content)
}

func TestExtractEngineToolErrorReportedAsResult(t *testing.T) {
	ctx := context.Background()
	var calls []string

	mock := NewMockChatClientSequential([]MockResponse{
		{ToolCalls: []schema.ToolCall{toolCall("call_1", "broken", `{"value":"x"}`)}},
		{Content: "noted"},
	})

	engine, err := NewExtractEngine(ctx, mock, []tool.InvokableTool{
		&recordingTool{name: "broken", calls: &calls, err: errors.New("boom")},
	})
	require.NoError(t, err)

	final, err := engine.Run(ctx, "extract")
	require.NoError(t, err, "工具内部错误不应终止对话")
	assert.Equal(t, "noted", final)

	toolMsg := mock.ReceivedMessages[1][2]
	assert.Contains(t, toolMsg.Content, "broken")
	assert.Contains(t, toolMsg.Content, "boom")
}

func TestExtractEngineStopSignalIsFinishReasonOnly(t *testing.T) {
	ctx := context.Background()
	var calls []string

	// 响应携带 ToolCalls 但 FinishReason 为 stop：不应执行工具，直接返回内容
	mock := NewMockChatClientSequential([]MockResponse{
		{
			Content:      "final answer",
			ToolCalls:    []schema.ToolCall{toolCall("call_1", "tool_a", `{}`)},
			FinishReason: "stop",
		},
	})

	engine, err := NewExtractEngine(ctx, mock, []tool.InvokableTool{
		&recordingTool{name: "tool_a", calls: &calls},
	})
	require.NoError(t, err)

	final, err := engine.Run(ctx, "extract")
	require.NoError(t, err)
	assert.Equal(t, "final answer", final)
	assert.Empty(t, calls, "FinishReason 不是 tool_calls 时不应执行任何工具")
}

func TestExtractEngineEmptyFinalContent(t *testing.T) {
	ctx := context.Background()
	var calls []string

	mock := NewMockChatClientSequential([]MockResponse{
		{ToolCalls: []schema.ToolCall{toolCall("call_1", "tool_a", `{"value":"v"}`)}},
		{Content: ""},
	})

	engine, err := NewExtractEngine(ctx, mock, []tool.InvokableTool{
		&recordingTool{name: "tool_a", calls: &calls},
	})
	require.NoError(t, err)

	final, err := engine.Run(ctx, "extract")
	require.NoError(t, err, "最终回复内容为空是合法的")
	assert.Equal(t, "", final)
	assert.Len(t, calls, 1)
}

func TestExtractEngineMaxTurnsExceeded(t *testing.T) {
	ctx := context.Background()
	var calls []string

	// 每一轮都继续要求工具调用，永不收敛
	responses := make([]MockResponse, 0, 4)
	for i := 0; i < 4; i++ {
		responses = append(responses, MockResponse{
			ToolCalls: []schema.ToolCall{toolCall(fmt.Sprintf("call_%d", i), "tool_a", `{}`)},
		})
	}
	mock := NewMockChatClientSequential(responses)

	engine, err := NewExtractEngine(ctx, mock, []tool.InvokableTool{
		&recordingTool{name: "tool_a", calls: &calls},
	}, WithMaxTurns(3))
	require.NoError(t, err)

	_, err = engine.Run(ctx, "extract")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxTurnsExceeded)
	assert.Len(t, calls, 3, "轮次上限内的工具调用应照常执行")
}

func TestExtractEngineModelErrorPropagates(t *testing.T) {
	ctx := context.Background()
	var calls []string

	modelErr := errors.New("api unavailable")
	mock := NewMockChatClientSequential([]MockResponse{{Error: modelErr}})

	engine, err := NewExtractEngine(ctx, mock, []tool.InvokableTool{
		&recordingTool{name: "tool_a", calls: &calls},
	})
	require.NoError(t, err)

	_, err = engine.Run(ctx, "extract")
	require.Error(t, err)
	assert.ErrorIs(t, err, modelErr)
}

func TestExtractEngineValidation(t *testing.T) {
	ctx := context.Background()
	var calls []string
	tools := []tool.InvokableTool{&recordingTool{name: "tool_a", calls: &calls}}

	_, err := NewExtractEngine(ctx, NewMockChatClientSequential([]MockResponse{{Content: "x"}}), nil)
	assert.ErrorIs(t, err, ErrNoTools)

	engine, err := NewExtractEngine(ctx, NewMockChatClientSequential([]MockResponse{{Content: "x"}}), tools)
	require.NoError(t, err)

	_, err = engine.Run(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}
