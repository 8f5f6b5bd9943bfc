package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// MockResponse 定义了 MockChatClient 的单次预期响应
type MockResponse struct {
	Content      string
	ToolCalls    []schema.ToolCall
	FinishReason string // 为空时自动推断：有 ToolCalls 则为 tool_calls，否则为 stop
	Error        error
}

// MockChatClient 是一个用于测试的 model.ToolCallingChatModel 模拟实现，
// 按顺序返回预先配置的响应，并记录每次调用收到的消息。
type MockChatClient struct {
	SequentialResponses []MockResponse
	ResponseIndex       int

	// 每个元素是一次 Generate 调用收到的完整消息列表
	ReceivedMessages [][]*schema.Message

	BoundTools []*schema.ToolInfo
}

// NewMockChatClientSequential 创建一个按顺序返回不同响应的 MockChatClient
func NewMockChatClientSequential(responses []MockResponse) *MockChatClient {
	if len(responses) == 0 {
		// 避免panic：responses为空时返回一个总是报错的客户端
		responses = []MockResponse{{Error: errors.New("mock client has no responses configured")}}
	}
	return &MockChatClient{
		SequentialResponses: responses,
		ReceivedMessages:    make([][]*schema.Message, 0),
	}
}

// Generate 模拟 LLM 的 Generate 方法
func (m *MockChatClient) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	currentReceived := make([]*schema.Message, len(input))
	copy(currentReceived, input)
	m.ReceivedMessages = append(m.ReceivedMessages, currentReceived)

	if m.ResponseIndex >= len(m.SequentialResponses) {
		return nil, errors.New("mock client has run out of sequential responses")
	}
	resp := m.SequentialResponses[m.ResponseIndex]
	m.ResponseIndex++

	if resp.Error != nil {
		return nil, resp.Error
	}

	finishReason := resp.FinishReason
	if finishReason == "" {
		if len(resp.ToolCalls) > 0 {
			finishReason = "tool_calls"
		} else {
			finishReason = "stop"
		}
	}

	return &schema.Message{
		Role:      schema.Assistant,
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: finishReason,
		},
	}, nil
}

// Stream 模拟 LLM 的 Stream 方法
func (m *MockChatClient) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("streaming not implemented in MockChatClient")
}

// BindTools 记录绑定的工具，便于测试断言
func (m *MockChatClient) BindTools(tools []*schema.ToolInfo) error {
	m.BoundTools = tools
	return nil
}

// WithTools 实现 model.ToolCallingChatModel 接口
func (m *MockChatClient) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	m.BoundTools = tools
	return m, nil
}

// LastReceived 返回最后一次 Generate 调用收到的消息列表
func (m *MockChatClient) LastReceived() []*schema.Message {
	if len(m.ReceivedMessages) == 0 {
		return nil
	}
	return m.ReceivedMessages[len(m.ReceivedMessages)-1]
}

var _ model.ToolCallingChatModel = (*MockChatClient)(nil)
