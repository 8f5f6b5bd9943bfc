package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/getkin/kin-openapi/openapi3"

	"resume-wizard/internal/logger"
)

const (
	defaultClaudeAPIURL    = "https://api.anthropic.com/v1/messages"
	defaultClaudeModelName = "claude-3-5-sonnet-20241022"
	anthropicVersion       = "2023-06-01"
	defaultMaxTokens       = 4096
)

// --- Anthropic Messages API Structures ---

// anthropicContentBlock 消息内容块。text、tool_use、tool_result 三种类型共用一个结构，
// 序列化时按 Type 取对应字段。
type anthropicContentBlock struct {
	Type string `json:"type"`
	// type == "text"
	Text string `json:"text,omitempty"`
	// type == "tool_use"
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
	// type == "tool_result"
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

type anthropicMessage struct {
	Role    string                  `json:"role"` // user 或 assistant
	Content []anthropicContentBlock `json:"content"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	Tools     []anthropicTool    `json:"tools,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicResponse struct {
	ID         string                  `json:"id"`
	Type       string                  `json:"type"`
	Role       string                  `json:"role"`
	Content    []anthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
	Usage      anthropicUsage          `json:"usage"`
}

type anthropicErrorResponse struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ClaudeChatModel 通过 Anthropic Messages API 实现 model.ToolCallingChatModel，
// 负责 eino schema.Message 与 Anthropic 原生消息格式之间的双向转换。
type ClaudeChatModel struct {
	apiKey     string
	modelName  string
	apiURL     string
	maxTokens  int
	httpClient *http.Client
	boundTools []anthropicTool
}

// ClaudeOption 配置 ClaudeChatModel 的函数选项
type ClaudeOption func(*ClaudeChatModel)

// WithHTTPClient 设置自定义 HTTP 客户端（测试时注入）
func WithHTTPClient(client *http.Client) ClaudeOption {
	return func(c *ClaudeChatModel) {
		c.httpClient = client
	}
}

// WithMaxTokens 设置单次响应的最大token数
func WithMaxTokens(n int) ClaudeOption {
	return func(c *ClaudeChatModel) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// NewClaudeChatModel 创建一个新的 ClaudeChatModel 实例。
func NewClaudeChatModel(apiKey string, modelName string, apiURL string, opts ...ClaudeOption) (*ClaudeChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API 密钥不能为空")
	}

	mn := modelName
	if strings.TrimSpace(mn) == "" {
		mn = defaultClaudeModelName
	}

	url := apiURL
	if strings.TrimSpace(url) == "" {
		url = defaultClaudeAPIURL
	}

	c := &ClaudeChatModel{
		apiKey:     apiKey,
		modelName:  mn,
		apiURL:     url,
		maxTokens:  defaultMaxTokens,
		httpClient: &http.Client{},
		boundTools: make([]anthropicTool, 0),
	}

	for _, opt := range opts {
		opt(c)
	}

	logger.Info().Str("api_url", c.apiURL).Str("model", c.modelName).Msg("使用 Anthropic Claude 客户端")

	return c, nil
}

// Generate 实现 model.BaseChatModel 接口
func (c *ClaudeChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	system, apiMessages, err := convertMessages(messages)
	if err != nil {
		return nil, err
	}

	reqPayload := anthropicRequest{
		Model:     c.modelName,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  apiMessages,
	}
	if len(c.boundTools) > 0 {
		reqPayload.Tools = c.boundTools
	}

	jsonData, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}

	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	logger.Debug().Str("model", c.modelName).Int("messages", len(apiMessages)).Int("tools", len(c.boundTools)).Msg("发送 Anthropic 请求")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送 HTTP 请求失败: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr anthropicErrorResponse
		if jsonErr := json.Unmarshal(bodyBytes, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("API 请求失败，状态 %s: %s (%s)", httpResp.Status, apiErr.Error.Message, apiErr.Error.Type)
		}
		return nil, fmt.Errorf("API 请求失败，状态 %s: %s", httpResp.Status, string(bodyBytes))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("反序列化 API 响应失败: %w。响应体: %s", err, string(bodyBytes))
	}

	return convertResponse(&apiResp)
}

// Stream 实现 model.BaseChatModel 接口。抽取流程只使用 Generate，流式暂不支持。
func (c *ClaudeChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("ClaudeChatModel 的 Stream 方法未实现")
}

// convertTools 将 eino 工具定义转换为 Anthropic 工具格式。
// 参数 schema 通过 ParamsOneOf.ToOpenAPIV3 导出，再转成 JSON Schema。
func convertTools(tools []*schema.ToolInfo) ([]anthropicTool, error) {
	converted := make([]anthropicTool, 0, len(tools))
	for _, toolInfo := range tools {
		if toolInfo == nil {
			continue
		}

		inputSchema := map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
		if toolInfo.ParamsOneOf != nil {
			openAPISchema, err := toolInfo.ParamsOneOf.ToOpenAPIV3()
			if err != nil {
				return nil, fmt.Errorf("导出工具 '%s' 的参数 schema 失败: %w", toolInfo.Name, err)
			}
			if openAPISchema != nil {
				inputSchema = openAPISchemaToMap(openAPISchema)
			}
		}

		converted = append(converted, anthropicTool{
			Name:        toolInfo.Name,
			Description: toolInfo.Desc,
			InputSchema: inputSchema,
		})
	}
	return converted, nil
}

// BindTools 把工具绑定到当前实例上
func (c *ClaudeChatModel) BindTools(tools []*schema.ToolInfo) error {
	converted, err := convertTools(tools)
	if err != nil {
		return err
	}
	c.boundTools = converted
	logger.Debug().Int("count", len(c.boundTools)).Msg("已绑定工具")
	return nil
}

// WithTools 实现 model.ToolCallingChatModel 接口。
// 返回携带自身工具绑定的新实例，原实例不受影响；
// 多个请求并发复用同一个基础模型时各自的工具集互不干扰。
func (c *ClaudeChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	converted, err := convertTools(tools)
	if err != nil {
		return nil, err
	}
	nc := *c
	nc.boundTools = converted
	return &nc, nil
}

// convertMessages 将 eino 消息列表转换为 Anthropic 消息列表。
// system 消息被抽出放到顶层 system 字段；连续的 tool 消息必须合并进
// 同一条 user 消息（每个工具结果一个 tool_result 块），否则 API 会拒绝。
func convertMessages(messages []*schema.Message) (system string, out []anthropicMessage, err error) {
	for i := 0; i < len(messages); i++ {
		msg := messages[i]
		if msg == nil {
			continue
		}

		switch msg.Role {
		case schema.System:
			if system != "" {
				system += "\n\n"
			}
			system += msg.Content

		case schema.User:
			out = append(out, anthropicMessage{
				Role:    "user",
				Content: []anthropicContentBlock{{Type: "text", Text: msg.Content}},
			})

		case schema.Assistant:
			blocks := make([]anthropicContentBlock, 0, len(msg.ToolCalls)+1)
			if msg.Content != "" {
				blocks = append(blocks, anthropicContentBlock{Type: "text", Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				input := json.RawMessage(tc.Function.Arguments)
				if len(input) == 0 || !json.Valid(input) {
					input = json.RawMessage("{}")
				}
				blocks = append(blocks, anthropicContentBlock{
					Type:  "tool_use",
					ID:    tc.ID,
					Name:  tc.Function.Name,
					Input: input,
				})
			}
			if len(blocks) == 0 {
				blocks = append(blocks, anthropicContentBlock{Type: "text", Text: ""})
			}
			out = append(out, anthropicMessage{Role: "assistant", Content: blocks})

		case schema.Tool:
			// 吸收从当前位置开始的所有连续 tool 消息
			var blocks []anthropicContentBlock
			for i < len(messages) && messages[i] != nil && messages[i].Role == schema.Tool {
				blocks = append(blocks, anthropicContentBlock{
					Type:      "tool_result",
					ToolUseID: messages[i].ToolCallID,
					Content:   messages[i].Content,
				})
				i++
			}
			i-- // 外层循环会再自增一次
			out = append(out, anthropicMessage{Role: "user", Content: blocks})

		default:
			return "", nil, fmt.Errorf("不支持的消息角色: %s", msg.Role)
		}
	}
	return system, out, nil
}

// convertResponse 将 Anthropic 响应转换为 eino schema.Message。
// stop_reason 映射为 eino 约定的 finish_reason（tool_use -> tool_calls, end_turn -> stop）。
func convertResponse(resp *anthropicResponse) (*schema.Message, error) {
	result := &schema.Message{
		Role: schema.Assistant,
	}

	var textParts []string
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			textParts = append(textParts, block.Text)
		case "tool_use":
			args := "{}"
			if len(block.Input) > 0 {
				args = string(block.Input)
			}
			result.ToolCalls = append(result.ToolCalls, schema.ToolCall{
				ID: block.ID,
				Function: schema.FunctionCall{
					Name:      block.Name,
					Arguments: args,
				},
			})
		}
	}
	result.Content = strings.Join(textParts, "\n")

	finishReason := resp.StopReason
	switch resp.StopReason {
	case "tool_use":
		finishReason = "tool_calls"
	case "end_turn":
		finishReason = "stop"
	}
	result.ResponseMeta = &schema.ResponseMeta{
		FinishReason: finishReason,
		Usage: &schema.TokenUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}

	return result, nil
}

// openAPISchemaToMap 将 openapi3.Schema 递归转换为 Anthropic input_schema 所需的普通 map
func openAPISchemaToMap(s *openapi3.Schema) map[string]any {
	if s == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}

	m := map[string]any{}
	if s.Type != "" {
		m["type"] = s.Type
	}
	if s.Description != "" {
		m["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		m["enum"] = s.Enum
	}
	if len(s.Properties) > 0 {
		props := map[string]any{}
		for name, ref := range s.Properties {
			if ref != nil {
				props[name] = openAPISchemaToMap(ref.Value)
			}
		}
		m["properties"] = props
	} else if s.Type == "object" {
		m["properties"] = map[string]any{}
	}
	if len(s.Required) > 0 {
		m["required"] = s.Required
	}
	if s.Items != nil && s.Items.Value != nil {
		m["items"] = openAPISchemaToMap(s.Items.Value)
	}
	return m
}

var _ model.ToolCallingChatModel = (*ClaudeChatModel)(nil)
