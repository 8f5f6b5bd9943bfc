package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resume-wizard/internal/logger"
	"resume-wizard/internal/tracing"
)

var engineTracer = otel.Tracer("resume-wizard/internal/agent")

const defaultMaxTurns = 10

var (
	// ErrEmptyPrompt 提示词为空
	ErrEmptyPrompt = errors.New("提示词不能为空")
	// ErrNoTools 未提供任何工具
	ErrNoTools = errors.New("至少需要一个工具")
	// ErrMaxTurnsExceeded 达到轮次上限仍未收敛
	ErrMaxTurnsExceeded = errors.New("extraction did not converge")
)

// ExtractEngine 驱动模型与工具之间的多轮对话：发送提示词，检查模型的停止信号，
// 按顺序执行本轮所有工具调用并把结果追加回对话，直到模型给出最终回复或达到轮次上限。
type ExtractEngine struct {
	chatModel   model.ToolCallingChatModel
	toolsByName map[string]tool.InvokableTool
	maxTurns    int
}

// EngineOption 配置 ExtractEngine 的函数选项
type EngineOption func(*ExtractEngine)

// WithMaxTurns 设置单次抽取的最大轮次上限
func WithMaxTurns(n int) EngineOption {
	return func(e *ExtractEngine) {
		if n > 0 {
			e.maxTurns = n
		}
	}
}

// NewExtractEngine 创建一个抽取引擎，并把工具定义绑定到模型上。
func NewExtractEngine(ctx context.Context, chatModel model.ToolCallingChatModel, tools []tool.InvokableTool, opts ...EngineOption) (*ExtractEngine, error) {
	if chatModel == nil {
		return nil, errors.New("chat model 不能为空")
	}
	if len(tools) == 0 {
		return nil, ErrNoTools
	}

	e := &ExtractEngine{
		toolsByName: make(map[string]tool.InvokableTool, len(tools)),
		maxTurns:    defaultMaxTurns,
	}
	for _, opt := range opts {
		opt(e)
	}

	toolInfos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("获取工具信息失败: %w", err)
		}
		toolInfos = append(toolInfos, info)
		e.toolsByName[info.Name] = t
	}

	bound, err := chatModel.WithTools(toolInfos)
	if err != nil {
		return nil, fmt.Errorf("绑定工具失败: %w", err)
	}
	e.chatModel = bound

	return e, nil
}

// Run 以单条用户提示词启动对话循环，返回模型的最终文本回复（可能为空字符串）。
//
// 停止信号只看 ResponseMeta.FinishReason：为 tool_calls 时执行工具并继续下一轮，
// 其余情况以当前回复内容作为最终结果返回。
func (e *ExtractEngine) Run(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	ctx, span := engineTracer.Start(ctx, "ExtractEngine.Run")
	defer span.End()
	span.SetAttributes(
		attribute.Int("engine.max_turns", e.maxTurns),
		attribute.Int("engine.tools", len(e.toolsByName)),
	)

	transcript := []*schema.Message{schema.UserMessage(prompt)}

	for turn := 1; turn <= e.maxTurns; turn++ {
		resp, err := e.chatModel.Generate(ctx, transcript)
		if err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeModel)
			return "", fmt.Errorf("第 %d 轮模型调用失败: %w", turn, err)
		}

		transcript = append(transcript, resp)

		finishReason := ""
		if resp.ResponseMeta != nil {
			finishReason = resp.ResponseMeta.FinishReason
		}

		if finishReason != "tool_calls" {
			span.SetAttributes(attribute.Int("engine.turns", turn))
			return resp.Content, nil
		}

		// 按调用顺序执行本轮的全部工具调用，每个调用追加一条 tool 消息
		for _, tc := range resp.ToolCalls {
			result := e.dispatch(ctx, tc)
			transcript = append(transcript, schema.ToolMessage(result, tc.ID))
		}
	}

	tracing.RecordError(span, ErrMaxTurnsExceeded, tracing.ErrorTypeModel)
	return "", fmt.Errorf("%w (max_turns=%d)", ErrMaxTurnsExceeded, e.maxTurns)
}

// dispatch 执行单个工具调用。未知工具和工具内部错误都不终止对话，
// 而是把错误描述作为工具结果返回给模型，让模型自行纠正。
func (e *ExtractEngine) dispatch(ctx context.Context, tc schema.ToolCall) string {
	name := tc.Function.Name
	t, ok := e.toolsByName[name]
	if !ok {
		logger.Ctx(ctx).Warn().Str("tool", name).Msg("模型调用了未知工具")
		return fmt.Sprintf("unknown tool: %s", name)
	}

	result, err := t.InvokableRun(ctx, tc.Function.Arguments)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("tool", name).Msg("工具执行失败")
		return fmt.Sprintf("tool %s failed: %v", name, err)
	}
	return result
}
