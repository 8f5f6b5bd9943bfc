package extractor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resume-wizard/internal/agent"
	"resume-wizard/internal/logger"
	"resume-wizard/internal/tracing"
	"resume-wizard/internal/types"
)

var wizardTracer = otel.Tracer("resume-wizard/internal/extractor")

// ProgressFunc 在每个pass完成后被调用一次，用于向调用方报告进度。
// 回调在编排协程内同步执行，不应阻塞太久。
type ProgressFunc func(progress types.PassProgress)

// Wizard 按固定顺序对一份简历执行六个抽取pass，共用一个 Accumulator，
// 最终组装出完整的简历记录。任何一个pass失败都会中止后续pass并把错误上抛，
// 不会静默返回缺节的结果。
type Wizard struct {
	chatModel   model.ToolCallingChatModel
	maxTurns    int
	passTimeout time.Duration
}

// WizardOption 配置 Wizard 的函数选项
type WizardOption func(*Wizard)

// WithWizardMaxTurns 设置每个pass的最大对话轮次
func WithWizardMaxTurns(n int) WizardOption {
	return func(w *Wizard) {
		if n > 0 {
			w.maxTurns = n
		}
	}
}

// WithPassTimeout 设置每个pass的超时时间，0表示不限制
func WithPassTimeout(d time.Duration) WizardOption {
	return func(w *Wizard) {
		w.passTimeout = d
	}
}

// NewWizard 创建一个简历抽取编排器
func NewWizard(chatModel model.ToolCallingChatModel, opts ...WizardOption) (*Wizard, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model 不能为空")
	}
	w := &Wizard{chatModel: chatModel}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// ProcessResume 对一份简历文本执行全部抽取pass并返回组装好的记录
func (w *Wizard) ProcessResume(ctx context.Context, resumeText string) (*types.Resume, error) {
	return w.ProcessResumeWithProgress(ctx, resumeText, nil)
}

// ProcessResumeWithProgress 同 ProcessResume，并在每个pass完成后调用进度回调
func (w *Wizard) ProcessResumeWithProgress(ctx context.Context, resumeText string, onProgress ProgressFunc) (*types.Resume, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, fmt.Errorf("简历文本不能为空")
	}

	ctx, span := wizardTracer.Start(ctx, "Wizard.ProcessResume")
	defer span.End()
	span.SetAttributes(attribute.Int("resume.text_length", len(resumeText)))

	acc := NewAccumulator()
	passes := Passes()

	for i, pass := range passes {
		summary, err := w.runPass(ctx, pass, acc, resumeText)
		if err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeModel)
			return nil, fmt.Errorf("pass %s (%d/%d) 失败: %w", pass.Name, i+1, len(passes), err)
		}

		logger.Ctx(ctx).Info().
			Str("pass", pass.Name).
			Int("index", i+1).
			Int("total", len(passes)).
			Msg("抽取pass完成")

		if onProgress != nil {
			onProgress(types.PassProgress{
				Pass:    pass.Name,
				Index:   i + 1,
				Total:   len(passes),
				Summary: summary,
			})
		}
	}

	return acc.Assemble(), nil
}

// runPass 为单个pass构建引擎并执行
func (w *Wizard) runPass(ctx context.Context, pass Pass, acc *Accumulator, resumeText string) (string, error) {
	ctx, span := wizardTracer.Start(ctx, "Wizard.pass."+pass.Name)
	defer span.End()

	if w.passTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.passTimeout)
		defer cancel()
	}

	var engineOpts []agent.EngineOption
	if w.maxTurns > 0 {
		engineOpts = append(engineOpts, agent.WithMaxTurns(w.maxTurns))
	}

	engine, err := agent.NewExtractEngine(ctx, w.chatModel, pass.Tools(acc), engineOpts...)
	if err != nil {
		return "", fmt.Errorf("创建抽取引擎失败: %w", err)
	}

	summary, err := engine.Run(ctx, pass.BuildPrompt(resumeText))
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeModel)
		return "", err
	}
	return summary, nil
}
