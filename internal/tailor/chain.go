package tailor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"resume-wizard/internal/agent"
	"resume-wizard/internal/logger"
	"resume-wizard/internal/tracing"
)

var tailorTracer = otel.Tracer("resume-wizard/internal/tailor")

const analysisPrompt = `You are an expert at analyzing resumes and extracting structured information. Your task is to analyze a resume and extract information in a format suitable for our LaTeX template.

Guidelines for analysis:
1. Extract all relevant information from the resume text
2. Format information according to template requirements
3. Ensure dates are consistently formatted
4. Extract bullet points for experience and projects
5. Categorize skills appropriately

Process:
1. First analyze the resume to identify:
   - Contact information and social links
   - Education history
   - Work experience
   - Projects
   - Technical skills

2. Then use the provided tools to:
   - Format and save contact information
   - Structure education entries
   - Format work experience descriptions
   - Format project descriptions
   - Categorize technical skills

Important: After processing each section, verify that all required fields are populated and formatted correctly.`

const tailoringPrompt = `You are an expert resume writer and career coach. Your task is to tailor a resume to a specific job description, ensuring the content is optimized for both human readers and ATS systems.

Guidelines for tailoring:
1. Analyze both the resume and job description carefully
2. Identify key requirements and skills from the job description
3. Prioritize relevant experience and achievements
4. Use similar keywords and terminology as the job description
5. Quantify achievements where possible
6. Keep bullet points concise and impactful
7. Ensure all content fits the template format
8. Maintain professional tone and active voice

Process:
1. First analyze the job description to identify:
   - Required skills and technologies
   - Key responsibilities
   - Preferred qualifications
   - Industry-specific terminology

2. Then review the resume content and:
   - Highlight matching qualifications
   - Rewrite bullet points to emphasize relevant experience
   - Add quantifiable metrics where possible
   - Incorporate key terms from the job description
   - Remove or de-emphasize less relevant content

3. Format the content to fit the template:
   - Organize sections according to template structure
   - Ensure bullet points are clear and concise
   - Verify all dates and locations are properly formatted
   - Check that skills are correctly categorized

Important: After processing each section, provide a brief explanation of the changes made and how they align with the job requirements.`

// Engine 简历定制引擎：先从原始简历抽取模板数据，
// 再按目标岗位描述重写模板数据。两个阶段走同一套工具调用协议。
type Engine struct {
	chatModel model.ToolCallingChatModel
	maxTurns  int
	log       zerolog.Logger
}

// EngineOption Engine构造选项
type EngineOption func(*Engine)

// WithMaxTurns 设置单阶段最大对话轮数
func WithMaxTurns(maxTurns int) EngineOption {
	return func(e *Engine) {
		e.maxTurns = maxTurns
	}
}

// NewEngine 创建简历定制引擎
func NewEngine(chatModel model.ToolCallingChatModel, opts ...EngineOption) (*Engine, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("聊天模型不能为空")
	}
	e := &Engine{
		chatModel: chatModel,
		log:       logger.Logger.With().Str("component", "tailor").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// AnalyzeResume 分析原始简历文本，抽取出LaTeX模板数据
func (e *Engine) AnalyzeResume(ctx context.Context, resumeText string) (*TemplateData, error) {
	ctx, span := tailorTracer.Start(ctx, "Tailor.AnalyzeResume")
	defer span.End()

	data := &TemplateData{}
	prompt := fmt.Sprintf("%s\n\nPlease analyze this resume and extract information for our template:\n\n%s",
		analysisPrompt, resumeText)

	if err := e.runPhase(ctx, data, prompt); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeModel)
		return nil, fmt.Errorf("简历分析失败: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	e.log.Info().Str("name", data.Name).Msg("简历分析完成")
	return data, nil
}

// TailorResume 按岗位描述定制模板数据。data为nil时先走AnalyzeResume。
func (e *Engine) TailorResume(ctx context.Context, resumeText, jobDescription string, data *TemplateData) (*TemplateData, error) {
	ctx, span := tailorTracer.Start(ctx, "Tailor.TailorResume")
	defer span.End()

	if data == nil {
		analyzed, err := e.AnalyzeResume(ctx, resumeText)
		if err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeModel)
			return nil, err
		}
		data = analyzed
	}

	currentJSON, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return nil, fmt.Errorf("序列化模板数据失败: %w", err)
	}

	prompt := fmt.Sprintf(`%s

Please tailor this resume to the following job description:

Job Description:
%s

Resume:
%s

Current Template Data:
%s

Please analyze both and update the template data to better match the job requirements.`,
		tailoringPrompt, jobDescription, resumeText, string(currentJSON))

	if err := e.runPhase(ctx, data, prompt); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeModel)
		return nil, fmt.Errorf("简历定制失败: %w", err)
	}

	span.SetAttributes(
		attribute.Int("template.education_count", len(data.Education)),
		attribute.Int("template.experience_count", len(data.Experience)),
		attribute.Int("template.project_count", len(data.Projects)),
	)
	span.SetStatus(codes.Ok, "")
	e.log.Info().Msg("简历定制完成")
	return data, nil
}

// runPhase 对给定模板数据执行一个完整的工具调用对话阶段
func (e *Engine) runPhase(ctx context.Context, data *TemplateData, prompt string) error {
	var engineOpts []agent.EngineOption
	if e.maxTurns > 0 {
		engineOpts = append(engineOpts, agent.WithMaxTurns(e.maxTurns))
	}

	engine, err := agent.NewExtractEngine(ctx, e.chatModel, TemplateTools(data), engineOpts...)
	if err != nil {
		return err
	}

	_, err = engine.Run(ctx, prompt)
	return err
}
