package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"resume-wizard/internal/logger"
	"resume-wizard/internal/storage"
	"resume-wizard/internal/storage/models"
	"resume-wizard/internal/tailor"
	"resume-wizard/internal/tracing"
)

// TailorEngine 简历定制引擎的能力抽象
type TailorEngine interface {
	AnalyzeResume(ctx context.Context, resumeText string) (*tailor.TemplateData, error)
	TailorResume(ctx context.Context, resumeText, jobDescription string, data *tailor.TemplateData) (*tailor.TemplateData, error)
}

// TemplateRenderer LaTeX模板渲染能力抽象
type TemplateRenderer interface {
	Render(data *tailor.TemplateData) string
	RenderToFile(data *tailor.TemplateData, outputDir, filename string) (string, error)
}

// TailorHandler 简历定制处理器：取回解析文本、驱动定制引擎并渲染LaTeX产物
type TailorHandler struct {
	storage   *storage.Storage
	engine    TailorEngine
	renderer  TemplateRenderer
	outputDir string
	log       zerolog.Logger
}

// NewTailorHandler 创建简历定制处理器。renderer可为nil，此时只返回模板数据不渲染。
func NewTailorHandler(storage *storage.Storage, engine TailorEngine, renderer TemplateRenderer, outputDir string) *TailorHandler {
	return &TailorHandler{
		storage:   storage,
		engine:    engine,
		renderer:  renderer,
		outputDir: outputDir,
		log:       logger.Logger.With().Str("component", "tailor_handler").Logger(),
	}
}

// TailorRequest 简历定制请求。ResumeText和SubmissionUUID二选一，
// 提供SubmissionUUID时从对象存储取回该次提交的解析文本。
type TailorRequest struct {
	SubmissionUUID string `json:"submission_uuid"`
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
}

// TailorResponse 简历定制响应
type TailorResponse struct {
	RenderID     string               `json:"render_id"`
	TemplateData *tailor.TemplateData `json:"template_data"`
	LatexSource  string               `json:"latex_source,omitempty"`
	OutputPath   string               `json:"output_path,omitempty"`
}

// HandleTailor 对一份简历按岗位描述执行定制并渲染LaTeX
func (h *TailorHandler) HandleTailor(ctx context.Context, req TailorRequest) (*TailorResponse, error) {
	ctx, span := handlerTracer.Start(ctx, "TailorHandler.HandleTailor")
	defer span.End()

	if strings.TrimSpace(req.JobDescription) == "" {
		err := fmt.Errorf("岗位描述不能为空")
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}

	resumeText, err := h.resolveResumeText(ctx, req)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}

	renderID := uuid.NewString()
	span.SetAttributes(attribute.String("tailor.render_id", renderID))

	if h.storage != nil && h.storage.MySQL != nil {
		rec := &models.TailoredResume{
			RenderID:       renderID,
			SubmissionUUID: req.SubmissionUUID,
			JobDescription: req.JobDescription,
			Status:         "PENDING",
		}
		if err := h.storage.MySQL.SaveTailoredResume(ctx, rec); err != nil {
			h.log.Warn().Err(err).Str("render_id", renderID).Msg("保存定制任务记录失败")
		}
	}

	data, err := h.engine.TailorResume(ctx, resumeText, req.JobDescription, nil)
	if err != nil {
		h.markTailorStatus(ctx, renderID, "FAILED", "")
		tracing.RecordError(span, err, tracing.ErrorTypeModel)
		return nil, fmt.Errorf("简历定制失败: %w", err)
	}

	resp := &TailorResponse{
		RenderID:     renderID,
		TemplateData: data,
	}

	if h.renderer != nil {
		resp.LatexSource = h.renderer.Render(data)
		outputPath, err := h.renderer.RenderToFile(data, h.outputDir, renderID)
		if err != nil {
			h.log.Warn().Err(err).Str("render_id", renderID).Msg("写入LaTeX文件失败")
		} else {
			resp.OutputPath = outputPath
		}
	}

	h.markTailorStatus(ctx, renderID, "COMPLETED", resp.OutputPath)
	span.SetStatus(codes.Ok, "")
	h.log.Info().Str("render_id", renderID).Msg("简历定制完成")
	return resp, nil
}

// resolveResumeText 获取待定制的简历文本
func (h *TailorHandler) resolveResumeText(ctx context.Context, req TailorRequest) (string, error) {
	if strings.TrimSpace(req.ResumeText) != "" {
		return req.ResumeText, nil
	}
	if req.SubmissionUUID == "" {
		return "", fmt.Errorf("必须提供resume_text或submission_uuid")
	}
	if h.storage == nil || h.storage.MySQL == nil || h.storage.MinIO == nil {
		return "", fmt.Errorf("按submission_uuid定制需要数据库和对象存储可用")
	}

	submission, err := h.storage.MySQL.GetSubmission(ctx, req.SubmissionUUID)
	if err != nil {
		return "", fmt.Errorf("查询提交记录失败: %w", err)
	}
	if submission.ParsedTextPathOSS == "" {
		return "", fmt.Errorf("提交 %s 没有可用的解析文本", req.SubmissionUUID)
	}

	text, err := h.storage.MinIO.GetParsedText(ctx, submission.ParsedTextPathOSS)
	if err != nil {
		return "", fmt.Errorf("获取解析文本失败: %w", err)
	}
	return text, nil
}

// markTailorStatus 更新定制任务状态，失败只记日志
func (h *TailorHandler) markTailorStatus(ctx context.Context, renderID, status, outputPath string) {
	if h.storage == nil || h.storage.MySQL == nil {
		return
	}
	if err := h.storage.MySQL.UpdateTailoredResumeStatus(ctx, renderID, status, outputPath); err != nil {
		h.log.Warn().
			Err(err).
			Str("render_id", renderID).
			Str("status", status).
			Msg("更新定制任务状态失败")
	}
}
