package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"resume-wizard/internal/config"
	"resume-wizard/internal/constants"
	"resume-wizard/internal/extractor"
	"resume-wizard/internal/logger"
	"resume-wizard/internal/storage"
	"resume-wizard/internal/storage/models"
	"resume-wizard/internal/tracing"
	"resume-wizard/internal/types"
	"resume-wizard/pkg/utils"
)

var handlerTracer = otel.Tracer("resume-wizard/internal/api/handler")

// pipelineLockExpiry 文件处理锁的过期时间，覆盖最慢的完整抽取流程
const pipelineLockExpiry = 10 * time.Minute

// TextExtractor 从原始简历文件中抽取纯文本
type TextExtractor interface {
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string, extraMeta map[string]interface{}) (string, map[string]interface{}, error)
}

// RecordExtractor 对简历文本执行结构化抽取
type RecordExtractor interface {
	ProcessResumeWithProgress(ctx context.Context, resumeText string, onProgress extractor.ProgressFunc) (*types.Resume, error)
}

// RecordIndexer 把抽取结果写入向量库并提供检索
type RecordIndexer interface {
	Index(ctx context.Context, source string, record *types.Resume) (int, error)
	Search(ctx context.Context, query types.SearchQuery) ([]types.SearchResult, error)
	ListSources(ctx context.Context) ([]string, error)
}

// ResumeHandler 简历处理器，串联上传、解析、抽取、入库和索引的完整流程
type ResumeHandler struct {
	cfg           *config.Config
	storage       *storage.Storage
	textExtractor TextExtractor
	recordExtract RecordExtractor
	indexer       RecordIndexer
	log           zerolog.Logger
}

// NewResumeHandler 创建一个新的简历处理器
func NewResumeHandler(
	cfg *config.Config,
	storage *storage.Storage,
	textExtractor TextExtractor,
	recordExtract RecordExtractor,
	indexer RecordIndexer,
) *ResumeHandler {
	return &ResumeHandler{
		cfg:           cfg,
		storage:       storage,
		textExtractor: textExtractor,
		recordExtract: recordExtract,
		indexer:       indexer,
		log:           logger.Logger.With().Str("component", "resume_handler").Logger(),
	}
}

// ResumeUploadResponse 简历上传响应
type ResumeUploadResponse struct {
	SubmissionUUID string        `json:"submission_uuid"`
	Status         string        `json:"status"`
	DocumentCount  int           `json:"document_count,omitempty"`
	Record         *types.Resume `json:"record,omitempty"`
}

// HandleResumeUpload 处理简历上传请求：文件去重、存储原件、
// 解析文本、六个pass抽取、落库并写入向量索引。onProgress可为nil。
func (h *ResumeHandler) HandleResumeUpload(ctx context.Context, reader io.Reader,
	filename string, sourceChannel string, onProgress extractor.ProgressFunc) (*ResumeUploadResponse, error) {

	ctx, span := handlerTracer.Start(ctx, "ResumeHandler.HandleResumeUpload")
	defer span.End()
	span.SetAttributes(attribute.String("upload.filename", filename))

	// 读取文件内容并计算MD5。reader只能读一次，去重检查必须在上传前完成。
	fileBytes, err := io.ReadAll(reader)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return nil, fmt.Errorf("读取上传文件内容失败: %w", err)
	}
	fileMD5Hex := utils.CalculateMD5(fileBytes)

	// 同一文件的处理流程加互斥锁。并发上传同一文件时后到者直接拒绝，
	// 不会在首个请求登记完去重信息前看到半初始化的提交记录。
	if h.storage.Redis != nil {
		lockKey := fmt.Sprintf(constants.KeyFilePipelineLock, fileMD5Hex)
		lockValue, lockErr := h.storage.Redis.AcquireLock(ctx, lockKey, pipelineLockExpiry)
		if lockErr != nil {
			h.log.Warn().Err(lockErr).Str("md5", fileMD5Hex).Msg("获取文件处理锁失败，继续无锁处理")
		} else if lockValue == "" {
			return nil, fmt.Errorf("同一文件正在处理中: %s", fileMD5Hex)
		} else {
			defer func() {
				if _, relErr := h.storage.Redis.ReleaseLock(ctx, lockKey, lockValue); relErr != nil {
					h.log.Warn().Err(relErr).Str("md5", fileMD5Hex).Msg("释放文件处理锁失败")
				}
			}()
		}
	}

	// 文件级去重：原子地检查并登记MD5
	if h.storage.Redis != nil {
		exists, err := h.storage.Redis.CheckAndAddRawFileMD5(ctx, fileMD5Hex)
		if err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeRedis)
			return nil, fmt.Errorf("检查文件MD5重复性时Redis查询失败: %w", err)
		}
		if exists {
			existingUUID, err := h.storage.Redis.GetMD5SubmissionMapping(ctx, fileMD5Hex)
			if err != nil && err != storage.ErrNotFound {
				h.log.Warn().Err(err).Str("md5", fileMD5Hex).Msg("查询MD5对应的提交UUID失败")
			}
			h.log.Info().
				Str("md5", fileMD5Hex).
				Str("filename", filename).
				Str("existing_uuid", existingUUID).
				Msg("检测到重复的文件MD5，跳过处理")
			span.SetStatus(codes.Ok, "duplicate file")
			return &ResumeUploadResponse{
				SubmissionUUID: existingUUID,
				Status:         "DUPLICATE_FILE_SKIPPED",
			}, nil
		}
	}

	uuidV7, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成UUIDv7失败: %w", err)
	}
	submissionUUID := uuidV7.String()
	span.SetAttributes(attribute.String("submission.uuid", submissionUUID))

	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".pdf"
	}

	// 上传原始文件。失败时回滚Redis中的MD5登记，否则同一文件将永远无法重传。
	var originalObjectKey string
	if h.storage.MinIO != nil {
		originalObjectKey, err = h.storage.MinIO.UploadResumeFile(ctx, submissionUUID, ext, bytes.NewReader(fileBytes), int64(len(fileBytes)))
		if err != nil {
			if h.storage.Redis != nil {
				if rbErr := h.storage.Redis.RemoveRawFileMD5(ctx, fileMD5Hex); rbErr != nil {
					h.log.Warn().Err(rbErr).Str("md5", fileMD5Hex).Msg("回滚文件MD5登记失败")
				}
			}
			tracing.RecordError(span, err, tracing.ErrorTypeExternal)
			return nil, newStoreError(submissionUUID, err)
		}
	}

	if h.storage.Redis != nil {
		if err := h.storage.Redis.SetMD5SubmissionMapping(ctx, fileMD5Hex, submissionUUID); err != nil {
			h.log.Warn().Err(err).Str("md5", fileMD5Hex).Msg("写入MD5到UUID的映射失败")
		}
	}

	submission := &models.ResumeSubmission{
		SubmissionUUID:      submissionUUID,
		SubmissionTimestamp: time.Now(),
		SourceChannel:       sourceChannel,
		OriginalFilename:    filename,
		OriginalFilePathOSS: originalObjectKey,
		RawFileMD5:          fileMD5Hex,
		ProcessingStatus:    constants.StatusPendingParsing,
		ParserVersion:       constants.DefaultParserVer,
	}
	if h.storage.MySQL != nil {
		if err := h.storage.MySQL.SaveSubmission(ctx, submission); err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeDB)
			return nil, fmt.Errorf("保存简历提交记录失败: %w", err)
		}
	}

	resp, err := h.runPipeline(ctx, submission, fileBytes, onProgress)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return nil, err
	}

	if resp.Record != nil {
		span.SetAttributes(attribute.String("candidate.name",
			tracing.SafeAttributeValue("candidate.name", resp.Record.Name, tracing.MaxContentLength)))
	}
	span.SetStatus(codes.Ok, "")
	return resp, nil
}

// runPipeline 执行解析、抽取、落库和索引。状态变迁写回数据库，
// 解析失败记为PARSE_FAILED，抽取失败记为EXTRACTION_FAILED。
func (h *ResumeHandler) runPipeline(ctx context.Context, submission *models.ResumeSubmission,
	fileBytes []byte, onProgress extractor.ProgressFunc) (*ResumeUploadResponse, error) {

	submissionUUID := submission.SubmissionUUID

	// 1. 解析文本
	h.updateStatus(ctx, submissionUUID, constants.StatusParsing)
	text, _, err := h.textExtractor.ExtractTextFromBytes(ctx, fileBytes, submission.OriginalFilename, nil)
	if err != nil {
		h.updateStatus(ctx, submissionUUID, constants.StatusParseFailed)
		return nil, newParseError(submissionUUID, err)
	}

	// 2. 文本级去重：同一内容换个文件名再传也会被拦住
	textMD5Hex := utils.CalculateMD5([]byte(text))
	submission.RawTextMD5 = textMD5Hex
	if h.storage.Redis != nil {
		textExists, err := h.storage.Redis.CheckAndAddParsedTextMD5(ctx, textMD5Hex)
		if err != nil {
			h.log.Warn().Err(err).Str("text_md5", textMD5Hex).Msg("查询文本MD5失败，跳过文本去重")
		} else if textExists {
			h.log.Info().
				Str("text_md5", textMD5Hex).
				Str("submission_uuid", submissionUUID).
				Msg("检测到重复的文本内容，跳过抽取")
			h.updateStatus(ctx, submissionUUID, constants.StatusCompleted)
			return &ResumeUploadResponse{
				SubmissionUUID: submissionUUID,
				Status:         "DUPLICATE_CONTENT_SKIPPED",
			}, nil
		}
	}

	// 3. 保存解析文本
	if h.storage.MinIO != nil {
		parsedKey, err := h.storage.MinIO.UploadParsedText(ctx, submissionUUID, text)
		if err != nil {
			h.log.Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("上传解析文本到MinIO失败")
		} else {
			submission.ParsedTextPathOSS = parsedKey
			if h.storage.MySQL != nil {
				if err := h.storage.MySQL.SaveSubmission(ctx, submission); err != nil {
					h.log.Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("更新解析文本路径失败")
				}
			}
		}
	}

	// 4. 六个pass抽取
	h.updateStatus(ctx, submissionUUID, constants.StatusExtracting)
	record, err := h.recordExtract.ProcessResumeWithProgress(ctx, text, onProgress)
	if err != nil {
		h.updateStatus(ctx, submissionUUID, constants.StatusExtractionFailed)
		return nil, newExtractionError(submissionUUID, err)
	}

	if h.storage.MySQL != nil {
		if err := h.storage.MySQL.SaveRecord(ctx, submissionUUID, record); err != nil {
			h.log.Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("保存抽取结果到数据库失败")
		}
	}

	// 5. 写入向量索引。索引失败不阻塞整体流程，结果已落库。
	docCount := 0
	if h.indexer != nil {
		h.updateStatus(ctx, submissionUUID, constants.StatusIndexing)
		docCount, err = h.indexer.Index(ctx, submission.OriginalFilename, record)
		if err != nil {
			h.log.Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("写入向量索引失败")
		}
	}

	h.updateStatus(ctx, submissionUUID, constants.StatusCompleted)
	h.log.Info().
		Str("submission_uuid", submissionUUID).
		Str("candidate", tracing.MaskPII(record.Name)).
		Int("documents_indexed", docCount).
		Msg("简历处理完成")

	return &ResumeUploadResponse{
		SubmissionUUID: submissionUUID,
		Status:         constants.StatusCompleted,
		DocumentCount:  docCount,
		Record:         record,
	}, nil
}

// updateStatus 更新处理状态，失败只记日志不中断流程
func (h *ResumeHandler) updateStatus(ctx context.Context, submissionUUID, status string) {
	if h.storage.MySQL == nil {
		return
	}
	if err := h.storage.MySQL.UpdateProcessingStatus(ctx, submissionUUID, status); err != nil {
		h.log.Warn().
			Err(err).
			Str("submission_uuid", submissionUUID).
			Str("status", status).
			Msg("更新处理状态失败")
	}
}
