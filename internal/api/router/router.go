package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"resume-wizard/internal/api/handler"
	"resume-wizard/internal/extractor"
	"resume-wizard/internal/types"
)

// streamEvent 流式上传接口的NDJSON事件
type streamEvent struct {
	Type     string                        `json:"type"` // progress, result, error
	Progress *types.PassProgress           `json:"progress,omitempty"`
	Result   *handler.ResumeUploadResponse `json:"result,omitempty"`
	Error    string                        `json:"error,omitempty"`
}

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz,
	resumeHandler *handler.ResumeHandler,
	searchHandler *handler.SearchHandler,
	tailorHandler *handler.TailorHandler,
) {
	api := h.Group("/api/v1")

	api.POST("/resume/upload", func(c context.Context, ctx *app.RequestContext) {
		fileBytes, filename, sourceChannel, ok := readUploadForm(ctx)
		if !ok {
			return
		}

		resp, err := resumeHandler.HandleResumeUpload(c, bytes.NewReader(fileBytes), filename, sourceChannel, nil)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}

		ctx.JSON(consts.StatusOK, resp)
	})

	// 同一条流水线，但以NDJSON逐行推送每个pass的进度
	api.POST("/resume/upload/stream", func(c context.Context, ctx *app.RequestContext) {
		fileBytes, filename, sourceChannel, ok := readUploadForm(ctx)
		if !ok {
			return
		}

		pr, pw := io.Pipe()
		ctx.Response.Header.SetContentType("application/x-ndjson")
		ctx.Response.SetBodyStream(pr, -1)

		go func() {
			enc := json.NewEncoder(pw)
			onProgress := func(p types.PassProgress) {
				progress := p
				_ = enc.Encode(streamEvent{Type: "progress", Progress: &progress})
			}

			resp, err := resumeHandler.HandleResumeUpload(c, bytes.NewReader(fileBytes), filename, sourceChannel, extractor.ProgressFunc(onProgress))
			if err != nil {
				_ = enc.Encode(streamEvent{Type: "error", Error: err.Error()})
			} else {
				_ = enc.Encode(streamEvent{Type: "result", Result: resp})
			}
			_ = pw.Close()
		}()
	})

	api.POST("/search", func(c context.Context, ctx *app.RequestContext) {
		var query types.SearchQuery
		if err := json.Unmarshal(ctx.Request.Body(), &query); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}

		results, err := searchHandler.HandleSearch(c, query)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}

		ctx.JSON(consts.StatusOK, results)
	})

	api.POST("/search/sources", func(c context.Context, ctx *app.RequestContext) {
		var query types.SearchQuery
		if err := json.Unmarshal(ctx.Request.Body(), &query); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}

		sources, err := searchHandler.HandleSearchSources(c, query)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}

		ctx.JSON(consts.StatusOK, sources)
	})

	api.GET("/sources", func(c context.Context, ctx *app.RequestContext) {
		sources, err := searchHandler.HandleListSources(c)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}

		ctx.JSON(consts.StatusOK, sources)
	})

	api.POST("/tailor", func(c context.Context, ctx *app.RequestContext) {
		var req handler.TailorRequest
		if err := json.Unmarshal(ctx.Request.Body(), &req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}

		resp, err := tailorHandler.HandleTailor(c, req)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}

		ctx.JSON(consts.StatusOK, resp)
	})

	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}

// readUploadForm 读取multipart上传表单。失败时已写入错误响应并返回ok=false。
func readUploadForm(ctx *app.RequestContext) (fileBytes []byte, filename, sourceChannel string, ok bool) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
		return nil, "", "", false
	}

	sourceChannel = ctx.PostForm("source_channel")
	if sourceChannel == "" {
		sourceChannel = "web_upload"
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
		return nil, "", "", false
	}
	defer file.Close()

	fileBytes, err = io.ReadAll(file)
	if err != nil {
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "读取文件失败"})
		return nil, "", "", false
	}

	return fileBytes, fileHeader.Filename, sourceChannel, true
}
