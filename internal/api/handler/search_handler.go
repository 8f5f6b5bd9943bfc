package handler

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"resume-wizard/internal/logger"
	"resume-wizard/internal/tracing"
	"resume-wizard/internal/types"
)

// SearchHandler 简历向量检索处理器
type SearchHandler struct {
	indexer RecordIndexer
	log     zerolog.Logger
}

// NewSearchHandler 创建检索处理器
func NewSearchHandler(indexer RecordIndexer) *SearchHandler {
	return &SearchHandler{
		indexer: indexer,
		log:     logger.Logger.With().Str("component", "search_handler").Logger(),
	}
}

// HandleSearch 按语义相似度检索简历片段
func (h *SearchHandler) HandleSearch(ctx context.Context, query types.SearchQuery) ([]types.SearchResult, error) {
	ctx, span := handlerTracer.Start(ctx, "SearchHandler.HandleSearch")
	defer span.End()
	span.SetAttributes(
		attribute.String("search.section", query.Section),
		attribute.Int("search.max_results", query.MaxResults),
	)

	if h.indexer == nil {
		err := fmt.Errorf("检索功能未启用")
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}
	if strings.TrimSpace(query.Query) == "" {
		err := fmt.Errorf("查询文本不能为空")
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}

	results, err := h.indexer.Search(ctx, query)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
		return nil, fmt.Errorf("检索简历失败: %w", err)
	}

	span.SetAttributes(attribute.Int("search.result_count", len(results)))
	span.SetStatus(codes.Ok, "")
	return results, nil
}

// HandleSearchSources 检索并返回命中结果所属的去重简历来源列表
func (h *SearchHandler) HandleSearchSources(ctx context.Context, query types.SearchQuery) ([]string, error) {
	results, err := h.HandleSearch(ctx, query)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(results))
	sources := make([]string, 0, len(results))
	for _, r := range results {
		if _, ok := seen[r.Source]; ok {
			continue
		}
		seen[r.Source] = struct{}{}
		sources = append(sources, r.Source)
	}
	sort.Strings(sources)
	return sources, nil
}

// HandleListSources 列出向量库中全部已索引的简历来源
func (h *SearchHandler) HandleListSources(ctx context.Context) ([]string, error) {
	ctx, span := handlerTracer.Start(ctx, "SearchHandler.HandleListSources")
	defer span.End()

	if h.indexer == nil {
		err := fmt.Errorf("检索功能未启用")
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}

	sources, err := h.indexer.ListSources(ctx)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
		return nil, fmt.Errorf("获取简历来源列表失败: %w", err)
	}

	span.SetAttributes(attribute.Int("sources.count", len(sources)))
	span.SetStatus(codes.Ok, "")
	return sources, nil
}
