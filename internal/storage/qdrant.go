package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"resume-wizard/internal/config"
	"resume-wizard/internal/logger"
	"resume-wizard/internal/tracing"
	"resume-wizard/internal/types"
)

var qdrantTracer = otel.Tracer("resume-wizard/internal/storage/qdrant")

// QdrantPointIDNamespace 用于为简历文档生成确定性的point ID。
// 同一份简历的同一个文档总是得到相同的point ID，保证重复索引幂等。
var QdrantPointIDNamespace = uuid.Must(uuid.FromString("fd6c72c2-5a33-4b53-8e7c-8298f3f5a7e1"))

// VectorDatabase 向量数据库接口
type VectorDatabase interface {
	// UpsertDocuments 写入一份简历派生的文档及其向量
	UpsertDocuments(ctx context.Context, source string, docs []types.SearchDocument, embeddings [][]float64) ([]string, error)

	// Search 语义搜索
	Search(ctx context.Context, queryVector []float64, query types.SearchQuery) ([]types.SearchResult, error)

	// ListSources 列出已索引的简历来源
	ListSources(ctx context.Context) ([]string, error)

	// DeleteBySource 删除某个来源的全部向量点
	DeleteBySource(ctx context.Context, source string) error
}

var _ VectorDatabase = (*Qdrant)(nil)

// Qdrant 提供向量数据库功能
type Qdrant struct {
	endpoint       string
	collectionName string
	vectorSize     int
	distanceMetric string
	apiKey         string
	defaultLimit   int
	httpClient     *http.Client
	log            zerolog.Logger
}

// QdrantOption 定义Qdrant构造函数选项
type QdrantOption func(*Qdrant)

// WithDistanceMetric 设置距离度量
func WithDistanceMetric(metric string) QdrantOption {
	return func(q *Qdrant) {
		q.distanceMetric = metric
	}
}

// WithHTTPTimeout 设置HTTP客户端超时
func WithHTTPTimeout(timeout time.Duration) QdrantOption {
	return func(q *Qdrant) {
		q.httpClient = &http.Client{Timeout: timeout}
	}
}

// NewQdrant 创建Qdrant客户端并确保集合存在
func NewQdrant(cfg *config.QdrantConfig, opts ...QdrantOption) (*Qdrant, error) {
	if cfg == nil {
		return nil, fmt.Errorf("qdrant配置不能为空")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:6333"
	}

	collectionName := cfg.Collection
	if collectionName == "" {
		collectionName = "resumes"
	}

	vectorSize := cfg.Dimension
	if vectorSize <= 0 {
		vectorSize = 1536 // 与OpenAI text-embedding-3-small一致
	}

	defaultLimit := cfg.DefaultSearchLimit
	if defaultLimit <= 0 {
		defaultLimit = 5
	}

	q := &Qdrant{
		endpoint:       endpoint,
		collectionName: collectionName,
		vectorSize:     vectorSize,
		distanceMetric: "Cosine",
		apiKey:         cfg.APIKey,
		defaultLimit:   defaultLimit,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		log:            logger.Logger.With().Str("component", "qdrant").Logger(),
	}

	for _, opt := range opts {
		opt(q)
	}

	if err := q.ensureCollectionExists(context.Background()); err != nil {
		return nil, fmt.Errorf("确保集合 '%s' 存在失败: %w", collectionName, err)
	}

	q.log.Info().Str("endpoint", endpoint).Str("collection", collectionName).Msg("Qdrant客户端初始化成功")
	return q, nil
}

// ensureCollectionExists 确保向量集合存在
func (q *Qdrant) ensureCollectionExists(ctx context.Context) error {
	ctx, span := qdrantTracer.Start(ctx, "Qdrant.EnsureCollectionExists",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("net.peer.name", q.endpoint),
		attribute.String("db.system", "qdrant"),
		attribute.String("db.operation", "check_collection"),
		attribute.String("db.collection", q.collectionName),
		attribute.Int("db.vector_size", q.vectorSize),
	)

	url := fmt.Sprintf("%s/collections/%s", q.endpoint, q.collectionName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
		return fmt.Errorf("创建检查集合请求失败: %w", err)
	}
	q.setHeaders(req)

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := q.httpClient.Do(req)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return fmt.Errorf("发送检查集合请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		span.AddEvent("collection_not_found", trace.WithAttributes(
			attribute.String("action", "create_collection"),
		))
		q.log.Info().Str("collection", q.collectionName).Msg("集合不存在，将创建新集合")
		return q.createCollection(ctx)
	} else if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("检查集合失败，状态码: %d, 响应: %s", resp.StatusCode, string(body))
		tracing.RecordHTTPError(span, err, resp.StatusCode)
		return err
	}

	var collectionInfo struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size     int    `json:"size"`
						Distance string `json:"distance"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return fmt.Errorf("读取集合信息响应失败: %w", err)
	}
	if err := json.Unmarshal(body, &collectionInfo); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
		return fmt.Errorf("解析集合信息失败: %w", err)
	}

	existingSize := collectionInfo.Result.Config.Params.Vectors.Size
	existingDistance := collectionInfo.Result.Config.Params.Vectors.Distance
	if existingSize != q.vectorSize || existingDistance != q.distanceMetric {
		q.log.Warn().
			Int("existing_size", existingSize).
			Str("existing_distance", existingDistance).
			Int("expected_size", q.vectorSize).
			Str("expected_distance", q.distanceMetric).
			Msg("现有集合配置与当前配置不匹配")
		span.AddEvent("collection_config_mismatch", trace.WithAttributes(
			attribute.Int("expected_vector_size", q.vectorSize),
			attribute.String("expected_distance", q.distanceMetric),
		))
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// createCollection 创建新的向量集合
func (q *Qdrant) createCollection(ctx context.Context) error {
	ctx, span := qdrantTracer.Start(ctx, "Qdrant.CreateCollection",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "qdrant"),
		attribute.String("db.operation", "create_collection"),
		attribute.String("db.collection", q.collectionName),
		attribute.Int("db.vector_size", q.vectorSize),
		attribute.String("db.vector.distance", q.distanceMetric),
	)

	createReqBody := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     q.vectorSize,
			"distance": q.distanceMetric,
		},
		"optimizers_config": map[string]interface{}{
			"default_segment_number": 2,
		},
	}

	err := q.doRequest(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", q.collectionName), createReqBody, nil)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
		return err
	}

	span.SetStatus(codes.Ok, "")
	q.log.Info().Str("collection", q.collectionName).Int("dimension", q.vectorSize).Msg("已创建Qdrant集合")
	return nil
}

// UpsertDocuments 写入一份简历派生的文档及其向量，返回point ID列表。
// point ID由source和文档序号确定性生成，重复索引同一来源会覆盖旧点。
func (q *Qdrant) UpsertDocuments(ctx context.Context, source string, docs []types.SearchDocument, embeddings [][]float64) ([]string, error) {
	ctx, span := qdrantTracer.Start(ctx, "Qdrant.UpsertDocuments",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "qdrant"),
		attribute.String("db.operation", "upsert_points"),
		attribute.String("db.collection", q.collectionName),
		attribute.String("resume.source", source),
		attribute.Int("vectors.count", len(embeddings)),
	)

	if len(docs) != len(embeddings) {
		err := fmt.Errorf("文档数量(%d)与向量数量(%d)不匹配", len(docs), len(embeddings))
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}
	if len(docs) == 0 {
		span.SetStatus(codes.Ok, "no documents to store")
		return []string{}, nil
	}

	points := make([]interface{}, 0, len(docs))
	ids := make([]string, 0, len(docs))

	for i, embedding := range embeddings {
		if len(embedding) != q.vectorSize {
			err := fmt.Errorf("向量维度(%d)与配置维度(%d)不匹配", len(embedding), q.vectorSize)
			tracing.RecordError(span, err, tracing.ErrorTypeValidation)
			return nil, err
		}

		doc := docs[i]
		idSource := fmt.Sprintf("source:%s_doc:%d", source, i)
		pointID := uuid.NewV5(QdrantPointIDNamespace, idSource).String()
		ids = append(ids, pointID)

		payload := map[string]interface{}{
			"source":  source,
			"section": string(doc.Section),
			"content": doc.Content,
		}
		for k, v := range doc.Extra {
			payload[k] = v
		}

		points = append(points, map[string]interface{}{
			"id":      pointID,
			"vector":  embedding,
			"payload": payload,
		})
	}

	requestBody := map[string]interface{}{
		"points": points,
	}

	var response struct {
		Result struct {
			Status string `json:"status"`
		} `json:"result"`
		Status string  `json:"status"`
		Time   float64 `json:"time"`
	}
	err := q.doRequest(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", q.collectionName), requestBody, &response)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("qdrant.response_status", response.Status),
		attribute.Float64("qdrant.response_time", response.Time),
	)
	span.SetStatus(codes.Ok, "")
	return ids, nil
}

// Search 在集合中搜索与查询向量相似的文档。
// query.Section非空时按章节过滤，ScoreThreshold过滤低分结果。
func (q *Qdrant) Search(ctx context.Context, queryVector []float64, query types.SearchQuery) ([]types.SearchResult, error) {
	ctx, span := qdrantTracer.Start(ctx, "Qdrant.Search",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	limit := query.MaxResults
	if limit <= 0 {
		limit = q.defaultLimit
	}

	span.SetAttributes(
		attribute.String("db.system", "qdrant"),
		attribute.String("db.operation", "search_vectors"),
		attribute.String("db.collection", q.collectionName),
		attribute.Int("search.limit", limit),
		attribute.String("search.section", query.Section),
		attribute.Int("query_vector.size", len(queryVector)),
	)

	if len(queryVector) != q.vectorSize {
		err := fmt.Errorf("查询向量维度(%d)与配置维度(%d)不匹配", len(queryVector), q.vectorSize)
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}

	searchReq := map[string]interface{}{
		"vector":       queryVector,
		"limit":        limit,
		"with_payload": true,
	}
	if query.ScoreThreshold > 0 {
		searchReq["score_threshold"] = query.ScoreThreshold
	}
	if query.Section != "" {
		searchReq["filter"] = map[string]interface{}{
			"must": []map[string]interface{}{
				{
					"key": "section",
					"match": map[string]interface{}{
						"value": query.Section,
					},
				},
			},
		}
	}

	var result struct {
		Result []struct {
			ID      string                 `json:"id"`
			Score   float32                `json:"score"`
			Payload map[string]interface{} `json:"payload"`
		} `json:"result"`
		Status string  `json:"status"`
		Time   float64 `json:"time"`
	}

	err := q.doRequest(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/search", q.collectionName), searchReq, &result)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
		return nil, err
	}

	searchResults := make([]types.SearchResult, 0, len(result.Result))
	for _, point := range result.Result {
		sr := types.SearchResult{Score: point.Score}
		if v, ok := point.Payload["source"].(string); ok {
			sr.Source = v
		}
		if v, ok := point.Payload["content"].(string); ok {
			sr.Content = v
		}
		if v, ok := point.Payload["section"].(string); ok {
			sr.Section = v
		}
		searchResults = append(searchResults, sr)
	}

	span.SetAttributes(
		attribute.Int("search.results.count", len(searchResults)),
		attribute.String("qdrant.response_status", result.Status),
		attribute.Float64("qdrant.response_time", result.Time),
	)
	span.SetStatus(codes.Ok, "")
	return searchResults, nil
}

// ListSources 滚动遍历集合，返回所有已索引的简历来源（去重，保持首次出现顺序）
func (q *Qdrant) ListSources(ctx context.Context) ([]string, error) {
	ctx, span := qdrantTracer.Start(ctx, "Qdrant.ListSources",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "qdrant"),
		attribute.String("db.operation", "scroll"),
		attribute.String("db.collection", q.collectionName),
	)

	seen := make(map[string]bool)
	var sources []string
	var offset interface{}

	for {
		scrollReq := map[string]interface{}{
			"with_payload": []string{"source"},
			"with_vector":  false,
			"limit":        256,
		}
		if offset != nil {
			scrollReq["offset"] = offset
		}

		var scrollResp struct {
			Result struct {
				Points []struct {
					ID      string                 `json:"id"`
					Payload map[string]interface{} `json:"payload"`
				} `json:"points"`
				NextPageOffset interface{} `json:"next_page_offset"`
			} `json:"result"`
		}

		err := q.doRequest(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/scroll", q.collectionName), scrollReq, &scrollResp)
		if err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
			return nil, err
		}

		for _, point := range scrollResp.Result.Points {
			if src, ok := point.Payload["source"].(string); ok && src != "" && !seen[src] {
				seen[src] = true
				sources = append(sources, src)
			}
		}

		if scrollResp.Result.NextPageOffset == nil || len(scrollResp.Result.Points) == 0 {
			break
		}
		offset = scrollResp.Result.NextPageOffset
	}

	span.SetAttributes(attribute.Int("sources.count", len(sources)))
	span.SetStatus(codes.Ok, "")
	return sources, nil
}

// DeleteBySource 删除某个来源的全部向量点
func (q *Qdrant) DeleteBySource(ctx context.Context, source string) error {
	ctx, span := qdrantTracer.Start(ctx, "Qdrant.DeleteBySource",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "qdrant"),
		attribute.String("db.operation", "delete_points"),
		attribute.String("db.collection", q.collectionName),
		attribute.String("resume.source", source),
	)

	reqBody := map[string]interface{}{
		"filter": map[string]interface{}{
			"must": []map[string]interface{}{
				{
					"key": "source",
					"match": map[string]interface{}{
						"value": source,
					},
				},
			},
		},
	}

	err := q.doRequest(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/delete?wait=true", q.collectionName), reqBody, nil)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// CountPoints 获取集合中的点数量
func (q *Qdrant) CountPoints(ctx context.Context) (int64, error) {
	ctx, span := qdrantTracer.Start(ctx, "Qdrant.CountPoints",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "qdrant"),
		attribute.String("db.operation", "count_points"),
		attribute.String("db.collection", q.collectionName),
	)

	countReqBody := map[string]interface{}{
		"exact": true,
	}

	var result struct {
		Result struct {
			Count int64 `json:"count"`
		} `json:"result"`
	}

	err := q.doRequest(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/count", q.collectionName), countReqBody, &result)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
		return 0, err
	}

	span.SetAttributes(attribute.Int64("qdrant.points.count", result.Result.Count))
	span.SetStatus(codes.Ok, "")
	return result.Result.Count, nil
}

func (q *Qdrant) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
}

func (q *Qdrant) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	ctx, span := qdrantTracer.Start(ctx, fmt.Sprintf("%s %s", method, path),
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("net.peer.name", q.endpoint),
		attribute.String("db.system", "qdrant"),
		attribute.String("db.operation", path),
	)

	var req *http.Request
	var err error

	if body != nil {
		jsonBody, merr := json.Marshal(body)
		if merr != nil {
			tracing.RecordError(span, merr, tracing.ErrorTypeVectorDB)
			return merr
		}

		req, err = http.NewRequestWithContext(ctx, method, q.endpoint+path, bytes.NewBuffer(jsonBody))
		if err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
			return err
		}

		span.SetAttributes(attribute.Int("http.request.body.size", len(jsonBody)))
	} else {
		req, err = http.NewRequestWithContext(ctx, method, q.endpoint+path, nil)
		if err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
			return err
		}
	}
	q.setHeaders(req)

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := q.httpClient.Do(req)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = fmt.Errorf("qdrant API error: status=%d, body=%s", resp.StatusCode, string(respBody))
		tracing.RecordHTTPError(span, err, resp.StatusCode)
		return err
	}

	if result != nil && len(respBody) > 0 {
		if err = json.Unmarshal(respBody, result); err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
			return err
		}
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
