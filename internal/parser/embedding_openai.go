package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/rs/zerolog"

	"resume-wizard/internal/config"
	"resume-wizard/internal/logger"
)

// OpenAIEmbedder 通过 OpenAI /v1/embeddings 接口实现 embedding.Embedder
type OpenAIEmbedder struct {
	apiKey     string
	model      string
	dimensions int
	httpClient *http.Client
	baseURL    string
	log        zerolog.Logger
}

// NewOpenAIEmbedder 创建新的 OpenAI Embedder
func NewOpenAIEmbedder(apiKey string, embeddingCfg config.EmbeddingConfig) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API密钥不能为空")
	}

	model := embeddingCfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	baseURL := embeddingCfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1/embeddings"
	}

	return &OpenAIEmbedder{
		apiKey:     apiKey,
		model:      model,
		dimensions: embeddingCfg.Dimensions,
		httpClient: &http.Client{},
		baseURL:    baseURL,
		log:        logger.Logger.With().Str("component", "openai_embedder").Logger(),
	}, nil
}

// GetDimensions 返回嵌入器配置的向量维度
func (o *OpenAIEmbedder) GetDimensions() int {
	return o.dimensions
}

type openAIEmbeddingRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type openAIEmbeddingResponse struct {
	Object string `json:"object"`
	Data   []struct {
		Object    string    `json:"object"`
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// EmbedStrings 将文本转换为向量, 实现 cloudwego/eino embedding.Embedder 接口
func (o *OpenAIEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	options := &embedding.Options{}
	embedding.GetCommonOptions(options, opts...)

	effectiveModel := o.model
	if options.Model != nil && *options.Model != "" {
		effectiveModel = *options.Model
	}

	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	reqBody := openAIEmbeddingRequest{
		Input: texts,
		Model: effectiveModel,
	}
	if o.dimensions > 0 {
		reqBody.Dimensions = o.dimensions
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	var parsedResp openAIEmbeddingResponse
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(body, &parsedResp) == nil && parsedResp.Error != nil {
			return nil, fmt.Errorf("API调用失败, 状态码: %d, 类型: %s, 错误: %s", resp.StatusCode, parsedResp.Error.Type, parsedResp.Error.Message)
		}
		return nil, fmt.Errorf("API调用失败, 状态码: %d, 响应: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, &parsedResp); err != nil {
		return nil, fmt.Errorf("解析响应JSON失败: %w", err)
	}
	if parsedResp.Error != nil && parsedResp.Error.Message != "" {
		return nil, fmt.Errorf("API返回错误: 类型=%s, 消息='%s'", parsedResp.Error.Type, parsedResp.Error.Message)
	}
	if len(parsedResp.Data) != len(texts) {
		return nil, fmt.Errorf("嵌入结果数量不匹配: 期望 %d, 实际 %d", len(texts), len(parsedResp.Data))
	}

	// 响应按 index 排序后返回，保证与输入顺序一致
	outputEmbeddings := make([][]float64, len(parsedResp.Data))
	for _, entry := range parsedResp.Data {
		if entry.Index < 0 || entry.Index >= len(outputEmbeddings) {
			return nil, fmt.Errorf("嵌入结果索引越界: %d", entry.Index)
		}
		outputEmbeddings[entry.Index] = entry.Embedding
	}

	o.log.Debug().
		Int("texts", len(texts)).
		Int("dim", firstEmbeddingDimOf(outputEmbeddings)).
		Int("total_tokens", parsedResp.Usage.TotalTokens).
		Msg("嵌入完成")

	return outputEmbeddings, nil
}

func firstEmbeddingDimOf(embeddings [][]float64) int {
	if len(embeddings) > 0 {
		return len(embeddings[0])
	}
	return 0
}

var _ embedding.Embedder = (*OpenAIEmbedder)(nil)
