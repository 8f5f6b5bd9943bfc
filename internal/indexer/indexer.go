package indexer

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"resume-wizard/internal/logger"
	"resume-wizard/internal/storage"
	"resume-wizard/internal/tracing"
	"resume-wizard/internal/types"
)

var indexerTracer = otel.Tracer("resume-wizard/internal/indexer")

const (
	defaultMaxResults     = 5
	defaultScoreThreshold = 0.5
)

// Indexer 将抽取完成的简历Record转换为文档并写入向量库
type Indexer struct {
	embedder embedding.Embedder
	vectorDB storage.VectorDatabase
	log      zerolog.Logger
}

// NewIndexer 创建索引器
func NewIndexer(embedder embedding.Embedder, vectorDB storage.VectorDatabase) (*Indexer, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder不能为空")
	}
	if vectorDB == nil {
		return nil, fmt.Errorf("向量数据库不能为空")
	}
	return &Indexer{
		embedder: embedder,
		vectorDB: vectorDB,
		log:      logger.Logger.With().Str("component", "indexer").Logger(),
	}, nil
}

// BuildDocuments 从简历Record派生出待索引的文档列表。
// 技能汇总为一个文档，objective单独一个，每条工作经历和项目各一个。
// 没有position+company的经历和没有name的项目会被跳过。
func BuildDocuments(record *types.Resume, source string) []types.SearchDocument {
	if record == nil {
		return nil
	}

	var documents []types.SearchDocument

	var sb strings.Builder
	sb.WriteString("Skills:\n")
	for _, category := range types.SkillCategories {
		skills := record.Skills[category]
		if len(skills) > 0 {
			sb.WriteString(fmt.Sprintf("%s: %s\n", titleCase(category), strings.Join(skills, ", ")))
		}
	}
	if skillsStr := sb.String(); skillsStr != "Skills:\n" {
		documents = append(documents, types.SearchDocument{
			Content: skillsStr,
			Section: types.SectionSkills,
		})
	}

	if record.Objective != "" {
		documents = append(documents, types.SearchDocument{
			Content: record.Objective,
			Section: types.SectionObjective,
		})
	}

	for _, exp := range record.Experience {
		if exp.Position == "" || exp.Company == "" {
			continue
		}
		content := fmt.Sprintf("%s at %s", exp.Position, exp.Company)
		if exp.Description != "" {
			content += "\n" + exp.Description
		}
		documents = append(documents, types.SearchDocument{
			Content: content,
			Section: types.SectionExperience,
			Extra: map[string]interface{}{
				"position": exp.Position,
				"company":  exp.Company,
			},
		})
	}

	for _, proj := range record.Projects {
		if proj.Name == "" {
			continue
		}
		content := proj.Name
		if proj.Description != "" {
			content += "\n" + proj.Description
		}
		documents = append(documents, types.SearchDocument{
			Content: content,
			Section: types.SectionProjects,
			Extra: map[string]interface{}{
				"name": proj.Name,
			},
		})
	}

	return documents
}

// titleCase 将每段字母序列的首字母大写，如 dev_tools -> Dev_Tools
func titleCase(s string) string {
	runes := []rune(s)
	prevIsLetter := false
	for i, r := range runes {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if isLetter && !prevIsLetter {
			if r >= 'a' && r <= 'z' {
				runes[i] = r - 'a' + 'A'
			}
		} else if isLetter && prevIsLetter {
			if r >= 'A' && r <= 'Z' {
				runes[i] = r - 'A' + 'a'
			}
		}
		prevIsLetter = isLetter
	}
	return string(runes)
}

// Index 派生文档、生成向量并写入向量库，返回写入的文档数
func (ix *Indexer) Index(ctx context.Context, source string, record *types.Resume) (int, error) {
	ctx, span := indexerTracer.Start(ctx, "Indexer.Index",
		trace.WithAttributes(attribute.String("resume.source", source)))
	defer span.End()

	documents := BuildDocuments(record, source)
	if len(documents) == 0 {
		span.SetStatus(codes.Ok, "no documents derived")
		ix.log.Warn().Str("source", source).Msg("简历未派生出任何可索引文档")
		return 0, nil
	}

	texts := make([]string, len(documents))
	for i, doc := range documents {
		texts[i] = doc.Content
	}

	vectors, err := ix.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeModel)
		return 0, fmt.Errorf("生成文档向量失败: %w", err)
	}

	// 重建索引前清掉该来源的旧点。本次派生的文档数变少时，
	// 仅靠确定性的点ID覆盖会留下上一版的残留向量。
	if err := ix.vectorDB.DeleteBySource(ctx, source); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
		return 0, fmt.Errorf("清理来源 %s 的旧向量失败: %w", source, err)
	}

	ids, err := ix.vectorDB.UpsertDocuments(ctx, source, documents, vectors)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
		return 0, fmt.Errorf("写入向量库失败: %w", err)
	}

	span.SetAttributes(attribute.Int("documents.count", len(ids)))
	span.SetStatus(codes.Ok, "")
	ix.log.Info().Str("source", source).Int("documents", len(ids)).Msg("简历索引完成")
	return len(ids), nil
}

// Search 对查询文本做向量化后执行语义搜索。
// MaxResults和ScoreThreshold为零值时使用默认值5和0.5。
func (ix *Indexer) Search(ctx context.Context, query types.SearchQuery) ([]types.SearchResult, error) {
	ctx, span := indexerTracer.Start(ctx, "Indexer.Search",
		trace.WithAttributes(
			attribute.String("search.section", query.Section),
			attribute.String("search.query", tracing.TruncateString(query.Query, tracing.MaxQueryLength)),
		))
	defer span.End()

	if strings.TrimSpace(query.Query) == "" {
		err := fmt.Errorf("查询文本不能为空")
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}

	if query.MaxResults <= 0 {
		query.MaxResults = defaultMaxResults
	}
	if query.ScoreThreshold <= 0 {
		query.ScoreThreshold = defaultScoreThreshold
	}

	vectors, err := ix.embedder.EmbedStrings(ctx, []string{query.Query})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeModel)
		return nil, fmt.Errorf("生成查询向量失败: %w", err)
	}
	if len(vectors) != 1 {
		err := fmt.Errorf("查询向量数量异常: %d", len(vectors))
		tracing.RecordError(span, err, tracing.ErrorTypeModel)
		return nil, err
	}

	results, err := ix.vectorDB.Search(ctx, vectors[0], query)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
		return nil, err
	}

	span.SetAttributes(attribute.Int("search.results.count", len(results)))
	span.SetStatus(codes.Ok, "")
	return results, nil
}

// ListSources 列出已索引的简历来源
func (ix *Indexer) ListSources(ctx context.Context) ([]string, error) {
	return ix.vectorDB.ListSources(ctx)
}
