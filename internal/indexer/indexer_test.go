package indexer

import (
	"context"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-wizard/internal/types"
)

type stubEmbedder struct {
	dim      int
	err      error
	received [][]string
}

func (s *stubEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	s.received = append(s.received, texts)
	if s.err != nil {
		return nil, s.err
	}
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vectors[i] = make([]float64, s.dim)
	}
	return vectors, nil
}

type stubVectorDB struct {
	upsertSource  string
	upsertDocs    []types.SearchDocument
	searchQuery   types.SearchQuery
	results       []types.SearchResult
	sources       []string
	deletedBefore bool
	deletedSource string
	deleteErr     error
}

func (s *stubVectorDB) UpsertDocuments(ctx context.Context, source string, docs []types.SearchDocument, embeddings [][]float64) ([]string, error) {
	s.upsertSource = source
	s.upsertDocs = docs
	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = fmt.Sprintf("point-%d", i)
	}
	return ids, nil
}

func (s *stubVectorDB) Search(ctx context.Context, queryVector []float64, query types.SearchQuery) ([]types.SearchResult, error) {
	s.searchQuery = query
	return s.results, nil
}

func (s *stubVectorDB) ListSources(ctx context.Context) ([]string, error) {
	return s.sources, nil
}

func (s *stubVectorDB) DeleteBySource(ctx context.Context, source string) error {
	s.deletedSource = source
	s.deletedBefore = s.upsertSource == ""
	return s.deleteErr
}

func sampleRecord() *types.Resume {
	return &types.Resume{
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		Objective: "Backend engineer with a focus on distributed systems.",
		Experience: []types.ExperienceEntry{
			{Position: "Software Engineer", Company: "Acme", Description: "Built pipelines."},
			{Position: "Intern"}, // 缺少company，应跳过
		},
		Projects: []types.ProjectEntry{
			{Name: "resume-wizard", Description: "Resume processing service."},
			{Description: "unnamed"}, // 缺少name，应跳过
		},
		Skills: map[string][]string{
			"languages": {"Go", "Python"},
			"dev_tools": {"Docker"},
		},
	}
}

func TestBuildDocuments(t *testing.T) {
	docs := BuildDocuments(sampleRecord(), "jane.pdf")
	require.Len(t, docs, 4)

	assert.Equal(t, types.SectionSkills, docs[0].Section)
	assert.Equal(t, "Skills:\nLanguages: Go, Python\nDev_Tools: Docker\n", docs[0].Content)

	assert.Equal(t, types.SectionObjective, docs[1].Section)
	assert.Equal(t, "Backend engineer with a focus on distributed systems.", docs[1].Content)

	assert.Equal(t, types.SectionExperience, docs[2].Section)
	assert.Equal(t, "Software Engineer at Acme\nBuilt pipelines.", docs[2].Content)
	assert.Equal(t, "Acme", docs[2].Extra["company"])

	assert.Equal(t, types.SectionProjects, docs[3].Section)
	assert.Equal(t, "resume-wizard\nResume processing service.", docs[3].Content)
	assert.Equal(t, "resume-wizard", docs[3].Extra["name"])
}

func TestBuildDocumentsEmptyRecord(t *testing.T) {
	docs := BuildDocuments(&types.Resume{Skills: map[string][]string{}}, "empty.pdf")
	assert.Empty(t, docs)
	assert.Empty(t, BuildDocuments(nil, "nil.pdf"))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Dev_Tools", titleCase("dev_tools"))
	assert.Equal(t, "Languages", titleCase("languages"))
	assert.Equal(t, "Cloud_Platforms", titleCase("cloud_platforms"))
	assert.Equal(t, "Soft_Skills", titleCase("SOFT_SKILLS"))
}

func TestIndexerIndex(t *testing.T) {
	embedder := &stubEmbedder{dim: 8}
	vdb := &stubVectorDB{}
	ix, err := NewIndexer(embedder, vdb)
	require.NoError(t, err)

	count, err := ix.Index(context.Background(), "jane.pdf", sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Equal(t, "jane.pdf", vdb.upsertSource)
	require.Len(t, embedder.received, 1)
	assert.Len(t, embedder.received[0], 4)
}

// 重新索引时必须先删除该来源的旧点，再写入新点。
// 新版派生的文档更少时，覆盖写会留下上一版的残留向量。
func TestIndexerIndexDeletesStalePointsFirst(t *testing.T) {
	embedder := &stubEmbedder{dim: 8}
	vdb := &stubVectorDB{}
	ix, err := NewIndexer(embedder, vdb)
	require.NoError(t, err)

	_, err = ix.Index(context.Background(), "jane.pdf", sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, "jane.pdf", vdb.deletedSource)
	assert.True(t, vdb.deletedBefore, "旧点应在写入新点之前删除")
}

func TestIndexerIndexDeleteFailure(t *testing.T) {
	embedder := &stubEmbedder{dim: 8}
	vdb := &stubVectorDB{deleteErr: fmt.Errorf("qdrant unavailable")}
	ix, err := NewIndexer(embedder, vdb)
	require.NoError(t, err)

	_, err = ix.Index(context.Background(), "jane.pdf", sampleRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "旧向量")
	assert.Empty(t, vdb.upsertSource)
}

func TestIndexerIndexNoDocuments(t *testing.T) {
	embedder := &stubEmbedder{dim: 8}
	vdb := &stubVectorDB{}
	ix, err := NewIndexer(embedder, vdb)
	require.NoError(t, err)

	count, err := ix.Index(context.Background(), "empty.pdf", &types.Resume{})
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, embedder.received)
}

func TestIndexerSearchDefaults(t *testing.T) {
	embedder := &stubEmbedder{dim: 8}
	vdb := &stubVectorDB{results: []types.SearchResult{{Source: "jane.pdf", Score: 0.9}}}
	ix, err := NewIndexer(embedder, vdb)
	require.NoError(t, err)

	results, err := ix.Search(context.Background(), types.SearchQuery{Query: "golang backend"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "jane.pdf", results[0].Source)

	// 零值应被默认值替换
	assert.Equal(t, 5, vdb.searchQuery.MaxResults)
	assert.InDelta(t, 0.5, vdb.searchQuery.ScoreThreshold, 1e-9)
}

func TestIndexerSearchEmptyQuery(t *testing.T) {
	ix, err := NewIndexer(&stubEmbedder{dim: 8}, &stubVectorDB{})
	require.NoError(t, err)

	_, err = ix.Search(context.Background(), types.SearchQuery{Query: "   "})
	assert.Error(t, err)
}
