package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-wizard/internal/types"
)

func TestHandleSearchEmptyQuery(t *testing.T) {
	h := NewSearchHandler(&stubIndexer{})
	_, err := h.HandleSearch(context.Background(), types.SearchQuery{Query: "   "})
	require.Error(t, err)
}

func TestHandleSearchPassesQueryThrough(t *testing.T) {
	idx := &stubIndexer{results: []types.SearchResult{
		{Source: "jane.pdf", Score: 0.9, Content: "Go developer", Section: "experience"},
	}}
	h := NewSearchHandler(idx)

	results, err := h.HandleSearch(context.Background(), types.SearchQuery{
		Query:      "golang backend",
		Section:    "experience",
		MaxResults: 10,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "jane.pdf", results[0].Source)
	assert.Equal(t, "golang backend", idx.lastQuery.Query)
	assert.Equal(t, "experience", idx.lastQuery.Section)
	assert.Equal(t, 10, idx.lastQuery.MaxResults)
}

func TestHandleSearchError(t *testing.T) {
	h := NewSearchHandler(&stubIndexer{searchErr: errors.New("qdrant down")})
	_, err := h.HandleSearch(context.Background(), types.SearchQuery{Query: "golang"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "检索简历失败")
}

func TestHandleSearchSourcesDedupes(t *testing.T) {
	idx := &stubIndexer{results: []types.SearchResult{
		{Source: "jane.pdf", Score: 0.9},
		{Source: "bob.pdf", Score: 0.8},
		{Source: "jane.pdf", Score: 0.7},
	}}
	h := NewSearchHandler(idx)

	sources, err := h.HandleSearchSources(context.Background(), types.SearchQuery{Query: "golang"})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob.pdf", "jane.pdf"}, sources)
}

func TestHandleListSources(t *testing.T) {
	idx := &stubIndexer{listSources: []string{"jane.pdf", "bob.pdf"}}
	h := NewSearchHandler(idx)

	sources, err := h.HandleListSources(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"jane.pdf", "bob.pdf"}, sources)
}
