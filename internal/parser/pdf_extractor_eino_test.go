package parser

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEinoPDFTextExtractor(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err, "创建PDF提取器不应返回错误")
	require.NotNil(t, extractor)

	withTimeout, err := NewEinoPDFTextExtractor(ctx, WithParseTimeout(10*time.Second))
	require.NoError(t, err)
	require.NotNil(t, withTimeout)
}

func TestExtractFromFileMissing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err)

	_, _, err = extractor.ExtractFromFile(ctx, filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err, "不存在的文件应返回错误")
}

func TestExtractTextFromBytesInvalidPDF(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err)

	// 非法的PDF内容：要么报错，要么解析出空文本，不应panic
	mock := []byte("%PDF-1.5\nnot really a pdf\n")
	text, _, err := extractor.ExtractTextFromBytes(ctx, mock, "mock.pdf", nil)
	if err == nil {
		t.Logf("解析器接受了模拟PDF，提取文本长度=%d", len(text))
	} else {
		t.Logf("预期的解析错误: %v", err)
	}
}

func TestExtractTextFromReaderMergesExtraMeta(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err)

	mock := bytes.NewReader([]byte("%PDF-1.5\nmock\n"))
	_, metadata, err := extractor.ExtractTextFromReader(ctx, mock, "mock.pdf", map[string]interface{}{
		"channel": "unit_test",
	})
	if err != nil {
		t.Skipf("模拟PDF无法解析: %v", err)
	}
	assert.Equal(t, "unit_test", metadata["channel"], "额外元数据应被合并")
}

// 仓库内放置了真实PDF时执行端到端解析
func TestExtractFromRealPDF(t *testing.T) {
	candidates := []string{
		"testdata/sample_resume.pdf",
		"../testdata/sample_resume.pdf",
		"../../testdata/sample_resume.pdf",
	}

	var pdfPath string
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			pdfPath = path
			break
		}
	}
	if pdfPath == "" {
		t.Skip("找不到测试PDF文件，跳过测试")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err)

	text, metadata, err := extractor.ExtractFromFile(ctx, pdfPath)
	require.NoError(t, err, "PDF提取不应返回错误")
	assert.NotEmpty(t, text, "提取的文本内容不应为空")
	assert.NotNil(t, metadata)
	t.Logf("从%s提取了%d个字符的文本", pdfPath, len(text))
}
