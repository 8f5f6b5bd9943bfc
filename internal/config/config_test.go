package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfigFromFile 验证 YAML 配置能否被成功加载，缺省值能否补齐
func TestLoadConfigFromFile(t *testing.T) {
	yamlContent := `
anthropic:
  api_key: "test-key"
  model: "claude-3-5-sonnet-20241022"
qdrant:
  endpoint: "http://localhost:6333"
  collection: "resumes"
  dimension: 1536
wizard:
  max_turns: 6
  pass_timeout: "90s"
minio:
  endpoint: "localhost:9000"
  originalsBucket: "resume-originals"
  parsedTextBucket: "resume-parsed-text"
`
	tmpDir, err := os.MkdirTemp("", "config-test")
	require.NoError(t, err, "无法创建临时目录")
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	err = os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err, "无法写入临时配置文件")

	config, err := LoadConfig(configPath)
	require.NoError(t, err, "加载合法配置不应返回错误")
	require.NotNil(t, config, "配置对象不应为 nil")

	assert.Equal(t, "claude-3-5-sonnet-20241022", config.Anthropic.Model)
	assert.Equal(t, "resumes", config.Qdrant.Collection)
	assert.Equal(t, 1536, config.Qdrant.Dimension)
	assert.Equal(t, 6, config.Wizard.MaxTurns)
	assert.Equal(t, "resume-originals", config.MinIO.OriginalsBucket)
	assert.Equal(t, "resume-parsed-text", config.MinIO.ParsedTextBucket)

	// 未在文件中出现的字段应由缺省值补齐
	assert.Equal(t, 4096, config.Anthropic.MaxTokens, "MaxTokens 应有缺省值")
	assert.Equal(t, ":8080", config.Server.Address, "Server.Address 应有缺省值")
	assert.Equal(t, "text-embedding-3-small", config.Embedding.Model)
	assert.Equal(t, "info", config.Logger.Level, "日志级别应有缺省值")
	assert.Equal(t, "pretty", config.Logger.Format, "日志格式应有缺省值")
}

// TestLoadConfigEnvOverride 验证环境变量覆盖文件中的敏感配置
func TestLoadConfigEnvOverride(t *testing.T) {
	yamlContent := `
anthropic:
  api_key: "file-key"
  model: "claude-3-5-sonnet-20241022"
`
	tmpDir, err := os.MkdirTemp("", "config-test-env")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	err = os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	t.Setenv("ANTHROPIC_MODEL", "claude-3-7-sonnet-20250219")

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "env-key", config.Anthropic.APIKey, "环境变量应覆盖文件中的 api_key")
	assert.Equal(t, "claude-3-7-sonnet-20250219", config.Anthropic.Model)
}

// TestLoadConfigMissingFileInTest 测试环境下找不到配置文件应回退到默认配置
func TestLoadConfigMissingFileInTest(t *testing.T) {
	config, err := LoadConfig(filepath.Join(os.TempDir(), "definitely-not-exist", "config.yaml"))
	require.NoError(t, err, "测试环境中缺少配置文件不应报错")
	require.NotNil(t, config)

	assert.Equal(t, "claude-3-5-sonnet-20241022", config.Anthropic.Model)
	assert.Equal(t, 10, config.Wizard.MaxTurns)
	assert.Equal(t, 5, config.Qdrant.DefaultSearchLimit)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 90*time.Second, GetDuration("90s", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("", time.Minute), "空字符串应返回默认值")
	assert.Equal(t, time.Minute, GetDuration("not-a-duration", time.Minute), "非法格式应返回默认值")
}
