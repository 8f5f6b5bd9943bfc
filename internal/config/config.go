package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AnthropicConfig Anthropic Messages API 配置
type AnthropicConfig struct {
	APIKey    string `yaml:"api_key"`
	APIURL    string `yaml:"api_url"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// EmbeddingConfig OpenAI兼容的Embedding配置
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	BaseURL    string `yaml:"base_url"`
}

// QdrantConfig Qdrant向量数据库配置
type QdrantConfig struct {
	Endpoint           string `yaml:"endpoint"`   // Qdrant HTTP 服务地址
	Collection         string `yaml:"collection"` // 集合名称
	Dimension          int    `yaml:"dimension"`  // 向量维度
	APIKey             string `yaml:"api_key,omitempty"`
	DefaultSearchLimit int    `yaml:"default_search_limit"` // 默认搜索结果数量
}

// MinIOConfig MinIO对象存储配置
type MinIOConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	Location        string `yaml:"location"` // 可选，存储桶区域
	// 两个存储桶：原始简历和解析后的文本
	OriginalsBucket  string `yaml:"originalsBucket"`
	ParsedTextBucket string `yaml:"parsedTextBucket"`
	// 对象生命周期管理
	OriginalFileExpireDays int `yaml:"original_file_expire_days"`
	ParsedTextExpireDays   int `yaml:"parsed_text_expire_days"`
}

// MySQLConfig MySQL配置结构
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	// 连接池设置
	MaxIdleConns int `yaml:"max_idle_conns"`
	MaxOpenConns int `yaml:"max_open_conns"`
	// 连接生命周期
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes"`
	ConnMaxIdleTimeMinutes int `yaml:"conn_max_idle_time_minutes"`
	// 超时设置
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds"`
	ReadTimeoutSeconds    int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds   int `yaml:"write_timeout_seconds"`
	// 日志设置
	LogLevel int `yaml:"log_level"` // GORM日志级别(1-4)
}

// RedisConfig holds configuration for Redis
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// 连接池设置
	PoolSize     int `yaml:"pool_size"`
	MinIdleConns int `yaml:"min_idle_conns"`
	// 超时设置
	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
	// 重试设置
	MaxRetries        int `yaml:"max_retries"`
	MinRetryBackoffMS int `yaml:"min_retry_backoff_ms"`
	MaxRetryBackoffMS int `yaml:"max_retry_backoff_ms"`
	// MD5记录过期时间(天)
	MD5RecordExpireDays int `yaml:"md5_record_expire_days"`
}

// ServerConfig 定义服务器配置
type ServerConfig struct {
	Address string `yaml:"address"` // 例如 ":8080" or "0.0.0.0:8080"
}

// WizardConfig 抽取流程配置
type WizardConfig struct {
	MaxTurns    int    `yaml:"max_turns"`    // 单个pass的最大轮次上限
	PassTimeout string `yaml:"pass_timeout"` // 单个pass的超时，例如 "120s"
}

// TailorConfig 简历定制配置
type TailorConfig struct {
	TemplatePath string `yaml:"template_path"` // LaTeX模板文件路径
	OutputDir    string `yaml:"output_dir"`    // 渲染输出目录
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, pretty
	TimeFormat   string `yaml:"time_format"`   // 时间格式
	ReportCaller bool   `yaml:"report_caller"` // 是否报告调用位置
}

// Config 应用程序配置
type Config struct {
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	MinIO     MinIOConfig     `yaml:"minio"`
	MySQL     MySQLConfig     `yaml:"mysql"`
	Redis     RedisConfig     `yaml:"redis"`
	Server    ServerConfig    `yaml:"server"`
	Wizard    WizardConfig    `yaml:"wizard"`
	Tailor    TailorConfig    `yaml:"tailor"`
	Logger    LoggerConfig    `yaml:"logger"`
}

// LoadConfig 从文件加载配置。
// 未指定路径时在常见位置查找；测试环境中找不到文件则回退到默认配置。
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		searchPaths := []string{
			"config.yaml",
			"./config.yaml",
			"../config.yaml",
			"../../config.yaml",
			filepath.Join(os.Getenv("HOME"), ".resume-wizard", "config.yaml"),
		}

		if execPath, err := os.Executable(); err == nil {
			execDir := filepath.Dir(execPath)
			searchPaths = append(searchPaths,
				filepath.Join(execDir, "config.yaml"),
				filepath.Join(execDir, "..", "config.yaml"),
			)
		}

		for _, path := range searchPaths {
			if _, err := os.Stat(path); err == nil {
				configPath = path
				break
			}
		}

		if configPath == "" {
			if inTestEnv() {
				return createDefaultConfig(), nil
			}
			configPath = "config.yaml"
		}
	}

	if _, err := os.Stat(configPath); err != nil {
		if inTestEnv() {
			return createDefaultConfig(), nil
		}
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	applyEnvOverrides(&config)
	applyDefaults(&config)

	return &config, nil
}

// inTestEnv 粗略检测是否运行在go test环境中
func inTestEnv() bool {
	for _, arg := range os.Args {
		if strings.Contains(arg, "test") {
			return true
		}
	}
	return false
}

// applyEnvOverrides 从环境变量覆盖敏感配置（如果存在）
func applyEnvOverrides(config *Config) {
	if envKey := os.Getenv("ANTHROPIC_API_KEY"); envKey != "" {
		config.Anthropic.APIKey = envKey
	}
	if envURL := os.Getenv("ANTHROPIC_API_URL"); envURL != "" {
		config.Anthropic.APIURL = envURL
	}
	if envModel := os.Getenv("ANTHROPIC_MODEL"); envModel != "" {
		config.Anthropic.Model = envModel
	}
	if envKey := os.Getenv("OPENAI_API_KEY"); envKey != "" {
		config.Embedding.APIKey = envKey
	}
}

// applyDefaults 补齐缺省值
func applyDefaults(config *Config) {
	if config.Anthropic.Model == "" {
		config.Anthropic.Model = "claude-3-5-sonnet-20241022"
	}
	if config.Anthropic.MaxTokens == 0 {
		config.Anthropic.MaxTokens = 4096
	}
	if config.Server.Address == "" {
		config.Server.Address = ":8080"
	}
	if config.Wizard.MaxTurns == 0 {
		config.Wizard.MaxTurns = 10
	}
	if config.Embedding.Model == "" {
		config.Embedding.Model = "text-embedding-3-small"
	}
	if config.Embedding.Dimensions == 0 {
		config.Embedding.Dimensions = 1536
	}
	if config.Embedding.BaseURL == "" {
		config.Embedding.BaseURL = "https://api.openai.com/v1/embeddings"
	}
	if config.Logger.Level == "" {
		config.Logger.Level = "info"
	}
	if config.Logger.Format == "" {
		config.Logger.Format = "pretty"
	}
	if config.Logger.TimeFormat == "" {
		config.Logger.TimeFormat = "2006-01-02 15:04:05"
	}
}

// 创建一个默认配置，用于测试环境
func createDefaultConfig() *Config {
	config := &Config{}

	config.Anthropic.APIURL = "https://api.anthropic.com/v1/messages"
	config.Anthropic.Model = "claude-3-5-sonnet-20241022"
	config.Anthropic.MaxTokens = 4096
	if envKey := os.Getenv("ANTHROPIC_API_KEY"); envKey != "" {
		config.Anthropic.APIKey = envKey
	} else {
		config.Anthropic.APIKey = "test_api_key"
	}

	config.Embedding.Model = "text-embedding-3-small"
	config.Embedding.Dimensions = 1536
	config.Embedding.BaseURL = "https://api.openai.com/v1/embeddings"
	if envKey := os.Getenv("OPENAI_API_KEY"); envKey != "" {
		config.Embedding.APIKey = envKey
	}

	config.Qdrant.Endpoint = "http://localhost:6333"
	config.Qdrant.Collection = "resumes"
	config.Qdrant.Dimension = 1536
	config.Qdrant.DefaultSearchLimit = 5

	config.MinIO.Endpoint = "localhost:9000"
	config.MinIO.AccessKeyID = "minioadmin"
	config.MinIO.SecretAccessKey = "minioadmin123"
	config.MinIO.UseSSL = false
	config.MinIO.OriginalsBucket = "resume-originals"
	config.MinIO.ParsedTextBucket = "resume-parsed-text"
	config.MinIO.OriginalFileExpireDays = 1095
	config.MinIO.ParsedTextExpireDays = 1095

	config.MySQL.Host = "localhost"
	config.MySQL.Port = 3306
	config.MySQL.Username = "root"
	config.MySQL.Password = "password"
	config.MySQL.Database = "resume_wizard"
	config.MySQL.MaxIdleConns = 10
	config.MySQL.MaxOpenConns = 100
	config.MySQL.ConnMaxLifetimeMinutes = 60
	config.MySQL.ConnMaxIdleTimeMinutes = 30
	config.MySQL.ConnectTimeoutSeconds = 10
	config.MySQL.ReadTimeoutSeconds = 30
	config.MySQL.WriteTimeoutSeconds = 30
	config.MySQL.LogLevel = 4

	config.Redis.Address = "localhost:6379"
	config.Redis.DB = 0
	config.Redis.PoolSize = 10
	config.Redis.MinIdleConns = 2
	config.Redis.DialTimeoutSeconds = 5
	config.Redis.ReadTimeoutSeconds = 3
	config.Redis.WriteTimeoutSeconds = 3
	config.Redis.MaxRetries = 3
	config.Redis.MinRetryBackoffMS = 8
	config.Redis.MaxRetryBackoffMS = 512
	config.Redis.MD5RecordExpireDays = 365

	config.Server.Address = ":8080"

	config.Wizard.MaxTurns = 10
	config.Wizard.PassTimeout = "120s"

	config.Tailor.TemplatePath = "templates/resume.tex"
	config.Tailor.OutputDir = "output"

	config.Logger.Level = "info"
	config.Logger.Format = "pretty"
	config.Logger.TimeFormat = "2006-01-02 15:04:05"
	config.Logger.ReportCaller = true

	return config
}

// CreateSampleConfig 创建一个示例配置文件
func CreateSampleConfig(filePath string) error {
	if _, err := os.Stat(filePath); err == nil {
		return fmt.Errorf("文件 '%s' 已存在，不会覆盖", filePath)
	}

	config := createDefaultConfig()

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("写入示例配置文件 '%s' 失败: %w", filePath, err)
	}

	fmt.Printf("示例配置文件已创建: %s\n", filePath)
	return nil
}

// GetDuration utility to parse duration strings from config
func GetDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return defaultDuration
	}
	return d
}
