package storage

import (
	"context"
	"fmt"
	"strings"

	"resume-wizard/internal/config"
	"resume-wizard/internal/logger"
)

// Storage 存储管理器，聚合所有存储相关依赖
type Storage struct {
	// 对象存储
	MinIO *MinIO

	// 向量数据库
	Qdrant *Qdrant

	// 关系型数据库
	MySQL *MySQL

	// 键值存储
	Redis *Redis
}

// NewStorage 创建存储管理器。单个组件初始化失败只记录警告，
// 全部失败才返回错误，便于在部分依赖缺失时仍能提供降级服务。
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	log := logger.Logger.With().Str("component", "storage").Logger()
	storage := &Storage{}
	var err error
	var initErrors []string

	storage.MinIO, err = NewMinIO(&cfg.MinIO)
	if err != nil {
		log.Warn().Err(err).Msg("初始化MinIO失败")
		initErrors = append(initErrors, fmt.Sprintf("MinIO: %v", err))
	}

	if cfg.Qdrant.Endpoint != "" {
		storage.Qdrant, err = NewQdrant(&cfg.Qdrant)
		if err != nil {
			log.Warn().Err(err).Msg("初始化Qdrant失败")
			initErrors = append(initErrors, fmt.Sprintf("Qdrant: %v", err))
		}
	}

	if cfg.MySQL.Host != "" {
		storage.MySQL, err = NewMySQL(&cfg.MySQL)
		if err != nil {
			log.Warn().Err(err).Msg("初始化MySQL失败")
			initErrors = append(initErrors, fmt.Sprintf("MySQL: %v", err))
		}
	}

	if cfg.Redis.Address != "" {
		storage.Redis, err = NewRedisAdapter(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("初始化Redis失败")
			initErrors = append(initErrors, fmt.Sprintf("Redis: %v", err))
		}
	} else {
		log.Info().Msg("Redis未配置，跳过初始化")
	}

	if storage.MinIO == nil && storage.Qdrant == nil && storage.MySQL == nil && storage.Redis == nil {
		return nil, fmt.Errorf("所有存储组件初始化失败: %s", strings.Join(initErrors, "; "))
	}

	if len(initErrors) > 0 {
		log.Warn().Strs("failed", initErrors).Msg("部分存储组件初始化失败")
	}

	return storage, nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	log := logger.Logger.With().Str("component", "storage").Logger()

	if s.MySQL != nil {
		if err := s.MySQL.Close(); err != nil {
			log.Error().Err(err).Msg("关闭MySQL连接失败")
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Error().Err(err).Msg("关闭Redis连接失败")
		}
	}
	// MinIO和Qdrant的HTTP客户端无需显式关闭
}
