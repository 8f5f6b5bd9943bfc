package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-wizard/internal/config"
	"resume-wizard/internal/constants"
)

func TestGetMD5ExpireDurationDefault(t *testing.T) {
	r := &Redis{config: &config.RedisConfig{}}
	assert.Equal(t, constants.DefaultMD5Expire, r.GetMD5ExpireDuration())

	r = &Redis{config: &config.RedisConfig{MD5RecordExpireDays: -1}}
	assert.Equal(t, constants.DefaultMD5Expire, r.GetMD5ExpireDuration())
}

func TestGetMD5ExpireDurationConfigured(t *testing.T) {
	r := &Redis{config: &config.RedisConfig{MD5RecordExpireDays: 30}}
	assert.Equal(t, 30*24*time.Hour, r.GetMD5ExpireDuration())
}

// liveRedis 连接真实Redis，仅在设置了REDIS_ADDR时运行
func liveRedis(t *testing.T) *Redis {
	t.Helper()
	_ = godotenv.Load("../../.env")
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("未设置 REDIS_ADDR，跳过真实 Redis 测试")
	}

	r, err := NewRedisAdapter(&config.RedisConfig{Address: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRedisLockLifecycle(t *testing.T) {
	r := liveRedis(t)
	ctx := context.Background()
	lockKey := "app:test:pipeline_lock:lifecycle"
	defer r.Client.Del(ctx, lockKey)

	// 首次获取成功，持有期间其他请求拿不到锁
	lockValue, err := r.AcquireLock(ctx, lockKey, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, lockValue)

	second, err := r.AcquireLock(ctx, lockKey, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, second)

	// 非持有者无法释放
	released, err := r.ReleaseLock(ctx, lockKey, "not-the-owner")
	require.NoError(t, err)
	assert.False(t, released)

	// 持有者释放后可以重新获取
	released, err = r.ReleaseLock(ctx, lockKey, lockValue)
	require.NoError(t, err)
	assert.True(t, released)

	again, err := r.AcquireLock(ctx, lockKey, time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, again)
	_, _ = r.ReleaseLock(ctx, lockKey, again)
}

func TestRedisCheckAndAddMD5Dedup(t *testing.T) {
	r := liveRedis(t)
	ctx := context.Background()
	md5Hex := "cafebabe00112233445566778899aabb"
	defer r.Client.SRem(ctx, constants.KeyFileMD5Set, md5Hex)

	exists, err := r.CheckAndAddRawFileMD5(ctx, md5Hex)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = r.CheckAndAddRawFileMD5(ctx, md5Hex)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, r.RemoveRawFileMD5(ctx, md5Hex))
	exists, err = r.CheckAndAddRawFileMD5(ctx, md5Hex)
	require.NoError(t, err)
	assert.False(t, exists)
}
