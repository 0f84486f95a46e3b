package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mingchao-tools/waves-gacha-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// remoteRetryCount 是远端解析失败后的重试次数。
// 图标只是锦上添花，重试有限次后放弃，绝不拖垮统计请求。
const remoteRetryCount = 2

// ResolveIcon 将物品显示名称解析为图标URL，尽力而为。
// 查找链：Redis缓存 -> SQLite缓存 -> Wiki远端（有限重试）。
// 任何一步失败都返回空串而不是错误，由调用方渲染占位图。
func ResolveIcon(ctx context.Context, name string) string {
	if name == "" {
		return ""
	}

	// 1. Redis热缓存
	if database.IsRedisHealthy() {
		iconURL, err := database.RDB.HGet(database.Ctx, IconCacheKey, name).Result()
		if err == nil {
			return iconURL
		}
		if err != redis.Nil {
			fmt.Printf("警告: 读取图标Redis缓存失败: %v\n", err)
		}
	}

	// 2. SQLite持久缓存
	var icon Icon
	err := database.DB.Where("name = ?", name).First(&icon).Error
	if err == nil {
		cacheIcon(name, icon.URL)
		return icon.URL
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		fmt.Printf("警告: 读取图标SQLite缓存失败: %v\n", err)
	}

	// 3. 远端解析
	iconURL, err := fetchIconWithRetry(ctx, name)
	if err != nil {
		fmt.Printf("警告: 解析物品 %s 的图标失败: %v\n", name, err)
		return ""
	}

	persistIcon(name, iconURL)
	return iconURL
}

// fetchIconWithRetry 带短退避地调用Wiki客户端。
func fetchIconWithRetry(ctx context.Context, name string) (string, error) {
	var lastErr error
	delay := 200 * time.Millisecond
	for attempt := 0; attempt <= remoteRetryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		iconURL, err := globalWikiClient.fetchIcon(ctx, name)
		if err == nil {
			return iconURL, nil
		}
		lastErr = err
		// 词条里确实没有图标时重试没有意义
		if errors.Is(err, errIconNotFound) {
			return "", err
		}
	}
	return "", lastErr
}

// persistIcon 将解析结果写入SQLite与Redis。
func persistIcon(name, iconURL string) {
	icon := Icon{Name: name, URL: iconURL}
	if err := database.DB.Create(&icon).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			fmt.Printf("警告: 写入图标SQLite缓存失败: %v\n", err)
		}
	}
	cacheIcon(name, iconURL)
}

// cacheIcon 只写Redis热缓存。
func cacheIcon(name, iconURL string) {
	if !database.IsRedisHealthy() {
		return
	}
	if err := database.RDB.HSet(database.Ctx, IconCacheKey, name, iconURL).Err(); err != nil {
		fmt.Printf("警告: 写入图标Redis缓存失败: %v\n", err)
	}
}
