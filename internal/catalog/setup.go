package catalog

import (
	"fmt"

	"github.com/mingchao-tools/waves-gacha-backend/internal/platform/database"
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&Icon{}); err != nil {
		return fmt.Errorf("无法迁移icon表: %w", err)
	}
	fmt.Println("Icon数据库表迁移成功。")
	return nil
}

// WarmupCache 从SQLite加载所有已解析的图标，并预热到Redis的Hash中
func WarmupCache() error {
	var icons []Icon
	if err := database.DB.Find(&icons).Error; err != nil {
		return fmt.Errorf("无法从SQLite读取图标缓存: %w", err)
	}

	if len(icons) == 0 {
		fmt.Println("无现有图标数据，无需预热图标缓存。")
		return nil
	}

	fields := make(map[string]interface{}, len(icons))
	for _, icon := range icons {
		fields[icon.Name] = icon.URL
	}

	pipe := database.RDB.Pipeline()
	// 先清空旧的缓存，确保数据一致性
	pipe.Del(database.Ctx, IconCacheKey)
	pipe.HSet(database.Ctx, IconCacheKey, fields)

	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("预热图标缓存到Redis失败: %w", err)
	}

	fmt.Printf("成功预热 %d 个图标到Redis。\n", len(icons))
	return nil
}

// PrimeCachedDB 是catalog模块的初始化总入口
func PrimeCachedDB() error {
	if err := migrateDB(); err != nil {
		return err
	}
	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}
