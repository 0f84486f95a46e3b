package user

import (
	"fmt"

	"github.com/mingchao-tools/waves-gacha-backend/internal/platform/database"
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("无法迁移user表: %w", err)
	}
	fmt.Println("User数据库表迁移成功。")
	return nil
}

// WarmupCache 从SQLite加载所有已知用户，预热UUID集合与UID绑定缓存。
func WarmupCache() error {
	var users []User
	if err := database.DB.Select("uuid", "bound_uid").Find(&users).Error; err != nil {
		return fmt.Errorf("无法从SQLite读取用户数据: %w", err)
	}

	if len(users) == 0 {
		fmt.Println("无现有用户数据，无需预热用户缓存。")
		return nil
	}

	userUUIDs := make([]interface{}, len(users))
	boundUIDs := make(map[string]interface{})
	for i, u := range users {
		userUUIDs[i] = u.UUID
		if u.BoundUID != "" {
			boundUIDs[u.UUID] = u.BoundUID
		}
	}

	// 使用Pipeline批量重建两份缓存，先清空旧数据，确保一致性
	pipe := database.RDB.Pipeline()
	pipe.Del(database.Ctx, KnownUsersKey)
	pipe.SAdd(database.Ctx, KnownUsersKey, userUUIDs...)
	pipe.Del(database.Ctx, BoundUIDKey)
	if len(boundUIDs) > 0 {
		pipe.HSet(database.Ctx, BoundUIDKey, boundUIDs)
	}

	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("预热用户缓存到Redis失败: %w", err)
	}

	fmt.Printf("成功预热 %d 个用户到Redis。\n", len(users))
	return nil
}

// PrimeCachedDB 是user模块的初始化总入口
func PrimeCachedDB() error {
	if err := migrateDB(); err != nil {
		return err
	}
	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}
