package metadata

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mingchao-tools/waves-gacha-backend/internal/platform/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Generic Accessors ---

// GetValue retrieves a value for a given key from the metadata table.
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// If the key doesn't exist, return an empty string, which is a valid default.
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue creates or updates a value for a given key within a transaction.
func SetValue(db *gorm.DB, key, value string) error {
	// Use GORM's OnConflict clause for an efficient and atomic "upsert" operation.
	// It will update the 'value' column if a record with the same 'key' already exists.
	meta := Metadata{
		Key:   key,
		Value: value,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&meta).Error
}

// --- Specific Helpers ---

// GetLastRefreshTime 查询玩家最近一次成功刷新的时间，从未刷新过时返回零值。
// 优先读Redis热副本，未命中或Redis不可用时回源SQLite。
func GetLastRefreshTime(uid string) (time.Time, error) {
	if database.IsRedisHealthy() {
		valueStr, err := database.RDB.Get(database.Ctx, RedisLastRefreshKeyPrefix+uid).Result()
		if err == nil {
			return parseUnixMilli(valueStr)
		}
	}

	valueStr, err := GetValue(database.DB, LastRefreshKeyPrefix+uid)
	if err != nil {
		return time.Time{}, err
	}
	if valueStr == "" {
		return time.Time{}, nil
	}
	return parseUnixMilli(valueStr)
}

// SetLastRefreshTime 记录玩家最近一次成功刷新的时间。
// SQLite是权威副本，Redis写失败只告警不报错。
func SetLastRefreshTime(uid string, at time.Time) error {
	valueStr := strconv.FormatInt(at.UnixMilli(), 10)
	if err := SetValue(database.DB, LastRefreshKeyPrefix+uid, valueStr); err != nil {
		return fmt.Errorf("无法更新玩家 %s 的刷新时间元数据: %w", uid, err)
	}
	if database.IsRedisHealthy() {
		if err := database.RDB.Set(database.Ctx, RedisLastRefreshKeyPrefix+uid, valueStr, 0).Err(); err != nil {
			fmt.Printf("警告: 写入玩家 %s 的刷新时间Redis副本失败: %v\n", uid, err)
		}
	}
	return nil
}

// IncrementRefreshCount 累加服务的成功刷新计数。
func IncrementRefreshCount() error {
	valueStr, err := GetValue(database.DB, TotalRefreshCountKey)
	if err != nil {
		return err
	}
	count := int64(0)
	if valueStr != "" {
		count, err = strconv.ParseInt(valueStr, 10, 64)
		if err != nil {
			return fmt.Errorf("无法解析元数据 '%s' 的值: %w", TotalRefreshCountKey, err)
		}
	}
	return SetValue(database.DB, TotalRefreshCountKey, strconv.FormatInt(count+1, 10))
}

func parseUnixMilli(valueStr string) (time.Time, error) {
	ms, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("无法解析刷新时间元数据: %w", err)
	}
	return time.UnixMilli(ms), nil
}
