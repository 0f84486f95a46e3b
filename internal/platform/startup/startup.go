package startup

import (
	"fmt"

	"github.com/mingchao-tools/waves-gacha-backend/internal/catalog"
	"github.com/mingchao-tools/waves-gacha-backend/internal/gacha"
	"github.com/mingchao-tools/waves-gacha-backend/internal/platform/config"
	"github.com/mingchao-tools/waves-gacha-backend/internal/platform/metadata"
	"github.com/mingchao-tools/waves-gacha-backend/internal/user"
)

// InitializeApplication 是应用首次启动时执行的总入口
func InitializeApplication(cfg *config.Config) error {
	fmt.Println("开始应用首次初始化...")

	if err := metadata.PrimeDB(); err != nil {
		return err
	}
	if err := user.PrimeCachedDB(); err != nil {
		return err
	}
	if err := catalog.PrimeCachedDB(); err != nil {
		return err
	}
	if err := gacha.PrimeModule(cfg.Gacha); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}

// RebuildCache 是一个专门用于在运行时热重建Redis缓存的函数。
// SQLite与导出文件是权威数据，Redis重启后凭它们即可完整重建。
func RebuildCache() error {
	fmt.Println("开始缓存热重建...")

	if err := user.WarmupCache(); err != nil {
		return err
	}
	if err := catalog.WarmupCache(); err != nil {
		return err
	}

	fmt.Println("缓存热重建完成。")
	return nil
}
