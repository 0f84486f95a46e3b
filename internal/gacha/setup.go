package gacha

import (
	"fmt"
	"os"

	"github.com/mingchao-tools/waves-gacha-backend/internal/platform/config"
)

// PrimeModule 初始化gacha模块：应用配置中的数据目录并确保其存在。
func PrimeModule(cfg config.GachaConfig) error {
	if cfg.DataDir != "" {
		SetDataDir(cfg.DataDir)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("无法创建抽卡数据目录 %s: %w", dataDir, err)
	}
	fmt.Printf("抽卡数据目录就绪: %s\n", dataDir)
	return nil
}
