package gacha

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/mingchao-tools/waves-gacha-backend/internal/platform/config"
)

// dataDir 是导出文件的存放目录，PrimeModule时由配置覆盖。
var dataDir = filepath.Join("data", "GachaData")

// SetDataDir 覆盖导出文件目录。仅在启动初始化和测试中调用。
func SetDataDir(dir string) {
	dataDir = dir
}

// --- 单玩家互斥 ---
// merge是相对文件当前内容定义的，同一玩家的读-改-写必须串行，
// 否则并发刷新会静默丢失或重复记录。不同玩家之间完全并行。

var (
	playerLocksMu sync.Mutex
	playerLocks   = make(map[string]*sync.Mutex)
)

// lockForPlayer 返回指定玩家的互斥锁，按需创建。
func lockForPlayer(uid string) *sync.Mutex {
	playerLocksMu.Lock()
	defer playerLocksMu.Unlock()
	lock, ok := playerLocks[uid]
	if !ok {
		lock = &sync.Mutex{}
		playerLocks[uid] = lock
	}
	return lock
}

// ExportFilePath 返回一个玩家导出文件的路径。
func ExportFilePath(uid string) string {
	return filepath.Join(dataDir, uid+"_Export.json")
}

// Load 读取玩家的持久化导出文件。文件不存在时返回 (nil, nil)。
func Load(uid string) (*ExportFile, error) {
	raw, err := os.ReadFile(ExportFilePath(uid))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("无法读取玩家 %s 的抽卡记录文件: %w", uid, err)
	}
	var file ExportFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("无法解析玩家 %s 的抽卡记录文件: %w", uid, err)
	}
	return &file, nil
}

// Merge 将本次新获取的WWGF记录与已持久化的文件合并，返回新的导出文件。
//
// 合并规则（与WWGF导出工具的既有行为保持一致）：
//  1. 旧列表按gacha_id分组；
//  2. 仅当某组内存在与新记录相同的id时（即该卡池在本次抓取中被重新观测到），
//     该组才被保留，本次抓取完全未出现的卡池分组会被丢弃；
//  3. 新记录与保留组拼接后按id去重，冲突时保留新记录；
//  4. 结果按gacha_id升序、id降序排序（同卡池内新抽在前）。
//
// id是等宽字符串，字符串比较与数值比较等价。
func Merge(existing *ExportFile, incoming []CanonicalRecord, uid string) *ExportFile {
	merged := make([]CanonicalRecord, 0, len(incoming))
	merged = append(merged, incoming...)

	if existing != nil && len(existing.List) > 0 {
		incomingIDs := make(map[string]bool, len(incoming))
		for i := range incoming {
			incomingIDs[incoming[i].ID] = true
		}

		groups := make(map[string][]CanonicalRecord)
		groupOrder := make([]string, 0, PoolCount)
		for _, rec := range existing.List {
			if _, ok := groups[rec.GachaID]; !ok {
				groupOrder = append(groupOrder, rec.GachaID)
			}
			groups[rec.GachaID] = append(groups[rec.GachaID], rec)
		}

		for _, code := range groupOrder {
			group := groups[code]
			reobserved := false
			for i := range group {
				if incomingIDs[group[i].ID] {
					reobserved = true
					break
				}
			}
			if reobserved {
				merged = append(merged, group...)
			}
		}
	}

	return &ExportFile{
		Info: newExportInfo(uid),
		List: dedupeAndSort(merged),
	}
}

// MergeImport 将外部导入的WWGF记录并入已持久化的文件。
// 与Merge不同，导入不会丢弃任何既有分组：外部文件往往只覆盖部分卡池，
// 按抓取语义修剪会误删历史。冲突id保留本地记录。
func MergeImport(existing *ExportFile, imported []CanonicalRecord, uid string) *ExportFile {
	combined := make([]CanonicalRecord, 0, len(imported))
	if existing != nil {
		combined = append(combined, existing.List...)
	}
	combined = append(combined, imported...)

	return &ExportFile{
		Info: newExportInfo(uid),
		List: dedupeAndSort(combined),
	}
}

// dedupeAndSort 按id去重（先出现者胜出）并恢复排序不变量。
func dedupeAndSort(list []CanonicalRecord) []CanonicalRecord {
	seen := make(map[string]bool, len(list))
	deduped := list[:0]
	for _, rec := range list {
		if seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true
		deduped = append(deduped, rec)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		if deduped[i].GachaID != deduped[j].GachaID {
			return deduped[i].GachaID < deduped[j].GachaID
		}
		return deduped[i].ID > deduped[j].ID
	})
	return deduped
}

// newExportInfo 构造一个带有当前导出时间戳的info块。
func newExportInfo(uid string) ExportInfo {
	return ExportInfo{
		Lang:             "zh-cn",
		RegionTimeZone:   8,
		ExportTimestamp:  time.Now().UnixMilli(),
		ExportApp:        config.AppName,
		ExportAppVersion: config.AppVersion,
		WWGFVersion:      "v0.1b",
		UID:              uid,
	}
}

// Save 将导出文件持久化。先写入同目录下的临时文件再原子替换，
// 写入中途失败不会留下半写状态，旧文件保持完好。
func Save(uid string, file *ExportFile) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("无法创建抽卡数据目录: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("无法序列化玩家 %s 的抽卡记录: %w", uid, err)
	}

	tmp, err := os.CreateTemp(dataDir, uid+"_Export-*.tmp")
	if err != nil {
		return fmt.Errorf("无法创建临时文件: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("无法写入玩家 %s 的抽卡记录: %w", uid, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("无法关闭临时文件: %w", err)
	}

	if err := os.Rename(tmpPath, ExportFilePath(uid)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("无法替换玩家 %s 的抽卡记录文件: %w", uid, err)
	}
	return nil
}
