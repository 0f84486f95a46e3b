package gacha

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mingchao-tools/waves-gacha-backend/internal/catalog"
	"github.com/mingchao-tools/waves-gacha-backend/internal/kuro"
	"github.com/mingchao-tools/waves-gacha-backend/internal/platform/metadata"
)

// poolKeyByIndex 将卡池索引映射为统计结果中的渲染键。
// 6/7号池是角色UP池的变体，沿用upCharPool键。
var poolKeyByIndex = map[int]string{
	1: "upCharPool",
	2: "upWpnPool",
	3: "stdCharPool",
	4: "stdWpnPool",
	5: "otherPool",
	6: "upCharPool",
	7: "upCharPool",
}

// mainPoolIndexes 是"全部"视图（索引0）覆盖的四个主要卡池。
var mainPoolIndexes = []int{1, 2, 3, 4}

// avatarWorkerCount 是并发解析图标的协程上限。
const avatarWorkerCount = 4

// RefreshResult 是一次完整刷新的产物。
type RefreshResult struct {
	// File 是合并持久化后的完整导出文件
	File *ExportFile

	// Batches 是7个卡池的原始记录，按卡池顺序排列，
	// 每个卡池内保持上游顺序（最新在前）
	Batches [][]RawPullRecord
}

// RefreshFromUpstream 执行一次完整刷新：
// 并发拉取全部7个卡池，标准化后与本地文件合并并持久化。
// 任何一个卡池拉取失败整次刷新失败，本地文件保持不变。
func RefreshFromUpstream(ctx context.Context, query kuro.RecordQuery) (*RefreshResult, error) {
	if query.PlayerID == "" {
		return nil, fmt.Errorf("%w: playerId为空", ErrValidation)
	}

	payloads, err := kuro.FetchAllPools(ctx, query)
	if err != nil {
		return nil, err
	}

	batches := make([][]RawPullRecord, len(payloads))
	for i, payload := range payloads {
		var batch []RawPullRecord
		if err := json.Unmarshal(payload, &batch); err != nil {
			return nil, fmt.Errorf("无法解析卡池%d的抽卡记录: %w", i+1, err)
		}
		batches[i] = batch
	}

	file, err := NormalizeAndMerge(query.PlayerID, batches)
	if err != nil {
		return nil, err
	}

	// 元数据只是辅助信息，写失败不影响刷新结果
	if err := metadata.SetLastRefreshTime(query.PlayerID, time.Now()); err != nil {
		fmt.Printf("警告: %v\n", err)
	}
	if err := metadata.IncrementRefreshCount(); err != nil {
		fmt.Printf("警告: 累加刷新计数失败: %v\n", err)
	}

	return &RefreshResult{File: file, Batches: batches}, nil
}

// NormalizeAndMerge 将一次抓取的7个卡池批次标准化为WWGF记录，
// 在玩家锁内完成 读取-合并-保存。
// 整个批次共用一次转换调用，保证同一秒跨卡池的序号分配与历史一致。
func NormalizeAndMerge(uid string, batches [][]RawPullRecord) (*ExportFile, error) {
	flat := make([]RawPullRecord, 0)
	for _, batch := range batches {
		flat = append(flat, batch...)
	}

	incoming, err := ToCanonical(flat)
	if err != nil {
		return nil, err
	}

	lock := lockForPlayer(uid)
	lock.Lock()
	defer lock.Unlock()

	existing, err := Load(uid)
	if err != nil {
		return nil, err
	}

	merged := Merge(existing, incoming, uid)
	if err := Save(uid, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// ImportRecords 将外部WWGF文件中的记录并入玩家的本地文件。
// 导入不修剪既有分组，冲突id保留本地记录。
func ImportRecords(uid string, imported []CanonicalRecord) (*ExportFile, error) {
	for i := range imported {
		if err := imported[i].Validate(); err != nil {
			return nil, fmt.Errorf("第%d条记录: %w", i+1, err)
		}
	}

	lock := lockForPlayer(uid)
	lock.Lock()
	defer lock.Unlock()

	existing, err := Load(uid)
	if err != nil {
		return nil, err
	}

	merged := MergeImport(existing, imported, uid)
	if err := Save(uid, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// StatisticsFromBatches 基于一次新鲜抓取的批次计算统计。
// poolIndex为0时返回四个主要卡池，1-7时返回单个卡池。
func StatisticsFromBatches(ctx context.Context, batches [][]RawPullRecord, poolIndex int) (map[string]PoolStats, error) {
	indexes, err := selectPoolIndexes(poolIndex)
	if err != nil {
		return nil, err
	}

	view := make(map[string]PoolStats, len(indexes))
	for _, idx := range indexes {
		if idx > len(batches) {
			return nil, fmt.Errorf("%w: 批次中没有卡池%d", ErrUnknownPool, idx)
		}
		view[poolKeyByIndex[idx]] = ComputeStatistics(chronological(batches[idx-1]))
	}

	enrichAvatars(ctx, view)
	return view, nil
}

// StatisticsFromFile 基于本地持久化文件计算统计。
// 文件为nil（玩家从未刷新过）时各卡池返回零值统计。
func StatisticsFromFile(ctx context.Context, file *ExportFile, poolIndex int) (map[string]PoolStats, error) {
	indexes, err := selectPoolIndexes(poolIndex)
	if err != nil {
		return nil, err
	}

	view := make(map[string]PoolStats, len(indexes))
	for _, idx := range indexes {
		pulls, err := poolRecordsFromFile(file, idx)
		if err != nil {
			return nil, err
		}
		view[poolKeyByIndex[idx]] = ComputeStatistics(chronological(pulls))
	}

	enrichAvatars(ctx, view)
	return view, nil
}

// selectPoolIndexes 将请求的卡池索引展开为要计算的卡池集合。
func selectPoolIndexes(poolIndex int) ([]int, error) {
	if poolIndex == 0 {
		return mainPoolIndexes, nil
	}
	if poolIndex < 1 || poolIndex > PoolCount {
		return nil, fmt.Errorf("%w: 索引%d", ErrUnknownPool, poolIndex)
	}
	return []int{poolIndex}, nil
}

// poolRecordsFromFile 从导出文件中取出单个卡池的原始记录。
// 文件内同卡池记录按id降序存放，返回值保持这一顺序（最新在前）。
func poolRecordsFromFile(file *ExportFile, poolIndex int) ([]RawPullRecord, error) {
	code, ok := PoolCodeByIndex(poolIndex)
	if !ok {
		return nil, fmt.Errorf("%w: 索引%d", ErrUnknownPool, poolIndex)
	}
	if file == nil {
		return nil, nil
	}

	subset := make([]CanonicalRecord, 0)
	for i := range file.List {
		if file.List[i].GachaID == code {
			subset = append(subset, file.List[i])
		}
	}
	return ToRaw(subset)
}

// chronological 将最新在前的序列翻转为时间升序，不修改原切片。
func chronological(pulls []RawPullRecord) []RawPullRecord {
	ordered := make([]RawPullRecord, len(pulls))
	for i := range pulls {
		ordered[len(pulls)-1-i] = pulls[i]
	}
	return ordered
}

// enrichAvatars 为出货列表尽力补全图标URL。
// 同名物品只解析一次，解析失败保持空串，不影响统计结果。
func enrichAvatars(ctx context.Context, view map[string]PoolStats) {
	names := make([]string, 0)
	seen := make(map[string]bool)
	for _, stats := range view {
		for i := range stats.Pool {
			if name := stats.Pool[i].Name; name != "" && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	if len(names) == 0 {
		return
	}

	avatars := make(map[string]string, len(names))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, avatarWorkerCount)

	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			iconURL := catalog.ResolveIcon(ctx, name)
			mu.Lock()
			avatars[name] = iconURL
			mu.Unlock()
		}(name)
	}
	wg.Wait()

	for key, stats := range view {
		for i := range stats.Pool {
			stats.Pool[i].Avatar = avatars[stats.Pool[i].Name]
		}
		view[key] = stats
	}
}
