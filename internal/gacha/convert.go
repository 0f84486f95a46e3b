package gacha

import (
	"fmt"
	"strconv"
)

// maxSequencePerTimestamp 是同一秒内记录的序号上限。
// WWGF的id格式只为序号预留了两位，并且历史上约定上限为10；
// 同一秒超过10条记录时序号不再保证唯一（见DESIGN.md的未决问题）。
const maxSequencePerTimestamp = 10

// ToCanonical 将一批服务端原始记录转换为WWGF记录。
//
// 转换是确定性的：相同的输入批次（相同顺序、相同内容）必然产生相同的id序列，
// 这是合并幂等性的前提。批内任何一条记录校验失败都会使整批失败，不产出部分结果。
//
// 序号分配：对批内每个出现过的时间戳，初始计数为 min(该时间戳的记录数, 10)，
// 每条记录消费一次递减，因此同一秒内先处理的记录拿到更大的序号。
// 计数器仅在本次调用内有效，不跨调用、不跨玩家共享。
func ToCanonical(raws []RawPullRecord) ([]CanonicalRecord, error) {
	if len(raws) == 0 {
		return []CanonicalRecord{}, nil
	}

	// 先整批校验并解析时间戳，任何一条失败都直接放弃
	seconds := make([]int64, len(raws))
	for i := range raws {
		if err := raws[i].Validate(); err != nil {
			return nil, fmt.Errorf("第%d条记录: %w", i+1, err)
		}
		ts, err := raws[i].unixSeconds()
		if err != nil {
			return nil, fmt.Errorf("第%d条记录: %w", i+1, err)
		}
		seconds[i] = ts
	}

	// 统计每个时间戳的记录数，得到各时间戳的初始序号
	remaining := make(map[int64]int)
	for _, ts := range seconds {
		remaining[ts]++
	}
	for ts, n := range remaining {
		if n > maxSequencePerTimestamp {
			remaining[ts] = maxSequencePerTimestamp
		}
	}

	list := make([]CanonicalRecord, 0, len(raws))
	for i := range raws {
		raw := &raws[i]

		code, ok := poolCodeByLabel[raw.CardPoolType]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPool, raw.CardPoolType)
		}

		seq := remaining[seconds[i]]
		remaining[seconds[i]]--

		list = append(list, CanonicalRecord{
			GachaID:   code,
			GachaType: poolTypeByCode[code],
			ItemID:    strconv.Itoa(raw.ResourceID),
			Count:     strconv.Itoa(raw.Count),
			Time:      raw.Time,
			Name:      raw.Name,
			ItemType:  raw.ResourceType,
			RankType:  strconv.Itoa(raw.QualityLevel),
			ID:        formatRecordID(seconds[i], code, seq),
		})
	}
	return list, nil
}

// formatRecordID 拼接WWGF的唯一id：
// 10位补零unix秒 + 4位卡池编码 + 三个字面"0" + 2位补零序号。
func formatRecordID(unixSeconds int64, poolCode string, seq int) string {
	return fmt.Sprintf("%010d%s000%02d", unixSeconds, poolCode, seq)
}

// ToRaw 是ToCanonical的纯逆变换：由卡池编码还原名称，
// 并把字符串形式的数值字段解析回数值类型。
// 解析失败不做静默兜底，整批以ErrValidation失败。
func ToRaw(list []CanonicalRecord) ([]RawPullRecord, error) {
	raws := make([]RawPullRecord, 0, len(list))
	for i := range list {
		rec := &list[i]

		label, ok := poolLabelByCode[rec.GachaID]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPool, rec.GachaID)
		}

		resourceID, err := strconv.Atoi(rec.ItemID)
		if err != nil {
			return nil, fmt.Errorf("%w: item_id %q 无法解析", ErrValidation, rec.ItemID)
		}
		count, err := strconv.Atoi(rec.Count)
		if err != nil {
			return nil, fmt.Errorf("%w: count %q 无法解析", ErrValidation, rec.Count)
		}
		rank, err := strconv.Atoi(rec.RankType)
		if err != nil || rank < 1 || rank > 5 {
			return nil, fmt.Errorf("%w: rank_type %q 无法解析", ErrValidation, rec.RankType)
		}

		raws = append(raws, RawPullRecord{
			CardPoolType: label,
			ResourceID:   resourceID,
			QualityLevel: rank,
			ResourceType: rec.ItemType,
			Name:         rec.Name,
			Count:        count,
			Time:         rec.Time,
		})
	}
	return raws, nil
}
