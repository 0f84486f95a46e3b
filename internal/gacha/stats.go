package gacha

import "math"

// FiveStarPull 是单个5星的出货详情，用于渲染出货列表。
type FiveStarPull struct {
	Name string `json:"name"`

	// Times 是从这个5星（含自身）到下一个5星之间的抽数；
	// 若是最后一个5星，则为到序列末尾的抽数。
	Times int `json:"times"`

	// IsUp 表示是否为UP（不在常驻名单中）
	IsUp bool `json:"isUp"`

	// Avatar 是物品图标URL，由catalog模块尽力解析，失败时为空
	Avatar string `json:"avatar"`
}

// StatsInfo 是单个卡池的汇总统计。
type StatsInfo struct {
	// Total 是总抽数
	Total int `json:"total"`

	// Time 是 [最早一抽时间, 最晚一抽时间]，空序列时为nil
	Time []string `json:"time"`

	// No5Star / No4Star 是出第一个5星/4星之前的抽数，没出过则等于Total
	No5Star int `json:"no5Star"`
	No4Star int `json:"no4Star"`

	// FiveStar / FourStar 是5星/4星个数
	FiveStar int `json:"fiveStar"`
	FourStar int `json:"fourStar"`

	// Std5Star 是5星中常驻（歪掉）的个数
	Std5Star int `json:"std5Star"`

	// FourStarWpn 是4星中武器的个数
	FourStarWpn int `json:"fourStarWpn"`

	// Max4Star 是出现次数最多的4星名称，平手时取先出现者，没有4星为"无"
	Max4Star string `json:"max4Star"`

	// Avg5Star / Avg4Star 是平均多少抽一个5星/4星（四舍五入）
	Avg5Star int `json:"avg5Star"`
	Avg4Star int `json:"avg4Star"`

	// AvgUP 是平均多少抽一个UP 5星
	AvgUP int `json:"avgUP"`

	// MinPit 是"小保底不歪"概率估计，百分数保留1位小数
	MinPit float64 `json:"minPit"`

	// UpCost 是按AvgUP折算的每个UP成本（单位：万）
	UpCost float64 `json:"upCost"`

	// WorstLuck / BestLuck 是相邻5星间距（含末尾悬空段）的最大/最小值
	WorstLuck int `json:"worstLuck"`
	BestLuck  int `json:"bestLuck"`
}

// PoolStats 是统计引擎对单个卡池序列的完整输出。
type PoolStats struct {
	Info StatsInfo      `json:"info"`
	Pool []FiveStarPull `json:"pool"`
}

// ComputeStatistics 对单个卡池按时间升序（最早在前）排列的抽卡序列计算统计。
// 纯函数，无任何I/O；空序列返回零值统计而不是错误。
// 出货详情中的Avatar留空，由上层按需补全。
func ComputeStatistics(pulls []RawPullRecord) PoolStats {
	total := len(pulls)

	info := StatsInfo{
		Total:    total,
		No5Star:  total,
		No4Star:  total,
		Max4Star: "无",
	}
	if total > 0 {
		info.Time = []string{pulls[0].Time, pulls[total-1].Time}
	}

	// 4星频次统计，平手按先出现顺序取胜
	fourStarCounts := make(map[string]int)
	fourStarOrder := make([]string, 0)

	fiveStarIndexes := make([]int, 0)
	for i := range pulls {
		switch pulls[i].QualityLevel {
		case 5:
			if info.FiveStar == 0 {
				info.No5Star = i
			}
			info.FiveStar++
			if IsResident(pulls[i].Name) {
				info.Std5Star++
			}
			fiveStarIndexes = append(fiveStarIndexes, i)
		case 4:
			if info.FourStar == 0 {
				info.No4Star = i
			}
			info.FourStar++
			if pulls[i].ResourceType == "武器" {
				info.FourStarWpn++
			}
			if _, ok := fourStarCounts[pulls[i].Name]; !ok {
				fourStarOrder = append(fourStarOrder, pulls[i].Name)
			}
			fourStarCounts[pulls[i].Name]++
		}
	}

	maxCount := 0
	for _, name := range fourStarOrder {
		if fourStarCounts[name] > maxCount {
			maxCount = fourStarCounts[name]
			info.Max4Star = name
		}
	}

	if info.FiveStar > 0 {
		info.Avg5Star = int(math.Round(float64(total-info.No5Star) / float64(info.FiveStar)))
	}
	if info.FourStar > 0 {
		info.Avg4Star = int(math.Round(float64(total-info.No4Star) / float64(info.FourStar)))
	}
	if upCount := info.FiveStar - info.Std5Star; upCount > 0 {
		info.AvgUP = int(math.Round(float64(total-info.No5Star) / float64(upCount)))
	}
	info.MinPit = minPitPercent(pulls, fiveStarIndexes, info.FiveStar, info.Std5Star)
	info.UpCost = round2(float64(info.AvgUP) * 160 / 10000)
	info.WorstLuck, info.BestLuck = luckGaps(total, fiveStarIndexes)

	pool := make([]FiveStarPull, 0, len(fiveStarIndexes))
	for k, idx := range fiveStarIndexes {
		times := total - idx
		if k+1 < len(fiveStarIndexes) {
			times = fiveStarIndexes[k+1] - idx
		}
		pool = append(pool, FiveStarPull{
			Name:  pulls[idx].Name,
			Times: times,
			IsUp:  !IsResident(pulls[idx].Name),
		})
	}

	return PoolStats{Info: info, Pool: pool}
}

// minPitPercent 估算小保底不歪的概率。
// 若时间上第一个5星就是常驻，则样本数加一（它必然消耗了一次小保底）。
func minPitPercent(pulls []RawPullRecord, fiveStarIndexes []int, fiveStar, std5Star int) float64 {
	adjusted := fiveStar
	if len(fiveStarIndexes) > 0 && IsResident(pulls[fiveStarIndexes[0]].Name) {
		adjusted++
	}
	if adjusted == std5Star {
		return 0.0
	}
	return round1(float64(adjusted-2*std5Star) / float64(adjusted-std5Star) * 100)
}

// luckGaps 计算最非与最欧的5星间距。
// 间距集合为相邻5星下标差，外加末尾悬空段 total-last-1；没有5星时均为0。
func luckGaps(total int, fiveStarIndexes []int) (worst, best int) {
	if len(fiveStarIndexes) == 0 {
		return 0, 0
	}
	last := fiveStarIndexes[len(fiveStarIndexes)-1]
	gaps := make([]int, 0, len(fiveStarIndexes))
	for k := 1; k < len(fiveStarIndexes); k++ {
		gaps = append(gaps, fiveStarIndexes[k]-fiveStarIndexes[k-1])
	}
	gaps = append(gaps, total-last-1)

	worst, best = gaps[0], gaps[0]
	for _, g := range gaps[1:] {
		if g > worst {
			worst = g
		}
		if g < best {
			best = g
		}
	}
	return worst, best
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
