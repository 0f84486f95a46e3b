package gacha

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// pullSequence 按星级序列构造一个时间升序的抽卡序列。
// fiveStarNames 依次分配给序列中的5星。
func pullSequence(t *testing.T, ranks []int, fiveStarNames ...string) []RawPullRecord {
	t.Helper()
	pulls := make([]RawPullRecord, 0, len(ranks))
	nextFive := 0
	for i, rank := range ranks {
		name := fmt.Sprintf("四星物品%d", i)
		if rank == 5 {
			require.Less(t, nextFive, len(fiveStarNames), "5星名称不够用")
			name = fiveStarNames[nextFive]
			nextFive++
		}
		pulls = append(pulls, RawPullRecord{
			CardPoolType: "角色精准调谐",
			ResourceID:   1000 + i,
			QualityLevel: rank,
			ResourceType: "角色",
			Name:         name,
			Count:        1,
			Time:         fmt.Sprintf("2024-05-01 12:00:%02d", i),
		})
	}
	return pulls
}

func TestComputeStatisticsEmpty(t *testing.T) {
	stats := ComputeStatistics(nil)

	require.Equal(t, 0, stats.Info.Total)
	require.Nil(t, stats.Info.Time)
	require.Equal(t, 0, stats.Info.No5Star)
	require.Equal(t, 0, stats.Info.FiveStar)
	require.Equal(t, "无", stats.Info.Max4Star)
	require.Equal(t, 0, stats.Info.WorstLuck)
	require.Equal(t, 0, stats.Info.BestLuck)
	require.Empty(t, stats.Pool)
}

func TestComputeStatisticsPityAndLuck(t *testing.T) {
	ranks := []int{3, 3, 5, 3, 4, 5, 3, 3, 3, 3, 3, 3}
	pulls := pullSequence(t, ranks, "鉴心", "守岸人")

	stats := ComputeStatistics(pulls)

	require.Equal(t, 12, stats.Info.Total)
	require.Equal(t, []string{"2024-05-01 12:00:00", "2024-05-01 12:00:11"}, stats.Info.Time)
	require.Equal(t, 2, stats.Info.No5Star)
	require.Equal(t, 4, stats.Info.No4Star)
	require.Equal(t, 2, stats.Info.FiveStar)
	require.Equal(t, 1, stats.Info.FourStar)
	require.Equal(t, 1, stats.Info.Std5Star)

	// 间距集合为 {3, 6}：相邻5星差3，末尾悬空段 12-5-1=6
	require.Equal(t, 6, stats.Info.WorstLuck)
	require.Equal(t, 3, stats.Info.BestLuck)

	require.Equal(t, 5, stats.Info.Avg5Star)
	require.Equal(t, 8, stats.Info.Avg4Star)
	require.Equal(t, 10, stats.Info.AvgUP)
	require.Equal(t, 0.16, stats.Info.UpCost)

	// 时间上第一个5星是常驻，样本数加一：(3-2)/(3-1)*100 = 50.0
	require.Equal(t, 50.0, stats.Info.MinPit)

	require.Len(t, stats.Pool, 2)
	require.Equal(t, "鉴心", stats.Pool[0].Name)
	require.Equal(t, 3, stats.Pool[0].Times)
	require.False(t, stats.Pool[0].IsUp)
	require.Equal(t, "守岸人", stats.Pool[1].Name)
	require.Equal(t, 7, stats.Pool[1].Times)
	require.True(t, stats.Pool[1].IsUp)
}

func TestComputeStatisticsNoFiveStar(t *testing.T) {
	pulls := pullSequence(t, []int{3, 3, 4, 3})

	stats := ComputeStatistics(pulls)

	require.Equal(t, 4, stats.Info.No5Star)
	require.Equal(t, 0, stats.Info.FiveStar)
	require.Equal(t, 0, stats.Info.Avg5Star)
	require.Equal(t, 0, stats.Info.AvgUP)
	require.Equal(t, 0.0, stats.Info.MinPit)
	require.Equal(t, 0, stats.Info.WorstLuck)
	require.Equal(t, 0, stats.Info.BestLuck)
	require.Empty(t, stats.Pool)
}

func TestComputeStatisticsMax4StarTie(t *testing.T) {
	pulls := pullSequence(t, []int{4, 4, 3})
	pulls[0].Name = "先出现"
	pulls[1].Name = "后出现"

	stats := ComputeStatistics(pulls)
	require.Equal(t, "先出现", stats.Info.Max4Star)
	require.Equal(t, 2, stats.Info.FourStar)
}

func TestComputeStatisticsFourStarWeapons(t *testing.T) {
	pulls := pullSequence(t, []int{4, 4})
	pulls[1].ResourceType = "武器"

	stats := ComputeStatistics(pulls)
	require.Equal(t, 2, stats.Info.FourStar)
	require.Equal(t, 1, stats.Info.FourStarWpn)
}

func TestChronologicalReverses(t *testing.T) {
	pulls := pullSequence(t, []int{3, 4, 5}, "守岸人")

	reversed := chronological(pulls)
	require.Equal(t, pulls[2].Name, reversed[0].Name)
	require.Equal(t, pulls[0].Name, reversed[2].Name)
	// 原切片不被修改
	require.Equal(t, 3, pulls[0].QualityLevel)
}
