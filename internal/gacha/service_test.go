package gacha

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeAndMergeIdempotent(t *testing.T) {
	useTempDataDir(t)

	batches := [][]RawPullRecord{
		{rawRecord("角色精准调谐", "守岸人", "2024-05-01 12:00:00", 5)},
		{rawRecord("武器精准调谐", "远行", "2024-05-01 13:00:00", 3)},
	}

	first, err := NormalizeAndMerge("100000001", batches)
	require.NoError(t, err)
	require.Len(t, first.List, 2)

	// 同样的批次再刷新一次，结果不变
	second, err := NormalizeAndMerge("100000001", batches)
	require.NoError(t, err)
	require.Equal(t, first.List, second.List)

	loaded, err := Load("100000001")
	require.NoError(t, err)
	require.Equal(t, second.List, loaded.List)
}

func TestNormalizeAndMergeSharesTimestampCounter(t *testing.T) {
	useTempDataDir(t)

	// 同一秒的两条记录分属不同卡池，序号在整个批次内统一分配
	batches := [][]RawPullRecord{
		{rawRecord("角色精准调谐", "守岸人", "2024-05-01 12:00:00", 5)},
		{rawRecord("武器精准调谐", "远行", "2024-05-01 12:00:00", 3)},
	}

	file, err := NormalizeAndMerge("100000001", batches)
	require.NoError(t, err)
	require.Len(t, file.List, 2)

	require.Equal(t, "1714536000000100002", file.List[0].ID)
	require.Equal(t, "1714536000000200001", file.List[1].ID)
}

func TestNormalizeAndMergeBadBatchLeavesFileIntact(t *testing.T) {
	useTempDataDir(t)

	good := [][]RawPullRecord{
		{rawRecord("角色精准调谐", "守岸人", "2024-05-01 12:00:00", 5)},
	}
	_, err := NormalizeAndMerge("100000001", good)
	require.NoError(t, err)

	bad := [][]RawPullRecord{
		{rawRecord("从未见过的卡池", "远行", "2024-05-01 12:00:01", 3)},
	}
	_, err = NormalizeAndMerge("100000001", bad)
	require.ErrorIs(t, err, ErrUnknownPool)

	loaded, err := Load("100000001")
	require.NoError(t, err)
	require.Len(t, loaded.List, 1)
	require.Equal(t, "守岸人", loaded.List[0].Name)
}

func TestImportRecordsValidates(t *testing.T) {
	useTempDataDir(t)

	_, err := ImportRecords("100000001", []CanonicalRecord{{GachaID: "0042"}})
	require.ErrorIs(t, err, ErrUnknownPool)

	loaded, err := Load("100000001")
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestSelectPoolIndexes(t *testing.T) {
	indexes, err := selectPoolIndexes(0)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 4}, indexes)

	indexes, err = selectPoolIndexes(5)
	require.NoError(t, err)
	require.Equal(t, []int{5}, indexes)

	_, err = selectPoolIndexes(8)
	require.ErrorIs(t, err, ErrUnknownPool)
}

func TestPoolRecordsFromFile(t *testing.T) {
	file := &ExportFile{
		List: []CanonicalRecord{
			canonicalRecord("0001", "1714539600000100001", "丹瑾"),
			canonicalRecord("0001", "1714536000000100001", "散华"),
			canonicalRecord("0002", "1714536000000200001", "远行"),
		},
	}

	pulls, err := poolRecordsFromFile(file, 1)
	require.NoError(t, err)
	require.Len(t, pulls, 2)
	// 文件内为最新在前
	require.Equal(t, "丹瑾", pulls[0].Name)
	require.Equal(t, "散华", pulls[1].Name)

	pulls, err = poolRecordsFromFile(nil, 1)
	require.NoError(t, err)
	require.Empty(t, pulls)
}
