package gacha

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func rawRecord(pool, name, timeStr string, quality int) RawPullRecord {
	return RawPullRecord{
		CardPoolType: pool,
		ResourceID:   21010026,
		QualityLevel: quality,
		ResourceType: "武器",
		Name:         name,
		Count:        1,
		Time:         timeStr,
	}
}

func TestToCanonicalIDFormat(t *testing.T) {
	raws := []RawPullRecord{
		rawRecord("角色精准调谐", "远行", "2024-05-01 12:00:00", 3),
		rawRecord("角色精准调谐", "不归孤军", "2024-05-01 12:00:00", 3),
		rawRecord("角色精准调谐", "东落", "2024-05-01 12:00:00", 3),
	}

	list, err := ToCanonical(raws)
	require.NoError(t, err)
	require.Len(t, list, 3)

	// 2024-05-01 12:00:00 UTC+8 == unix 1714536000；
	// 同一秒内先处理的记录拿到更大的序号
	require.Equal(t, "1714536000000100003", list[0].ID)
	require.Equal(t, "1714536000000100002", list[1].ID)
	require.Equal(t, "1714536000000100001", list[2].ID)

	require.Equal(t, "0001", list[0].GachaID)
	require.Equal(t, "角色活动唤取", list[0].GachaType)
	require.Equal(t, "21010026", list[0].ItemID)
	require.Equal(t, "3", list[0].RankType)
	require.Equal(t, "1", list[0].Count)
}

func TestToCanonicalUnknownPool(t *testing.T) {
	raws := []RawPullRecord{
		rawRecord("角色精准调谐", "远行", "2024-05-01 12:00:00", 3),
		rawRecord("从未见过的卡池", "远行", "2024-05-01 12:00:01", 3),
	}

	list, err := ToCanonical(raws)
	require.ErrorIs(t, err, ErrUnknownPool)
	require.Nil(t, list)
}

func TestToCanonicalValidationFailsWholeBatch(t *testing.T) {
	raws := []RawPullRecord{
		rawRecord("角色精准调谐", "远行", "2024-05-01 12:00:00", 3),
		rawRecord("角色精准调谐", "", "2024-05-01 12:00:01", 3),
	}

	list, err := ToCanonical(raws)
	require.ErrorIs(t, err, ErrValidation)
	require.Nil(t, list)
}

func TestToCanonicalSequenceCap(t *testing.T) {
	raws := make([]RawPullRecord, 0, 12)
	for i := 0; i < 12; i++ {
		raws = append(raws, rawRecord("新手调谐", "远行", "2024-05-01 12:00:00", 3))
	}

	list, err := ToCanonical(raws)
	require.NoError(t, err)
	require.Len(t, list, 12)

	// 同一秒超过10条时序号从10开始递减
	require.Equal(t, "1714536000000500010", list[0].ID)
	require.Equal(t, "1714536000000500001", list[9].ID)
}

func TestToCanonicalDeterministic(t *testing.T) {
	raws := []RawPullRecord{
		rawRecord("角色精准调谐", "守岸人", "2024-05-01 12:00:00", 5),
		rawRecord("武器精准调谐", "远行", "2024-05-01 12:00:00", 3),
		rawRecord("角色精准调谐", "东落", "2024-05-02 08:30:00", 3),
	}

	first, err := ToCanonical(raws)
	require.NoError(t, err)
	second, err := ToCanonical(raws)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestToRawRoundTrip(t *testing.T) {
	raws := []RawPullRecord{
		rawRecord("角色精准调谐", "守岸人", "2024-05-01 12:00:00", 5),
		rawRecord("武器精准调谐", "远行", "2024-05-01 13:00:00", 3),
		rawRecord("角色调谐（常驻池）", "卡卡罗", "2024-05-01 14:00:00", 5),
		rawRecord("武器调谐（常驻池）", "东落", "2024-05-01 15:00:00", 3),
		rawRecord("新手调谐", "不归孤军", "2024-05-01 16:00:00", 4),
	}

	list, err := ToCanonical(raws)
	require.NoError(t, err)

	back, err := ToRaw(list)
	require.NoError(t, err)
	require.Equal(t, raws, back)
}

func TestToRawRejectsBadNumbers(t *testing.T) {
	list := []CanonicalRecord{{
		GachaID:  "0001",
		ItemID:   "abc",
		Count:    "1",
		RankType: "3",
		Name:     "远行",
		Time:     "2024-05-01 12:00:00",
	}}

	back, err := ToRaw(list)
	require.ErrorIs(t, err, ErrValidation)
	require.Nil(t, back)
}

func TestToRawUnknownPoolCode(t *testing.T) {
	list := []CanonicalRecord{{
		GachaID:  "0009",
		ItemID:   "1",
		Count:    "1",
		RankType: "3",
		Name:     "远行",
		Time:     "2024-05-01 12:00:00",
	}}

	back, err := ToRaw(list)
	require.ErrorIs(t, err, ErrUnknownPool)
	require.Nil(t, back)
}
