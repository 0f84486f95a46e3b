package gacha

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func useTempDataDir(t *testing.T) {
	t.Helper()
	old := dataDir
	SetDataDir(t.TempDir())
	t.Cleanup(func() { SetDataDir(old) })
}

func canonicalRecord(code, id, name string) CanonicalRecord {
	return CanonicalRecord{
		GachaID:   code,
		GachaType: poolTypeByCode[code],
		ItemID:    "1102",
		Count:     "1",
		Time:      "2024-05-01 12:00:00",
		Name:      name,
		ItemType:  "角色",
		RankType:  "4",
		ID:        id,
	}
}

func recordIDs(list []CanonicalRecord) []string {
	ids := make([]string, len(list))
	for i, rec := range list {
		ids[i] = rec.ID
	}
	return ids
}

func TestMergeIdempotent(t *testing.T) {
	incoming := []CanonicalRecord{
		canonicalRecord("0001", "1714536000000100002", "丹瑾"),
		canonicalRecord("0001", "1714536000000100001", "散华"),
		canonicalRecord("0002", "1714536000000200001", "远行"),
	}

	first := Merge(nil, incoming, "100000001")
	second := Merge(first, incoming, "100000001")
	require.Equal(t, first.List, second.List)
}

func TestMergePrunesUnobservedGroups(t *testing.T) {
	existing := &ExportFile{
		List: []CanonicalRecord{
			canonicalRecord("0001", "1714536000000100001", "散华"),
			canonicalRecord("0002", "1714536000000200001", "远行"),
		},
	}
	// 0001被重新观测到（共享id），0002完全未出现
	incoming := []CanonicalRecord{
		canonicalRecord("0001", "1714539600000100001", "丹瑾"),
		canonicalRecord("0001", "1714536000000100001", "散华"),
	}

	merged := Merge(existing, incoming, "100000001")
	require.Equal(t, []string{
		"1714539600000100001",
		"1714536000000100001",
	}, recordIDs(merged.List))
}

func TestMergeIncomingWinsOnConflict(t *testing.T) {
	existing := &ExportFile{
		List: []CanonicalRecord{
			canonicalRecord("0001", "1714536000000100001", "旧名字"),
		},
	}
	incoming := []CanonicalRecord{
		canonicalRecord("0001", "1714536000000100001", "新名字"),
	}

	merged := Merge(existing, incoming, "100000001")
	require.Len(t, merged.List, 1)
	require.Equal(t, "新名字", merged.List[0].Name)
}

func TestMergeSortInvariant(t *testing.T) {
	incoming := []CanonicalRecord{
		canonicalRecord("0002", "1714536000000200001", "远行"),
		canonicalRecord("0001", "1714536000000100001", "散华"),
		canonicalRecord("0001", "1714539600000100001", "丹瑾"),
	}

	merged := Merge(nil, incoming, "100000001")
	require.Equal(t, []string{
		"1714539600000100001",
		"1714536000000100001",
		"1714536000000200001",
	}, recordIDs(merged.List))
}

func TestMergeImportKeepsAllGroups(t *testing.T) {
	existing := &ExportFile{
		List: []CanonicalRecord{
			canonicalRecord("0001", "1714536000000100001", "本地记录"),
			canonicalRecord("0002", "1714536000000200001", "远行"),
		},
	}
	imported := []CanonicalRecord{
		canonicalRecord("0003", "1714536000000300001", "卡卡罗"),
		canonicalRecord("0001", "1714536000000100001", "外部记录"),
	}

	merged := MergeImport(existing, imported, "100000001")
	require.Equal(t, []string{
		"1714536000000100001",
		"1714536000000200001",
		"1714536000000300001",
	}, recordIDs(merged.List))
	// 冲突id保留本地记录
	require.Equal(t, "本地记录", merged.List[0].Name)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	useTempDataDir(t)

	file := Merge(nil, []CanonicalRecord{
		canonicalRecord("0001", "1714536000000100001", "散华"),
	}, "100000001")

	require.NoError(t, Save("100000001", file))

	loaded, err := Load("100000001")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, file.List, loaded.List)
	require.Equal(t, "100000001", loaded.Info.UID)
	require.Equal(t, "v0.1b", loaded.Info.WWGFVersion)
	require.Equal(t, 8, loaded.Info.RegionTimeZone)

	// 原子替换不应留下临时文件
	leftovers, err := filepath.Glob(filepath.Join(dataDir, "*.tmp"))
	require.NoError(t, err)
	require.Empty(t, leftovers)
}

func TestLoadMissingFile(t *testing.T) {
	useTempDataDir(t)

	loaded, err := Load("999999999")
	require.NoError(t, err)
	require.Nil(t, loaded)
}
