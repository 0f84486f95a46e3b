package metadata

// --- SQLite Keys ---
// 这些键用于 metadata SQLite 表的 key 列。
const (
	// LastRefreshKeyPrefix 后接玩家UID，记录该玩家最近一次成功刷新
	// 抽卡记录的时间（unix毫秒）。
	LastRefreshKeyPrefix = "last_refresh:"

	// TotalRefreshCountKey 记录服务累计完成的成功刷新次数。
	TotalRefreshCountKey = "total_refresh_count"
)

// --- Redis Keys ---
const (
	// RedisLastRefreshKeyPrefix 后接玩家UID，是对应SQLite键的热副本，
	// 供前端轮询"上次刷新时间"时免查库。
	RedisLastRefreshKeyPrefix = "meta:last_refresh:"
)
