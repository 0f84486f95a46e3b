package user

// --- Redis 键名常量 ---

const (
	// KnownUsersKey 是一个 Redis Set 的键，缓存所有已激活用户的UUID。
	// 用于在热路径上判断Cookie身份是否有效，免查SQLite。
	KnownUsersKey = "known_users"

	// BoundUIDKey 是一个 Redis Hash 的键，缓存 用户UUID -> 绑定的玩家UID。
	// Field: 用户UUID, Value: 玩家UID
	BoundUIDKey = "user:bound_uid"
)
