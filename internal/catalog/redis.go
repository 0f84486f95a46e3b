package catalog

// 定义与图标缓存相关的Redis键名
const (
	// IconCacheKey 是一个Hash，缓存 物品名称 -> 图标URL。
	// Key: item_icons
	// Field: 物品名称, Value: 图标URL
	IconCacheKey = "item_icons"
)
