package catalog

import "gorm.io/gorm"

// Icon 是物品图标在SQLite中的持久化缓存。
// Wiki解析成本高且结果稳定，成功一次后长期复用。
type Icon struct {
	gorm.Model

	// Name 是物品的显示名称，业务主键
	Name string `gorm:"uniqueIndex;not null" json:"name"`

	// URL 是解析出的图标地址
	URL string `json:"url"`
}
