package user

import (
	"time"

	"gorm.io/gorm"
)

// User 定义了用户在SQLite数据库中的持久化模型。
// 一个用户对应一个浏览器Cookie身份，可绑定一个游戏内UID。
type User struct {
	// UUID 是用户的主键，来自客户端Cookie。
	UUID string `gorm:"primarykey;type:varchar(36)"`

	// BoundUID 是用户最近一次成功刷新的玩家UID。
	// 查询统计时凭它定位本地的导出文件。
	BoundUID string `gorm:"type:varchar(32);index"`

	// 部分gorm.Model，由GORM自动管理
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
