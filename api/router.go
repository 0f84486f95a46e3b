package api

import (
	"github.com/gin-gonic/gin"
	"github.com/mingchao-tools/waves-gacha-backend/internal/gacha"
	"github.com/mingchao-tools/waves-gacha-backend/internal/user"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		gachaRoutes := api.Group("/gacha")
		{
			// 刷新会绑定玩家UID，需要保证Cookie身份存在
			gachaRoutes.POST("/refresh", user.EnsureUserCookieMiddleware(), gacha.RefreshRecords)

			// 统计与导出凭Cookie身份定位绑定的玩家
			gachaRoutes.GET("/statistics", user.LoadUserMiddleware(), gacha.GetStatistics)
			gachaRoutes.GET("/export", user.LoadUserMiddleware(), gacha.ExportRecords)

			// 签名下载链接不依赖Cookie，可直接分享
			gachaRoutes.GET("/export/:uid", gacha.DownloadExportFile)

			gachaRoutes.POST("/import", user.EnsureUserCookieMiddleware(), gacha.ImportRecordsHandler)
		}
	}
}
