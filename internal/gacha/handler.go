package gacha

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mingchao-tools/waves-gacha-backend/internal/kuro"
	"github.com/mingchao-tools/waves-gacha-backend/internal/platform/database"
	"github.com/mingchao-tools/waves-gacha-backend/internal/platform/metadata"
	"github.com/mingchao-tools/waves-gacha-backend/internal/user"
	"github.com/mingchao-tools/waves-gacha-backend/pkg/token"
)

// --- API请求/响应模型 ---

// RefreshRequestBody 定义了刷新接口的请求体。
// 前端可以直接粘贴游戏内复制的抽卡记录链接，也可以拆好字段提交。
type RefreshRequestBody struct {
	URL          string `json:"url"`
	PlayerID     string `json:"playerId"`
	RecordID     string `json:"recordId"`
	ServerID     string `json:"serverId"`
	LanguageCode string `json:"languageCode"`
}

// RefreshResponse 是刷新成功后的响应。
type RefreshResponse struct {
	UID         string               `json:"uid"`
	Total       int                  `json:"total"`
	LastRefresh int64                `json:"lastRefresh"`
	Pools       map[string]PoolStats `json:"pools"`
}

// StatisticsResponse 是统计查询的响应。
type StatisticsResponse struct {
	UID         string               `json:"uid"`
	LastRefresh int64                `json:"lastRefresh"`
	Pools       map[string]PoolStats `json:"pools"`
}

// ExportResponse 是导出接口的响应：完整文件内容加一条可分享的签名下载链接。
type ExportResponse struct {
	File      *ExportFile `json:"file"`
	SharePath string      `json:"sharePath"`
}

// ImportRequestBody 定义了导入接口的请求体，即一个WWGF导出文件。
type ImportRequestBody struct {
	Info ExportInfo        `json:"info"`
	List []CanonicalRecord `json:"list" binding:"required"`
}

// parseRecordURL 从游戏内复制的抽卡记录链接中提取查询参数。
// 链接的查询串通常在'#'之后的片段里，先去掉'#'再解析。
func parseRecordURL(rawURL string) (kuro.RecordQuery, error) {
	parsed, err := url.Parse(strings.ReplaceAll(rawURL, "#", ""))
	if err != nil {
		return kuro.RecordQuery{}, fmt.Errorf("无法解析抽卡链接: %w", err)
	}
	values := parsed.Query()
	return kuro.RecordQuery{
		PlayerID:     values.Get("player_id"),
		RecordID:     values.Get("record_id"),
		ServerID:     values.Get("svr_id"),
		LanguageCode: values.Get("lang"),
	}, nil
}

// queryFromBody 将请求体归一化为一次上游查询。
func queryFromBody(body RefreshRequestBody) (kuro.RecordQuery, error) {
	query := kuro.RecordQuery{
		PlayerID:     body.PlayerID,
		RecordID:     body.RecordID,
		ServerID:     body.ServerID,
		LanguageCode: body.LanguageCode,
	}
	if body.URL != "" {
		parsed, err := parseRecordURL(body.URL)
		if err != nil {
			return kuro.RecordQuery{}, err
		}
		query = parsed
	}
	if query.PlayerID == "" || query.RecordID == "" {
		return kuro.RecordQuery{}, errors.New("缺少player_id或record_id")
	}
	if query.ServerID == "" {
		query.ServerID = kuro.CNServerID
	}
	if query.LanguageCode == "" {
		query.LanguageCode = kuro.DefaultLanguageCode
	}
	return query, nil
}

// poolIndexFromQuery 解析可选的pool查询参数，缺省为0（四个主要卡池）。
func poolIndexFromQuery(c *gin.Context) (int, error) {
	poolStr := c.DefaultQuery("pool", "0")
	poolIndex, err := strconv.Atoi(poolStr)
	if err != nil || poolIndex < 0 || poolIndex > PoolCount {
		return 0, fmt.Errorf("非法的卡池索引: %q", poolStr)
	}
	return poolIndex, nil
}

// lastRefreshMilli 查询玩家上次刷新时间的毫秒时间戳，失败或从未刷新时为0。
func lastRefreshMilli(uid string) int64 {
	at, err := metadata.GetLastRefreshTime(uid)
	if err != nil || at.IsZero() {
		return 0
	}
	return at.UnixMilli()
}

// --- 控制器函数 ---

// RefreshRecords 拉取玩家的全部抽卡记录并与本地文件合并。
func RefreshRecords(c *gin.Context) {
	if !database.IsRedisHealthy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "服务暂时不可用，请稍后重试"})
		return
	}

	var body RefreshRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	query, err := queryFromBody(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	poolIndex, err := poolIndexFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := RefreshFromUpstream(c.Request.Context(), query)
	if err != nil {
		var upstreamErr *kuro.UpstreamError
		if errors.As(err, &upstreamErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "抽卡数据获取失败, " + upstreamErr.Message})
			return
		}
		if errors.Is(err, ErrUnknownPool) || errors.Is(err, ErrValidation) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "上游返回了无法识别的抽卡记录: " + err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存抽卡记录时发生内部错误"})
		return
	}

	// 刷新成功后将玩家UID绑定到当前Cookie身份，供后续统计查询使用
	if userID := c.GetString(user.UserIDKey); userID != "" {
		if err := user.BindPlayer(userID, query.PlayerID); err != nil {
			fmt.Printf("警告: 绑定用户 %s 与玩家 %s 失败: %v\n", userID, query.PlayerID, err)
		}
	}

	pools, err := StatisticsFromBatches(c.Request.Context(), result.Batches, poolIndex)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "统计抽卡数据时发生内部错误"})
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{
		UID:         query.PlayerID,
		Total:       len(result.File.List),
		LastRefresh: lastRefreshMilli(query.PlayerID),
		Pools:       pools,
	})
}

// GetStatistics 基于本地持久化文件返回卡池统计。
func GetStatistics(c *gin.Context) {
	uid, ok := boundUIDForRequest(c)
	if !ok {
		return
	}

	poolIndex, err := poolIndexFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := Load(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取本地抽卡记录失败"})
		return
	}
	if file == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "尚无本地抽卡记录，请先刷新"})
		return
	}

	pools, err := StatisticsFromFile(c.Request.Context(), file, poolIndex)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "统计抽卡数据时发生内部错误"})
		return
	}

	c.JSON(http.StatusOK, StatisticsResponse{
		UID:         uid,
		LastRefresh: lastRefreshMilli(uid),
		Pools:       pools,
	})
}

// ExportRecords 返回当前用户绑定玩家的完整WWGF文件，并附带签名下载链接。
func ExportRecords(c *gin.Context) {
	uid, ok := boundUIDForRequest(c)
	if !ok {
		return
	}

	file, err := Load(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取本地抽卡记录失败"})
		return
	}
	if file == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "尚无本地抽卡记录，请先刷新"})
		return
	}

	signature, err := token.GenerateExportSignature(token.ExportPayload{UID: uid})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成导出签名失败"})
		return
	}

	c.JSON(http.StatusOK, ExportResponse{
		File:      file,
		SharePath: fmt.Sprintf("/api/gacha/export/%s?sig=%s", uid, signature),
	})
}

// DownloadExportFile 通过签名链接下载指定玩家的WWGF文件。
// 签名校验失败一律返回404，不暴露文件是否存在。
func DownloadExportFile(c *gin.Context) {
	uid := c.Param("uid")
	signature := c.Query("sig")

	if !token.ValidateExportSignature(token.ExportPayload{UID: uid}, signature) {
		c.JSON(http.StatusNotFound, gin.H{"error": "链接无效或已过期"})
		return
	}

	file, err := Load(uid)
	if err != nil || file == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "链接无效或已过期"})
		return
	}

	c.FileAttachment(ExportFilePath(uid), uid+"_Export.json")
}

// ImportRecordsHandler 接收一个外部WWGF导出文件并并入本地记录。
func ImportRecordsHandler(c *gin.Context) {
	var body ImportRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	uid := body.Info.UID
	if uid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "导入文件的info.uid为空"})
		return
	}

	file, err := ImportRecords(uid, body.List)
	if err != nil {
		if errors.Is(err, ErrUnknownPool) || errors.Is(err, ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "导入文件校验失败: " + err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存导入记录时发生内部错误"})
		return
	}

	// 导入成功同样视为绑定该玩家
	if userID := c.GetString(user.UserIDKey); userID != "" && database.IsRedisHealthy() {
		if err := user.BindPlayer(userID, uid); err != nil {
			fmt.Printf("警告: 绑定用户 %s 与玩家 %s 失败: %v\n", userID, uid, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"uid": uid, "total": len(file.List)})
}

// boundUIDForRequest 取出当前Cookie身份绑定的玩家UID。
// 未绑定时直接写出错误响应并返回false。
func boundUIDForRequest(c *gin.Context) (string, bool) {
	userID := c.GetString(user.UserIDKey)
	uid, err := user.BoundPlayerUID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询用户绑定信息失败"})
		return "", false
	}
	if uid == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "当前用户尚未绑定玩家，请先刷新抽卡记录"})
		return "", false
	}
	return uid, true
}
