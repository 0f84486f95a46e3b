// Package kuro 封装对库洛官方接口的访问：抽卡记录查询与Wiki词条查询。
// 它只负责传输与响应信封的解析，不理解抽卡记录的业务结构。
package kuro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mingchao-tools/waves-gacha-backend/internal/platform/config"
)

// CNServerID 是国服的serverId，用于区分国服与国际服接口。
const CNServerID = "76402e5b20be2c39f095a152090afddc"

// DefaultLanguageCode 是未指定语言时的缺省值。
const DefaultLanguageCode = "zh-Hans"

// UpstreamError 表示上游接口返回了业务失败。
// Message保留上游的原始说明（或映射后的提示），会原样呈现给调用方。
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string {
	return "上游接口错误: " + e.Message
}

// Client 是库洛接口的HTTP客户端。
type Client struct {
	httpClient   *http.Client
	gachaURL     string
	intlGachaURL string
}

// globalClient 是包级单例，Init后可用。
var globalClient *Client

// Init 根据配置初始化包级客户端。
func Init(cfg config.KuroConfig) {
	globalClient = NewClient(cfg.GachaURL, cfg.IntlGachaURL, time.Duration(cfg.TimeoutSeconds)*time.Second)
}

// NewClient 构造一个客户端。测试中用来指向httptest服务器。
func NewClient(gachaURL, intlGachaURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		gachaURL:     gachaURL,
		intlGachaURL: intlGachaURL,
	}
}

// RecordQuery 是一次抽卡记录查询的参数。
// RecordID 是短时效凭据（约1小时），这里只透传，不管理其生命周期。
type RecordQuery struct {
	PlayerID     string `json:"playerId"`
	RecordID     string `json:"recordId"`
	ServerID     string `json:"serverId"`
	LanguageCode string `json:"languageCode"`
}

// gachaQueryRequest 是抽卡记录接口的请求体。
type gachaQueryRequest struct {
	RecordQuery
	CardPoolID   int `json:"cardPoolId"`
	CardPoolType int `json:"cardPoolType"`
}

// gachaQueryResponse 是抽卡记录接口的响应信封。
// data 保持原始JSON，由调用方按业务结构解码。
type gachaQueryResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// FetchPool 查询单个卡池（索引1-7）的抽卡记录，返回data数组的原始JSON。
func FetchPool(ctx context.Context, query RecordQuery, poolIndex int) (json.RawMessage, error) {
	return globalClient.FetchPool(ctx, query, poolIndex)
}

// FetchAllPools 并发查询全部7个卡池。
// 全有或全无：任何一个卡池失败都会使整次刷新失败，并按卡池顺序返回首个失败原因，
// 保证不会产出部分刷新结果（合并步骤依赖这一约定）。
func FetchAllPools(ctx context.Context, query RecordQuery) ([]json.RawMessage, error) {
	return globalClient.FetchAllPools(ctx, query)
}

func (c *Client) FetchPool(ctx context.Context, query RecordQuery, poolIndex int) (json.RawMessage, error) {
	if query.ServerID == "" {
		query.ServerID = CNServerID
	}
	if query.LanguageCode == "" {
		query.LanguageCode = DefaultLanguageCode
	}

	body, err := json.Marshal(gachaQueryRequest{
		RecordQuery:  query,
		CardPoolID:   poolIndex,
		CardPoolType: poolIndex,
	})
	if err != nil {
		return nil, fmt.Errorf("无法序列化抽卡查询请求: %w", err)
	}

	url := c.gachaURL
	if query.ServerID != CNServerID {
		url = c.intlGachaURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("无法构造抽卡查询请求: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Message: "获取抽卡记录失败，疑似网络问题，请稍后重试"}
	}
	defer resp.Body.Close()

	var envelope gachaQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &UpstreamError{Message: "上游返回了无法解析的数据"}
	}

	if envelope.Code != 0 {
		// 凭据过期是最常见的失败，给出更可操作的提示
		if strings.Contains(envelope.Message, "请求游戏获取日志异常") {
			return nil, &UpstreamError{Message: "请求游戏获取日志异常, 可能是抽卡链接已失效, 请尝试重新获取."}
		}
		return nil, &UpstreamError{Message: envelope.Message}
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil, &UpstreamError{Message: "查询信息失败，请检查库街区数据终端中对应板块的对外展示开关是否打开"}
	}

	return envelope.Data, nil
}

func (c *Client) FetchAllPools(ctx context.Context, query RecordQuery) ([]json.RawMessage, error) {
	type result struct {
		data json.RawMessage
		err  error
	}

	results := make([]result, PoolFetchCount)
	done := make(chan int, PoolFetchCount)
	for i := 0; i < PoolFetchCount; i++ {
		go func(idx int) {
			data, err := c.FetchPool(ctx, query, idx+1)
			results[idx] = result{data: data, err: err}
			done <- idx
		}(i)
	}
	for i := 0; i < PoolFetchCount; i++ {
		<-done
	}

	// 按卡池顺序取首个失败，保证错误信息稳定
	for i := 0; i < PoolFetchCount; i++ {
		if results[i].err != nil {
			return nil, results[i].err
		}
	}

	pools := make([]json.RawMessage, PoolFetchCount)
	for i := 0; i < PoolFetchCount; i++ {
		pools[i] = results[i].data
	}
	return pools, nil
}

// PoolFetchCount 是一次完整刷新需要查询的卡池数量。
const PoolFetchCount = 7
