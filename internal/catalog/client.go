package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mingchao-tools/waves-gacha-backend/internal/platform/config"
)

// wikiClient 访问库街区Wiki，把物品名称解析为图标URL。
type wikiClient struct {
	httpClient  *http.Client
	apiURL      string
	fallbackURL string
}

var globalWikiClient *wikiClient

// Init 根据配置初始化Wiki客户端。
func Init(cfg config.KuroConfig) {
	globalWikiClient = &wikiClient{
		httpClient:  &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		apiURL:      cfg.WikiURL,
		fallbackURL: cfg.WikiFallbackURL,
	}
}

// wikiRecordResponse 是Wiki词条接口的响应信封。
type wikiRecordResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Record struct {
			Content struct {
				ContentURL string `json:"contentUrl"`
			} `json:"content"`
		} `json:"record"`
	} `json:"data"`
}

var errIconNotFound = errors.New("wiki词条中没有图标")

// fetchIcon 先走词条接口，接口查不到再退化为抓取词条页面。
func (c *wikiClient) fetchIcon(ctx context.Context, name string) (string, error) {
	iconURL, err := c.fetchIconFromAPI(ctx, name)
	if err == nil && iconURL != "" {
		return iconURL, nil
	}
	return c.fetchIconFromPage(ctx, name)
}

// fetchIconFromAPI 通过词条查询接口解析图标。
func (c *wikiClient) fetchIconFromAPI(ctx context.Context, name string) (string, error) {
	form := url.Values{}
	form.Set("name", name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("无法构造Wiki查询请求: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("source", "h5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("Wiki查询失败: %w", err)
	}
	defer resp.Body.Close()

	var envelope wikiRecordResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("无法解析Wiki响应: %w", err)
	}
	if envelope.Code != 200 && envelope.Code != 0 {
		return "", fmt.Errorf("Wiki查询失败: %s", envelope.Message)
	}
	if envelope.Data.Record.Content.ContentURL == "" {
		return "", errIconNotFound
	}
	return envelope.Data.Record.Content.ContentURL, nil
}

// fetchIconFromPage 抓取词条网页，取页面上第一张词条封面图。
func (c *wikiClient) fetchIconFromPage(ctx context.Context, name string) (string, error) {
	pageURL := c.fallbackURL + "?name=" + url.QueryEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("无法构造Wiki页面请求: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("抓取Wiki页面失败: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("无法解析Wiki页面: %w", err)
	}

	iconURL := pickIconFromDocument(doc)
	if iconURL == "" {
		return "", errIconNotFound
	}
	return iconURL, nil
}

// pickIconFromDocument 在词条页面中定位封面图。
// 优先取带entry-cover类名的图片，退而求其次取正文第一张图。
func pickIconFromDocument(doc *goquery.Document) string {
	if src, ok := doc.Find("img.entry-cover").First().Attr("src"); ok && src != "" {
		return src
	}
	if src, ok := doc.Find(".entry-content img").First().Attr("src"); ok && src != "" {
		return src
	}
	return ""
}
