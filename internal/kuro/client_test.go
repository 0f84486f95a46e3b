package kuro

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testQuery() RecordQuery {
	return RecordQuery{
		PlayerID: "100000001",
		RecordID: "record-token",
	}
}

func TestFetchPoolSuccess(t *testing.T) {
	var received gachaQueryRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(`{"code":0,"message":"success","data":[{"name":"散华"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, 5*time.Second)
	data, err := client.FetchPool(context.Background(), testQuery(), 3)
	require.NoError(t, err)
	require.JSONEq(t, `[{"name":"散华"}]`, string(data))

	// 缺省参数被补齐，卡池索引同时填入两个字段
	require.Equal(t, CNServerID, received.ServerID)
	require.Equal(t, DefaultLanguageCode, received.LanguageCode)
	require.Equal(t, 3, received.CardPoolID)
	require.Equal(t, 3, received.CardPoolType)
}

func TestFetchPoolExpiredLinkHint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":-1,"message":"请求游戏获取日志异常"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, 5*time.Second)
	_, err := client.FetchPool(context.Background(), testQuery(), 1)

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	require.Contains(t, upstreamErr.Message, "抽卡链接已失效")
}

func TestFetchPoolNullData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":0,"message":"success","data":null}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, 5*time.Second)
	_, err := client.FetchPool(context.Background(), testQuery(), 1)

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	require.Contains(t, upstreamErr.Message, "对外展示开关")
}

func TestFetchPoolNetworkError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1/gacha", "http://127.0.0.1:1/gacha", time.Second)
	_, err := client.FetchPool(context.Background(), testQuery(), 1)

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	require.Contains(t, upstreamErr.Message, "网络问题")
}

func TestFetchAllPoolsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gachaQueryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		fmt.Fprintf(w, `{"code":0,"data":[{"pool":%d}]}`, req.CardPoolID)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, 5*time.Second)
	pools, err := client.FetchAllPools(context.Background(), testQuery())
	require.NoError(t, err)
	require.Len(t, pools, PoolFetchCount)

	// 结果按卡池顺序排列
	for i, payload := range pools {
		require.JSONEq(t, fmt.Sprintf(`[{"pool":%d}]`, i+1), string(payload))
	}
}

func TestFetchAllPoolsAllOrNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gachaQueryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.CardPoolID == 4 {
			w.Write([]byte(`{"code":-1,"message":"系统繁忙"}`))
			return
		}
		w.Write([]byte(`{"code":0,"data":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, 5*time.Second)
	pools, err := client.FetchAllPools(context.Background(), testQuery())

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	require.Contains(t, upstreamErr.Message, "系统繁忙")
	require.Nil(t, pools)
}
