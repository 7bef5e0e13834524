package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Location 地理解析结果，解析失败时两个字段均为 nil
type Location struct {
	City    *string
	Country *string
}

// Resolver 调用 ip-api.com 风格的服务解析 IP 归属地。
// 地理信息只是尽力而为的补充数据，任何失败都降级为空结果，绝不向调用方报错。
type Resolver struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

func NewResolver(endpoint string, timeout time.Duration) *Resolver {
	return &Resolver{
		endpoint: endpoint,
		timeout:  timeout,
		client:   &http.Client{Timeout: timeout},
	}
}

type lookupResponse struct {
	Status  string `json:"status"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Resolve 解析 IP 的城市和国家。内网及回环地址直接返回哨兵值，不发起网络请求。
func (r *Resolver) Resolve(ctx context.Context, ip string) Location {
	if isLocal(ip) {
		city := "Localhost"
		country := "Local"
		return Location{City: &city, Country: &country}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s?fields=status,city,country", r.endpoint, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Location{}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Location{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}
	}

	var data lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Location{}
	}
	if data.Status != "success" {
		return Location{}
	}

	loc := Location{}
	if data.City != "" {
		loc.City = &data.City
	}
	if data.Country != "" {
		loc.Country = &data.Country
	}
	return loc
}

func isLocal(ip string) bool {
	if ip == "127.0.0.1" || ip == "::1" {
		return true
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return parsed.IsLoopback() || parsed.IsPrivate()
}
