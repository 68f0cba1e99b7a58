// Package client 周记录 HTTP API 的 Go 客户端，供 carnet 终端使用。
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/Yvesthior/moncareme-agd/config"
	"github.com/Yvesthior/moncareme-agd/internal/catalog"
)

// ErrRequestFailed 所有非 2xx 响应均包装此错误
var ErrRequestFailed = errors.New("请求失败")

// Error 服务端返回的失败响应
// StatusCode 与 Code 仅用于日志，调用方以 errors.Is(err, ErrRequestFailed) 判断
type Error struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: HTTP %d", ErrRequestFailed, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d (%d) %s", ErrRequestFailed, e.StatusCode, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return ErrRequestFailed }

// ── 数据类型 ──

// DayEntry 日记录
type DayEntry struct {
	ID        string          `json:"id,omitempty"`
	Date      time.Time       `json:"date"`
	Exercises map[string]bool `json:"exercises"`
}

// WeeklyEntry 周记录
type WeeklyEntry struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	StartDate    time.Time  `json:"startDate"`
	EndDate      time.Time  `json:"endDate"`
	CharityActs  string     `json:"charityActs"`
	Comments     string     `json:"comments"`
	Difficulties string     `json:"difficulties"`
	Improvements string     `json:"improvements"`
	Successes    string     `json:"successes"`
	Days         []DayEntry `json:"days"`
}

// Clone 深拷贝
func (e *WeeklyEntry) Clone() *WeeklyEntry {
	cp := *e
	cp.Days = make([]DayEntry, len(e.Days))
	for i, d := range e.Days {
		ex := make(map[string]bool, len(d.Exercises))
		for k, v := range d.Exercises {
			ex[k] = v
		}
		d.Exercises = ex
		cp.Days[i] = d
	}
	return &cp
}

// Exercise 功课目录项
type Exercise struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	EveryDay bool   `json:"everyDay"`
	Weekday  *int   `json:"weekday,omitempty"`
}

// ToCatalog 将服务端目录转换为本地目录
func ToCatalog(items []Exercise) *catalog.Catalog {
	table := make([]catalog.Exercise, 0, len(items))
	for _, it := range items {
		av := catalog.EveryDay()
		if !it.EveryDay {
			day := -1
			if it.Weekday != nil {
				day = *it.Weekday
			}
			av = catalog.OnlyOn(day)
		}
		table = append(table, catalog.Exercise{ID: it.ID, Label: it.Label, Availability: av})
	}
	return catalog.NewFromTable(table)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ── Client ──

// Client 周记录 API 客户端
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client（测试使用）
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New 按配置创建客户端
func New(cfg *config.ClientConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchEntries 查询区间内的周记录
func (c *Client) FetchEntries(ctx context.Context, start, end time.Time) ([]WeeklyEntry, error) {
	q := url.Values{}
	q.Set("startDate", start.Format(time.RFC3339))
	q.Set("endDate", end.Format(time.RFC3339))

	var entries []WeeklyEntry
	if err := c.do(ctx, http.MethodGet, "/api/v1/entries?"+q.Encode(), nil, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []WeeklyEntry{}
	}
	return entries, nil
}

// CreateEntry 创建一周记录
func (c *Client) CreateEntry(ctx context.Context, start, end time.Time) (*WeeklyEntry, error) {
	body := map[string]string{
		"startDate": start.Format(time.RFC3339),
		"endDate":   end.Format(time.RFC3339),
	}
	var entry WeeklyEntry
	if err := c.do(ctx, http.MethodPost, "/api/v1/entries", body, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateEntry 提交完整周记录
func (c *Client) UpdateEntry(ctx context.Context, id string, entry *WeeklyEntry) (*WeeklyEntry, error) {
	var updated WeeklyEntry
	if err := c.do(ctx, http.MethodPut, "/api/v1/entries/"+url.PathEscape(id), entry, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Exercises 获取功课目录
func (c *Client) Exercises(ctx context.Context) ([]Exercise, error) {
	var items []Exercise
	if err := c.do(ctx, http.MethodGet, "/api/v1/exercises", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Logout 注销当前 Token
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var reader io.Reader
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("序列化请求失败: %w", err)
		}
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("%w: 读取响应失败: %v", ErrRequestFailed, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Code = env.Code
			apiErr.Message = env.Message
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("%w: 解析响应失败: %v", ErrRequestFailed, decodeErr)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: 解析数据失败: %v", ErrRequestFailed, err)
	}
	return nil
}
