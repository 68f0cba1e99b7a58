// Package dashboard 周选择与周记录加载
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Yvesthior/moncareme-agd/internal/catalog"
	"github.com/Yvesthior/moncareme-agd/pkg/client"
)

// EntryAPI 仪表盘所需的远端操作
type EntryAPI interface {
	FetchEntries(ctx context.Context, start, end time.Time) ([]client.WeeklyEntry, error)
	CreateEntry(ctx context.Context, start, end time.Time) (*client.WeeklyEntry, error)
}

var monthsFR = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// WeekRange 返回 date 所在周的周一与周日（仅日期，UTC 零点）
func WeekRange(date time.Time) (start, end time.Time) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	start = day.AddDate(0, 0, -catalog.WeekdayIndex(day))
	return start, start.AddDate(0, 0, catalog.DaysPerWeek-1)
}

// Dashboard 当前周与已加载的记录，不跨周缓存
type Dashboard struct {
	mu      sync.Mutex
	api     EntryAPI
	current time.Time
	entries []client.WeeklyEntry
	loaded  bool
}

// New 以 now 所在周为当前周
func New(api EntryAPI, now time.Time) *Dashboard {
	return &Dashboard{api: api, current: now}
}

// Range 当前周范围
func (d *Dashboard) Range() (time.Time, time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return WeekRange(d.current)
}

// RangeLabel 例如 "12 février au 18 février 2024"
func (d *Dashboard) RangeLabel() string {
	start, end := d.Range()
	return fmt.Sprintf("%d %s au %d %s %d",
		start.Day(), monthsFR[start.Month()-1],
		end.Day(), monthsFR[end.Month()-1], end.Year())
}

// Load 重新拉取当前周记录；失败时清空已加载内容
func (d *Dashboard) Load(ctx context.Context) error {
	start, end := d.Range()
	entries, err := d.api.FetchEntries(ctx, start, end)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.entries = nil
		d.loaded = false
		return fmt.Errorf("加载周记录失败: %w", err)
	}
	d.entries = entries
	d.loaded = true
	return nil
}

// PrevWeek 上一周并重新加载
func (d *Dashboard) PrevWeek(ctx context.Context) error {
	return d.shift(ctx, -catalog.DaysPerWeek)
}

// NextWeek 下一周并重新加载
func (d *Dashboard) NextWeek(ctx context.Context) error {
	return d.shift(ctx, catalog.DaysPerWeek)
}

func (d *Dashboard) shift(ctx context.Context, days int) error {
	d.mu.Lock()
	d.current = d.current.AddDate(0, 0, days)
	d.mu.Unlock()
	return d.Load(ctx)
}

// CreateWeek 创建当前周记录后重新加载
func (d *Dashboard) CreateWeek(ctx context.Context) error {
	start, end := d.Range()
	if _, err := d.api.CreateEntry(ctx, start, end); err != nil {
		return fmt.Errorf("创建周记录失败: %w", err)
	}
	return d.Load(ctx)
}

// Entry 当前周的第一条记录，没有时返回 nil
func (d *Dashboard) Entry() *client.WeeklyEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.entries) == 0 {
		return nil
	}
	return d.entries[0].Clone()
}

// CanCreate 已加载且当前周无记录
func (d *Dashboard) CanCreate() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded && len(d.entries) == 0
}
