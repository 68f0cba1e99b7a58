// Package tracker 周记录编辑草稿：勾选、反思文本与保存状态。
// 草稿只在内存中修改，保存时整体提交，成功后由调用方重新加载。
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Yvesthior/moncareme-agd/internal/catalog"
	"github.com/Yvesthior/moncareme-agd/pkg/client"
)

var (
	ErrSaveInFlight        = errors.New("保存进行中")
	ErrExerciseUnavailable = errors.New("该功课当天不可勾选")
	ErrDayOutOfRange       = errors.New("星期索引超出范围")
	ErrUnknownField        = errors.New("未知的文本字段")
)

// State 草稿状态
type State int

const (
	Viewing State = iota
	Saving
)

// ViewMode 显示模式
type ViewMode int

const (
	DailyView ViewMode = iota
	WeeklyView
)

// Field 反思文本字段
type Field string

const (
	FieldCharityActs  Field = "charityActs"
	FieldComments     Field = "comments"
	FieldDifficulties Field = "difficulties"
	FieldImprovements Field = "improvements"
	FieldSuccesses    Field = "successes"
)

// Fields 按显示顺序排列的文本字段
var Fields = []Field{FieldCharityActs, FieldComments, FieldDifficulties, FieldImprovements, FieldSuccesses}

// FieldLabels 文本字段显示名称
var FieldLabels = map[Field]string{
	FieldCharityActs:  "Actes de Charité",
	FieldComments:     "Commentaires",
	FieldDifficulties: "Difficultés",
	FieldImprovements: "Points d'amélioration",
	FieldSuccesses:    "Succès",
}

// Saver 提交整份周记录
type Saver interface {
	UpdateEntry(ctx context.Context, id string, entry *client.WeeklyEntry) (*client.WeeklyEntry, error)
}

// Cell 网格中的一格
type Cell struct {
	Exercise  catalog.Exercise
	Day       int
	Checked   bool
	Available bool
}

// Draft 一周记录的本地草稿，可被 UI 协程与保存协程并发访问
type Draft struct {
	mu          sync.Mutex
	cat         *catalog.Catalog
	entry       *client.WeeklyEntry
	state       State
	mode        ViewMode
	selectedDay int
}

// NewDraft 复制 entry 作为草稿；缺失的日记录按 startDate 依次补齐
func NewDraft(entry *client.WeeklyEntry, cat *catalog.Catalog, today time.Time) *Draft {
	e := entry.Clone()
	for i := len(e.Days); i < catalog.DaysPerWeek; i++ {
		e.Days = append(e.Days, client.DayEntry{Date: e.StartDate.AddDate(0, 0, i)})
	}
	for i := range e.Days {
		if e.Days[i].Exercises == nil {
			e.Days[i].Exercises = make(map[string]bool)
		}
	}
	return &Draft{
		cat:         cat,
		entry:       e,
		selectedDay: catalog.WeekdayIndex(today),
	}
}

// ── 编辑 ──

// Toggle 勾选或取消某天的功课
func (d *Draft) Toggle(day int, exerciseID string, checked bool) error {
	if day < 0 || day >= catalog.DaysPerWeek {
		return fmt.Errorf("%w: %d", ErrDayOutOfRange, day)
	}
	if !d.cat.IsAvailable(exerciseID, day) {
		return ErrExerciseUnavailable
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.entry.Days[day].Exercises[exerciseID] = checked
	return nil
}

// Checked 读取存储值，不受可用性影响
func (d *Draft) Checked(day int, exerciseID string) bool {
	if day < 0 || day >= catalog.DaysPerWeek {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.entry.Days[day].Exercises[exerciseID]
}

// SetText 修改反思文本
func (d *Draft) SetText(field Field, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.textField(field)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

// Text 读取反思文本
func (d *Draft) Text(field Field) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.textField(field)
	if err != nil {
		return ""
	}
	return *p
}

func (d *Draft) textField(field Field) (*string, error) {
	switch field {
	case FieldCharityActs:
		return &d.entry.CharityActs, nil
	case FieldComments:
		return &d.entry.Comments, nil
	case FieldDifficulties:
		return &d.entry.Difficulties, nil
	case FieldImprovements:
		return &d.entry.Improvements, nil
	case FieldSuccesses:
		return &d.entry.Successes, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
}

// ── 保存 ──

// State 当前状态
func (d *Draft) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Save 提交完整草稿；同一草稿同时只允许一个保存
// 失败时草稿保持不变，可直接重试
func (d *Draft) Save(ctx context.Context, saver Saver) error {
	d.mu.Lock()
	if d.state == Saving {
		d.mu.Unlock()
		return ErrSaveInFlight
	}
	d.state = Saving
	snapshot := d.entry.Clone()
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.state = Viewing
		d.mu.Unlock()
	}()

	if _, err := saver.UpdateEntry(ctx, snapshot.ID, snapshot); err != nil {
		return fmt.Errorf("保存周记录失败: %w", err)
	}
	return nil
}

// Snapshot 草稿副本
func (d *Draft) Snapshot() *client.WeeklyEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.entry.Clone()
}

// ── 视图 ──

// Mode 当前显示模式
func (d *Draft) Mode() ViewMode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// ToggleView 在日视图与周视图之间切换
func (d *Draft) ToggleView() ViewMode {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mode == DailyView {
		d.mode = WeeklyView
	} else {
		d.mode = DailyView
	}
	return d.mode
}

// SelectedDay 日视图当前选中的星期
func (d *Draft) SelectedDay() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selectedDay
}

// SelectDay 选中星期，越界时返回 ErrDayOutOfRange
func (d *Draft) SelectDay(day int) error {
	if day < 0 || day >= catalog.DaysPerWeek {
		return fmt.Errorf("%w: %d", ErrDayOutOfRange, day)
	}
	d.mu.Lock()
	d.selectedDay = day
	d.mu.Unlock()
	return nil
}

// DayRows 日视图：选中日的全部功课
func (d *Draft) DayRows() []Cell {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.row(d.selectedDay)
}

// Grid 周视图：每项功课一行，每行 7 格
func (d *Draft) Grid() [][]Cell {
	d.mu.Lock()
	defer d.mu.Unlock()

	exercises := d.cat.All()
	grid := make([][]Cell, len(exercises))
	for i, ex := range exercises {
		grid[i] = make([]Cell, catalog.DaysPerWeek)
		for day := 0; day < catalog.DaysPerWeek; day++ {
			grid[i][day] = d.cell(ex, day)
		}
	}
	return grid
}

func (d *Draft) row(day int) []Cell {
	exercises := d.cat.All()
	cells := make([]Cell, len(exercises))
	for i, ex := range exercises {
		cells[i] = d.cell(ex, day)
	}
	return cells
}

func (d *Draft) cell(ex catalog.Exercise, day int) Cell {
	return Cell{
		Exercise:  ex,
		Day:       day,
		Checked:   d.entry.Days[day].Exercises[ex.ID],
		Available: ex.IsAvailable(day),
	}
}
