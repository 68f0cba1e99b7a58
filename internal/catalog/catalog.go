// Package catalog 定义灵修功课目录：功课标识、显示名称与可勾选规则。
// 目录为静态数据，不入库；服务端与终端客户端共用同一张表。
package catalog

import "time"

// 星期索引：0=周一 … 6=周日（与周记录 days 数组下标一致）
const (
	Monday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysPerWeek 每周天数
const DaysPerWeek = 7

// 功课标识
const (
	MorningPrayer = "morningPrayer"
	Mass          = "mass"
	Rosary        = "rosary"
	Lectio        = "lectio"
	Fasting       = "fasting"
	EveningPrayer = "eveningPrayer"
	TuesdayPrayer = "tuesdayPrayer"
	FridayPrayer  = "fridayPrayer"
	WakeupSpace   = "wakeupSpace"
)

// DayLabels 星期显示名称
var DayLabels = [DaysPerWeek]string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi", "Dimanche"}

// Availability 可勾选规则：每天可用，或仅限某个星期索引
type Availability struct {
	EveryDay bool `json:"everyDay"`
	Weekday  int  `json:"weekday"`
}

// EveryDay 每天可用
func EveryDay() Availability { return Availability{EveryDay: true} }

// OnlyOn 仅限指定星期
func OnlyOn(day int) Availability { return Availability{Weekday: day} }

// Allows 判断规则是否允许在 day 勾选
func (a Availability) Allows(day int) bool {
	if day < 0 || day >= DaysPerWeek {
		return false
	}
	if a.EveryDay {
		return true
	}
	return a.Weekday == day
}

// Exercise 目录中的一项功课
type Exercise struct {
	ID           string       `json:"id"`
	Label        string       `json:"label"`
	Availability Availability `json:"availability"`
}

// IsAvailable 功课在 day 是否可勾选
func (e Exercise) IsAvailable(day int) bool {
	return e.Availability.Allows(day)
}

// Catalog 有序功课目录
type Catalog struct {
	exercises []Exercise
	index     map[string]int
}

// New 创建默认目录；wakeupSpaceDay 来自配置 catalog.wakeup_space_day
func New(wakeupSpaceDay int) *Catalog {
	return NewFromTable([]Exercise{
		{ID: MorningPrayer, Label: "Prière Matinale", Availability: EveryDay()},
		{ID: Mass, Label: "Messe", Availability: EveryDay()},
		{ID: Rosary, Label: "Chapelet", Availability: EveryDay()},
		{ID: Lectio, Label: "Lectio", Availability: EveryDay()},
		{ID: Fasting, Label: "Jeûne", Availability: EveryDay()},
		{ID: EveningPrayer, Label: "Prière du Soir", Availability: EveryDay()},
		{ID: TuesdayPrayer, Label: "Prière Mardi 21h45", Availability: OnlyOn(Tuesday)},
		{ID: FridayPrayer, Label: "Prière Vendredi 21h45", Availability: OnlyOn(Friday)},
		{ID: WakeupSpace, Label: "Espace du Réveil", Availability: OnlyOn(wakeupSpaceDay)},
	})
}

// NewFromTable 由任意功课表创建目录，重复 ID 以首次出现为准
func NewFromTable(exercises []Exercise) *Catalog {
	c := &Catalog{
		exercises: make([]Exercise, 0, len(exercises)),
		index:     make(map[string]int, len(exercises)),
	}
	for _, e := range exercises {
		if _, dup := c.index[e.ID]; dup {
			continue
		}
		c.index[e.ID] = len(c.exercises)
		c.exercises = append(c.exercises, e)
	}
	return c
}

// All 按显示顺序返回全部功课（副本）
func (c *Catalog) All() []Exercise {
	out := make([]Exercise, len(c.exercises))
	copy(out, c.exercises)
	return out
}

// Len 功课数量
func (c *Catalog) Len() int { return len(c.exercises) }

// Lookup 按 ID 查找功课
func (c *Catalog) Lookup(id string) (Exercise, bool) {
	i, ok := c.index[id]
	if !ok {
		return Exercise{}, false
	}
	return c.exercises[i], true
}

// IsAvailable 功课 id 在 day 是否可勾选；目录外的 ID 一律不可勾选
func (c *Catalog) IsAvailable(id string, day int) bool {
	e, ok := c.Lookup(id)
	if !ok {
		return false
	}
	return e.IsAvailable(day)
}

// WeekdayIndex 日期对应的星期索引（0=周一 … 6=周日）
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % DaysPerWeek
}
