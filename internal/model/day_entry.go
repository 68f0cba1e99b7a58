package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DayEntry 日记录表 — 对应 day_entries
// (weekly_entry_id, date) 唯一，保存时以此为 upsert 键
type DayEntry struct {
	ID            string    `gorm:"type:uuid;primaryKey"                                                   json:"id"`
	WeeklyEntryID string    `gorm:"type:uuid;not null;uniqueIndex:idx_day_entries_entry_date,priority:1" json:"weekly_entry_id"`
	Date          time.Time `gorm:"type:date;not null;uniqueIndex:idx_day_entries_entry_date,priority:2" json:"date"`
	Exercises     Exercises `gorm:"type:jsonb;not null"                                                    json:"exercises"`
	BaseModel
}

// TableName 指定表名
func (DayEntry) TableName() string { return "day_entries" }

// BeforeCreate 主键由应用侧生成
func (d *DayEntry) BeforeCreate(_ *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// BuildWeekDays 生成一周 7 条空日记录：date = start + i 天
func BuildWeekDays(start time.Time) []DayEntry {
	start = DateOnly(start)
	days := make([]DayEntry, 0, 7)
	for i := 0; i < 7; i++ {
		days = append(days, DayEntry{
			Date:      start.AddDate(0, 0, i),
			Exercises: Exercises{},
		})
	}
	return days
}
