package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WeeklyEntry 周记录表 — 对应 weekly_entries
// 每个用户每周一条，创建时连同 7 条日记录一并写入
type WeeklyEntry struct {
	ID           string    `gorm:"type:uuid;primaryKey"                                                    json:"id"`
	UserID       string    `gorm:"type:varchar(191);not null;uniqueIndex:idx_weekly_entries_user_week,priority:1" json:"user_id"`
	StartDate    time.Time `gorm:"type:date;not null;uniqueIndex:idx_weekly_entries_user_week,priority:2"  json:"start_date"`
	EndDate      time.Time `gorm:"type:date;not null;uniqueIndex:idx_weekly_entries_user_week,priority:3"  json:"end_date"`
	CharityActs  *string   `gorm:"type:text"                                                               json:"charity_acts,omitempty"`
	Comments     *string   `gorm:"type:text"                                                               json:"comments,omitempty"`
	Difficulties *string   `gorm:"type:text"                                                               json:"difficulties,omitempty"`
	Improvements *string   `gorm:"type:text"                                                               json:"improvements,omitempty"`
	Successes    *string   `gorm:"type:text"                                                               json:"successes,omitempty"`
	BaseModel

	// 关联
	Days []DayEntry `gorm:"foreignKey:WeeklyEntryID;references:ID;constraint:OnDelete:CASCADE" json:"days,omitempty"`
}

// TableName 指定表名
func (WeeklyEntry) TableName() string { return "weekly_entries" }

// BeforeCreate 主键由应用侧生成，兼容 PostgreSQL 与测试用 SQLite
func (e *WeeklyEntry) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// ContainsDate 判断日期是否落在 [StartDate, EndDate] 内
func (e *WeeklyEntry) ContainsDate(d time.Time) bool {
	d = DateOnly(d)
	return !d.Before(DateOnly(e.StartDate)) && !d.After(DateOnly(e.EndDate))
}

// Reflection 字段列名（可被 Service 层整体更新的文本列）
const (
	ColCharityActs  = "charity_acts"
	ColComments     = "comments"
	ColDifficulties = "difficulties"
	ColImprovements = "improvements"
	ColSuccesses    = "successes"
)
