package model

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// ── JSONB 功课完成表 ──

// Exercises 对应 day_entries.exercises（JSONB），功课标识 → 是否完成。
// 允许包含目录之外的键，读写时原样保留。
type Exercises map[string]bool

// Scan 将数据库 JSON 文本解析为 map
func (e *Exercises) Scan(src interface{}) error {
	if src == nil {
		*e = Exercises{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("Exercises.Scan: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*e = Exercises{}
		return nil
	}
	m := make(Exercises)
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("Exercises.Scan: %w", err)
	}
	*e = m
	return nil
}

// Value 将 map 序列化为 JSON 文本，nil 写为 {}
func (e Exercises) Value() (driver.Value, error) {
	if e == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]bool(e))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Clone 深拷贝
func (e Exercises) Clone() Exercises {
	out := make(Exercises, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// BaseModel 通用时间戳字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// DateOnly 截断为 UTC 零点，作为 date 列的统一取值
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
