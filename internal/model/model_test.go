package model

import (
	"testing"
	"time"
)

func TestExercises_ScanValue(t *testing.T) {
	var e Exercises
	if err := e.Scan([]byte(`{"mass":true,"legacy":false}`)); err != nil {
		t.Fatalf("Scan 失败: %v", err)
	}
	if !e["mass"] || e["legacy"] {
		t.Errorf("解析结果不正确: %v", e)
	}
	if _, ok := e["legacy"]; !ok {
		t.Error("目录外的键应被保留")
	}

	if err := e.Scan(nil); err != nil || len(e) != 0 {
		t.Errorf("NULL 应解析为空 map，实际=%v err=%v", e, err)
	}

	if err := e.Scan(42); err == nil {
		t.Error("不支持的类型应返回错误")
	}

	v, err := Exercises(nil).Value()
	if err != nil || v != "{}" {
		t.Errorf("nil 应写为 {}，实际=%v err=%v", v, err)
	}
}

func TestBuildWeekDays(t *testing.T) {
	start := time.Date(2024, 2, 12, 15, 30, 0, 0, time.UTC)

	days := BuildWeekDays(start)
	if len(days) != 7 {
		t.Fatalf("期望 7 天，实际=%d", len(days))
	}
	if !days[0].Date.Equal(time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("首日应为 2024-02-12，实际=%v", days[0].Date)
	}
	if !days[6].Date.Equal(time.Date(2024, 2, 18, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("末日应为 2024-02-18，实际=%v", days[6].Date)
	}
	for i, d := range days {
		if d.Exercises == nil || len(d.Exercises) != 0 {
			t.Errorf("day[%d] 应为空功课表", i)
		}
	}
}

func TestWeeklyEntry_ContainsDate(t *testing.T) {
	e := &WeeklyEntry{
		StartDate: time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 2, 18, 0, 0, 0, 0, time.UTC),
	}

	if !e.ContainsDate(time.Date(2024, 2, 18, 23, 0, 0, 0, time.UTC)) {
		t.Error("末日应包含在范围内")
	}
	if e.ContainsDate(time.Date(2024, 2, 19, 0, 0, 0, 0, time.UTC)) {
		t.Error("范围外日期不应包含")
	}
}
