package service

import (
	"testing"

	"github.com/Yvesthior/moncareme-agd/internal/catalog"
)

func TestCatalogService_List(t *testing.T) {
	svc := NewCatalogService(catalog.New(catalog.Saturday))

	items := svc.List()
	if len(items) != 9 {
		t.Fatalf("期望 9 项功课，实际=%d", len(items))
	}
	if items[0].ID != catalog.MorningPrayer || !items[0].EveryDay || items[0].Weekday != nil {
		t.Errorf("首项应为每日功课 morningPrayer，实际=%+v", items[0])
	}
	last := items[len(items)-1]
	if last.ID != catalog.WakeupSpace || last.Weekday == nil || *last.Weekday != catalog.Saturday {
		t.Errorf("wakeupSpace 应仅限周六，实际=%+v", last)
	}
}
