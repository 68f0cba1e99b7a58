package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Yvesthior/moncareme-agd/internal/dto"
	"github.com/Yvesthior/moncareme-agd/internal/repository"
	pkgerrors "github.com/Yvesthior/moncareme-agd/pkg/errors"
)

// ── 测试辅助 ──

func setupTestEntryService() (EntryService, *mockEntryRepo) {
	entryRepo := newMockEntryRepo()
	repo := &repository.Repository{Entry: entryRepo}
	svc := NewEntryService(repo, zap.NewNop())
	return svc, entryRepo
}

func strPtr(s string) *string { return &s }

func createTestWeek(t *testing.T, svc EntryService, userID string) *dto.WeeklyEntryResponse {
	t.Helper()
	resp, err := svc.CreateWeek(context.Background(), userID, &dto.CreateEntryRequest{
		StartDate: "2024-02-12",
		EndDate:   "2024-02-18",
	})
	if err != nil {
		t.Fatalf("CreateWeek 应成功: %v", err)
	}
	return resp
}

// ── ParseDate 测试 ──

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"date only", "2024-02-12", "2024-02-12T00:00:00Z", false},
		{"rfc3339 utc midnight", "2024-02-12T00:00:00Z", "2024-02-12T00:00:00Z", false},
		{"rfc3339 millis", "2024-02-18T22:59:59.999Z", "2024-02-18T00:00:00Z", false},
		{"offset keeps written date", "2024-02-12T00:30:00+01:00", "2024-02-12T00:00:00Z", false},
		// 浏览器以 UTC 表示的巴黎周一零点，按书写的日历日期记为周日
		{"utc instant keeps utc date", "2024-02-11T23:00:00.000Z", "2024-02-11T00:00:00Z", false},
		{"garbage", "not-a-date", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) err=%v, wantErr=%v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDate) {
					t.Errorf("期望 ErrInvalidDate，实际: %v", err)
				}
				return
			}
			if FormatDate(got) != tt.want {
				t.Errorf("期望 %s，实际 %s", tt.want, FormatDate(got))
			}
		})
	}
}

// ── CreateWeek 测试 ──

func TestEntryService_CreateWeek_Success(t *testing.T) {
	svc, _ := setupTestEntryService()

	resp := createTestWeek(t, svc, "user-1")

	if resp.UserID != "user-1" {
		t.Errorf("期望 UserID=user-1，实际=%s", resp.UserID)
	}
	if resp.StartDate != "2024-02-12T00:00:00Z" || resp.EndDate != "2024-02-18T00:00:00Z" {
		t.Errorf("日期不符: %s ~ %s", resp.StartDate, resp.EndDate)
	}
	if len(resp.Days) != 7 {
		t.Fatalf("期望 7 条日记录，实际=%d", len(resp.Days))
	}
	if resp.Days[0].Date != "2024-02-12T00:00:00Z" || resp.Days[6].Date != "2024-02-18T00:00:00Z" {
		t.Errorf("日记录日期不符: %s ~ %s", resp.Days[0].Date, resp.Days[6].Date)
	}
	for _, d := range resp.Days {
		if d.Exercises == nil || len(d.Exercises) != 0 {
			t.Errorf("新日记录 exercises 应为空对象，实际=%v", d.Exercises)
		}
	}
	if resp.Comments != "" || resp.CharityActs != "" {
		t.Error("新周记录文字字段应为空字符串")
	}
}

func TestEntryService_CreateWeek_Duplicate(t *testing.T) {
	svc, _ := setupTestEntryService()
	createTestWeek(t, svc, "user-1")

	_, err := svc.CreateWeek(context.Background(), "user-1", &dto.CreateEntryRequest{
		StartDate: "2024-02-12",
		EndDate:   "2024-02-18",
	})
	if !errors.Is(err, ErrDuplicateWeek) {
		t.Errorf("期望 ErrDuplicateWeek，实际: %v", err)
	}
}

func TestEntryService_CreateWeek_SameWeekOtherUser(t *testing.T) {
	svc, _ := setupTestEntryService()
	createTestWeek(t, svc, "user-1")

	resp := createTestWeek(t, svc, "user-2")
	if resp.UserID != "user-2" {
		t.Errorf("期望 UserID=user-2，实际=%s", resp.UserID)
	}
}

func TestEntryService_CreateWeek_UniqueIndexRace(t *testing.T) {
	svc, repo := setupTestEntryService()
	// 预检通过但写入时唯一约束冲突
	repo.createErr = pkgerrors.ErrDuplicateRecord

	_, err := svc.CreateWeek(context.Background(), "user-1", &dto.CreateEntryRequest{
		StartDate: "2024-02-12",
		EndDate:   "2024-02-18",
	})
	if !errors.Is(err, ErrDuplicateWeek) {
		t.Errorf("期望 ErrDuplicateWeek，实际: %v", err)
	}
}

func TestEntryService_CreateWeek_InvalidInput(t *testing.T) {
	svc, _ := setupTestEntryService()

	tests := []struct {
		name  string
		req   dto.CreateEntryRequest
		wantE error
	}{
		{"bad start", dto.CreateEntryRequest{StartDate: "xx", EndDate: "2024-02-18"}, ErrInvalidDate},
		{"bad end", dto.CreateEntryRequest{StartDate: "2024-02-12", EndDate: "yy"}, ErrInvalidDate},
		{"end before start", dto.CreateEntryRequest{StartDate: "2024-02-18", EndDate: "2024-02-12"}, ErrInvalidDateRange},
		{"shorter than a week", dto.CreateEntryRequest{StartDate: "2024-02-12", EndDate: "2024-02-14"}, ErrInvalidDateRange},
		{"longer than a week", dto.CreateEntryRequest{StartDate: "2024-02-12", EndDate: "2024-02-19"}, ErrInvalidDateRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateWeek(context.Background(), "user-1", &tt.req)
			if !errors.Is(err, tt.wantE) {
				t.Errorf("期望 %v，实际: %v", tt.wantE, err)
			}
		})
	}
}

func TestEntryService_CreateWeek_RepoError(t *testing.T) {
	svc, repo := setupTestEntryService()
	repo.findErr = errors.New("connection reset")

	_, err := svc.CreateWeek(context.Background(), "user-1", &dto.CreateEntryRequest{
		StartDate: "2024-02-12",
		EndDate:   "2024-02-18",
	})
	if err == nil || errors.Is(err, ErrDuplicateWeek) {
		t.Errorf("期望透传存储错误，实际: %v", err)
	}
}

// ── List 测试 ──

func TestEntryService_List_EmptyIsNotNil(t *testing.T) {
	svc, _ := setupTestEntryService()

	result, err := svc.List(context.Background(), "user-1", &dto.EntryRangeQuery{
		StartDate: "2024-02-12",
		EndDate:   "2024-02-18",
	})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if result == nil || len(result) != 0 {
		t.Errorf("期望空切片，实际=%v", result)
	}
}

func TestEntryService_List_ScopedToCaller(t *testing.T) {
	svc, _ := setupTestEntryService()
	createTestWeek(t, svc, "user-1")
	createTestWeek(t, svc, "user-2")

	result, err := svc.List(context.Background(), "user-1", &dto.EntryRangeQuery{
		StartDate: "2024-02-12T00:00:00.000Z",
		EndDate:   "2024-02-18T22:59:59.999Z",
	})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("期望 1 条，实际=%d", len(result))
	}
	if result[0].UserID != "user-1" {
		t.Errorf("期望仅返回本人记录，实际 UserID=%s", result[0].UserID)
	}
}

func TestEntryService_List_InvertedRangeIsEmpty(t *testing.T) {
	svc, _ := setupTestEntryService()
	createTestWeek(t, svc, "user-1")

	result, err := svc.List(context.Background(), "user-1", &dto.EntryRangeQuery{
		StartDate: "2024-02-18",
		EndDate:   "2024-02-12",
	})
	if err != nil {
		t.Fatalf("倒置区间应返回空列表而非错误: %v", err)
	}
	if result == nil || len(result) != 0 {
		t.Errorf("期望空切片，实际=%v", result)
	}
}

// 创建出的周记录，原样回传全部 7 天必须能保存
func TestEntryService_CreatedWeekDaysAreSavable(t *testing.T) {
	svc, _ := setupTestEntryService()
	created := createTestWeek(t, svc, "user-1")

	if created.EndDate != created.Days[6].Date {
		t.Fatalf("endDate 应与最后一天一致: end=%s last=%s", created.EndDate, created.Days[6].Date)
	}

	days := make([]dto.DayPatch, 0, len(created.Days))
	for _, d := range created.Days {
		days = append(days, dto.DayPatch{ID: d.ID, Date: d.Date, Exercises: map[string]bool{"mass": true}})
	}
	if _, err := svc.UpdateWeek(context.Background(), "user-1", created.ID, &dto.UpdateEntryRequest{Days: days}); err != nil {
		t.Errorf("保存完整一周应成功: %v", err)
	}
}

// ── GetWeek 测试 ──

func TestEntryService_GetWeek(t *testing.T) {
	svc, _ := setupTestEntryService()
	created := createTestWeek(t, svc, "user-1")

	got, err := svc.GetWeek(context.Background(), "user-1", created.ID)
	if err != nil {
		t.Fatalf("GetWeek 应成功: %v", err)
	}
	if got.ID != created.ID || len(got.Days) != 7 {
		t.Errorf("返回记录不符: id=%s days=%d", got.ID, len(got.Days))
	}

	if _, err := svc.GetWeek(context.Background(), "user-2", created.ID); !errors.Is(err, ErrEntryForbidden) {
		t.Errorf("期望 ErrEntryForbidden，实际: %v", err)
	}
	if _, err := svc.GetWeek(context.Background(), "user-1", "missing"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("期望 ErrEntryNotFound，实际: %v", err)
	}
}

// ── UpdateWeek 测试 ──

func TestEntryService_UpdateWeek_TextAndDays(t *testing.T) {
	svc, _ := setupTestEntryService()
	created := createTestWeek(t, svc, "user-1")

	days := make([]dto.DayPatch, 0, len(created.Days))
	for _, d := range created.Days {
		days = append(days, dto.DayPatch{ID: d.ID, Date: d.Date, Exercises: d.Exercises})
	}
	days[1].Exercises = map[string]bool{"tuesdayPrayer": true, "mass": true}

	got, err := svc.UpdateWeek(context.Background(), "user-1", created.ID, &dto.UpdateEntryRequest{
		Comments: strPtr("Bonne semaine"),
		Days:     days,
	})
	if err != nil {
		t.Fatalf("UpdateWeek 应成功: %v", err)
	}
	if got.Comments != "Bonne semaine" {
		t.Errorf("期望 Comments 已更新，实际=%q", got.Comments)
	}
	if got.Difficulties != "" {
		t.Errorf("未提交字段应保持不变，实际=%q", got.Difficulties)
	}
	if !got.Days[1].Exercises["tuesdayPrayer"] || !got.Days[1].Exercises["mass"] {
		t.Errorf("周二勾选未保存: %v", got.Days[1].Exercises)
	}
	if got.Days[1].ID != created.Days[1].ID {
		t.Errorf("日记录 ID 应保持不变: %s -> %s", created.Days[1].ID, got.Days[1].ID)
	}
	if len(got.Days) != 7 {
		t.Errorf("期望 7 条日记录，实际=%d", len(got.Days))
	}
}

func TestEntryService_UpdateWeek_NilDaysUntouched(t *testing.T) {
	svc, _ := setupTestEntryService()
	created := createTestWeek(t, svc, "user-1")

	_, err := svc.UpdateWeek(context.Background(), "user-1", created.ID, &dto.UpdateEntryRequest{
		Days: []dto.DayPatch{{Date: "2024-02-14", Exercises: map[string]bool{"rosary": true}}},
	})
	if err != nil {
		t.Fatalf("UpdateWeek 应成功: %v", err)
	}

	got, err := svc.UpdateWeek(context.Background(), "user-1", created.ID, &dto.UpdateEntryRequest{
		Successes: strPtr("Jeûne tenu"),
	})
	if err != nil {
		t.Fatalf("UpdateWeek 应成功: %v", err)
	}
	if !got.Days[2].Exercises["rosary"] {
		t.Error("未提交 days 时日记录应保持不变")
	}
	if got.Successes != "Jeûne tenu" {
		t.Errorf("期望 Successes 已更新，实际=%q", got.Successes)
	}
}

func TestEntryService_UpdateWeek_DuplicateDatesLastWins(t *testing.T) {
	svc, _ := setupTestEntryService()
	created := createTestWeek(t, svc, "user-1")

	got, err := svc.UpdateWeek(context.Background(), "user-1", created.ID, &dto.UpdateEntryRequest{
		Days: []dto.DayPatch{
			{Date: "2024-02-12", Exercises: map[string]bool{"mass": true}},
			{Date: "2024-02-12T00:00:00Z", Exercises: map[string]bool{"lectio": true}},
		},
	})
	if err != nil {
		t.Fatalf("UpdateWeek 应成功: %v", err)
	}
	if got.Days[0].Exercises["mass"] || !got.Days[0].Exercises["lectio"] {
		t.Errorf("同日期应以最后一次为准，实际=%v", got.Days[0].Exercises)
	}
}

func TestEntryService_UpdateWeek_DayOutOfRange(t *testing.T) {
	svc, repo := setupTestEntryService()
	created := createTestWeek(t, svc, "user-1")

	_, err := svc.UpdateWeek(context.Background(), "user-1", created.ID, &dto.UpdateEntryRequest{
		Comments: strPtr("ignored"),
		Days:     []dto.DayPatch{{Date: "2024-02-19", Exercises: map[string]bool{"mass": true}}},
	})
	if !errors.Is(err, ErrDayOutOfRange) {
		t.Errorf("期望 ErrDayOutOfRange，实际: %v", err)
	}
	if repo.updateCalls != 0 {
		t.Error("校验失败时不应写入")
	}
}

func TestEntryService_UpdateWeek_InvalidDayDate(t *testing.T) {
	svc, _ := setupTestEntryService()
	created := createTestWeek(t, svc, "user-1")

	_, err := svc.UpdateWeek(context.Background(), "user-1", created.ID, &dto.UpdateEntryRequest{
		Days: []dto.DayPatch{{Date: "lundi"}},
	})
	if !errors.Is(err, ErrInvalidDate) {
		t.Errorf("期望 ErrInvalidDate，实际: %v", err)
	}
}

func TestEntryService_UpdateWeek_ForbiddenBeforeValidation(t *testing.T) {
	svc, repo := setupTestEntryService()
	created := createTestWeek(t, svc, "user-1")

	_, err := svc.UpdateWeek(context.Background(), "intruder", created.ID, &dto.UpdateEntryRequest{
		Days: []dto.DayPatch{{Date: "garbage"}},
	})
	if !errors.Is(err, ErrEntryForbidden) {
		t.Errorf("期望 ErrEntryForbidden，实际: %v", err)
	}
	if repo.updateCalls != 0 {
		t.Error("越权请求不应写入")
	}
}

func TestEntryService_UpdateWeek_NotFound(t *testing.T) {
	svc, _ := setupTestEntryService()

	_, err := svc.UpdateWeek(context.Background(), "user-1", "missing", &dto.UpdateEntryRequest{})
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("期望 ErrEntryNotFound，实际: %v", err)
	}
}

func TestEntryService_UpdateWeek_EmptyPatchNoWrite(t *testing.T) {
	svc, repo := setupTestEntryService()
	created := createTestWeek(t, svc, "user-1")

	got, err := svc.UpdateWeek(context.Background(), "user-1", created.ID, &dto.UpdateEntryRequest{})
	if err != nil {
		t.Fatalf("UpdateWeek 应成功: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("期望返回原记录，实际 id=%s", got.ID)
	}
	if repo.updateCalls != 0 {
		t.Error("空补丁不应写入")
	}
}

func TestEntryService_UpdateWeek_RepoError(t *testing.T) {
	svc, repo := setupTestEntryService()
	created := createTestWeek(t, svc, "user-1")
	repo.updateErr = errors.New("deadlock")

	_, err := svc.UpdateWeek(context.Background(), "user-1", created.ID, &dto.UpdateEntryRequest{
		Comments: strPtr("x"),
	})
	if err == nil {
		t.Fatal("期望返回存储错误")
	}
}
