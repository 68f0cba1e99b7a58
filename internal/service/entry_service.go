package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Yvesthior/moncareme-agd/internal/catalog"
	"github.com/Yvesthior/moncareme-agd/internal/dto"
	"github.com/Yvesthior/moncareme-agd/internal/model"
	"github.com/Yvesthior/moncareme-agd/internal/repository"
	pkgerrors "github.com/Yvesthior/moncareme-agd/pkg/errors"
)

// ── 周记录模块业务错误 ──

var (
	ErrEntryNotFound    = errors.New("周记录不存在")
	ErrEntryForbidden   = errors.New("无权访问该周记录")
	ErrDuplicateWeek    = errors.New("该周记录已存在")
	ErrInvalidDate      = errors.New("日期格式无效")
	ErrInvalidDateRange = errors.New("日期区间必须为完整一周")
	ErrDayOutOfRange    = errors.New("日记录日期超出本周范围")
)

// DateTimeLayout 周记录日期的输出格式（UTC 零点）
const DateTimeLayout = "2006-01-02T15:04:05Z"

// ParseDate 解析 YYYY-MM-DD 或 RFC3339 日期，保留书写时的日历日期并截断为 UTC 零点
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return model.DateOnly(t), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return model.DateOnly(t), nil
}

// FormatDate 输出 date 列取值
func FormatDate(t time.Time) string {
	return model.DateOnly(t).Format(DateTimeLayout)
}

// EntryService 周记录业务接口
// 所有操作以 callerID 为作用域，不会读写其他用户的记录
type EntryService interface {
	List(ctx context.Context, callerID string, req *dto.EntryRangeQuery) ([]dto.WeeklyEntryResponse, error)
	CreateWeek(ctx context.Context, callerID string, req *dto.CreateEntryRequest) (*dto.WeeklyEntryResponse, error)
	GetWeek(ctx context.Context, callerID, id string) (*dto.WeeklyEntryResponse, error)
	UpdateWeek(ctx context.Context, callerID, id string, req *dto.UpdateEntryRequest) (*dto.WeeklyEntryResponse, error)
}

type entryService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEntryService 创建 EntryService 实例
func NewEntryService(repo *repository.Repository, logger *zap.Logger) EntryService {
	return &entryService{repo: repo, logger: logger}
}

func parseRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := ParseDate(startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseDate(endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// parseWeek 创建时区间必须恰好覆盖 7 天，与自动生成的日记录一致
func parseWeek(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, end, err := parseRange(startRaw, endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !end.Equal(start.AddDate(0, 0, catalog.DaysPerWeek-1)) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return start, end, nil
}

// loadOwned 按 ID 加载周记录并校验归属
func loadOwned(ctx context.Context, repo *repository.Repository, logger *zap.Logger, callerID, id string) (*model.WeeklyEntry, error) {
	entry, err := repo.Entry.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		logger.Error("查询周记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if entry.UserID != callerID {
		logger.Warn("越权访问周记录",
			zap.String("id", id),
			zap.String("caller_id", callerID),
		)
		return nil, ErrEntryForbidden
	}
	return entry, nil
}

// ────────────────────── List ──────────────────────

func (s *entryService) List(ctx context.Context, callerID string, req *dto.EntryRangeQuery) ([]dto.WeeklyEntryResponse, error) {
	// 倒置区间不报错，按条件查询得到空列表
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.Entry.FindEntries(ctx, callerID, start, end)
	if err != nil {
		s.logger.Error("查询周记录列表失败", zap.String("user_id", callerID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.WeeklyEntryResponse, 0, len(entries))
	for i := range entries {
		result = append(result, *toEntryResponse(&entries[i]))
	}
	return result, nil
}

// ────────────────────── CreateWeek ──────────────────────

func (s *entryService) CreateWeek(ctx context.Context, callerID string, req *dto.CreateEntryRequest) (*dto.WeeklyEntryResponse, error) {
	start, end, err := parseWeek(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	// 预检：区间内已有记录即视为重复；并发创建由唯一索引兜底
	_, err = s.repo.Entry.FindEntry(ctx, callerID, start, end)
	if err == nil {
		return nil, ErrDuplicateWeek
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询周记录失败", zap.String("user_id", callerID), zap.Error(err))
		return nil, err
	}

	entry := &model.WeeklyEntry{
		UserID:    callerID,
		StartDate: start,
		EndDate:   end,
		Days:      model.BuildWeekDays(start),
	}
	if err := s.repo.Entry.CreateWithDays(ctx, entry); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateRecord) {
			return nil, ErrDuplicateWeek
		}
		s.logger.Error("创建周记录失败", zap.String("user_id", callerID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("周记录已创建",
		zap.String("id", entry.ID),
		zap.String("user_id", callerID),
		zap.Time("start_date", start),
	)
	return toEntryResponse(entry), nil
}

// ────────────────────── GetWeek ──────────────────────

func (s *entryService) GetWeek(ctx context.Context, callerID, id string) (*dto.WeeklyEntryResponse, error) {
	entry, err := loadOwned(ctx, s.repo, s.logger, callerID, id)
	if err != nil {
		return nil, err
	}
	return toEntryResponse(entry), nil
}

// ────────────────────── UpdateWeek ──────────────────────

func (s *entryService) UpdateWeek(ctx context.Context, callerID, id string, req *dto.UpdateEntryRequest) (*dto.WeeklyEntryResponse, error) {
	entry, err := loadOwned(ctx, s.repo, s.logger, callerID, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	setText := func(col string, v *string) {
		if v != nil {
			fields[col] = *v
		}
	}
	setText(model.ColCharityActs, req.CharityActs)
	setText(model.ColComments, req.Comments)
	setText(model.ColDifficulties, req.Difficulties)
	setText(model.ColImprovements, req.Improvements)
	setText(model.ColSuccesses, req.Successes)

	days, err := collectDays(entry, req.Days)
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 && len(days) == 0 {
		return toEntryResponse(entry), nil
	}

	if err := s.repo.Entry.UpdateFields(ctx, id, fields, days); err != nil {
		s.logger.Error("保存周记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.Entry.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("重新加载周记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toEntryResponse(updated), nil
}

// collectDays 校验并按日期去重（同一日期以最后一次出现为准）
func collectDays(entry *model.WeeklyEntry, patches []dto.DayPatch) ([]model.DayEntry, error) {
	if len(patches) == 0 {
		return nil, nil
	}

	byDate := make(map[time.Time]int, len(patches))
	days := make([]model.DayEntry, 0, len(patches))
	for _, p := range patches {
		date, err := ParseDate(p.Date)
		if err != nil {
			return nil, err
		}
		if !entry.ContainsDate(date) {
			return nil, ErrDayOutOfRange
		}
		exercises := model.Exercises(p.Exercises).Clone()
		if i, ok := byDate[date]; ok {
			days[i].Exercises = exercises
			continue
		}
		byDate[date] = len(days)
		days = append(days, model.DayEntry{Date: date, Exercises: exercises})
	}
	return days, nil
}

// ── 辅助函数 ──

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toEntryResponse(e *model.WeeklyEntry) *dto.WeeklyEntryResponse {
	days := make([]dto.DayEntryResponse, 0, len(e.Days))
	for _, d := range e.Days {
		exercises := d.Exercises.Clone()
		days = append(days, dto.DayEntryResponse{
			ID:        d.ID,
			Date:      FormatDate(d.Date),
			Exercises: exercises,
		})
	}
	return &dto.WeeklyEntryResponse{
		ID:           e.ID,
		UserID:       e.UserID,
		StartDate:    FormatDate(e.StartDate),
		EndDate:      FormatDate(e.EndDate),
		CharityActs:  deref(e.CharityActs),
		Comments:     deref(e.Comments),
		Difficulties: deref(e.Difficulties),
		Improvements: deref(e.Improvements),
		Successes:    deref(e.Successes),
		Days:         days,
	}
}
