package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Yvesthior/moncareme-agd/internal/model"
	pkgerrors "github.com/Yvesthior/moncareme-agd/pkg/errors"
)

// EntryRepository 周记录数据访问接口
// 范围过滤统一为 start_date >= start AND end_date <= end
type EntryRepository interface {
	FindEntry(ctx context.Context, userID string, start, end time.Time) (*model.WeeklyEntry, error)
	FindEntries(ctx context.Context, userID string, start, end time.Time) ([]model.WeeklyEntry, error)
	GetByID(ctx context.Context, id string) (*model.WeeklyEntry, error)
	// CreateWithDays 在事务中写入周记录及其日记录；唯一约束冲突返回 pkgerrors.ErrDuplicateRecord
	CreateWithDays(ctx context.Context, entry *model.WeeklyEntry) error
	// UpdateFields 在事务中更新文本列，并按 (weekly_entry_id, date) upsert 日记录
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}, days []model.DayEntry) error
}

type entryRepo struct {
	db *gorm.DB
}

// NewEntryRepo 创建 EntryRepository 实例
func NewEntryRepo(db *gorm.DB) EntryRepository {
	return &entryRepo{db: db}
}

func orderDays(db *gorm.DB) *gorm.DB {
	return db.Order("date ASC")
}

func (r *entryRepo) FindEntry(ctx context.Context, userID string, start, end time.Time) (*model.WeeklyEntry, error) {
	var entry model.WeeklyEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND start_date >= ? AND end_date <= ?", userID, model.DateOnly(start), model.DateOnly(end)).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *entryRepo) FindEntries(ctx context.Context, userID string, start, end time.Time) ([]model.WeeklyEntry, error) {
	var entries []model.WeeklyEntry
	err := r.db.WithContext(ctx).
		Preload("Days", orderDays).
		Where("user_id = ? AND start_date >= ? AND end_date <= ?", userID, model.DateOnly(start), model.DateOnly(end)).
		Order("start_date ASC").
		Find(&entries).Error
	return entries, err
}

func (r *entryRepo) GetByID(ctx context.Context, id string) (*model.WeeklyEntry, error) {
	var entry model.WeeklyEntry
	err := r.db.WithContext(ctx).
		Preload("Days", orderDays).
		Where("id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *entryRepo) CreateWithDays(ctx context.Context, entry *model.WeeklyEntry) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		days := entry.Days
		if err := tx.Omit(clause.Associations).Create(entry).Error; err != nil {
			return err
		}
		for i := range days {
			days[i].WeeklyEntryID = entry.ID
		}
		if len(days) > 0 {
			if err := tx.Create(&days).Error; err != nil {
				return err
			}
		}
		entry.Days = days
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.ErrDuplicateRecord
	}
	return err
}

func (r *entryRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}, days []model.DayEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			if err := tx.Model(&model.WeeklyEntry{}).Where("id = ?", id).Updates(fields).Error; err != nil {
				return err
			}
		}
		if len(days) == 0 {
			return nil
		}
		for i := range days {
			days[i].WeeklyEntryID = id
		}
		// 已存在的日期只更新 exercises，不存在的补建
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "weekly_entry_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"exercises", "updated_at"}),
		}).Create(&days).Error
	})
}
