package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/Yvesthior/moncareme-agd/internal/model"
	pkgerrors "github.com/Yvesthior/moncareme-agd/pkg/errors"
)

// ── Mock EntryRepository ──

type mockEntryRepo struct {
	entries map[string]*model.WeeklyEntry
	seq     int

	// 注入错误
	findErr   error
	createErr error
	updateErr error

	updateCalls int
}

func newMockEntryRepo() *mockEntryRepo {
	return &mockEntryRepo{entries: make(map[string]*model.WeeklyEntry)}
}

func (m *mockEntryRepo) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func inRange(e *model.WeeklyEntry, userID string, start, end time.Time) bool {
	return e.UserID == userID &&
		!e.StartDate.Before(model.DateOnly(start)) &&
		!e.EndDate.After(model.DateOnly(end))
}

func cloneEntry(e *model.WeeklyEntry) *model.WeeklyEntry {
	cp := *e
	cp.Days = make([]model.DayEntry, len(e.Days))
	for i, d := range e.Days {
		d.Exercises = d.Exercises.Clone()
		cp.Days[i] = d
	}
	sort.Slice(cp.Days, func(i, j int) bool { return cp.Days[i].Date.Before(cp.Days[j].Date) })
	return &cp
}

func (m *mockEntryRepo) FindEntry(_ context.Context, userID string, start, end time.Time) (*model.WeeklyEntry, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, e := range m.entries {
		if inRange(e, userID, start, end) {
			return cloneEntry(e), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEntryRepo) FindEntries(_ context.Context, userID string, start, end time.Time) ([]model.WeeklyEntry, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	var result []model.WeeklyEntry
	for _, e := range m.entries {
		if inRange(e, userID, start, end) {
			result = append(result, *cloneEntry(e))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.Before(result[j].StartDate) })
	return result, nil
}

func (m *mockEntryRepo) GetByID(_ context.Context, id string) (*model.WeeklyEntry, error) {
	if e, ok := m.entries[id]; ok {
		return cloneEntry(e), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEntryRepo) CreateWithDays(_ context.Context, entry *model.WeeklyEntry) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, e := range m.entries {
		if e.UserID == entry.UserID && e.StartDate.Equal(entry.StartDate) && e.EndDate.Equal(entry.EndDate) {
			return pkgerrors.ErrDuplicateRecord
		}
	}
	if entry.ID == "" {
		entry.ID = m.nextID("entry")
	}
	for i := range entry.Days {
		entry.Days[i].ID = m.nextID("day")
		entry.Days[i].WeeklyEntryID = entry.ID
	}
	m.entries[entry.ID] = cloneEntry(entry)
	return nil
}

func (m *mockEntryRepo) UpdateFields(_ context.Context, id string, fields map[string]interface{}, days []model.DayEntry) error {
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	e, ok := m.entries[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for col, v := range fields {
		s, ok := v.(string)
		if !ok {
			return errors.New("unexpected field type")
		}
		switch col {
		case model.ColCharityActs:
			e.CharityActs = &s
		case model.ColComments:
			e.Comments = &s
		case model.ColDifficulties:
			e.Difficulties = &s
		case model.ColImprovements:
			e.Improvements = &s
		case model.ColSuccesses:
			e.Successes = &s
		default:
			return fmt.Errorf("unknown column %s", col)
		}
	}
	for _, d := range days {
		found := false
		for i := range e.Days {
			if e.Days[i].Date.Equal(d.Date) {
				e.Days[i].Exercises = d.Exercises.Clone()
				found = true
				break
			}
		}
		if !found {
			e.Days = append(e.Days, model.DayEntry{
				ID:            m.nextID("day"),
				WeeklyEntryID: id,
				Date:          d.Date,
				Exercises:     d.Exercises.Clone(),
			})
		}
	}
	return nil
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	tokens map[string]time.Duration
	err    error
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{tokens: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.tokens[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := m.tokens[jti]
	return ok, m.err
}
