package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Yvesthior/moncareme-agd/internal/catalog"
	"github.com/Yvesthior/moncareme-agd/internal/model"
	"github.com/Yvesthior/moncareme-agd/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// 导出单元格标记
const (
	markChecked     = "✓"
	markUnavailable = "-"
)

// ExportService 导出业务接口
//
//   - 导出以字节返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 归属校验与 GetWeek 一致：不存在 404，他人记录 403
type ExportService interface {
	// ExportXLSX 导出一周为 Excel：功课 × 星期网格，下方附文字记录
	ExportXLSX(ctx context.Context, callerID, id string) (*bytes.Buffer, string, error)
	// ExportICS 导出一周为日历：每天一个全天事件，描述中列出已完成功课
	ExportICS(ctx context.Context, callerID, id string) ([]byte, string, error)
}

type exportService struct {
	repo    *repository.Repository
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, cat *catalog.Catalog, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, catalog: cat, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportXLSX
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Semaine"
//   - 第 1 行标题，第 2 行表头：Exercice | Lundi 12/02 | … | Dimanche 18/02
//   - 每个功课一行：已完成 ✓，当天不可勾选 -，其余留空
//   - 网格下方依次列出五项文字记录

func (s *exportService) ExportXLSX(ctx context.Context, callerID, id string) (*bytes.Buffer, string, error) {
	entry, err := loadOwned(ctx, s.repo, s.logger, callerID, id)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Semaine"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 26)
	for i := range entry.Days {
		col := colName(1 + i)
		f.SetColWidth(sheetName, col, col, 16)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	centerStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	// 标题行
	title := fmt.Sprintf("Semaine du %s au %s",
		entry.StartDate.Format("02/01/2006"), entry.EndDate.Format("02/01/2006"))
	f.SetCellValue(sheetName, "A1", title)
	if len(entry.Days) > 0 {
		f.MergeCell(sheetName, "A1", cell(colName(len(entry.Days)), 1))
	}
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	f.SetCellValue(sheetName, cell("A", row), "Exercice")
	for i, d := range entry.Days {
		label := fmt.Sprintf("%s %s", dayLabel(i), d.Date.Format("02/01"))
		f.SetCellValue(sheetName, cell(colName(1+i), row), label)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(entry.Days)), row), headerStyle)

	// 功课网格
	row = 3
	for _, ex := range s.catalog.All() {
		f.SetCellValue(sheetName, cell("A", row), ex.Label)
		for i, d := range entry.Days {
			c := cell(colName(1+i), row)
			switch {
			case !ex.IsAvailable(i):
				f.SetCellValue(sheetName, c, markUnavailable)
			case d.Exercises[ex.ID]:
				f.SetCellValue(sheetName, c, markChecked)
			}
			f.SetCellStyle(sheetName, c, c, centerStyle)
		}
		row++
	}

	// 文字记录
	row++
	for _, r := range reflections(entry) {
		f.SetCellValue(sheetName, cell("A", row), r.label)
		f.SetCellValue(sheetName, cell("B", row), r.text)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.String("id", id), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("careme_%s.xlsx", entry.StartDate.Format("2006-01-02"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportICS
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportICS(ctx context.Context, callerID, id string) ([]byte, string, error) {
	entry, err := loadOwned(ctx, s.repo, s.logger, callerID, id)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//moncareme//carnet//FR")

	stamp := time.Now().UTC()
	// 可勾选性按日记录在周内的位置判断，与客户端网格一致
	for day, d := range entry.Days {

		var done []string
		available := 0
		for _, ex := range s.catalog.All() {
			if !ex.IsAvailable(day) {
				continue
			}
			available++
			if d.Exercises[ex.ID] {
				done = append(done, ex.Label)
			}
		}

		event := cal.AddEvent(fmt.Sprintf("%s@moncareme", d.ID))
		event.SetDtStampTime(stamp)
		event.SetAllDayStartAt(d.Date)
		event.SetAllDayEndAt(d.Date.AddDate(0, 0, 1))
		event.SetSummary(fmt.Sprintf("Carême %s : %d/%d", dayLabel(day), len(done), available))
		if len(done) > 0 {
			event.SetDescription(strings.Join(done, "\n"))
		}
	}

	filename := fmt.Sprintf("careme_%s.ics", entry.StartDate.Format("2006-01-02"))
	return []byte(cal.Serialize()), filename, nil
}

// ── 辅助函数 ──

func dayLabel(i int) string {
	if i < 0 || i >= catalog.DaysPerWeek {
		return ""
	}
	return catalog.DayLabels[i]
}

type reflection struct {
	label string
	text  string
}

func reflections(e *model.WeeklyEntry) []reflection {
	return []reflection{
		{"Actes de charité", deref(e.CharityActs)},
		{"Commentaires", deref(e.Comments)},
		{"Difficultés", deref(e.Difficulties)},
		{"Améliorations", deref(e.Improvements)},
		{"Réussites", deref(e.Successes)},
	}
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
