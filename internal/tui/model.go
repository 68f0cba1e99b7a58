// Package tui carnet 终端界面：周切换、功课勾选、反思编辑与保存。
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Yvesthior/moncareme-agd/internal/catalog"
	"github.com/Yvesthior/moncareme-agd/internal/dashboard"
	"github.com/Yvesthior/moncareme-agd/internal/tracker"
)

// 焦点：-1 为功课表，0..n 为反思字段
const focusGrid = -1

type (
	loadedMsg  struct{ err error }
	createdMsg struct{ err error }
	savedMsg   struct{ err error }
)

// Model 顶层界面模型
type Model struct {
	ctx    context.Context
	dash   *dashboard.Dashboard
	saver  tracker.Saver
	cat    *catalog.Catalog
	now    func() time.Time
	styles Styles

	draft   *tracker.Draft
	mode    tracker.ViewMode
	day     int
	cursor  int
	focus   int
	editing bool
	editor  textarea.Model

	loading bool
	saving  bool
	status  string
	err     string
}

// New 创建界面模型；now 为 nil 时使用 time.Now
func New(ctx context.Context, dash *dashboard.Dashboard, saver tracker.Saver, cat *catalog.Catalog, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	ed := textarea.New()
	ed.ShowLineNumbers = false
	ed.SetWidth(60)
	ed.SetHeight(4)
	ed.Cursor.SetMode(cursor.CursorStatic)

	return Model{
		ctx:     ctx,
		day:     catalog.WeekdayIndex(now()),
		dash:    dash,
		saver:   saver,
		cat:     cat,
		now:     now,
		styles:  DefaultStyles(),
		focus:   focusGrid,
		editor:  ed,
		loading: true,
	}
}

// Run 启动全屏界面，直到用户退出或 ctx 取消
func Run(ctx context.Context, m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return m.load(m.dash.Load)
}

func (m Model) load(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: fn(m.ctx)}
	}
}

func (m Model) create() tea.Cmd {
	return func() tea.Msg {
		return createdMsg{err: m.dash.CreateWeek(m.ctx)}
	}
}

func (m Model) save(d *tracker.Draft) tea.Cmd {
	return func() tea.Msg {
		return savedMsg{err: d.Save(m.ctx, m.saver)}
	}
}

// ── Update ──

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		m.applyLoad(msg.err)
		return m, nil

	case createdMsg:
		m.loading = false
		if msg.err != nil {
			m.err = "Impossible de créer une nouvelle semaine"
			m.rememberView()
			m.draft = nil
			return m, nil
		}
		m.status = "Une nouvelle semaine a été créée"
		m.applyLoad(nil)
		return m, nil

	case savedMsg:
		m.saving = false
		if msg.err != nil {
			if errors.Is(msg.err, tracker.ErrSaveInFlight) {
				m.status = "Sauvegarde en cours..."
				return m, nil
			}
			m.err = "Impossible de sauvegarder vos données"
			return m, nil
		}
		m.err = ""
		m.status = "Vos données ont été sauvegardées avec succès"
		m.loading = true
		return m, m.load(m.dash.Load)

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditor(msg)
		}
		return m.handleKey(msg)
	}

	if m.editing {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

// applyLoad 以服务端数据重建草稿，保留显示模式与选中日
func (m *Model) applyLoad(err error) {
	if err != nil {
		m.err = "Impossible de charger vos données"
		m.rememberView()
		m.draft = nil
		return
	}
	m.err = ""

	entry := m.dash.Entry()
	if entry == nil {
		m.rememberView()
		m.draft = nil
		return
	}
	m.rememberView()
	m.draft = tracker.NewDraft(entry, m.cat, m.now())
	if m.draft.Mode() != m.mode {
		m.draft.ToggleView()
	}
	_ = m.draft.SelectDay(m.day)
}

func (m *Model) rememberView() {
	if m.draft != nil {
		m.mode, m.day = m.draft.Mode(), m.draft.SelectedDay()
	}
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		_ = m.draft.SetText(tracker.Fields[m.focus], m.editor.Value())
		m.editor.Blur()
		m.editing = false
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "n":
		m.loading, m.status = true, ""
		return m, m.load(m.dash.NextWeek)
	case "p":
		m.loading, m.status = true, ""
		return m, m.load(m.dash.PrevWeek)
	case "r":
		m.loading, m.status = true, ""
		return m, m.load(m.dash.Load)
	case "c":
		if m.dash.CanCreate() {
			m.loading = true
			return m, m.create()
		}
		return m, nil
	}

	if m.draft == nil {
		return m, nil
	}

	switch key {
	case "v":
		m.draft.ToggleView()
	case "tab":
		m.focus++
		if m.focus >= len(tracker.Fields) {
			m.focus = focusGrid
		}
	case "shift+tab":
		m.focus--
		if m.focus < focusGrid {
			m.focus = len(tracker.Fields) - 1
		}
	case "up", "k":
		if m.focus == focusGrid && m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.focus == focusGrid && m.cursor < m.cat.Len()-1 {
			m.cursor++
		}
	case "left", "h":
		_ = m.draft.SelectDay(m.draft.SelectedDay() - 1)
	case "right", "l":
		_ = m.draft.SelectDay(m.draft.SelectedDay() + 1)
	case " ", "x":
		if m.focus != focusGrid {
			break
		}
		day := m.draft.SelectedDay()
		ex := m.cat.All()[m.cursor]
		if err := m.draft.Toggle(day, ex.ID, !m.draft.Checked(day, ex.ID)); err != nil {
			m.status = fmt.Sprintf("%s : %s uniquement", ex.Label, availabilityLabel(ex))
		} else {
			m.status = ""
		}
	case "enter":
		if m.focus == focusGrid {
			break
		}
		m.editor.SetValue(m.draft.Text(tracker.Fields[m.focus]))
		m.editing = true
		return m, m.editor.Focus()
	case "s":
		if m.saving {
			return m, nil
		}
		m.saving = true
		m.status = "Sauvegarde en cours..."
		return m, m.save(m.draft)
	}
	return m, nil
}

func availabilityLabel(ex catalog.Exercise) string {
	if ex.Availability.EveryDay {
		return "tous les jours"
	}
	if ex.Availability.Weekday < 0 || ex.Availability.Weekday >= catalog.DaysPerWeek {
		return "jamais"
	}
	return catalog.DayLabels[ex.Availability.Weekday]
}

// ── View ──

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("Mon Carnet de Carême"))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Header.Render("Semaine du " + m.dash.RangeLabel()))
	sb.WriteString("\n\n")

	switch {
	case m.loading:
		sb.WriteString("Chargement des données...\n")
	case m.draft != nil:
		m.renderTracker(&sb)
	case m.dash.CanCreate():
		sb.WriteString("Aucune donnée pour cette semaine\n")
		sb.WriteString(m.styles.Muted.Render("c : Créer une nouvelle semaine"))
		sb.WriteString("\n")
	}

	if m.err != "" {
		sb.WriteString("\n" + m.styles.Error.Render(m.err) + "\n")
	}
	if m.status != "" {
		sb.WriteString("\n" + m.styles.Success.Render(m.status) + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render("p/n semaine · ←/→ jour · ↑/↓ exercice · espace cocher · v vue · tab réflexions · s sauvegarder · q quitter"))
	return sb.String()
}

func (m Model) renderTracker(sb *strings.Builder) {
	if m.draft.Mode() == tracker.WeeklyView {
		sb.WriteString("Vue actuelle : Hebdomadaire\n\n")
		m.renderWeekly(sb)
	} else {
		sb.WriteString("Vue actuelle : Journalière\n\n")
		m.renderDaily(sb)
	}
	sb.WriteString("\n")
	m.renderReflections(sb)

	sb.WriteString("\n")
	if m.saving {
		sb.WriteString(m.styles.Muted.Render("[ Sauvegarde en cours... ]"))
	} else {
		sb.WriteString(m.styles.Header.Render("[ s : Sauvegarder ]"))
	}
	sb.WriteString("\n")
}

func (m Model) renderDaily(sb *strings.Builder) {
	selected := m.draft.SelectedDay()
	sb.WriteString(fmt.Sprintf("Jour en cours : %s\n", catalog.DayLabels[selected]))

	tabs := make([]string, catalog.DaysPerWeek)
	for i, label := range catalog.DayLabels {
		if i == selected {
			tabs[i] = m.styles.Selected.Render(label)
		} else {
			tabs[i] = m.styles.Muted.Render(label)
		}
	}
	sb.WriteString(strings.Join(tabs, " ") + "\n\n")

	for i, c := range m.draft.DayRows() {
		line := fmt.Sprintf("%s %s", m.box(c), c.Exercise.Label)
		if i == m.cursor && m.focus == focusGrid {
			line = m.styles.Selected.Render(line)
		}
		sb.WriteString(line + "\n")
	}
}

func (m Model) renderWeekly(sb *strings.Builder) {
	selected := m.draft.SelectedDay()
	sb.WriteString(fmt.Sprintf("%-24s", ""))
	for i, label := range catalog.DayLabels {
		head := fmt.Sprintf("%-5s", string([]rune(label)[:3]))
		if i == selected {
			head = m.styles.Selected.Render(head)
		}
		sb.WriteString(head)
	}
	sb.WriteString("\n")

	for r, row := range m.draft.Grid() {
		label := fmt.Sprintf("%-24s", truncate(row[0].Exercise.Label, 23))
		if r == m.cursor && m.focus == focusGrid {
			label = m.styles.Selected.Render(label)
		}
		sb.WriteString(label)
		for _, c := range row {
			sb.WriteString(m.box(c) + "  ")
		}
		sb.WriteString("\n")
	}
}

func (m Model) renderReflections(sb *strings.Builder) {
	for i, f := range tracker.Fields {
		title := tracker.FieldLabels[f]
		if i == m.focus {
			title = m.styles.Selected.Render(title)
		} else {
			title = m.styles.Header.Render(title)
		}
		sb.WriteString(title + "\n")

		if m.editing && i == m.focus {
			sb.WriteString(m.editor.View() + "\n")
			sb.WriteString(m.styles.Muted.Render("échap pour valider") + "\n")
			continue
		}
		text := m.draft.Text(f)
		if text == "" {
			text = m.styles.Muted.Render("(vide)")
		}
		sb.WriteString(text + "\n")
	}
}

func (m Model) box(c tracker.Cell) string {
	switch {
	case !c.Available && c.Checked:
		return m.styles.Muted.Render("[x]")
	case !c.Available:
		return m.styles.Muted.Render("[·]")
	case c.Checked:
		return m.styles.Checked.Render("[x]")
	}
	return "[ ]"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
