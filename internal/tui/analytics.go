package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusflow/internal/analytics"
	"github.com/sadopc/focusflow/internal/store"
)

const analyticsTimeout = 5 * time.Second

// maxChartTasks caps the bars of the distribution chart; the table below
// it lists every task.
const maxChartTasks = 8

type analyticsModel struct {
	store  *store.Store
	now    func() time.Time
	width  int
	height int

	report analytics.Report
	loaded bool

	taskChart barchart.Model
	weekChart barchart.Model
}

func newAnalyticsModel(s *store.Store, now func() time.Time) analyticsModel {
	return analyticsModel{
		store:     s,
		now:       now,
		taskChart: barchart.New(40, 10),
		weekChart: barchart.New(40, 10),
	}
}

func (r *analyticsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	if r.loaded {
		r.buildCharts()
	}
}

type analyticsDataMsg struct {
	report analytics.Report
	err    error
}

func (r analyticsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), analyticsTimeout)
		defer cancel()
		report, err := analytics.Load(ctx, r.store, r.now())
		return analyticsDataMsg{report: report, err: err}
	}
}

func (r analyticsModel) update(msg tea.Msg) (analyticsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case analyticsDataMsg:
		if msg.err != nil {
			return r, errStatus("Loading analytics", msg.err)
		}
		r.report = msg.report
		r.loaded = true
		r.buildCharts()
		return r, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Refresh) {
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *analyticsModel) chartSize() (int, int) {
	w := (r.width - 12) / 2
	if w < 20 {
		w = 20
	}
	h := 10
	if r.height > 30 {
		h = 14
	}
	return w, h
}

func (r *analyticsModel) buildCharts() {
	w, h := r.chartSize()

	r.taskChart = barchart.New(w, h)
	var taskBars []barchart.BarData
	for i, t := range r.report.Today.Tasks {
		if i == maxChartTasks {
			break
		}
		taskBars = append(taskBars, barchart.BarData{
			Label: truncate(t.Title, 6),
			Values: []barchart.BarValue{{
				Name:  t.Title,
				Value: float64(t.Minutes),
				Style: lipgloss.NewStyle().Foreground(colorSecondary),
			}},
		})
	}
	if len(taskBars) > 0 {
		r.taskChart.PushAll(taskBars)
		r.taskChart.Draw()
	}

	r.weekChart = barchart.New(w, h)
	if weekMinutes(r.report.Week) == 0 {
		return
	}
	weekBars := make([]barchart.BarData, 0, len(r.report.Week))
	for _, d := range r.report.Week {
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if d.DayKey == r.report.Today.DayKey {
			style = lipgloss.NewStyle().Foreground(colorAccent)
		}
		weekBars = append(weekBars, barchart.BarData{
			Label:  d.Label,
			Values: []barchart.BarValue{{Name: d.DayKey, Value: float64(d.Minutes), Style: style}},
		})
	}
	r.weekChart.PushAll(weekBars)
	r.weekChart.Draw()
}

func (r analyticsModel) view() string {
	w := r.width - 4
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Analytics"), "  ", mutedStyle.Render(r.report.Today.DayKey),
	)
	if !r.loaded {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "", mutedStyle.Render("Loading...")),
		)
	}

	today := r.report.Today
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		renderCard("Focus score", fmt.Sprintf("%d/100", today.Score), scoreStyle(today.Score)),
		renderCard("Focus time", formatMinutes(today.FocusMinutes), highlightStyle),
		renderCard("Sessions", fmt.Sprintf("%d", today.FocusSessions), highlightStyle),
		renderCard("Breaks", formatMinutes(today.BreakMinutes), mutedStyle),
	)

	taskPanel := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Today by task"),
		r.renderTaskChart(),
	)
	weekPanel := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Focus, last 7 days"),
		r.renderWeekChart(),
	)
	charts := lipgloss.JoinHorizontal(lipgloss.Top, taskPanel, "    ", weekPanel)

	nav := mutedStyle.Render("  ctrl+r: refresh")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", cards, "", charts, "", r.renderTaskTable(w), "", nav,
		),
	)
}

func (r analyticsModel) renderTaskChart() string {
	if len(r.report.Today.Tasks) == 0 {
		return mutedStyle.Render("No task time logged today")
	}
	return r.taskChart.View()
}

func (r analyticsModel) renderWeekChart() string {
	if weekMinutes(r.report.Week) == 0 {
		return mutedStyle.Render("No focus time in the last 7 days")
	}
	return r.weekChart.View()
}

func weekMinutes(days []analytics.DayTotal) int {
	total := 0
	for _, d := range days {
		total += d.Minutes
	}
	return total
}

func (r analyticsModel) renderTaskTable(w int) string {
	tasks := r.report.Today.Tasks
	if len(tasks) == 0 {
		return ""
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-32s %10s", "Task", "Time")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(max(w-6, 10), 43))))
	for _, t := range tasks {
		rows = append(rows, fmt.Sprintf("  %-32s %10s", truncate(t.Title, 32), formatMinutes(t.Minutes)))
	}
	return strings.Join(rows, "\n")
}

func renderCard(label, value string, style lipgloss.Style) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSubtle).
		Padding(0, 2).
		MarginRight(1).
		Render(lipgloss.JoinVertical(lipgloss.Left, mutedStyle.Render(label), style.Bold(true).Render(value)))
}

func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 75:
		return successStyle
	case score >= 40:
		return warningStyle
	}
	return accentStyle
}
