package stats

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/models"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	valueStyle = lipgloss.NewStyle().Bold(true)

	celebrateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("42")).
			Bold(true).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Model renders the aggregate stats panel. It holds no commands of its own;
// the parent model feeds it fetched stats.
type Model struct {
	stats  models.HabitStats
	loaded bool
	err    string
	bar    progress.Model
	width  int
}

func New(width int) Model {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	m := Model{bar: bar}
	m.SetWidth(width)
	return m
}

func (m *Model) SetStats(s models.HabitStats) {
	m.stats = s
	m.loaded = true
	m.err = ""
}

// SetError keeps the last good stats on screen and shows msg below them
func (m *Model) SetError(msg string) {
	m.err = msg
}

func (m *Model) Reset() {
	m.stats = models.HabitStats{}
	m.loaded = false
	m.err = ""
}

func (m *Model) SetWidth(width int) {
	m.width = width
	barWidth := width - 8
	if barWidth < 10 {
		barWidth = 10
	}
	if barWidth > 60 {
		barWidth = 60
	}
	m.bar.Width = barWidth
}

func (m Model) View() string {
	if !m.loaded {
		if m.err != "" {
			return panelStyle.Render(errorStyle.Render("Stats unavailable: " + m.err))
		}
		return panelStyle.Render(labelStyle.Render("Loading stats..."))
	}

	s := m.stats
	pct := s.CompletionPercentage()
	rows := []string{
		lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render("Today "),
			valueStyle.Render(fmt.Sprintf("%d/%d", s.CompletedToday, s.TotalHabits)),
			labelStyle.Render(fmt.Sprintf("  (%d%%)", pct)),
		),
		m.bar.ViewAs(float64(pct) / 100),
		lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render("Total completions "),
			valueStyle.Render(fmt.Sprintf("%d", s.TotalCompletions)),
			labelStyle.Render("   Average streak "),
			valueStyle.Render(fmt.Sprintf("%.1f", s.AverageStreak)),
		),
	}
	if s.AllDone() {
		rows = append(rows, "", celebrateStyle.Render("🎉 All habits done for today!"))
	}
	if m.err != "" {
		rows = append(rows, errorStyle.Render(m.err))
	}
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
