// Package ui renders build progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"scriptc/internal/buildpipeline"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	pendingStyle = lipgloss.NewStyle().Faint(true)
)

// unit is one row: a file moving through the compile stages.
type unit struct {
	path string
	// reached is the index in CompileStages of the latest stage
	// started, -1 while queued.
	reached int
	status  buildpipeline.Status
	err     error
}

func (u *unit) finished() bool {
	switch u.status {
	case buildpipeline.StatusDone, buildpipeline.StatusCached, buildpipeline.StatusError:
		return true
	}
	return false
}

// fraction is how far the unit got, counting a finished unit as whole.
func (u *unit) fraction() float64 {
	if u.finished() {
		return 1
	}
	if u.reached < 0 {
		return 0
	}
	return float64(u.reached) / float64(len(buildpipeline.CompileStages))
}

// ladder draws one mark per compile stage: '=' passed, '>' running,
// 'x' failed, '.' not reached.
func (u *unit) ladder() string {
	var b strings.Builder
	for i := range buildpipeline.CompileStages {
		switch {
		case u.status == buildpipeline.StatusCached, u.status == buildpipeline.StatusDone:
			b.WriteString(doneStyle.Render("="))
		case u.status == buildpipeline.StatusError && i == u.reached:
			b.WriteString(failStyle.Render("x"))
		case i < u.reached:
			b.WriteString(doneStyle.Render("="))
		case i == u.reached && u.status == buildpipeline.StatusWorking:
			b.WriteString(activeStyle.Render(">"))
		default:
			b.WriteString(pendingStyle.Render("."))
		}
	}
	return b.String()
}

type progressModel struct {
	title   string
	events  <-chan buildpipeline.Event
	spin    spinner.Model
	bar     progress.Model
	units   []*unit
	byPath  map[string]*unit
	width   int
	closed  bool
	failed  int
	settled int
}

type eventMsg buildpipeline.Event

type closedMsg struct{}

// NewProgressModel returns a Bubble Tea model that draws one stage ladder
// per file until events is closed.
func NewProgressModel(title string, files []string, events <-chan buildpipeline.Event) tea.Model {
	m := &progressModel{
		title:  title,
		events: events,
		spin:   spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(activeStyle)),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		byPath: make(map[string]*unit, len(files)),
		width:  80,
	}
	for _, f := range files {
		u := &unit{path: f, reached: -1, status: buildpipeline.StatusQueued}
		m.units = append(m.units, u)
		m.byPath[f] = u
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.next())
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return closedMsg{}
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(buildpipeline.Event(msg)), m.next())
	case closedMsg:
		m.closed = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.closed {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-4, 10)
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// apply folds ev into its row. Events for unknown files and
// pipeline-wide events leave the rows alone.
func (m *progressModel) apply(ev buildpipeline.Event) tea.Cmd {
	u, ok := m.byPath[ev.File]
	if !ok || u.finished() {
		return nil
	}
	for i, s := range buildpipeline.CompileStages {
		if s == ev.Stage && ev.Status != buildpipeline.StatusQueued {
			u.reached = max(u.reached, i)
		}
	}
	u.status, u.err = ev.Status, ev.Err
	if u.finished() {
		m.settled++
		if u.status == buildpipeline.StatusError {
			m.failed++
		}
	}
	return m.bar.SetPercent(m.fraction())
}

func (m *progressModel) fraction() float64 {
	if len(m.units) == 0 {
		return 0
	}
	var sum float64
	for _, u := range m.units {
		sum += u.fraction()
	}
	return sum / float64(len(m.units))
}

func (m *progressModel) View() string {
	if len(m.units) == 0 {
		return ""
	}
	var b strings.Builder
	head := fmt.Sprintf("%s %d/%d", m.title, m.settled, len(m.units))
	if m.failed > 0 {
		head += failStyle.Render(fmt.Sprintf(" (%d failed)", m.failed))
	}
	if !m.closed {
		head = m.spin.View() + " " + head
	}
	b.WriteString(titleStyle.Render(head))
	b.WriteString("\n\n")

	nameWidth := max(m.width-len(buildpipeline.CompileStages)-6, 20)
	for _, u := range m.units {
		fmt.Fprintf(&b, "  %s  %s", u.ladder(), truncate(u.path, nameWidth))
		if u.err != nil {
			b.WriteString(failStyle.Render("  " + truncate(u.err.Error(), nameWidth)))
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	if m.closed {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

// truncate shortens s to width display cells, marking the cut with "...".
func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
