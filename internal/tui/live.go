// Package tui renders a live terminal view of a running routine session:
// the simulation steps at a fixed frame rate while a chosen output is
// plotted as it evolves.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mjbridge/internal/routine"
)

const historyCapacity = 600

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model drives one session from the bubbletea update loop. The session is
// owned exclusively by this view while it runs.
type Model struct {
	sess      *routine.Session
	title     string
	watchArgs map[string]string
	watchName string
	frameRate int

	running bool
	history []float64
	lastErr error
}

func NewModel(sess *routine.Session, title string, watchArgs map[string]string, frameRate int) Model {
	name := watchArgs["object_name"]
	if name == "" {
		name = watchArgs["object_type"]
	}
	if frameRate < 1 {
		frameRate = 30
	}
	return Model{
		sess:      sess,
		title:     title,
		watchArgs: watchArgs,
		watchName: name,
		frameRate: frameRate,
		running:   true,
		history:   make([]float64, 0, historyCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.sess.RunCommand(map[string]string{"command": "reset"}); err != nil {
				m.lastErr = err
			} else {
				m.history = m.history[:0]
				m.lastErr = nil
			}
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	if err := m.sess.RunCommand(map[string]string{"command": "step"}); err != nil {
		m.lastErr = err
		m.running = false
		return
	}
	v, err := m.sess.GetOutput(m.watchArgs)
	if err != nil {
		m.lastErr = err
		m.running = false
		return
	}
	m.history = append(m.history, v)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n")

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption(m.watchName),
		)
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3fs", m.sess.Time())) + "\n")
	s.WriteString(labelStyle.Render("Steps") + valueStyle.Render(fmt.Sprintf("%d", m.sess.Steps())) + "\n")
	if n := len(m.history); n > 0 {
		s.WriteString(labelStyle.Render(m.watchName) + valueStyle.Render(fmt.Sprintf("%.6f", m.history[n-1])) + "\n")
	}
	if m.lastErr != nil {
		s.WriteString(errorStyle.Render("error: "+m.lastErr.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit"))
	return s.String()
}
