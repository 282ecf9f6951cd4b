package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/hocp/internal/stats"
)

const liveFrameDelay = time.Second / 20

var (
	liveHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	liveStatsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(40)
	liveLabelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	liveValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	liveGraphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	liveHelpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type liveTickMsg time.Time

// liveModel replays a completed solve's Newton-iteration log tick by
// tick, grounded on the teacher's viz.Model history/playHead scrubber.
// The solve itself runs to completion first — a Newton iteration
// measured in milliseconds has nothing to usefully tick on live, only
// its already-recorded log, so this animates that log instead of the
// solve itself.
type liveModel struct {
	scenarioName string
	result       *stats.SolverStatistics
	frame        int
	playing      bool
}

func newLiveModel(scenarioName string, result *stats.SolverStatistics) liveModel {
	return liveModel{scenarioName: scenarioName, result: result, playing: true}
}

func (m liveModel) Init() tea.Cmd {
	return tea.Tick(liveFrameDelay, func(t time.Time) tea.Msg { return liveTickMsg(t) })
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.playing = !m.playing
		case "r":
			m.frame = 0
		case "right", "l":
			m.advance()
		case "left", "h":
			m.frame--
			if m.frame < 0 {
				m.frame = 0
			}
		}
		return m, nil
	case liveTickMsg:
		if m.playing {
			m.advance()
		}
		return m, tea.Tick(liveFrameDelay, func(t time.Time) tea.Msg { return liveTickMsg(t) })
	}
	return m, nil
}

func (m *liveModel) advance() {
	if m.frame < len(m.result.Iterations)-1 {
		m.frame++
	} else {
		m.playing = false
	}
}

func (m liveModel) View() string {
	if len(m.result.Iterations) == 0 {
		return "no iterations logged\n"
	}

	upTo := m.result.Iterations[:m.frame+1]
	kktHist := make([]float64, len(upTo))
	for i, it := range upTo {
		kktHist[i] = it.KKTError
	}

	var s strings.Builder
	s.WriteString(liveHeaderStyle.Render(strings.ToUpper(m.scenarioName)) + "\n")
	status := "RUNNING"
	if !m.playing {
		status = "PAUSED"
	}
	s.WriteString(fmt.Sprintf("%s — iteration %d/%d\n\n", status, m.frame+1, len(m.result.Iterations)))

	if len(kktHist) > 1 {
		chart := asciigraph.Plot(kktHist, asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("KKT error"))
		s.WriteString(liveGraphStyle.Render(chart) + "\n\n")
	}

	cur := upTo[len(upTo)-1]
	var stat strings.Builder
	stat.WriteString(liveLabelStyle.Render("KKT error") + liveValueStyle.Render(fmt.Sprintf("%.3e", cur.KKTError)) + "\n")
	stat.WriteString(liveLabelStyle.Render("Cost") + liveValueStyle.Render(fmt.Sprintf("%.6f", cur.Cost)) + "\n")
	stat.WriteString(liveLabelStyle.Render("Violation") + liveValueStyle.Render(fmt.Sprintf("%.3e", cur.ConstraintViolation)) + "\n")
	stat.WriteString(liveLabelStyle.Render("Barrier") + liveValueStyle.Render(fmt.Sprintf("%.3e", cur.Barrier)) + "\n")
	stat.WriteString(liveLabelStyle.Render("Step alpha") + liveValueStyle.Render(fmt.Sprintf("%.3f", cur.Alpha)) + "\n")
	stat.WriteString(liveLabelStyle.Render("Exit") + liveValueStyle.Render(string(m.result.ExitReason)) + "\n")
	stat.WriteString(liveHelpStyle.Render("\nSPACE pause  R restart  ←/→ step  Q quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, s.String(), liveStatsStyle.Render(stat.String()))
}

// runLive drives a bubbletea program replaying one solved scenario's
// Newton-iteration log.
func runLive(scenarioName string, result *stats.SolverStatistics) error {
	p := tea.NewProgram(newLiveModel(scenarioName, result))
	_, err := p.Run()
	return err
}
