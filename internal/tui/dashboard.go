// Package tui implements a live terminal dashboard over a running engine:
// the committed configuration, a timing sparkline, and a tail of the
// tuner's phase log. Uses the same Bubble Tea Model/Update/View shape
// (TickMsg-driven redraw) and lipgloss colour palette (cyan/white/dim/green/
// yellow) as a live ODE state readout, generalized to the autotuner's
// configuration/timing readout.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/cellgrid/autotune/internal/experiment"
	"github.com/cellgrid/autotune/internal/particle"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

const historyWindow = 60

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model drives exp for totalSteps engine iterations, one per tick, and
// renders a dashboard of the committed configuration and recent step
// timings.
type Model struct {
	exp        *experiment.Experiment
	totalSteps int
	done       int
	history    []float64 // milliseconds per step, most recent last
	err        error
	quitting   bool
	width      int
}

// New builds a dashboard model over exp, running it for totalSteps steps.
func New(exp *experiment.Experiment, totalSteps int) Model {
	return Model{exp: exp, totalSteps: totalSteps, width: 70}
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case tickMsg:
		if m.quitting || m.done >= m.totalSteps || m.err != nil {
			return m, tea.Quit
		}

		start := time.Now()
		_, err := m.exp.Engine.Step(context.Background())
		elapsed := time.Since(start)

		m.done++
		m.history = append(m.history, float64(elapsed.Microseconds())/1000.0)
		if len(m.history) > historyWindow {
			m.history = m.history[len(m.history)-historyWindow:]
		}
		if err != nil {
			m.err = err
			return m, tea.Quit
		}
		if m.done >= m.totalSteps {
			m.quitting = true
			return m, tea.Quit
		}
		return m, tick()
	default:
		return m, nil
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(cyan.Bold(true).Render("autotune") + dim.Render(" — live tuning dashboard") + "\n\n")

	active := m.exp.Engine.Active()
	particleCount := 0
	if active != nil {
		particleCount = active.NumParticles(particle.MaskOwnedOrHaloOrDummy)
	}
	b.WriteString(fmt.Sprintf("%s %s   %s %d/%d   %s %d\n",
		dim.Render("strategy"), white.Render(m.exp.Config.Tuner.Strategy),
		dim.Render("step"), m.done, m.totalSteps,
		dim.Render("particles"), particleCount,
	))

	if cfg, ok := m.exp.Tuner.Current(); ok {
		b.WriteString("\n" + dim.Render("committed configuration") + "\n")
		b.WriteString(fmt.Sprintf("  %s %-26s %s %-10s\n", dim.Render("container"), green.Render(cfg.Container), dim.Render("traversal"), green.Render(cfg.Traversal)))
		b.WriteString(fmt.Sprintf("  %s %-26s %s %t\n", dim.Render("layout"), green.Render(cfg.Layout.String()), dim.Render("newton3"), cfg.Newton3))
		b.WriteString(fmt.Sprintf("  %s %.2f\n", dim.Render("cell-size-factor"), cfg.CellSizeFactor))
	} else {
		b.WriteString("\n" + yellow.Render("no configuration committed yet") + "\n")
	}

	if len(m.history) >= 2 {
		graph := asciigraph.Plot(m.history,
			asciigraph.Height(8),
			asciigraph.Width(minInt(m.width-10, 70)),
			asciigraph.Caption("ms/step"),
		)
		b.WriteString("\n" + graph + "\n")
	}

	entries := m.exp.LogEntries()
	if len(entries) > 0 {
		b.WriteString("\n" + dim.Render("recent tuning phases") + "\n")
		start := 0
		if len(entries) > 5 {
			start = len(entries) - 5
		}
		for _, e := range entries[start:] {
			status := dim.Render("sampled")
			if e.Committed {
				status = green.Render("committed")
			}
			if e.Err != nil {
				status = red.Render("rejected: " + e.Err.Error())
			}
			b.WriteString(fmt.Sprintf("  phase %-4d %-40s %s\n", e.Phase, e.Config, status))
		}
	}

	if m.err != nil {
		b.WriteString("\n" + red.Render("error: "+m.err.Error()) + "\n")
	}
	if m.quitting {
		b.WriteString("\n" + dim.Render("done — press any key to exit") + "\n")
	} else {
		b.WriteString("\n" + dim.Render("q to quit") + "\n")
	}

	return b.String()
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
