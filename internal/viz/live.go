package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/photonsim/internal/canvas"
	"github.com/san-kum/photonsim/internal/spectrum"
	"github.com/san-kum/photonsim/internal/world"
)

const historyCapacity = 120

// Stepper is the part of a world the preview drives.
type Stepper interface {
	Tick(ctx context.Context) (world.TickStats, error)
	Canvas() *canvas.Canvas
}

type Options struct {
	Title    string
	Backend  string
	Cols     int // terminal columns for the image
	Rows     int // terminal rows for the image, two pixels each
	Gamma    float64
	Mapper   spectrum.Mapper
	Limit    int // stop after this many ticks, 0 runs until quit
	Interval time.Duration

	// Snapshot is called on the S key with the current iteration. It
	// returns a description of what was written.
	Snapshot func(iteration int) (string, error)
}

type TickMsg time.Time

// Model is the bubbletea model of the live preview.
type Model struct {
	sim  Stepper
	ctx  context.Context
	opts Options

	running  bool
	done     bool
	stats    world.TickStats
	ticks    int
	absorbed []float64
	message  string
	err      error
}

func NewModel(ctx context.Context, sim Stepper, opts Options) Model {
	if opts.Cols <= 0 {
		opts.Cols = 64
	}
	if opts.Rows <= 0 {
		opts.Rows = 32
	}
	if opts.Gamma <= 0 {
		opts.Gamma = 1
	}
	if opts.Mapper == nil {
		opts.Mapper = spectrum.Default
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second / 30
	}
	return Model{
		sim:      sim,
		ctx:      ctx,
		opts:     opts,
		running:  true,
		absorbed: make([]float64, 0, historyCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.Interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Err is the error that stopped the simulation, if any.
func (m Model) Err() error { return m.err }

func (m Model) Ticks() int { return m.ticks }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "p":
			if !m.done {
				m.running = !m.running
			}
		case "r":
			m.sim.Canvas().Reset()
			m.message = "canvas cleared"
		case "t":
			NextTheme()
		case "s":
			m.snapshot()
		}
	case TickMsg:
		if m.running && !m.done {
			if err := m.step(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() error {
	st, err := m.sim.Tick(m.ctx)
	if err != nil {
		return err
	}
	m.stats = st
	m.ticks++

	m.absorbed = append(m.absorbed, float64(st.Absorbed))
	if len(m.absorbed) > historyCapacity {
		m.absorbed = m.absorbed[1:]
	}
	if m.opts.Limit > 0 && m.ticks >= m.opts.Limit {
		m.done = true
		m.running = false
	}
	return nil
}

func (m *Model) snapshot() {
	if m.opts.Snapshot == nil {
		m.message = "snapshots disabled"
		return
	}
	desc, err := m.opts.Snapshot(m.stats.Iteration)
	if err != nil {
		m.message = "snapshot failed: " + err.Error()
		return
	}
	m.message = "saved " + desc
}

// View renders the TUI interface.
func (m Model) View() string {
	small := m.sim.Canvas().Downsample(m.opts.Cols, m.opts.Rows*2)
	picture := Blocks(small.Render(m.opts.Mapper, m.opts.Gamma))

	var s strings.Builder
	s.WriteString(headerStyle().Render(strings.ToUpper(m.opts.Title)) + "\n")

	status := "RUNNING"
	switch {
	case m.done:
		status = "DONE"
	case !m.running:
		status = "PAUSED"
	}
	s.WriteString(statusStyle(m.running).Render(status) + "\n\n")

	if m.opts.Limit > 0 {
		s.WriteString(ProgressBar(float64(m.ticks)/float64(m.opts.Limit), 30) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle().Render(label) + valueStyle().Render(value) + "\n")
	}
	row("Iteration", fmt.Sprintf("%d", m.stats.Iteration))
	row("Spawned", fmt.Sprintf("%d", m.stats.Spawned))
	row("Absorbed", fmt.Sprintf("%d", m.stats.Absorbed))
	row("Expired", fmt.Sprintf("%d", m.stats.Expired))
	row("Evicted", fmt.Sprintf("%d", m.stats.Evicted))
	row("Live", fmt.Sprintf("%d", m.stats.Live))
	row("Batches", fmt.Sprintf("%d", m.stats.Batches))
	row("Tick", m.stats.Elapsed.Round(time.Microsecond).String())
	if m.opts.Backend != "" {
		row("Backend", m.opts.Backend)
	}

	if len(m.absorbed) > 1 {
		chart := asciigraph.Plot(m.absorbed, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Absorbed / tick"))
		s.WriteString(graphStyle().Render(chart) + "\n")
	}
	if m.message != "" {
		s.WriteString("\n" + m.message + "\n")
	}
	s.WriteString(hintStyle().Render("SP:Pause R:Clear S:Snapshot\nT:Theme  Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, picture, panelStyle().Render(s.String()))
}
