package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/isingsim/internal/sampler"
)

const (
	historyCapacity = 300
	frameInterval   = time.Second / 30

	// DefaultMaxCells bounds the rendered lattice edge in cells.
	DefaultMaxCells = 48
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// LiveModel runs a chain interactively, one sweep (N² proposals) per frame.
type LiveModel struct {
	cfg       sampler.Config
	chain     *sampler.Chain
	running   bool
	compact   bool
	showHelp  bool
	sweeps    int
	maxCells  int
	energy    []float64
	magnitude []float64
}

// NewLiveModel validates cfg and prepares a chain seeded from it.
func NewLiveModel(cfg sampler.Config) (LiveModel, error) {
	chain, err := sampler.ChainFromConfig(cfg)
	if err != nil {
		return LiveModel{}, err
	}
	m := LiveModel{
		cfg:       cfg,
		chain:     chain,
		running:   true,
		maxCells:  DefaultMaxCells,
		energy:    make([]float64, 0, historyCapacity),
		magnitude: make([]float64, 0, historyCapacity),
	}
	m.record()
	return m, nil
}

func (m LiveModel) Chain() *sampler.Chain { return m.chain }
func (m LiveModel) Sweeps() int           { return m.sweeps }
func (m LiveModel) Running() bool         { return m.running }

func (m LiveModel) Init() tea.Cmd {
	return tick()
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				return m, tea.Quit
			}
		case "up", "k":
			m.chain.SetBeta(m.chain.Beta() * 1.05)
		case "down", "j":
			m.chain.SetBeta(m.chain.Beta() * 0.95)
		case "t":
			NextTheme()
		case "b":
			m.compact = !m.compact
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		// two characters per cell next to a 44-column panel
		m.maxCells = max((msg.Width-52)/2, 8)
		m.maxCells = min(m.maxCells, max(msg.Height-4, 8))
	case TickMsg:
		if m.running {
			m.Step()
		}
		return m, tick()
	}
	return m, nil
}

// Step advances the chain by one sweep and records its observables.
func (m *LiveModel) Step() {
	m.chain.Sweep()
	m.sweeps++
	m.record()
}

func (m *LiveModel) record() {
	lat := m.chain.Lattice()
	m.energy = appendCapped(m.energy, m.chain.Energy()/float64(lat.Len()))
	m.magnitude = appendCapped(m.magnitude, math.Abs(lat.AverageMagnetization()))
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

func (m *LiveModel) reset() error {
	chain, err := sampler.ChainFromConfig(m.cfg)
	if err != nil {
		return err
	}
	m.chain = chain
	m.sweeps = 0
	m.energy = m.energy[:0]
	m.magnitude = m.magnitude[:0]
	m.record()
	return nil
}

func (m LiveModel) View() string {
	lat := m.chain.Lattice()

	var latticeView string
	if m.compact {
		latticeView = BrailleLattice(lat)
	} else {
		latticeView = RenderLattice(lat, CurrentTheme, m.maxCells)
	}

	var s strings.Builder
	s.WriteString(headerStyle().Render(fmt.Sprintf("ISING %d×%d", lat.Size(), lat.Size())) + "\n")
	if m.running {
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	beta := m.chain.Beta()
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("β", fmt.Sprintf("%.4f", beta))
	if beta != 0 {
		row("T", fmt.Sprintf("%.4f", 1/beta))
	}
	row("Sweeps", fmt.Sprintf("%d", m.sweeps))
	row("E/N²", fmt.Sprintf("%.4f", m.chain.Energy()/float64(lat.Len())))
	mag := lat.AverageMagnetization()
	row("m", fmt.Sprintf("%+.4f", mag))
	row("|m|", ProgressBar(math.Abs(mag), 20))
	rate := 0.0
	if m.chain.Proposed() > 0 {
		rate = float64(m.chain.Accepted()) / float64(m.chain.Proposed())
	}
	row("Accepted", fmt.Sprintf("%.2f%%", 100*rate))

	if len(m.energy) > 1 {
		s.WriteString("\n" + EnergyPlot(m.energy, 30, 5, "E/N² per sweep") + "\n")
		s.WriteString(labelStyle.Render("|m| trend") + Sparkline(m.magnitude, 30) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit\nT:Theme  B:Braille ↑↓:β ±5%"))

	view := lipgloss.JoinHorizontal(lipgloss.Top, latticeStyle.Render(latticeView), panelStyle.Render(s.String()))
	if m.showHelp {
		return liveHelp + "\n" + view
	}
	return view
}

const liveHelp = `
  Space    pause / resume
  R        reset to the initial lattice
  Up/K     raise β by 5%
  Down/J   lower β by 5%
  T        cycle themes
  B        toggle compact braille lattice
  ?        toggle this help
  Q        quit`
