package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/xr-input-layer/input"
	"github.com/wippyai/xr-input-layer/input/local"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98")).
			Width(12)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	changedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

const tickInterval = 50 * time.Millisecond

type keyMap struct {
	Trigger key.Binding
	Squeeze key.Binding
	Move    key.Binding
	Snap    key.Binding
	Center  key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Trigger, k.Squeeze, k.Move, k.Snap, k.Center, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Trigger: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "trigger")),
	Squeeze: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "squeeze")),
	Move:    key.NewBinding(key.WithKeys("up", "down", "left", "right"), key.WithHelp("←↑↓→", "move")),
	Snap:    key.NewBinding(key.WithKeys("a", "d"), key.WithHelp("a/d", "snap")),
	Center:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "center")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// devices is the raw state of the simulated controllers.
type devices struct {
	left    input.Axis2d
	right   input.Axis2d
	trigger float32
	squeeze float32
}

type tuiModel struct {
	err     error
	world   *world
	help    help.Model
	states  []actionState
	haptics []local.HapticEvent
	dev     devices
	frames  int
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func newTUICmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Drive simulated controllers interactively and watch action states",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("tui needs a terminal on stdout")
			}
			cfg, log, closeLog, err := opts.load()
			if err != nil {
				return err
			}
			defer closeLog()

			w, err := newWorld(cfg, log)
			if err != nil {
				return err
			}
			defer w.close()
			if err := w.setup(); err != nil {
				return err
			}

			m := &tuiModel{world: w, help: help.New()}
			if err := m.push(); err != nil {
				return err
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return tick()
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Trigger):
			m.dev.trigger = ramp(m.dev.trigger)
		case key.Matches(msg, keys.Squeeze):
			m.dev.squeeze = ramp(m.dev.squeeze)
		case key.Matches(msg, keys.Move):
			m.dev.left = move(m.dev.left, msg.String())
		case key.Matches(msg, keys.Snap):
			if msg.String() == "a" {
				m.dev.right = input.Axis2d{X: -1}
			} else {
				m.dev.right = input.Axis2d{X: 1}
			}
		case key.Matches(msg, keys.Center):
			m.dev = devices{}
		}
		m.err = m.push()

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tickMsg:
		m.frames++
		if err := m.world.sync(); err != nil {
			m.err = err
			return m, tick()
		}
		m.states, m.err = m.world.states()
		if ev := m.world.driver.Haptics(); len(ev) > 0 {
			m.haptics = append(m.haptics, ev...)
			if len(m.haptics) > 5 {
				m.haptics = m.haptics[len(m.haptics)-5:]
			}
		}
		return m, tick()
	}
	return m, nil
}

// ramp advances an analog input by a tenth, wrapping back to rest.
func ramp(v float32) float32 {
	v += 0.1
	if v > 1.001 {
		return 0
	}
	return v
}

func move(a input.Axis2d, dir string) input.Axis2d {
	const delta = 0.25
	switch dir {
	case "up":
		a.Y = min(a.Y+delta, 1)
	case "down":
		a.Y = max(a.Y-delta, -1)
	case "left":
		a.X = max(a.X-delta, -1)
	case "right":
		a.X = min(a.X+delta, 1)
	}
	return a
}

func (m *tuiModel) push() error {
	d := m.world.driver
	for _, p := range []struct {
		path  string
		value input.Value
	}{
		{triggerPath, input.Axis1dValue(m.dev.trigger)},
		{squeezePath, input.Axis1dValue(m.dev.squeeze)},
		{leftStickPath, input.Axis2dValue(m.dev.left.X, m.dev.left.Y)},
		{rightStickPath, input.Axis2dValue(m.dev.right.X, m.dev.right.Y)},
		{"/user/hand/right/input/aim/pose", input.PoseValue()},
	} {
		if err := d.Push(p.path, p.value); err != nil {
			return fmt.Errorf("push %s: %w", p.path, err)
		}
	}
	return nil
}

func (m *tuiModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("XR Input Layer"))
	fmt.Fprintf(&b, " %s on %s  frame %d\n\n", simProfile, simRuntime, m.frames)

	for _, st := range m.states {
		style := inactiveStyle
		if st.active {
			style = activeStyle
		}
		if st.changed {
			style = changedStyle
		}
		b.WriteString(nameStyle.Render(st.name))
		b.WriteString(style.Render(st.value))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\ntrigger %.1f  squeeze %.1f  left %s  right %s\n",
		m.dev.trigger, m.dev.squeeze,
		input.Axis2dValue(m.dev.left.X, m.dev.left.Y),
		input.Axis2dValue(m.dev.right.X, m.dev.right.Y))
	for _, ev := range m.haptics {
		fmt.Fprintf(&b, "haptic %s %.2f @ %.0fHz\n", ev.Action, ev.Haptic.Amplitude, ev.Haptic.Frequency)
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}
