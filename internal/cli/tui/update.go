package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		fetchCircuits(m.config),
		m.tick(),
	)
}

func (m Model) tick() tea.Cmd {
	if m.config.RefreshInterval <= 0 {
		return nil
	}
	return tick(m.config.RefreshInterval)
}

// recalculate invalidates the shown results and runs the calculators for
// the current inputs.
func (m *Model) recalculate() tea.Cmd {
	circuit := m.circuit()
	if circuit == "" || m.detail == nil || !m.detail.Available {
		return nil
	}
	m.seq++
	m.loading = true
	return calculate(m.config, circuit, m.seq, m.inputs)
}

// selectCircuit switches to the circuit at index i and loads its model.
func (m *Model) selectCircuit(i int) tea.Cmd {
	if len(m.circuits) == 0 {
		return nil
	}
	m.selected = (i + len(m.circuits)) % len(m.circuits)
	m.detail = nil
	m.prediction, m.caution, m.battle = nil, nil, nil
	m.err = nil
	m.seq++
	m.loading = true
	return fetchDetail(m.config, m.circuit())
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case circuitsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		current := m.circuit()
		m.circuits = msg.circuits
		m.lastUpdated = time.Now()
		for i, c := range m.circuits {
			if c.Circuit == current {
				m.selected = i
				return m, nil
			}
		}
		return m, m.selectCircuit(0)

	case detailMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if msg.detail.Circuit != m.circuit() {
			return m, nil
		}
		m.detail = msg.detail
		if msg.detail.Ranges != nil {
			m.applyRanges(*msg.detail.Ranges)
		} else {
			m.applyRanges(fallbackRanges())
		}
		return m, m.recalculate()

	case predictMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.setErr(msg.err)
		m.prediction = msg.resp
		return m, nil

	case cautionMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.setErr(msg.err)
		m.caution = msg.resp
		return m, nil

	case battleMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.setErr(msg.err)
		m.battle = msg.resp
		return m, nil

	case tickMsg:
		return m, tea.Batch(
			fetchCircuits(m.config),
			m.tick(),
		)
	}

	return m, nil
}

// setErr keeps the first error of a calculation round.
func (m *Model) setErr(err error) {
	if err != nil {
		m.err = err
	}
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "r":
		m.err = nil
		m.loading = true
		return m, tea.Batch(
			fetchCircuits(m.config),
			m.recalculate(),
		)

	case "]", "n":
		return m, m.selectCircuit(m.selected + 1)

	case "[", "p":
		return m, m.selectCircuit(m.selected - 1)

	case "down", "j", "tab":
		m.focus = (m.focus + 1) % fieldCount
		return m, nil

	case "up", "k", "shift+tab":
		m.focus = (m.focus + fieldCount - 1) % fieldCount
		return m, nil

	case "right", "l", "+":
		return m.change(1)

	case "left", "h", "-":
		return m.change(-1)

	case "L", "shift+right":
		return m.change(10)

	case "H", "shift+left":
		return m.change(-10)

	case "m":
		m.focus = fieldMode
		return m.change(1)
	}

	return m, nil
}

func (m Model) change(steps int) (tea.Model, tea.Cmd) {
	before := m.inputs
	m.adjust(steps)
	if m.inputs == before {
		return m, nil
	}
	m.err = nil
	return m, m.recalculate()
}
