package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/haskel/pitwall/internal/strategy"
)

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sections := []string{m.renderTitleBar()}

	if len(m.circuits) > 0 {
		sections = append(sections, m.renderCircuitTabs())
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.detail != nil {
		sections = append(sections, m.renderModelInfo())
		sections = append(sections, m.renderWarnings()...)
		if m.detail.Available {
			sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
				panelStyle.Render(m.renderInputs()),
				panelStyle.Render(m.renderResults()),
			))
		}
	} else if len(m.circuits) == 0 && !m.loading {
		sections = append(sections, helpStyle.Render("  No circuits found on the server."))
	}

	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitleBar() string {
	title := titleStyle.Render("PITWALL STRATEGY")

	status := "●"
	if m.loading {
		status = "↻ loading..."
	}
	help := helpStyle.Render("q:quit r:refresh [ ]:circuit ↑↓:field ←→:adjust m:mode")

	rightPart := fmt.Sprintf("%s | %s", status, help)
	spacing := max(m.width-lipgloss.Width(title)-lipgloss.Width(rightPart)-2, 1)

	return fmt.Sprintf("%s%s%s", title, strings.Repeat(" ", spacing), helpStyle.Render(rightPart))
}

func (m Model) renderCircuitTabs() string {
	tabs := make([]string, 0, len(m.circuits))
	for i, c := range m.circuits {
		style := tabStyle
		if i == m.selected {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(c.Circuit))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderModelInfo() string {
	d := m.detail
	costs := fmt.Sprintf("pit lane %.1fs green / %.1fs caution", d.Costs.Green, d.Costs.Yellow)
	if !d.Costs.Calibrated {
		costs += " (default)"
	}

	if !d.Available {
		return fmt.Sprintf("  %s  %s\n  %s",
			labelStyle.Render(d.Circuit), valueStyle.Render(costs),
			errorStyle.Render("Model unavailable: "+d.Error))
	}

	fit := ""
	if d.Metrics != nil {
		fit = fmt.Sprintf(", R² %.2f over %d laps", d.Metrics.R2, d.Metrics.Samples)
	}
	return fmt.Sprintf("  %s  %s  %s",
		labelStyle.Render(d.Circuit),
		valueStyle.Render(costs),
		helpStyle.Render(fmt.Sprintf("%s model%s", d.ModelType, fit)))
}

func (m Model) renderWarnings() []string {
	var out []string
	if m.ranges.TrackTemp.Fallback {
		out = append(out, warningStyle.Render("  ⚠ Weather data unavailable"))
	}
	if m.ranges.Aggressiveness.Fallback {
		out = append(out, warningStyle.Render("  ⚠ Telemetry data unavailable"))
	}
	if len(m.detail.IgnoredInputs) > 0 {
		out = append(out, warningStyle.Render(fmt.Sprintf(
			"  ⚠ The model ignores %s; changing it has no effect",
			strings.Join(m.detail.IgnoredInputs, ", "))))
	}
	return out
}

func (m Model) inputValue(f field) string {
	in := m.inputs
	switch f {
	case fieldTireAge:
		return fmt.Sprintf("%d", in.TireAge)
	case fieldTemp:
		return fmt.Sprintf("%.0f", in.Temp)
	case fieldAggression:
		return fmt.Sprintf("%.2f", in.Aggression)
	case fieldLapsRemaining:
		return fmt.Sprintf("%d", in.LapsRemaining)
	case fieldTargetLap:
		return fmt.Sprintf("%d", in.TargetLap)
	case fieldRivalTireAge:
		return fmt.Sprintf("%d", in.RivalTireAge)
	case fieldGap:
		return fmt.Sprintf("%.1f", in.Gap)
	case fieldMode:
		return in.Mode.String()
	}
	return ""
}

func (m Model) renderInputs() string {
	lines := []string{sectionHeaderStyle.Render("Conditions")}
	for f := range fieldCount {
		if f == fieldLapsRemaining {
			lines = append(lines, "", sectionHeaderStyle.Render("Caution"))
		}
		if f == fieldRivalTireAge {
			lines = append(lines, "", sectionHeaderStyle.Render("Battle"))
		}

		cursor, style := "  ", valueStyle
		if f == m.focus {
			cursor, style = "▸ ", focusedValueStyle
		}
		lines = append(lines, fmt.Sprintf("%s%-20s %s",
			cursor, labelStyle.Render(fieldLabels[f]), style.Render(m.inputValue(f))))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderResults() string {
	lines := []string{sectionHeaderStyle.Render("Next lap")}
	if p := m.prediction; p != nil {
		lines = append(lines,
			fmt.Sprintf("%s %s", labelStyle.Render(fmt.Sprintf("Lap delta at age %d:", p.TireAgeLaps)), renderDelta(p.Delta)),
			fmt.Sprintf("%s %s", labelStyle.Render(fmt.Sprintf("Lap delta at age %d:", p.NextLapTireAge)), renderDelta(p.NextLapDelta)),
		)
	} else {
		lines = append(lines, helpStyle.Render("waiting..."))
	}

	lines = append(lines, "", sectionHeaderStyle.Render("Caution"))
	if c := m.caution; c != nil {
		lines = append(lines, renderCautionVerdict(c.Verdict),
			helpStyle.Render(fmt.Sprintf("pit now %.2fs / stay out to lap %d %.2fs",
				c.Verdict.PitNowTotal, c.TargetPitLap, c.Verdict.StayOutTotal)))
	} else {
		lines = append(lines, helpStyle.Render("waiting..."))
	}

	lines = append(lines, "", sectionHeaderStyle.Render("Battle"))
	if b := m.battle; b != nil {
		lines = append(lines, renderBattleVerdict(b.Verdict),
			helpStyle.Render(fmt.Sprintf("net gain %+.2fs over %d laps against %.1fs gap",
				b.Verdict.NetGain, b.CycleLaps, b.Verdict.Gap)))
	} else {
		lines = append(lines, helpStyle.Render("waiting..."))
	}

	return strings.Join(lines, "\n")
}

func renderDelta(delta float64) string {
	return lipgloss.NewStyle().Foreground(deltaColor(delta)).Render(fmt.Sprintf("%+.3fs", delta))
}

func renderCautionVerdict(v strategy.CautionVerdict) string {
	if v.PitNow {
		return goodVerdictStyle.Render(fmt.Sprintf("PIT NOW! You save %.2fs", v.Saving))
	}
	return badVerdictStyle.Render(fmt.Sprintf("STAY OUT. Pitting costs %.2fs", math.Abs(v.Saving)))
}

func renderBattleVerdict(v strategy.BattleVerdict) string {
	if v.Success {
		return goodVerdictStyle.Render(fmt.Sprintf("%s SUCCEEDS by %.2fs", strings.ToUpper(v.Mode.String()), v.Margin))
	}
	return badVerdictStyle.Render(fmt.Sprintf("%s FAILS by %.2fs", strings.ToUpper(v.Mode.String()), -v.Margin))
}

func (m Model) renderFooter() string {
	if m.lastUpdated.IsZero() {
		return ""
	}
	return helpStyle.Render(fmt.Sprintf(
		"  %s │ %d circuits │ Updated: %s",
		m.config.ServerURL,
		len(m.circuits),
		m.lastUpdated.Format("15:04:05"),
	))
}
