package widgets

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gig-director/director"
	"gig-director/theme"
)

// RenderMeter renders "label ▮▮▮▮▯▯▯ value" with filled cells colored by
// color. frac is clamped to [0,1].
func RenderMeter(label string, frac float64, width int, value string, color lipgloss.Color) string {
	frac = min(1, max(0, frac))
	filled := int(frac*float64(width) + 0.5)
	on := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("▮", filled))
	off := strings.Repeat("▯", width-filled)
	return fmt.Sprintf("%-10s %s%s %s", label, on, off, value)
}

// RenderChips renders one chip per overlay id, solid when active
func RenderChips(ids, active []string, th *theme.Theme) string {
	onStyle := lipgloss.NewStyle().Foreground(th.Success())
	offStyle := lipgloss.NewStyle().Foreground(th.Muted())

	var out []string
	for _, id := range ids {
		if slices.Contains(active, id) {
			out = append(out, onStyle.Render(string(th.Symbols.Solid)+" "+id))
		} else {
			out = append(out, offStyle.Render(string(th.Symbols.Empty)+" "+id))
		}
	}
	return strings.Join(out, "  ")
}

// RenderPhaseStrip shows every phase with the current one highlighted.
// Phases before the current one in lifecycle order render as done.
func RenderPhaseStrip(current director.Phase, th *theme.Theme) string {
	idx := slices.Index(director.Phases, current)
	var out []string
	for i, p := range director.Phases {
		switch {
		case i == idx:
			out = append(out, lipgloss.NewStyle().Bold(true).Foreground(th.Phase(p)).
				Render(string(th.Symbols.PhaseCurrent)+" "+string(p)))
		case i < idx:
			out = append(out, lipgloss.NewStyle().Foreground(th.Muted()).
				Render(string(th.Symbols.PhaseDone)+" "+string(p)))
		default:
			out = append(out, lipgloss.NewStyle().Foreground(th.Muted()).
				Render(string(th.Symbols.PhaseAhead)+" "+string(p)))
		}
	}
	return strings.Join(out, "  ")
}

// RenderClipRow renders one performer line: role, clip id, type and energy
func RenderClipRow(role string, clip director.Clip, pov bool, th *theme.Theme) string {
	marker := " "
	if pov {
		marker = string(th.Symbols.PhaseCurrent)
	}
	id := clip.ID
	if id == "" {
		id = "-"
	}
	if clip.Fallback {
		id += " " + string(th.Symbols.Fallback)
	}
	idStyle := lipgloss.NewStyle().Foreground(th.Energy(clip.EnergyLevel))
	return fmt.Sprintf("%s %-12s %s  %s", marker, role, idStyle.Render(fmt.Sprintf("%-24s", id)),
		lipgloss.NewStyle().Foreground(th.Muted()).Render(string(clip.Type)))
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
