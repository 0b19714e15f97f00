package theme

import (
	"github.com/charmbracelet/lipgloss"

	"gig-director/director"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Solid rune // ■ active overlay
	Empty rune // □ inactive overlay

	PhaseDone    rune // ● phase already visited
	PhaseCurrent rune // ▶ current phase
	PhaseAhead   rune // · phase still to come

	Fallback rune // ! clip came from the legacy fallback
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Solid: '■',
			Empty: '□',

			PhaseDone:    '●',
			PhaseCurrent: '▶',
			PhaseAhead:   '·',

			Fallback: '!',
		},
	}
}

// Default is the stage palette shipped with the binary
func Default() *Theme {
	return New(MustBuiltin("stage"))
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // black box
	RoleSurface = 0.1 // house
	RoleMuted   = 0.3 // backlight
	RoleFG      = 1.0 // full white
	RoleAccent  = 0.4 // magenta wash
	RoleActive  = 0.6 // warm red
	RoleWarning = 0.7 // amber
	RoleSuccess = 0.9 // follow spot
)

// phaseRoles places each gig phase on the palette: dark before and
// after the show, bright while the band plays
var phaseRoles = map[director.Phase]float64{
	director.PhaseBackstage:    0.2,
	director.PhaseEntrance:     0.5,
	director.PhasePerformance:  0.9,
	director.PhaseBetweenSongs: 0.6,
	director.PhaseExit:         0.3,
}

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) Surface() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSurface))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Phase returns the color for a gig phase
func (t *Theme) Phase(p director.Phase) lipgloss.Color {
	return t.Color(phaseRoles[p])
}

// Energy colors an intensity in [0,1]; the dim end of the palette is
// skipped so low values stay readable
func (t *Theme) Energy(intensity float64) lipgloss.Color {
	return t.Color(0.3 + 0.7*intensity)
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
