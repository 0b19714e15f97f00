package director

import (
	"slices"

	"gig-director/catalog"
	"gig-director/debug"
)

// thresholdEpsilon absorbs float error in activate-band subtraction
const thresholdEpsilon = 1e-9

// OverlayEngine derives the active overlay set every tick. The only state it
// carries between ticks is each rule's on/off bit for hysteresis.
type OverlayEngine struct {
	rules  []catalog.OverlayRule
	active map[string]bool
}

// NewOverlayEngine creates an engine over the catalog's rules
func NewOverlayEngine(cat *catalog.Catalog) *OverlayEngine {
	return &OverlayEngine{
		rules:  cat.Overlays(),
		active: make(map[string]bool),
	}
}

// Evaluate returns the active overlay ids in rule priority order. Rules
// with Requires see only the provisional set built earlier in this call.
func (e *OverlayEngine) Evaluate(sig Signals) []string {
	provisional := make(map[string]bool, len(e.rules))
	var out []string

	for _, r := range e.rules {
		on := e.ruleOn(r, sig, provisional)
		if on != e.active[r.ID] {
			debug.Log("overlay", "%s %s (intensity %.2f, mood %.0f, %s)", r.ID, onOff(on), sig.Intensity, sig.CrowdMood, sig.Section)
		}
		e.active[r.ID] = on
		if on {
			provisional[r.ID] = true
			out = append(out, r.ID)
		}
	}
	return out
}

// Active returns the ids that were on after the last Evaluate
func (e *OverlayEngine) Active() []string {
	var out []string
	for _, r := range e.rules {
		if e.active[r.ID] {
			out = append(out, r.ID)
		}
	}
	return out
}

func (e *OverlayEngine) ruleOn(r catalog.OverlayRule, sig Signals, provisional map[string]bool) bool {
	if !r.InSection(sig.Section) {
		return false
	}
	if slices.ContainsFunc(r.Requires, func(id string) bool { return !provisional[id] }) {
		return false
	}
	if r.Always {
		return true
	}

	v := sig.Intensity
	if r.Signal == catalog.SignalMood {
		v = sig.CrowdMood
	}
	if e.active[r.ID] {
		return v >= r.Deactivate()-thresholdEpsilon
	}
	return v >= r.Activate
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
