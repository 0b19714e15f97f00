package catalog

import (
	"slices"
	"time"
)

// Role identifies who a clip is filmed from or for
type Role string

const (
	RoleGuitarist   Role = "guitarist"
	RoleBassist     Role = "bassist"
	RoleDrummer     Role = "drummer"
	RoleVocalist    Role = "vocalist"
	RoleKeyboardist Role = "keyboardist"
	RoleCrowd       Role = "crowd"
	RoleOverlay     Role = "overlay"
	RoleSkin        Role = "skin"
)

// PerformerRoles lists the roles a Clip Cycler can run for, in lineup order
var PerformerRoles = []Role{RoleGuitarist, RoleBassist, RoleDrummer, RoleVocalist, RoleKeyboardist}

// Valid reports whether r is a known catalog role
func (r Role) Valid() bool {
	switch r {
	case RoleGuitarist, RoleBassist, RoleDrummer, RoleVocalist, RoleKeyboardist,
		RoleCrowd, RoleOverlay, RoleSkin:
		return true
	}
	return false
}

// Performer reports whether r is a band member role
func (r Role) Performer() bool {
	return slices.Contains(PerformerRoles, r)
}

// Section is a song section tag
type Section string

const (
	SectionIntro  Section = "intro"
	SectionVerse  Section = "verse"
	SectionChorus Section = "chorus"
	SectionBridge Section = "bridge"
	SectionSolo   Section = "solo"
	SectionOutro  Section = "outro"

	// SectionAll marks a variant that plays in every section
	SectionAll Section = "all"
)

// Sections lists every concrete section in song order
var Sections = []Section{SectionIntro, SectionVerse, SectionChorus, SectionBridge, SectionSolo, SectionOutro}

// Valid reports whether s is a concrete section (SectionAll is not)
func (s Section) Valid() bool {
	return slices.Contains(Sections, s)
}

// ClipType tags the framing of a chosen clip for renderers
type ClipType string

const (
	ClipPlaying   ClipType = "playing"
	ClipSoloFocus ClipType = "solo_focus"
	ClipCrowdLook ClipType = "crowd_look"
	ClipStageScan ClipType = "stage_scan"
)

// Valid reports whether t is a known clip type. The empty type is valid and
// means "derive it at selection time".
func (t ClipType) Valid() bool {
	switch t {
	case "", ClipPlaying, ClipSoloFocus, ClipCrowdLook, ClipStageScan:
		return true
	}
	return false
}

// EnergyRange is a closed interval within [0,1]
type EnergyRange struct {
	Min float64
	Max float64
}

// Contains is inclusive at both ends
func (r EnergyRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// ClipVariant is one playable POV loop and the conditions it may play under
type ClipVariant struct {
	ID       string
	Role     Role
	Energy   EnergyRange
	Sections []Section // concrete sections, or exactly {SectionAll}
	Loop     time.Duration
	Type     ClipType // optional framing hint
	Legacy   bool     // the role's fallback when nothing else qualifies
}

// AllSections reports whether the variant carries the "all" sentinel
func (v ClipVariant) AllSections() bool {
	return len(v.Sections) == 1 && v.Sections[0] == SectionAll
}

// Lists reports whether the variant names section explicitly
func (v ClipVariant) Lists(section Section) bool {
	return slices.Contains(v.Sections, section)
}

// Plays reports whether the variant is applicable in section
func (v ClipVariant) Plays(section Section) bool {
	return v.AllSections() || v.Lists(section)
}

func (v ClipVariant) clone() ClipVariant {
	v.Sections = slices.Clone(v.Sections)
	return v
}

// Signal names the input an overlay rule thresholds on
type Signal string

const (
	SignalIntensity Signal = "intensity" // [0,1]
	SignalMood      Signal = "mood"      // [0,100]
)

// Max returns the upper bound of the signal's range
func (s Signal) Max() float64 {
	if s == SignalMood {
		return 100
	}
	return 1
}

// OverlayRule activates an ambient overlay. Rules are evaluated in
// declaration order, and Requires may only name earlier rules.
type OverlayRule struct {
	ID       string
	Always   bool
	Signal   Signal
	Activate float64
	Band     float64
	Sections []Section // empty means every section
	Requires []string
}

// Deactivate is the level an active rule must fall below to switch off
func (r OverlayRule) Deactivate() float64 {
	return r.Activate - r.Band
}

// InSection reports whether the rule's section gate passes
func (r OverlayRule) InSection(section Section) bool {
	return len(r.Sections) == 0 || slices.Contains(r.Sections, section)
}

func (r OverlayRule) clone() OverlayRule {
	r.Sections = slices.Clone(r.Sections)
	r.Requires = slices.Clone(r.Requires)
	return r
}

// CrowdRule picks a crowd density variant from venue capacity
type CrowdRule struct {
	SmallID   string
	LargeID   string
	Threshold int // capacities below this are small venues
}

// SeedOverlays is the minimal overlay set: a base overlay that is always on
// and a high-energy overlay above a fixed intensity.
type SeedOverlays struct {
	Base       string
	HighEnergy string
	Threshold  float64
}
