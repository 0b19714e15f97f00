// Package director decides, tick by tick, what a simulated concert shows:
// the POV clip per performer, the ambient overlays, and the gig phase.
//
// A Director is single-threaded. The host calls Tick from one goroutine;
// independent sessions use independent Directors and share only the
// read-only catalog.
package director

import (
	"maps"
	"slices"
	"time"

	"gig-director/catalog"
	"gig-director/debug"
)

// Options configures a Director
type Options struct {
	// Roles is the band lineup. Defaults to catalog.PerformerRoles.
	Roles []catalog.Role

	// Seed feeds the default RNG. RNG, when set, wins.
	Seed uint64
	RNG  RNG

	EntranceDuration time.Duration

	// LookAroundChance is the per-selection probability of a crowd look or
	// stage scan. Zero means DefaultLookAroundChance; negative disables.
	LookAroundChance float64
}

// Output is the composed result of one tick
type Output struct {
	Phase      Phase
	Current    Clip // clip for the POV role in the tick's signals
	Clips      map[catalog.Role]Clip
	Overlays   []string
	Crowd      string
	Effects    []Effect
	SongIndex  int
	TotalSongs int
	Section    catalog.Section
	Intensity  float64
	CrowdMood  float64
	Playing    bool
}

func (o Output) clone() Output {
	o.Clips = maps.Clone(o.Clips)
	o.Overlays = slices.Clone(o.Overlays)
	o.Effects = slices.Clone(o.Effects)
	return o
}

// Director drives one gig-viewing session
type Director struct {
	cat        *catalog.Catalog
	rng        RNG
	lookAround float64

	phase    *PhaseMachine
	roles    []catalog.Role
	cyclers  map[catalog.Role]*Cycler
	overlays *OverlayEngine

	stopped bool
	last    Output
}

// New creates a Director in the backstage phase
func New(cat *catalog.Catalog, now time.Time, opts Options) *Director {
	rng := opts.RNG
	if rng == nil {
		rng = NewRNG(opts.Seed)
	}
	lookAround := opts.LookAroundChance
	switch {
	case lookAround == 0:
		lookAround = DefaultLookAroundChance
	case lookAround < 0:
		lookAround = 0
	}
	roles := opts.Roles
	if len(roles) == 0 {
		roles = catalog.PerformerRoles
	}

	d := &Director{
		cat:        cat,
		rng:        rng,
		lookAround: lookAround,
		phase:      NewPhaseMachine(now, opts.EntranceDuration),
		cyclers:    make(map[catalog.Role]*Cycler),
		overlays:   NewOverlayEngine(cat),
	}
	for _, r := range roles {
		d.addRole(r)
	}
	d.last = Output{Phase: PhaseBackstage, Clips: map[catalog.Role]Clip{}}
	return d
}

func (d *Director) addRole(r catalog.Role) {
	if !r.Performer() {
		return
	}
	if _, ok := d.cyclers[r]; ok {
		return
	}
	d.roles = append(d.roles, r)
	d.cyclers[r] = NewCycler(d.cat, r, d.rng, d.lookAround)
}

// Roles returns the lineup in order
func (d *Director) Roles() []catalog.Role {
	return slices.Clone(d.roles)
}

// Phase returns the current phase
func (d *Director) Phase() Phase { return d.phase.Phase() }

// State returns a snapshot of the gig sequence state
func (d *Director) State() GigSequenceState { return d.phase.State() }

// CycleState returns a snapshot of one performer's cycle state
func (d *Director) CycleState(r catalog.Role) (PerformerCycleState, bool) {
	c, ok := d.cyclers[r]
	if !ok {
		return PerformerCycleState{}, false
	}
	return c.State(), true
}

// Stopped reports whether Stop was called
func (d *Director) Stopped() bool { return d.stopped }

// Tick advances the session: phase first, then clips, then overlays, so
// clip and overlay decisions always see this tick's phase. After Stop it
// returns the final output unchanged.
func (d *Director) Tick(now time.Time, sig Signals) Output {
	if d.stopped {
		return d.last.clone()
	}
	sig = sig.Clamped()

	phase := d.phase.Step(now, sig)

	d.addRole(sig.Role)
	clips := make(map[catalog.Role]Clip, len(d.roles))
	for _, r := range d.roles {
		clips[r] = d.cyclers[r].Tick(now, sig)
	}
	pov := sig.Role
	if _, ok := d.cyclers[pov]; !ok && len(d.roles) > 0 {
		pov = d.roles[0]
	}

	overlays := d.overlays.Evaluate(sig)

	d.phase.state.LastAppliedIntensity = sig.Intensity
	d.phase.state.ActiveOverlaySet = slices.Clone(overlays)

	d.last = Output{
		Phase:      phase,
		Current:    clips[pov],
		Clips:      clips,
		Overlays:   overlays,
		Crowd:      SelectCrowdVariant(d.cat, sig.VenueCapacity),
		Effects:    d.phase.TakeEffects(),
		SongIndex:  sig.SongIndex,
		TotalSongs: sig.TotalSongs,
		Section:    sig.Section,
		Intensity:  sig.Intensity,
		CrowdMood:  sig.CrowdMood,
		Playing:    sig.IsPlaying,
	}
	debug.LogEvery(100, "tick", "%s song %d/%d %s intensity %.2f overlays %v",
		phase, sig.SongIndex+1, sig.TotalSongs, sig.Section, sig.Intensity, overlays)
	return d.last.clone()
}

// Stop ends the session: the phase moves to exit and every later Tick
// returns the output computed here.
func (d *Director) Stop(now time.Time) Output {
	if d.stopped {
		return d.last.clone()
	}
	d.phase.Fire(now, TriggerStop)
	d.stopped = true

	d.last.Phase = d.phase.Phase()
	d.last.Playing = false
	d.last.Effects = nil

	out := d.last.clone()
	out.Effects = d.phase.TakeEffects()
	return out
}
