// Package sim plays a setlist against a clock and reports what a real
// audio host would: readiness, song position, section, intensity and
// crowd mood. Manual overrides stand in for a sound engineer.
package sim

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"gig-director/catalog"
	"gig-director/debug"
	"gig-director/director"
)

// Options shape the simulated show
type Options struct {
	Seed          uint64
	LoadDelay     time.Duration // until the session reports ready
	WalkOn        time.Duration // from ready until the first downbeat
	Gap           time.Duration // silence between songs
	Jitter        float64       // stddev of intensity noise
	MoodLag       time.Duration // time constant of crowd mood drift
	OverrideHold  time.Duration // how long a manual intensity or mood sticks
	VenueCapacity int
	Role          catalog.Role
}

// DefaultOptions returns the timings used by the run command
func DefaultOptions() Options {
	return Options{
		LoadDelay:     2 * time.Second,
		WalkOn:        4 * time.Second,
		Gap:           5 * time.Second,
		Jitter:        0.05,
		MoodLag:       6 * time.Second,
		OverrideHold:  5 * time.Second,
		VenueCapacity: 800,
		Role:          catalog.RoleVocalist,
	}
}

// Position is where the show is on its timeline
type Position struct {
	Ready     bool
	Song      int
	InSong    bool
	SongEnded bool
	Section   catalog.Section
	Energy    float64
	Done      bool // every song and the trailing gap are over
}

type override struct {
	value float64
	until time.Duration
}

// Gig is a running simulated show. Safe for concurrent use: the host
// loop samples it while the TUI and MIDI input push overrides.
type Gig struct {
	mu      sync.Mutex
	setlist Setlist
	opts    Options
	rng     *rand.Rand

	last    time.Time
	elapsed time.Duration
	paused  bool
	stopped bool

	mood       float64
	intensity  *override
	moodPin    *override
	applauded  int
	starts     []time.Duration
	showLength time.Duration
}

// NewGig prepares a show. Zero timing fields take DefaultOptions values.
func NewGig(sl Setlist, opts Options) *Gig {
	def := DefaultOptions()
	if opts.LoadDelay == 0 {
		opts.LoadDelay = def.LoadDelay
	}
	if opts.WalkOn == 0 {
		opts.WalkOn = def.WalkOn
	}
	if opts.Gap == 0 {
		opts.Gap = def.Gap
	}
	if opts.MoodLag == 0 {
		opts.MoodLag = def.MoodLag
	}
	if opts.OverrideHold == 0 {
		opts.OverrideHold = def.OverrideHold
	}
	if opts.Role == "" {
		opts.Role = def.Role
	}

	g := &Gig{
		setlist:   sl,
		opts:      opts,
		rng:       director.NewRNG(opts.Seed),
		mood:      35,
		applauded: -1,
	}
	at := opts.LoadDelay + opts.WalkOn
	for _, song := range sl.Songs {
		g.starts = append(g.starts, at)
		at += song.Duration() + opts.Gap
	}
	g.showLength = at
	return g
}

// Setlist returns the songs being played
func (g *Gig) Setlist() Setlist { return g.setlist }

// Elapsed is show time, which does not advance while paused
func (g *Gig) Elapsed() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.elapsed
}

// Length is the full show including load, walk-on and gaps
func (g *Gig) Length() time.Duration { return g.showLength }

// Position reports the timeline position without advancing the clock
func (g *Gig) Position() Position {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position()
}

func (g *Gig) position() Position {
	e := g.elapsed
	p := Position{Ready: e >= g.opts.LoadDelay, Section: catalog.SectionIntro, Energy: 0.2}
	if len(g.starts) == 0 || e < g.starts[0] {
		return p
	}
	for i, start := range g.starts {
		song := g.setlist.Songs[i]
		end := start + song.Duration()
		if e >= end+g.opts.Gap {
			continue
		}
		p.Song = i
		if e >= end {
			p.SongEnded = true
			p.Section = catalog.SectionOutro
			p.Energy = 0.15
			return p
		}
		p.InSong = true
		at := start
		for _, sp := range song.Sections {
			at += sp.Length()
			if e < at {
				p.Section = sp.Section
				p.Energy = sp.BaseEnergy()
				break
			}
		}
		return p
	}
	p.Song = len(g.starts)
	p.SongEnded = true
	p.Section = catalog.SectionOutro
	p.Energy = 0.1
	p.Done = true
	return p
}

// Signals advances the show to now and samples it
func (g *Gig) Signals(now time.Time) director.Signals {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.last.IsZero() {
		g.last = now
	}
	dt := now.Sub(g.last)
	if dt < 0 {
		dt = 0
	}
	g.last = now
	if !g.paused && !g.stopped {
		g.elapsed += dt
	}

	pos := g.position()
	intensity := pos.Energy
	if pos.InSong && g.opts.Jitter > 0 {
		intensity += g.rng.NormFloat64() * g.opts.Jitter
	}
	if o := g.intensity; o != nil {
		if g.elapsed < o.until {
			intensity = o.value
		} else {
			g.intensity = nil
		}
	}
	intensity = math.Min(1, math.Max(0, intensity))

	if !g.paused {
		g.driftMood(intensity, dt, pos)
	}

	return director.Signals{
		Role:          g.opts.Role,
		Intensity:     intensity,
		CrowdMood:     g.mood,
		Section:       pos.Section,
		IsPlaying:     !g.paused,
		SongIndex:     pos.Song,
		TotalSongs:    len(g.setlist.Songs),
		InSong:        pos.InSong,
		SongEnded:     pos.SongEnded,
		Ready:         pos.Ready,
		Stop:          g.stopped,
		VenueCapacity: g.opts.VenueCapacity,
	}
}

func (g *Gig) driftMood(intensity float64, dt time.Duration, pos Position) {
	if o := g.moodPin; o != nil {
		if g.elapsed < o.until {
			g.mood = o.value
			return
		}
		g.moodPin = nil
	}
	k := math.Min(1, dt.Seconds()/g.opts.MoodLag.Seconds())
	g.mood += (intensity*100 - g.mood) * k
	if pos.SongEnded && !pos.Done && g.applauded < pos.Song {
		g.applauded = pos.Song
		g.mood = math.Min(100, g.mood+12)
		debug.Log("sim", "applause after song %d, mood %.0f", pos.Song+1, g.mood)
	}
	g.mood = math.Min(100, math.Max(0, g.mood))
}

// SetIntensity pins intensity for OverrideHold
func (g *Gig) SetIntensity(v float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intensity = &override{value: math.Min(1, math.Max(0, v)), until: g.elapsed + g.opts.OverrideHold}
}

// NudgeIntensity pins intensity at the last sampled value plus delta
func (g *Gig) NudgeIntensity(delta float64) {
	g.mu.Lock()
	base := g.position().Energy
	if g.intensity != nil {
		base = g.intensity.value
	}
	g.mu.Unlock()
	g.SetIntensity(base + delta)
}

// SetMood pins crowd mood for OverrideHold
func (g *Gig) SetMood(v float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.moodPin = &override{value: math.Min(100, math.Max(0, v)), until: g.elapsed + g.opts.OverrideHold}
}

// NudgeMood shifts crowd mood by delta
func (g *Gig) NudgeMood(delta float64) {
	g.mu.Lock()
	base := g.mood
	g.mu.Unlock()
	g.SetMood(base + delta)
}

// NextSong cuts the current song short so its end is still reported.
// Before the first song it skips the walk-on.
func (g *Gig) NextSong() {
	g.mu.Lock()
	defer g.mu.Unlock()
	pos := g.position()
	switch {
	case pos.Done || len(g.starts) == 0:
		return
	case !pos.InSong && !pos.SongEnded:
		g.elapsed = max(g.elapsed, g.starts[0])
	case pos.InSong:
		g.elapsed = g.starts[pos.Song] + g.setlist.Songs[pos.Song].Duration()
	default:
		if pos.Song+1 < len(g.starts) {
			g.elapsed = g.starts[pos.Song+1]
		} else {
			g.elapsed = g.showLength
		}
	}
	debug.Log("sim", "skip to %s", g.elapsed)
}

// TogglePause flips the playing flag
func (g *Gig) TogglePause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paused = !g.paused
}

// Paused reports whether the show is paused
func (g *Gig) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// Stop ends the show; every later sample carries Stop
func (g *Gig) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopped = true
}

// SetRole changes the POV performer
func (g *Gig) SetRole(r catalog.Role) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.opts.Role = r
}

// CycleRole moves the POV to the next performer
func (g *Gig) CycleRole() catalog.Role {
	g.mu.Lock()
	defer g.mu.Unlock()
	next := catalog.PerformerRoles[0]
	for i, r := range catalog.PerformerRoles {
		if r == g.opts.Role {
			next = catalog.PerformerRoles[(i+1)%len(catalog.PerformerRoles)]
			break
		}
	}
	g.opts.Role = next
	return next
}
