package director

import (
	"time"

	"gig-director/debug"
)

// Phase is the macro stage of a gig
type Phase string

const (
	PhaseBackstage    Phase = "backstage"
	PhaseEntrance     Phase = "entrance"
	PhasePerformance  Phase = "performance"
	PhaseBetweenSongs Phase = "between_songs"
	PhaseExit         Phase = "exit"
)

// Phases lists every phase in lifecycle order
var Phases = []Phase{PhaseBackstage, PhaseEntrance, PhasePerformance, PhaseBetweenSongs, PhaseExit}

// Trigger is an event that may move the phase machine
type Trigger int

const (
	TriggerReady Trigger = iota
	TriggerEntranceElapsed
	TriggerSongStart
	TriggerSongEnd
	TriggerStop
)

func (t Trigger) String() string {
	switch t {
	case TriggerReady:
		return "ready"
	case TriggerEntranceElapsed:
		return "entrance_elapsed"
	case TriggerSongStart:
		return "song_start"
	case TriggerSongEnd:
		return "song_end"
	case TriggerStop:
		return "stop"
	}
	return "unknown"
}

// Effect is a one-shot cue fired when a phase is entered
type Effect string

const (
	EffectEntrance  Effect = "entrance_fx"
	EffectSongIntro Effect = "song_intro"
	EffectSongBreak Effect = "song_break"
	EffectFinale    Effect = "finale"
)

var entryEffects = map[Phase]Effect{
	PhaseEntrance:     EffectEntrance,
	PhasePerformance:  EffectSongIntro,
	PhaseBetweenSongs: EffectSongBreak,
	PhaseExit:         EffectFinale,
}

// DefaultEntranceDuration is how long the walk-on lasts when no song
// starts first
const DefaultEntranceDuration = 8 * time.Second

// GigSequenceState is the mutable state of one gig session
type GigSequenceState struct {
	Phase                Phase
	PhaseEnteredAt       time.Time
	SongIndex            int
	TotalSongs           int
	LastAppliedIntensity float64
	ActiveOverlaySet     []string

	// PendingEffects holds entry effects not yet handed to the renderer.
	// Each is appended once on phase entry and cleared by TakeEffects.
	PendingEffects []Effect
}

// PhaseMachine owns the gig lifecycle:
// backstage -> entrance -> performance <-> between_songs -> exit.
// Out-of-order triggers are ignored.
type PhaseMachine struct {
	state     GigSequenceState
	entrance  time.Duration
	breakSong int // song index that ended when between_songs was entered
}

// NewPhaseMachine starts in backstage at now
func NewPhaseMachine(now time.Time, entrance time.Duration) *PhaseMachine {
	if entrance <= 0 {
		entrance = DefaultEntranceDuration
	}
	return &PhaseMachine{
		state:     GigSequenceState{Phase: PhaseBackstage, PhaseEnteredAt: now},
		entrance:  entrance,
		breakSong: -1,
	}
}

// Phase returns the current phase
func (m *PhaseMachine) Phase() Phase { return m.state.Phase }

// State returns a snapshot of the sequence state
func (m *PhaseMachine) State() GigSequenceState {
	s := m.state
	s.ActiveOverlaySet = append([]string(nil), s.ActiveOverlaySet...)
	s.PendingEffects = append([]Effect(nil), s.PendingEffects...)
	return s
}

// TakeEffects returns the pending entry effects and clears them
func (m *PhaseMachine) TakeEffects() []Effect {
	fx := m.state.PendingEffects
	m.state.PendingEffects = nil
	return fx
}

// Step derives triggers from signals and applies at most one transition.
// Stop is honored even while playback is paused; everything else is frozen.
func (m *PhaseMachine) Step(now time.Time, sig Signals) Phase {
	m.state.SongIndex = sig.SongIndex
	m.state.TotalSongs = sig.TotalSongs

	if sig.Stop {
		m.Fire(now, TriggerStop)
		return m.state.Phase
	}
	if !sig.IsPlaying {
		return m.state.Phase
	}

	switch m.state.Phase {
	case PhaseBackstage:
		if sig.Ready {
			m.Fire(now, TriggerReady)
		}
	case PhaseEntrance:
		if sig.InSong {
			m.Fire(now, TriggerSongStart)
		} else if now.Sub(m.state.PhaseEnteredAt) >= m.entrance {
			m.Fire(now, TriggerEntranceElapsed)
		}
	case PhasePerformance:
		if sig.SongEnded || m.songsExhausted() {
			m.Fire(now, TriggerSongEnd)
		}
	case PhaseBetweenSongs:
		if m.songsExhausted() {
			m.Fire(now, TriggerSongEnd)
		} else if sig.InSong && !sig.SongEnded {
			m.Fire(now, TriggerSongStart)
		}
	}
	return m.state.Phase
}

// Fire applies a trigger. It reports whether the phase changed; invalid
// triggers for the current phase are dropped without error.
func (m *PhaseMachine) Fire(now time.Time, t Trigger) bool {
	next, ok := m.target(t)
	if !ok {
		debug.Log("phase", "ignored %s in %s", t, m.state.Phase)
		return false
	}
	m.enter(now, next, t)
	return true
}

func (m *PhaseMachine) target(t Trigger) (Phase, bool) {
	if t == TriggerStop {
		return PhaseExit, m.state.Phase != PhaseExit
	}
	switch m.state.Phase {
	case PhaseBackstage:
		if t == TriggerReady {
			return PhaseEntrance, true
		}
	case PhaseEntrance:
		if t == TriggerEntranceElapsed || t == TriggerSongStart {
			return PhasePerformance, true
		}
	case PhasePerformance:
		if t == TriggerSongEnd {
			if m.lastSong() {
				return PhaseExit, true
			}
			return PhaseBetweenSongs, true
		}
	case PhaseBetweenSongs:
		if t == TriggerSongEnd && m.songsExhausted() {
			return PhaseExit, true
		}
		if t == TriggerSongStart && m.state.SongIndex > m.breakSong {
			return PhasePerformance, true
		}
	}
	return "", false
}

// lastSong reports whether the song that just ended leaves none remaining
func (m *PhaseMachine) lastSong() bool {
	return m.state.SongIndex+1 >= m.state.TotalSongs
}

func (m *PhaseMachine) songsExhausted() bool {
	return m.state.TotalSongs > 0 && m.state.SongIndex >= m.state.TotalSongs
}

func (m *PhaseMachine) enter(now time.Time, next Phase, t Trigger) {
	debug.Log("phase", "%s -> %s on %s (song %d/%d)", m.state.Phase, next, t, m.state.SongIndex+1, m.state.TotalSongs)
	if next == PhaseBetweenSongs {
		m.breakSong = m.state.SongIndex
	}
	m.state.Phase = next
	m.state.PhaseEnteredAt = now
	if fx, ok := entryEffects[next]; ok {
		m.state.PendingEffects = append(m.state.PendingEffects, fx)
	}
}
