package director

import "gig-director/catalog"

// Signals are the live inputs a host supplies every tick
type Signals struct {
	Role      catalog.Role    // performer whose POV is on screen
	Intensity float64         // [0,1], clamped
	CrowdMood float64         // [0,100], clamped
	Section   catalog.Section // current song section
	IsPlaying bool            // false freezes cyclers and the phase machine

	SongIndex  int  // zero-based index of the current song
	TotalSongs int  // songs in the setlist
	InSong     bool // a song is being played right now
	SongEnded  bool // the current song finished and the next has not started

	Ready bool // the session finished loading
	Stop  bool // explicit stop

	VenueCapacity int
}

// Clamped returns a copy with out-of-range values pulled into range
func (s Signals) Clamped() Signals {
	s.Intensity = clamp(s.Intensity, 0, 1)
	s.CrowdMood = clamp(s.CrowdMood, 0, 100)
	if s.SongIndex < 0 {
		s.SongIndex = 0
	}
	if s.TotalSongs < 0 {
		s.TotalSongs = 0
	}
	if s.VenueCapacity < 0 {
		s.VenueCapacity = 0
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v != v: // NaN
		return lo
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
