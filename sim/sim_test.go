package sim

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gig-director/catalog"
	"gig-director/director"
)

var t0 = time.Date(2024, 6, 1, 21, 0, 0, 0, time.UTC)

func shortSet() Setlist {
	return Setlist{Name: "short", Songs: []Song{
		{Title: "one", Sections: []Span{{Section: catalog.SectionIntro, Seconds: 2}, {Section: catalog.SectionChorus, Seconds: 3}}},
		{Title: "two", Sections: []Span{{Section: catalog.SectionVerse, Seconds: 4}, {Section: catalog.SectionSolo, Seconds: 2, Energy: 0.95}}},
	}}
}

func quietOpts() Options {
	return Options{
		Seed:      1,
		LoadDelay: time.Second,
		WalkOn:    2 * time.Second,
		Gap:       3 * time.Second,
		Role:      catalog.RoleGuitarist,
	}
}

func TestGenerateSetlistIsDeterministic(t *testing.T) {
	a := GenerateSetlist(7, 5, 3*time.Minute)
	b := GenerateSetlist(7, 5, 3*time.Minute)
	assert.Equal(t, a, b)
	require.NoError(t, a.Validate())
	assert.Len(t, a.Songs, 5)
	for _, song := range a.Songs {
		assert.InDelta(t, (3 * time.Minute).Seconds(), song.Duration().Seconds(), 60)
	}
	assert.NotEqual(t, a, GenerateSetlist(8, 5, 3*time.Minute))
}

func TestSetlistValidate(t *testing.T) {
	assert.Error(t, Setlist{}.Validate())
	assert.Error(t, Setlist{Songs: []Song{{Title: "x"}}}.Validate())
	assert.Error(t, Setlist{Songs: []Song{{Sections: []Span{{Section: catalog.SectionAll, Seconds: 1}}}}}.Validate())
	assert.Error(t, Setlist{Songs: []Song{{Sections: []Span{{Section: catalog.SectionVerse}}}}}.Validate())
	assert.Error(t, Setlist{Songs: []Song{{Sections: []Span{{Section: catalog.SectionVerse, Seconds: 1, Energy: 2}}}}}.Validate())
	assert.NoError(t, shortSet().Validate())
}

func TestLoadSetlist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "set.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: Friday
songs:
  - title: Opener
    sections:
      - {section: intro, seconds: 10}
      - {section: chorus, seconds: 20, energy: 0.9}
`), 0644))

	sl, err := LoadSetlist(path)
	require.NoError(t, err)
	assert.Equal(t, "Friday", sl.Name)
	require.Len(t, sl.Songs, 1)
	assert.Equal(t, 30*time.Second, sl.Songs[0].Duration())
	assert.Equal(t, 0.3, sl.Songs[0].Sections[0].BaseEnergy())
	assert.Equal(t, 0.9, sl.Songs[0].Sections[1].BaseEnergy())

	require.NoError(t, os.WriteFile(path, []byte("name: x\nbpm: 120\n"), 0644))
	_, err = LoadSetlist(path)
	assert.Error(t, err, "unknown fields are rejected")

	_, err = LoadSetlist(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestGigTimeline(t *testing.T) {
	g := NewGig(shortSet(), quietOpts())
	at := func(d time.Duration) director.Signals { return g.Signals(t0.Add(d)) }

	s := at(0)
	assert.False(t, s.Ready)
	assert.Equal(t, 2, s.TotalSongs)

	s = at(1500 * time.Millisecond)
	assert.True(t, s.Ready)
	assert.False(t, s.InSong)

	s = at(3500 * time.Millisecond)
	assert.True(t, s.InSong)
	assert.Equal(t, 0, s.SongIndex)
	assert.Equal(t, catalog.SectionIntro, s.Section)

	s = at(6 * time.Second)
	assert.Equal(t, catalog.SectionChorus, s.Section)

	s = at(9 * time.Second)
	assert.False(t, s.InSong)
	assert.True(t, s.SongEnded)
	assert.Equal(t, 0, s.SongIndex)

	s = at(12 * time.Second)
	assert.True(t, s.InSong)
	assert.Equal(t, 1, s.SongIndex)
	assert.Equal(t, catalog.SectionVerse, s.Section)

	s = at(16500 * time.Millisecond)
	assert.Equal(t, catalog.SectionSolo, s.Section)

	s = at(30 * time.Second)
	assert.Equal(t, 2, s.SongIndex)
	assert.True(t, g.Position().Done)
}

func TestGigPauseFreezesClock(t *testing.T) {
	g := NewGig(shortSet(), quietOpts())
	g.Signals(t0)
	g.Signals(t0.Add(4 * time.Second))
	g.TogglePause()

	s := g.Signals(t0.Add(time.Minute))
	assert.False(t, s.IsPlaying)
	assert.Equal(t, 4*time.Second, g.Elapsed())
	assert.True(t, g.Paused())

	g.TogglePause()
	s = g.Signals(t0.Add(time.Minute + time.Second))
	assert.True(t, s.IsPlaying)
	assert.Equal(t, 5*time.Second, g.Elapsed())
}

func TestGigOverridesExpire(t *testing.T) {
	opts := quietOpts()
	opts.OverrideHold = 2 * time.Second
	g := NewGig(shortSet(), opts)
	g.Signals(t0.Add(0))
	g.Signals(t0.Add(4 * time.Second))

	g.SetIntensity(1.4)
	g.SetMood(95)
	s := g.Signals(t0.Add(5 * time.Second))
	assert.Equal(t, 1.0, s.Intensity)
	assert.Equal(t, 95.0, s.CrowdMood)

	s = g.Signals(t0.Add(7 * time.Second))
	assert.Less(t, s.Intensity, 1.0)
	assert.Less(t, s.CrowdMood, 95.0)
}

func TestGigNextSongReportsEnd(t *testing.T) {
	g := NewGig(shortSet(), quietOpts())
	g.Signals(t0)

	g.NextSong() // skips the walk-on
	s := g.Signals(t0)
	assert.True(t, s.InSong)
	assert.Equal(t, 0, s.SongIndex)

	g.NextSong()
	s = g.Signals(t0)
	assert.True(t, s.SongEnded)
	assert.Equal(t, 0, s.SongIndex)

	g.NextSong()
	s = g.Signals(t0)
	assert.True(t, s.InSong)
	assert.Equal(t, 1, s.SongIndex)
}

func TestGigStopAndRole(t *testing.T) {
	g := NewGig(shortSet(), quietOpts())
	assert.Equal(t, catalog.RoleBassist, g.CycleRole())
	g.SetRole(catalog.RoleKeyboardist)
	assert.Equal(t, catalog.RoleGuitarist, g.CycleRole())

	g.Stop()
	s := g.Signals(t0)
	assert.True(t, s.Stop)
	assert.Equal(t, catalog.RoleGuitarist, s.Role)
}

func TestPlayVisitsPhasesInOrder(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		sl := GenerateSetlist(seed, 3, 40*time.Second)
		opts := quietOpts()
		opts.Seed = seed
		opts.Jitter = 0.1
		g := NewGig(sl, opts)

		var phases []director.Phase
		var effects []director.Effect
		final := Play(catalog.Default(), g, t0, 100*time.Millisecond, director.Options{Seed: seed}, func(f Frame) bool {
			if len(phases) == 0 || phases[len(phases)-1] != f.Output.Phase {
				phases = append(phases, f.Output.Phase)
			}
			effects = append(effects, f.Output.Effects...)
			return true
		})

		assert.Equal(t, director.PhaseExit, final.Phase, "seed %d", seed)
		want := []director.Phase{
			director.PhaseBackstage, director.PhaseEntrance,
			director.PhasePerformance, director.PhaseBetweenSongs,
			director.PhasePerformance, director.PhaseBetweenSongs,
			director.PhasePerformance, director.PhaseExit,
		}
		assert.Equal(t, want, phases, "seed %d", seed)
		assert.Equal(t, 1, count(effects, director.EffectEntrance))
		assert.Equal(t, 2, count(effects, director.EffectSongBreak))
		assert.Equal(t, 1, count(effects, director.EffectFinale))
	}
}

func TestPlayStopsEarly(t *testing.T) {
	g := NewGig(shortSet(), quietOpts())
	n := 0
	final := Play(catalog.Default(), g, t0, 100*time.Millisecond, director.Options{}, func(Frame) bool {
		n++
		return n < 10
	})
	assert.Equal(t, 10, n)
	assert.Equal(t, director.PhaseExit, final.Phase)
}

func count[T comparable](s []T, v T) int {
	n := 0
	for i := slices.Index(s, v); i >= 0; {
		n++
		s = s[i+1:]
		i = slices.Index(s, v)
	}
	return n
}
