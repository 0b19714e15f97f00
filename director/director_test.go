package director

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gig-director/catalog"
)

func gigSignals() Signals {
	return Signals{
		Role:          catalog.RoleGuitarist,
		Intensity:     0.5,
		CrowdMood:     50,
		Section:       catalog.SectionVerse,
		IsPlaying:     true,
		TotalSongs:    3,
		VenueCapacity: 250,
	}
}

func TestDirectorTickUsesCurrentPhase(t *testing.T) {
	d := New(catalog.Default(), t0, Options{Seed: 1})
	sig := gigSignals()

	out := d.Tick(t0, sig)
	assert.Equal(t, PhaseBackstage, out.Phase)

	sig.Ready = true
	out = d.Tick(t0.Add(100*time.Millisecond), sig)
	assert.Equal(t, PhaseEntrance, out.Phase, "phase advances before clips and overlays are computed")
	assert.Equal(t, []Effect{EffectEntrance}, out.Effects)
	assert.Equal(t, PhaseEntrance, d.State().Phase)

	out = d.Tick(t0.Add(200*time.Millisecond), sig)
	assert.Empty(t, out.Effects)
}

func TestDirectorComposesOutput(t *testing.T) {
	d := New(catalog.Default(), t0, Options{Seed: 5})
	sig := gigSignals()
	sig.Ready = true
	sig.InSong = true
	sig.Intensity = 0.8
	sig.Section = catalog.SectionSolo

	d.Tick(t0, sig)
	out := d.Tick(t0.Add(100*time.Millisecond), sig)

	assert.Equal(t, PhasePerformance, out.Phase)
	assert.Equal(t, catalog.RoleGuitarist, out.Current.Role)
	assert.Contains(t, []string{"gtr_solo_focus", "gtr_fretboard_closeup"}, out.Current.ID)
	assert.Equal(t, catalog.ClipSoloFocus, out.Current.Type)
	assert.Len(t, out.Clips, len(catalog.PerformerRoles))
	assert.Equal(t, []string{"stage_haze", "strobe"}, out.Overlays)
	assert.Equal(t, "crowd_sparse", out.Crowd)

	st := d.State()
	assert.Equal(t, 0.8, st.LastAppliedIntensity)
	assert.Equal(t, out.Overlays, st.ActiveOverlaySet)
}

func TestDirectorClampsInputs(t *testing.T) {
	d := New(catalog.Default(), t0, Options{})
	sig := gigSignals()
	sig.Intensity = 1.7
	sig.CrowdMood = -12

	out := d.Tick(t0, sig)
	assert.Equal(t, 1.0, out.Intensity)
	assert.Equal(t, 0.0, out.CrowdMood)
	assert.Equal(t, 1.0, out.Current.EnergyLevel)
}

func TestDirectorAddsPOVRoleOnDemand(t *testing.T) {
	d := New(catalog.Default(), t0, Options{Roles: []catalog.Role{catalog.RoleDrummer}})
	sig := gigSignals()
	sig.Role = catalog.RoleVocalist

	out := d.Tick(t0, sig)
	assert.Equal(t, catalog.RoleVocalist, out.Current.Role)
	assert.Equal(t, []catalog.Role{catalog.RoleDrummer, catalog.RoleVocalist}, d.Roles())

	sig.Role = catalog.RoleCrowd
	out = d.Tick(t0.Add(time.Second), sig)
	assert.Equal(t, catalog.RoleDrummer, out.Current.Role, "non-performer POV falls back to the first lineup role")
}

func TestDirectorStopHaltsTicks(t *testing.T) {
	d := New(catalog.Default(), t0, Options{Seed: 9})
	sig := gigSignals()
	sig.Ready = true
	d.Tick(t0, sig)
	sig.InSong = true
	before := d.Tick(t0.Add(time.Second), sig)
	require.Equal(t, PhasePerformance, before.Phase)

	final := d.Stop(t0.Add(2 * time.Second))
	assert.Equal(t, PhaseExit, final.Phase)
	assert.Equal(t, []Effect{EffectFinale}, final.Effects)
	assert.True(t, d.Stopped())

	sig.Intensity = 1
	sig.Section = catalog.SectionSolo
	after := d.Tick(t0.Add(time.Minute), sig)
	final.Effects = nil
	if diff := cmp.Diff(final, after); diff != "" {
		t.Errorf("tick after stop changed output (-want +got):\n%s", diff)
	}
	assert.Equal(t, final.Clips, d.Stop(t0.Add(2*time.Minute)).Clips)
}

func TestDirectorSessionsAreIndependent(t *testing.T) {
	cat := catalog.Default()
	a := New(cat, t0, Options{Seed: 3})
	b := New(cat, t0, Options{Seed: 3})

	sig := gigSignals()
	sig.Ready = true
	a.Tick(t0, sig)
	b.Tick(t0, sig)
	a.Stop(t0.Add(time.Second))

	sig.InSong = true
	out := b.Tick(t0.Add(time.Second), sig)
	assert.Equal(t, PhasePerformance, out.Phase)
	assert.False(t, b.Stopped())
}

func TestDirectorDeterministicForSeed(t *testing.T) {
	run := func() []Output {
		d := New(catalog.Default(), t0, Options{Seed: 77, LookAroundChance: 0.5})
		rng := NewRNG(1)
		var outs []Output
		sig := gigSignals()
		sig.Ready, sig.InSong = true, true
		for i := 0; i < 300; i++ {
			sig.Intensity = rng.Float64()
			sig.Section = catalog.Sections[rng.IntN(len(catalog.Sections))]
			outs = append(outs, d.Tick(t0.Add(time.Duration(i)*250*time.Millisecond), sig))
		}
		return outs
	}
	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("same seed, different run:\n%s", diff)
	}
}
