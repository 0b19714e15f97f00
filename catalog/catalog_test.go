package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultCatalogIsClean(t *testing.T) {
	c := Default()
	require.NotNil(t, c)
	assert.Empty(t, c.Rejected())

	for _, role := range PerformerRoles {
		v, ok := c.Legacy(role)
		if assert.True(t, ok, "legacy for %s", role) {
			assert.Equal(t, role, v.Role)
			assert.True(t, v.Legacy)
		}
	}

	crowd := c.Crowd()
	assert.Equal(t, "crowd_sparse", crowd.SmallID)
	assert.Equal(t, "crowd_packed", crowd.LargeID)

	seed := c.Seed()
	assert.Equal(t, "stage_haze", seed.Base)
	assert.Equal(t, "strobe", seed.HighEnergy)
}

func TestDefaultCatalogVariants(t *testing.T) {
	c := Default()

	strum, ok := c.Variant("gtr_strum")
	require.True(t, ok)
	assert.Equal(t, EnergyRange{Min: 0.3, Max: 0.7}, strum.Energy)
	assert.True(t, strum.AllSections())
	assert.Equal(t, 4*time.Second, strum.Loop)

	solo, ok := c.Variant("gtr_solo_focus")
	require.True(t, ok)
	assert.Equal(t, EnergyRange{Min: 0.7, Max: 1.0}, solo.Energy)
	assert.True(t, solo.Lists(SectionSolo))
	assert.Equal(t, ClipSoloFocus, solo.Type)
	assert.Equal(t, 3500*time.Millisecond, solo.Loop)
}

func TestLoadSkipsInvalidEntries(t *testing.T) {
	const doc = `
clips:
  - {id: ok, role: drummer, energy: [0.1, 0.9], sections: [all], loop: 2}
  - {id: inverted, role: drummer, energy: [0.8, 0.2], sections: [all], loop: 2}
  - {id: nosections, role: drummer, energy: [0.1, 0.9], sections: [], loop: 2}
  - {id: zeroloop, role: drummer, energy: [0.1, 0.9], sections: [verse], loop: 0}
  - {id: badrole, role: tambourine, energy: [0.1, 0.9], sections: [verse], loop: 1}
  - {id: ok, role: drummer, energy: [0.1, 0.9], sections: [verse], loop: 1}
  - {id: onebound, role: drummer, energy: [0.5], sections: [verse], loop: 1}
  - {id: badsection, role: drummer, energy: [0.1, 0.9], sections: [breakdown], loop: 1}
overlays:
  - {id: haze, always: true}
  - {id: wide, signal: intensity, activate: 0.2, band: 0.5}
  - {id: orphan, signal: intensity, activate: 0.5, band: 0.1, requires: [later]}
  - {id: later, signal: mood, activate: 50, band: 5}
`
	core, logs := observer.New(zapcore.WarnLevel)
	c, err := Load(strings.NewReader(doc), zap.New(core))
	require.NoError(t, err)

	ids := []string{}
	for _, v := range c.Variants() {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"ok"}, ids)

	overlays := []string{}
	for _, r := range c.Overlays() {
		overlays = append(overlays, r.ID)
	}
	assert.Equal(t, []string{"haze", "later"}, overlays)

	rejected := c.Rejected()
	// 7 clips, 2 overlays, plus unset crowd and seed rules
	assert.Len(t, rejected, 11)
	for _, err := range rejected {
		assert.True(t, errors.Is(err, ErrInvalidEntry), err.Error())
	}
	assert.Equal(t, len(rejected), logs.FilterMessage("catalog entry skipped").Len())

	var entry *EntryError
	require.True(t, errors.As(rejected[0], &entry))
	assert.Equal(t, "clip", entry.Kind)
	assert.Equal(t, "inverted", entry.ID)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(strings.NewReader("clips: [ {id: "), nil)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("clips:\n  - {id: a, colour: red}\n"), nil)
	assert.Error(t, err)
}

func TestSecondLegacyRejected(t *testing.T) {
	c := New(Spec{Clips: []ClipVariant{
		{ID: "a", Role: RoleBassist, Energy: EnergyRange{0, 1}, Sections: []Section{SectionAll}, Loop: time.Second, Legacy: true},
		{ID: "b", Role: RoleBassist, Energy: EnergyRange{0, 1}, Sections: []Section{SectionAll}, Loop: time.Second, Legacy: true},
	}}, nil)

	v, ok := c.Legacy(RoleBassist)
	require.True(t, ok)
	assert.Equal(t, "a", v.ID)
	_, ok = c.Variant("b")
	assert.False(t, ok)
}

func TestAccessorsReturnCopies(t *testing.T) {
	c := Default()
	v, _ := c.Variant("gtr_power_chords")
	v.Sections[0] = SectionOutro

	again, _ := c.Variant("gtr_power_chords")
	assert.Equal(t, SectionChorus, again.Sections[0])
}

func TestByRoleKeepsDeclarationOrder(t *testing.T) {
	got := []string{}
	for _, v := range Default().ByRole(RoleBassist) {
		got = append(got, v.ID)
	}
	assert.Equal(t, []string{"bass_legacy", "bass_groove", "bass_slap", "bass_walk_low"}, got)
}

func TestStoreSwap(t *testing.T) {
	first := Default()
	s := NewStore(first)
	second := New(Spec{}, nil)

	assert.Same(t, first, s.Current())
	assert.Same(t, first, s.Swap(second))
	assert.Same(t, second, s.Current())
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("clips: []\n"), 0644))

	initial, err := LoadFile(path, nil)
	require.NoError(t, err)
	store := NewStore(initial)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, store, nil) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	doc := "clips:\n  - {id: late, role: vocalist, energy: [0, 1], sections: [all], loop: 1}\n"
	assert.Eventually(t, func() bool {
		// rewrite until the watcher has registered and picked it up
		_ = os.WriteFile(path, []byte(doc), 0644)
		_, ok := store.Current().Variant("late")
		return ok
	}, 5*time.Second, 300*time.Millisecond)

	_, ok := initial.Variant("late")
	assert.False(t, ok, "previous catalog must stay unchanged")
}
