package director

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gig-director/catalog"
)

func overlayCatalog(t *testing.T, rules ...catalog.OverlayRule) *catalog.Catalog {
	t.Helper()
	cat := catalog.New(catalog.Spec{Overlays: rules}, nil)
	require.Len(t, cat.Overlays(), len(rules))
	return cat
}

var strobe = catalog.OverlayRule{ID: "strobe", Signal: catalog.SignalIntensity, Activate: 0.7, Band: 0.1}

func TestOverlayHysteresis(t *testing.T) {
	e := NewOverlayEngine(overlayCatalog(t, strobe))

	steps := []struct {
		intensity float64
		want      bool
	}{
		{0.5, false},
		{0.69, false},
		{0.7, true},
		{0.9, true},
		{0.65, true},
		{0.61, true},
		{0.59, false},
		{0.65, false}, // inactive again, needs the full threshold
		{0.7, true},
	}
	for i, s := range steps {
		got := e.Evaluate(playing(s.intensity, catalog.SectionVerse))
		assert.Equal(t, s.want, len(got) == 1, "step %d intensity %.2f", i, s.intensity)
	}
}

func TestOverlayDropFromHighToBelowBand(t *testing.T) {
	e := NewOverlayEngine(overlayCatalog(t, strobe))

	require.Equal(t, []string{"strobe"}, e.Evaluate(playing(0.9, catalog.SectionChorus)))
	assert.Empty(t, e.Evaluate(playing(0.55, catalog.SectionChorus)))
}

func TestOverlayStaysOnWithinBand(t *testing.T) {
	e := NewOverlayEngine(overlayCatalog(t, strobe))
	e.Evaluate(playing(0.9, catalog.SectionChorus))

	for _, v := range []float64{0.8, 0.7, 0.65, 0.62, 0.605} {
		assert.Equal(t, []string{"strobe"}, e.Evaluate(playing(v, catalog.SectionChorus)), "%.3f", v)
	}
}

func TestOverlayCompositeRule(t *testing.T) {
	pyro := catalog.OverlayRule{
		ID: "pyro", Signal: catalog.SignalIntensity, Activate: 0.8, Band: 0.05,
		Sections: []catalog.Section{catalog.SectionChorus, catalog.SectionOutro},
		Requires: []string{"strobe"},
	}
	e := NewOverlayEngine(overlayCatalog(t,
		catalog.OverlayRule{ID: "haze", Always: true},
		strobe,
		pyro,
	))

	assert.Equal(t, []string{"haze", "strobe"}, e.Evaluate(playing(0.95, catalog.SectionVerse)))
	assert.Equal(t, []string{"haze", "strobe", "pyro"}, e.Evaluate(playing(0.95, catalog.SectionChorus)))
	assert.Equal(t, []string{"haze", "strobe", "pyro"}, e.Evaluate(playing(0.95, catalog.SectionOutro)))
	assert.Equal(t, []string{"haze"}, e.Evaluate(playing(0.3, catalog.SectionChorus)))
}

func TestOverlayRequiresOnlySeesThisTick(t *testing.T) {
	lighters := catalog.OverlayRule{ID: "lighters", Signal: catalog.SignalMood, Activate: 60, Band: 10}
	sparks := catalog.OverlayRule{ID: "sparks", Signal: catalog.SignalIntensity, Activate: 0.5, Requires: []string{"lighters"}}
	e := NewOverlayEngine(overlayCatalog(t, lighters, sparks))

	sig := playing(0.9, catalog.SectionChorus)
	sig.CrowdMood = 80
	assert.Equal(t, []string{"lighters", "sparks"}, e.Evaluate(sig))

	sig.CrowdMood = 20
	assert.Empty(t, e.Evaluate(sig), "sparks must not lean on last tick's lighters")
}

func TestOverlaySectionGateResetsHysteresis(t *testing.T) {
	gated := strobe
	gated.Sections = []catalog.Section{catalog.SectionChorus}
	e := NewOverlayEngine(overlayCatalog(t, gated))

	assert.NotEmpty(t, e.Evaluate(playing(0.9, catalog.SectionChorus)))
	assert.Empty(t, e.Evaluate(playing(0.9, catalog.SectionVerse)))
	assert.Empty(t, e.Evaluate(playing(0.65, catalog.SectionChorus)))
	assert.Empty(t, e.Active())
}

func TestOverlayMoodSignal(t *testing.T) {
	lighters := catalog.OverlayRule{ID: "lighters", Signal: catalog.SignalMood, Activate: 60, Band: 10}
	e := NewOverlayEngine(overlayCatalog(t, lighters))

	sig := playing(0.1, catalog.SectionBridge)
	for _, step := range []struct {
		mood float64
		want bool
	}{{55, false}, {60, true}, {52, true}, {49, false}} {
		sig.CrowdMood = step.mood
		assert.Equal(t, step.want, len(e.Evaluate(sig)) == 1, "mood %.0f", step.mood)
	}
}

func TestOverlayDefaultCatalog(t *testing.T) {
	e := NewOverlayEngine(catalog.Default())

	sig := playing(0.95, catalog.SectionChorus)
	sig.CrowdMood = 90
	assert.Equal(t, []string{"stage_haze", "strobe", "confetti", "pyro_flash"}, e.Evaluate(sig))

	sig = playing(0.95, catalog.SectionSolo)
	sig.CrowdMood = 40
	assert.Equal(t, []string{"stage_haze", "strobe", "laser_fan"}, e.Evaluate(sig))
}
