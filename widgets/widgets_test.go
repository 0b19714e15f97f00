package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"gig-director/catalog"
	"gig-director/director"
	"gig-director/theme"
)

func TestRenderMeterClamps(t *testing.T) {
	full := RenderMeter("intensity", 3, 10, "1.00", lipgloss.Color("#ffffff"))
	assert.Equal(t, 10, strings.Count(full, "▮"))
	assert.Equal(t, 0, strings.Count(full, "▯"))

	empty := RenderMeter("mood", -1, 10, "0", lipgloss.Color("#ffffff"))
	assert.Equal(t, 10, strings.Count(empty, "▯"))

	half := RenderMeter("mood", 0.5, 8, "50", lipgloss.Color("#ffffff"))
	assert.Equal(t, 4, strings.Count(half, "▮"))
	assert.True(t, strings.HasSuffix(half, " 50"))
}

func TestRenderChips(t *testing.T) {
	th := theme.Default()
	out := RenderChips([]string{"stage_haze", "strobe", "confetti"}, []string{"strobe"}, th)
	assert.Equal(t, 1, strings.Count(out, "■"))
	assert.Equal(t, 2, strings.Count(out, "□"))
	assert.Contains(t, out, "confetti")
}

func TestRenderPhaseStrip(t *testing.T) {
	th := theme.Default()
	out := RenderPhaseStrip(director.PhasePerformance, th)
	assert.Equal(t, 2, strings.Count(out, "●"))
	assert.Equal(t, 1, strings.Count(out, "▶"))
	assert.Equal(t, 2, strings.Count(out, "·"))
	for _, p := range director.Phases {
		assert.Contains(t, out, string(p))
	}
}

func TestRenderClipRow(t *testing.T) {
	th := theme.Default()
	row := RenderClipRow("drummer", director.Clip{ID: "drum_legacy", Type: catalog.ClipPlaying, Fallback: true}, true, th)
	assert.Contains(t, row, "drum_legacy !")
	assert.True(t, strings.HasPrefix(row, "▶"))

	assert.Contains(t, RenderClipRow("bassist", director.Clip{}, false, th), "-")
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{{Title: "Show", Keys: []KeyBinding{{Key: "space", Desc: "pause"}}}})
	assert.Equal(t, "Show\n  space        pause", out)
}
