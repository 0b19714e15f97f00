package midi

import (
	"context"
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"

	"gig-director/catalog"
	"gig-director/debug"
)

// ControlKind identifies what a control surface asked for
type ControlKind int

const (
	ControlIntensity ControlKind = iota
	ControlMood
	ControlNextSong
	ControlPause
	ControlStop
	ControlRole
)

func (k ControlKind) String() string {
	switch k {
	case ControlIntensity:
		return "intensity"
	case ControlMood:
		return "mood"
	case ControlNextSong:
		return "next"
	case ControlPause:
		return "pause"
	case ControlStop:
		return "stop"
	case ControlRole:
		return "role"
	}
	return fmt.Sprintf("control(%d)", int(k))
}

// Control is one decoded request from a control surface
type Control struct {
	Kind  ControlKind
	Value float64      // intensity in [0,1], mood in [0,100]
	Role  catalog.Role // for ControlRole
}

// Mapping binds MIDI messages to controls. Notes only trigger on
// non-zero velocity.
type Mapping struct {
	Channel     int   `yaml:"channel"` // 0-15, or -1 for any
	IntensityCC uint8 `yaml:"intensity_cc"`
	MoodCC      uint8 `yaml:"mood_cc"`
	NextNote    uint8 `yaml:"next_note"`
	PauseNote   uint8 `yaml:"pause_note"`
	StopNote    uint8 `yaml:"stop_note"`
	RoleBase    uint8 `yaml:"role_base"` // RoleBase+i selects catalog.PerformerRoles[i]
}

// DefaultMapping fits a generic keyboard with a mod wheel and an
// expression pedal
func DefaultMapping() Mapping {
	return Mapping{
		Channel:     -1,
		IntensityCC: 1,
		MoodCC:      11,
		NextNote:    60,
		PauseNote:   62,
		StopNote:    64,
		RoleBase:    48,
	}
}

func (m Mapping) listens(channel uint8) bool {
	return m.Channel < 0 || int(channel) == m.Channel
}

// Decode turns a MIDI message into a Control
func (m Mapping) Decode(msg gomidi.Message) (Control, bool) {
	var channel, a, b uint8
	switch {
	case msg.GetControlChange(&channel, &a, &b):
		if !m.listens(channel) {
			return Control{}, false
		}
		switch a {
		case m.IntensityCC:
			return Control{Kind: ControlIntensity, Value: float64(b) / 127}, true
		case m.MoodCC:
			return Control{Kind: ControlMood, Value: float64(b) / 127 * 100}, true
		}

	case msg.GetNoteOn(&channel, &a, &b):
		if b == 0 || !m.listens(channel) {
			return Control{}, false
		}
		switch a {
		case m.NextNote:
			return Control{Kind: ControlNextSong}, true
		case m.PauseNote:
			return Control{Kind: ControlPause}, true
		case m.StopNote:
			return Control{Kind: ControlStop}, true
		}
		if a >= m.RoleBase && int(a-m.RoleBase) < len(catalog.PerformerRoles) {
			return Control{Kind: ControlRole, Role: catalog.PerformerRoles[a-m.RoleBase]}, true
		}
	}
	return Control{}, false
}

// Target receives decoded controls. sim.Gig implements it.
type Target interface {
	SetIntensity(v float64)
	SetMood(v float64)
	NextSong()
	TogglePause()
	Stop()
	SetRole(r catalog.Role)
}

// Apply forwards one control to t
func Apply(c Control, t Target) {
	switch c.Kind {
	case ControlIntensity:
		t.SetIntensity(c.Value)
	case ControlMood:
		t.SetMood(c.Value)
	case ControlNextSong:
		t.NextSong()
	case ControlPause:
		t.TogglePause()
	case ControlStop:
		t.Stop()
	case ControlRole:
		t.SetRole(c.Role)
	}
}

// Route applies controls to t until ctx is done or controls is closed
func Route(ctx context.Context, controls <-chan Control, t Target) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-controls:
			if !ok {
				return nil
			}
			debug.Log("midi", "control %s value=%.2f role=%s", c.Kind, c.Value, c.Role)
			Apply(c, t)
		}
	}
}
