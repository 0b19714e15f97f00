package midi

import (
	"context"
	"maps"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"
)

// DeviceEvent is emitted when surfaces connect/disconnect
type DeviceEvent struct {
	Type DeviceEventType
	ID   string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

func (t DeviceEventType) String() string {
	if t == DeviceConnected {
		return "connected"
	}
	return "disconnected"
}

// DeviceManager handles hot-plug detection of control surfaces. Every
// input port whose name contains the match string is opened; controls from
// all of them arrive on one channel.
type DeviceManager struct {
	match   string
	mapping Mapping
	log     *zap.Logger

	surfaces map[string]*Surface
	mu       sync.RWMutex
	events   chan DeviceEvent
	controls chan Control
	pollRate time.Duration

	listPorts func() []drivers.In
}

// NewDeviceManager creates a device manager. An empty match opens every
// input port.
func NewDeviceManager(match string, mapping Mapping, log *zap.Logger) *DeviceManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &DeviceManager{
		match:     strings.ToLower(match),
		mapping:   mapping,
		log:       log,
		surfaces:  make(map[string]*Surface),
		events:    make(chan DeviceEvent, 16),
		controls:  make(chan Control, 64),
		pollRate:  time.Second,
		listPorts: func() []drivers.In { return gomidi.GetInPorts() },
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controls returns decoded controls from every connected surface
func (dm *DeviceManager) Controls() <-chan Control {
	return dm.controls
}

// Surfaces returns a snapshot of connected surfaces
func (dm *DeviceManager) Surfaces() map[string]*Surface {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return maps.Clone(dm.surfaces)
}

// Run polls for ports until ctx is done (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) error {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return nil
		case <-ticker.C:
			dm.scan()
		}
	}
}

// Matches reports whether a port name selects a surface
func (dm *DeviceManager) Matches(name string) bool {
	return strings.Contains(strings.ToLower(name), dm.match)
}

func (dm *DeviceManager) scan() {
	// Get current MIDI ports with timeout (CoreMIDI can hang)
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- dm.listPorts()
	}()

	var inPorts []drivers.In
	select {
	case inPorts = <-ch:
	case <-time.After(3 * time.Second):
		dm.log.Warn("midi port scan timed out")
		return
	}

	seenIDs := make(map[string]bool)
	for _, inPort := range inPorts {
		id := inPort.String()
		if !dm.Matches(id) {
			continue
		}
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.surfaces[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		s, err := OpenSurface(id, inPort, dm.mapping, dm.controls)
		if err != nil {
			dm.log.Warn("open control surface", zap.String("port", id), zap.Error(err))
			continue
		}
		dm.mu.Lock()
		dm.surfaces[id] = s
		dm.mu.Unlock()
		dm.emit(DeviceEvent{Type: DeviceConnected, ID: id})
	}

	// Check for disconnects
	dm.mu.Lock()
	var gone []string
	for id, s := range dm.surfaces {
		if !seenIDs[id] {
			s.Close()
			delete(dm.surfaces, id)
			gone = append(gone, id)
		}
	}
	dm.mu.Unlock()
	for _, id := range gone {
		dm.emit(DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
}

func (dm *DeviceManager) emit(ev DeviceEvent) {
	dm.log.Info("control surface "+ev.Type.String(), zap.String("port", ev.ID))
	select {
	case dm.events <- ev:
	default:
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, s := range dm.surfaces {
		s.Close()
	}
	dm.surfaces = make(map[string]*Surface)
}
