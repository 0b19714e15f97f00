package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Surface is an input port decoded through a Mapping
type Surface struct {
	id       string
	inPort   drivers.In
	stopFunc func()
}

// OpenSurface starts listening on inPort and sends decoded controls to
// out. A full out channel drops the control.
func OpenSurface(id string, inPort drivers.In, mapping Mapping, out chan<- Control) (*Surface, error) {
	s := &Surface{id: id, inPort: inPort}
	if inPort == nil {
		return s, nil
	}

	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		c, ok := mapping.Decode(msg)
		if !ok {
			return
		}
		select {
		case out <- c:
		default:
		}
	})
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", id, err)
	}
	s.stopFunc = stop
	return s, nil
}

func (s *Surface) ID() string {
	return s.id
}

func (s *Surface) Close() error {
	if s.stopFunc != nil {
		s.stopFunc()
	}
	return nil
}
