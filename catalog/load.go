package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type fileClip struct {
	ID       string    `yaml:"id"`
	Role     Role      `yaml:"role"`
	Energy   []float64 `yaml:"energy"`
	Sections []Section `yaml:"sections"`
	Loop     float64   `yaml:"loop"` // seconds
	Type     ClipType  `yaml:"type,omitempty"`
	Legacy   bool      `yaml:"legacy,omitempty"`
}

type fileOverlay struct {
	ID       string    `yaml:"id"`
	Always   bool      `yaml:"always,omitempty"`
	Signal   Signal    `yaml:"signal,omitempty"`
	Activate float64   `yaml:"activate,omitempty"`
	Band     float64   `yaml:"band,omitempty"`
	Sections []Section `yaml:"sections,omitempty"`
	Requires []string  `yaml:"requires,omitempty"`
}

type fileCrowd struct {
	Small     string `yaml:"small"`
	Large     string `yaml:"large"`
	Threshold int    `yaml:"threshold"`
}

type fileSeed struct {
	Base       string  `yaml:"base"`
	HighEnergy string  `yaml:"high_energy"`
	Threshold  float64 `yaml:"threshold"`
}

type file struct {
	Crowd    fileCrowd     `yaml:"crowd"`
	Seed     fileSeed      `yaml:"seed_overlays"`
	Clips    []fileClip    `yaml:"clips"`
	Overlays []fileOverlay `yaml:"overlays"`
}

// Load parses a YAML catalog. Only malformed YAML is an error; entries that
// fail validation are skipped, logged and reported by Rejected.
func Load(r io.Reader, log *zap.Logger) (*Catalog, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(f.spec(), log), nil
}

// LoadFile reads a YAML catalog from disk
func LoadFile(path string, log *zap.Logger) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Load(bytes.NewReader(data), log)
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the built-in catalog
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(bytes.NewReader(defaultYAML), nil)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog: %v", err))
		}
		defaultCat = c
	})
	return defaultCat
}

func (f file) spec() Spec {
	s := Spec{
		Crowd: CrowdRule{SmallID: f.Crowd.Small, LargeID: f.Crowd.Large, Threshold: f.Crowd.Threshold},
		Seed:  SeedOverlays{Base: f.Seed.Base, HighEnergy: f.Seed.HighEnergy, Threshold: f.Seed.Threshold},
	}
	for _, c := range f.Clips {
		v := ClipVariant{
			ID:       c.ID,
			Role:     c.Role,
			Sections: c.Sections,
			Loop:     time.Duration(c.Loop * float64(time.Second)),
			Type:     c.Type,
			Legacy:   c.Legacy,
		}
		switch len(c.Energy) {
		case 2:
			v.Energy = EnergyRange{Min: c.Energy[0], Max: c.Energy[1]}
		default:
			// malformed range, rejected as min > max
			v.Energy = EnergyRange{Min: 1, Max: -1}
		}
		s.Clips = append(s.Clips, v)
	}
	for _, o := range f.Overlays {
		s.Overlays = append(s.Overlays, OverlayRule{
			ID:       o.ID,
			Always:   o.Always,
			Signal:   o.Signal,
			Activate: o.Activate,
			Band:     o.Band,
			Sections: o.Sections,
			Requires: o.Requires,
		})
	}
	return s
}
