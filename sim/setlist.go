package sim

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"gig-director/catalog"
)

// SectionEnergy is the base intensity each section plays at
var SectionEnergy = map[catalog.Section]float64{
	catalog.SectionIntro:  0.3,
	catalog.SectionVerse:  0.5,
	catalog.SectionChorus: 0.8,
	catalog.SectionBridge: 0.4,
	catalog.SectionSolo:   0.9,
	catalog.SectionOutro:  0.6,
}

// Span is one section of a song
type Span struct {
	Section catalog.Section `yaml:"section"`
	Seconds float64         `yaml:"seconds"`
	Energy  float64         `yaml:"energy,omitempty"` // 0 means SectionEnergy
}

// Length returns the span duration
func (s Span) Length() time.Duration {
	return time.Duration(s.Seconds * float64(time.Second))
}

// BaseEnergy returns the span's energy, defaulting by section
func (s Span) BaseEnergy() float64 {
	if s.Energy > 0 {
		return s.Energy
	}
	return SectionEnergy[s.Section]
}

// Song is an ordered run of sections
type Song struct {
	Title    string `yaml:"title"`
	Sections []Span `yaml:"sections"`
}

// Duration is the sum of the section lengths
func (s Song) Duration() time.Duration {
	var d time.Duration
	for _, sp := range s.Sections {
		d += sp.Length()
	}
	return d
}

// Setlist is the songs of one gig in play order
type Setlist struct {
	Name  string `yaml:"name"`
	Songs []Song `yaml:"songs"`
}

// Validate checks that every song can be played
func (sl Setlist) Validate() error {
	if len(sl.Songs) == 0 {
		return fmt.Errorf("setlist %q has no songs", sl.Name)
	}
	for i, song := range sl.Songs {
		if len(song.Sections) == 0 {
			return fmt.Errorf("song %d %q has no sections", i+1, song.Title)
		}
		for j, sp := range song.Sections {
			if !sp.Section.Valid() {
				return fmt.Errorf("song %d %q section %d: unknown section %q", i+1, song.Title, j+1, sp.Section)
			}
			if sp.Seconds <= 0 {
				return fmt.Errorf("song %d %q section %d: length must be positive", i+1, song.Title, j+1)
			}
			if sp.Energy < 0 || sp.Energy > 1 {
				return fmt.Errorf("song %d %q section %d: energy %.2f outside [0,1]", i+1, song.Title, j+1, sp.Energy)
			}
		}
	}
	return nil
}

// LoadSetlist reads a YAML setlist
func LoadSetlist(path string) (Setlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Setlist{}, fmt.Errorf("read setlist: %w", err)
	}
	var sl Setlist
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sl); err != nil {
		return Setlist{}, fmt.Errorf("parse setlist: %w", err)
	}
	if err := sl.Validate(); err != nil {
		return Setlist{}, err
	}
	return sl, nil
}

var songShapes = [][]catalog.Section{
	{catalog.SectionIntro, catalog.SectionVerse, catalog.SectionChorus, catalog.SectionVerse, catalog.SectionChorus, catalog.SectionOutro},
	{catalog.SectionIntro, catalog.SectionVerse, catalog.SectionChorus, catalog.SectionSolo, catalog.SectionChorus, catalog.SectionOutro},
	{catalog.SectionVerse, catalog.SectionChorus, catalog.SectionBridge, catalog.SectionChorus, catalog.SectionOutro},
	{catalog.SectionIntro, catalog.SectionVerse, catalog.SectionBridge, catalog.SectionSolo, catalog.SectionChorus, catalog.SectionChorus, catalog.SectionOutro},
}

var titleWords = []string{"Neon", "Static", "Wildfire", "Midnight", "Velvet", "Thunder", "Echo", "Gravity", "Riot", "Satellite", "Ghost", "Highway"}

// GenerateSetlist builds a deterministic setlist of n songs of roughly
// songLength each.
func GenerateSetlist(seed uint64, n int, songLength time.Duration) Setlist {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	sl := Setlist{Name: fmt.Sprintf("Generated set #%d", seed)}
	for i := 0; i < n; i++ {
		shape := songShapes[rng.IntN(len(songShapes))]
		per := songLength.Seconds() / float64(len(shape))
		lift := 0.85 + rng.Float64()*0.25
		song := Song{Title: titleWords[rng.IntN(len(titleWords))] + " " + titleWords[rng.IntN(len(titleWords))]}
		for _, sec := range shape {
			secs := per * (0.75 + rng.Float64()*0.5)
			energy := min(1, SectionEnergy[sec]*lift)
			song.Sections = append(song.Sections, Span{Section: sec, Seconds: secs, Energy: energy})
		}
		sl.Songs = append(sl.Songs, song)
	}
	return sl
}
