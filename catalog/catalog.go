package catalog

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// ErrInvalidEntry is wrapped by every validation error
var ErrInvalidEntry = errors.New("invalid catalog entry")

// EntryError describes one rejected catalog entry
type EntryError struct {
	Kind   string // clip, overlay, crowd, seed
	ID     string
	Reason string
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Kind, e.ID, e.Reason)
}

func (e *EntryError) Unwrap() error {
	return ErrInvalidEntry
}

// Catalog is the validated, read-only rule table. It is safe to share
// between sessions.
type Catalog struct {
	variants []ClipVariant
	byID     map[string]int
	legacy   map[Role]int
	overlays []OverlayRule
	overlay  map[string]int
	crowd    CrowdRule
	seed     SeedOverlays
	rejected []error
}

// Spec is the unvalidated input to New
type Spec struct {
	Clips    []ClipVariant
	Overlays []OverlayRule
	Crowd    CrowdRule
	Seed     SeedOverlays
}

// New validates spec and builds a catalog. Invalid entries are logged and
// skipped; they are reported by Rejected.
func New(spec Spec, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Catalog{
		byID:    make(map[string]int),
		legacy:  make(map[Role]int),
		overlay: make(map[string]int),
	}

	reject := func(kind, id, reason string) {
		err := &EntryError{Kind: kind, ID: id, Reason: reason}
		c.rejected = append(c.rejected, err)
		log.Warn("catalog entry skipped",
			zap.String("kind", kind),
			zap.String("id", id),
			zap.String("reason", reason))
	}

	for _, v := range spec.Clips {
		if reason := c.checkClip(v); reason != "" {
			reject("clip", v.ID, reason)
			continue
		}
		idx := len(c.variants)
		c.variants = append(c.variants, v.clone())
		c.byID[v.ID] = idx
		if v.Legacy {
			c.legacy[v.Role] = idx
		}
	}

	for _, r := range spec.Overlays {
		if reason := c.checkOverlay(r); reason != "" {
			reject("overlay", r.ID, reason)
			continue
		}
		c.overlay[r.ID] = len(c.overlays)
		c.overlays = append(c.overlays, r.clone())
	}

	if reason := c.checkCrowd(spec.Crowd); reason != "" {
		reject("crowd", spec.Crowd.SmallID+"/"+spec.Crowd.LargeID, reason)
	} else {
		c.crowd = spec.Crowd
	}

	if reason := c.checkSeed(spec.Seed); reason != "" {
		reject("seed", spec.Seed.Base+"/"+spec.Seed.HighEnergy, reason)
	} else {
		c.seed = spec.Seed
	}

	log.Debug("catalog loaded",
		zap.Int("clips", len(c.variants)),
		zap.Int("overlays", len(c.overlays)),
		zap.Int("rejected", len(c.rejected)))
	return c
}

func (c *Catalog) checkClip(v ClipVariant) string {
	switch {
	case v.ID == "":
		return "missing id"
	case c.has(v.ID):
		return "duplicate id"
	case !v.Role.Valid():
		return fmt.Sprintf("unknown role %q", v.Role)
	case v.Energy.Min > v.Energy.Max:
		return fmt.Sprintf("energy min %.2f > max %.2f", v.Energy.Min, v.Energy.Max)
	case v.Energy.Min < 0 || v.Energy.Max > 1:
		return fmt.Sprintf("energy [%.2f,%.2f] outside [0,1]", v.Energy.Min, v.Energy.Max)
	case len(v.Sections) == 0:
		return "no song sections"
	case v.Loop <= 0:
		return "loop duration must be positive"
	case !v.Type.Valid():
		return fmt.Sprintf("unknown clip type %q", v.Type)
	}
	if !v.AllSections() {
		for _, s := range v.Sections {
			if !s.Valid() {
				return fmt.Sprintf("unknown section %q", s)
			}
		}
	}
	if v.Legacy {
		if _, dup := c.legacy[v.Role]; dup {
			return fmt.Sprintf("second legacy variant for role %s", v.Role)
		}
	}
	return ""
}

func (c *Catalog) checkOverlay(r OverlayRule) string {
	if r.ID == "" {
		return "missing id"
	}
	if _, dup := c.overlay[r.ID]; dup {
		return "duplicate id"
	}
	for _, s := range r.Sections {
		if !s.Valid() {
			return fmt.Sprintf("unknown section %q", s)
		}
	}
	for _, req := range r.Requires {
		if _, ok := c.overlay[req]; !ok {
			return fmt.Sprintf("requires %q which is not declared before it", req)
		}
	}
	if r.Always {
		return ""
	}
	if r.Signal != SignalIntensity && r.Signal != SignalMood {
		return fmt.Sprintf("unknown signal %q", r.Signal)
	}
	if r.Activate < 0 || r.Activate > r.Signal.Max() {
		return fmt.Sprintf("threshold %.2f outside [0,%.0f]", r.Activate, r.Signal.Max())
	}
	if r.Band < 0 || r.Band > r.Activate {
		return fmt.Sprintf("band %.2f outside [0,%.2f]", r.Band, r.Activate)
	}
	return ""
}

func (c *Catalog) checkCrowd(r CrowdRule) string {
	if r.SmallID == "" || r.LargeID == "" {
		return "crowd variants not set"
	}
	for _, id := range []string{r.SmallID, r.LargeID} {
		idx, ok := c.byID[id]
		if !ok {
			return fmt.Sprintf("unknown variant %q", id)
		}
		if c.variants[idx].Role != RoleCrowd {
			return fmt.Sprintf("variant %q is not a crowd variant", id)
		}
	}
	if r.Threshold <= 0 {
		return "capacity threshold must be positive"
	}
	return ""
}

func (c *Catalog) checkSeed(s SeedOverlays) string {
	if _, ok := c.overlay[s.Base]; !ok {
		return fmt.Sprintf("unknown base overlay %q", s.Base)
	}
	if _, ok := c.overlay[s.HighEnergy]; !ok {
		return fmt.Sprintf("unknown high-energy overlay %q", s.HighEnergy)
	}
	if s.Threshold < 0 || s.Threshold > 1 {
		return fmt.Sprintf("threshold %.2f outside [0,1]", s.Threshold)
	}
	return ""
}

func (c *Catalog) has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Variant looks up a clip variant by id
func (c *Catalog) Variant(id string) (ClipVariant, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return ClipVariant{}, false
	}
	return c.variants[idx].clone(), true
}

// Variants returns every accepted variant in declaration order
func (c *Catalog) Variants() []ClipVariant {
	out := make([]ClipVariant, len(c.variants))
	for i, v := range c.variants {
		out[i] = v.clone()
	}
	return out
}

// Each calls fn for every variant in declaration order without copying.
// fn must not retain or modify v.Sections.
func (c *Catalog) Each(fn func(v *ClipVariant)) {
	for i := range c.variants {
		fn(&c.variants[i])
	}
}

// ByRole returns the variants for one role in declaration order
func (c *Catalog) ByRole(role Role) []ClipVariant {
	var out []ClipVariant
	for _, v := range c.variants {
		if v.Role == role {
			out = append(out, v.clone())
		}
	}
	return out
}

// Legacy returns the role's designated fallback variant
func (c *Catalog) Legacy(role Role) (ClipVariant, bool) {
	idx, ok := c.legacy[role]
	if !ok {
		return ClipVariant{}, false
	}
	return c.variants[idx].clone(), true
}

// Overlays returns the overlay rules in priority order
func (c *Catalog) Overlays() []OverlayRule {
	out := make([]OverlayRule, len(c.overlays))
	for i, r := range c.overlays {
		out[i] = r.clone()
	}
	return out
}

// Overlay looks up an overlay rule by id
func (c *Catalog) Overlay(id string) (OverlayRule, bool) {
	idx, ok := c.overlay[id]
	if !ok {
		return OverlayRule{}, false
	}
	return c.overlays[idx].clone(), true
}

// Crowd returns the crowd density rule
func (c *Catalog) Crowd() CrowdRule {
	return c.crowd
}

// Seed returns the seed overlay configuration
func (c *Catalog) Seed() SeedOverlays {
	return c.seed
}

// Rejected returns the validation errors for skipped entries
func (c *Catalog) Rejected() []error {
	return slices.Clone(c.rejected)
}
