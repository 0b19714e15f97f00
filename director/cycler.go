package director

import (
	"time"

	"gig-director/catalog"
	"gig-director/debug"
)

// DefaultLookAroundChance is the probability that a re-selection without a
// framing hint turns into a crowd look or stage scan.
const DefaultLookAroundChance = 0.1

// PerformerCycleState is owned by one Cycler and changes only inside Tick
type PerformerCycleState struct {
	CurrentClipID        string
	ClipActivatedAt      time.Time
	NextEligibleSwitchAt time.Time
}

// Clip is what renderers show for one performer
type Clip struct {
	ID          string
	Role        catalog.Role
	Type        catalog.ClipType
	EnergyLevel float64 // intensity the clip was selected at
	Fallback    bool    // the role's legacy variant stood in
}

// Cycler picks and holds the POV clip for one performer role
type Cycler struct {
	role       catalog.Role
	cat        *catalog.Catalog
	rng        RNG
	lookAround float64

	state PerformerCycleState
	clip  Clip
}

// NewCycler creates a cycler with no clip selected yet
func NewCycler(cat *catalog.Catalog, role catalog.Role, rng RNG, lookAround float64) *Cycler {
	if rng == nil {
		rng = NewRNG(1)
	}
	if lookAround < 0 {
		lookAround = 0
	}
	return &Cycler{
		role:       role,
		cat:        cat,
		rng:        rng,
		lookAround: lookAround,
		clip:       Clip{Role: role},
	}
}

// Role returns the performer this cycler runs for
func (c *Cycler) Role() catalog.Role { return c.role }

// State returns a snapshot of the cycle state
func (c *Cycler) State() PerformerCycleState { return c.state }

// Clip returns the clip currently on screen
func (c *Cycler) Clip() Clip { return c.clip }

// Holding reports whether the current clip is still inside its dwell window
func (c *Cycler) Holding(now time.Time) bool {
	return c.state.CurrentClipID != "" && now.Before(c.state.NextEligibleSwitchAt)
}

// Tick re-evaluates the clip once the dwell window has elapsed. It never
// fails: with no eligible clip it keeps showing the last one.
func (c *Cycler) Tick(now time.Time, sig Signals) Clip {
	if !sig.IsPlaying || c.Holding(now) {
		return c.clip
	}

	ids, fallback, err := ResolveCandidates(c.cat, c.role, sig.Intensity, sig.Section)
	if err != nil {
		debug.LogEvery(20, "clip", "%s: %v at intensity %.2f in %s, holding %q",
			c.role, err, sig.Intensity, sig.Section, c.state.CurrentClipID)
		return c.clip
	}

	id := c.pick(ids, sig.Section)
	v, ok := c.cat.Variant(id)
	if !ok {
		return c.clip
	}

	if id != c.state.CurrentClipID {
		debug.Log("clip", "%s: %q -> %q (intensity %.2f, %s)", c.role, c.state.CurrentClipID, id, sig.Intensity, sig.Section)
	}

	c.state = PerformerCycleState{
		CurrentClipID:        id,
		ClipActivatedAt:      now,
		NextEligibleSwitchAt: now.Add(v.Loop),
	}
	c.clip = Clip{
		ID:          id,
		Role:        c.role,
		Type:        c.clipType(v, sig.Section),
		EnergyLevel: sig.Intensity,
		Fallback:    fallback,
	}
	return c.clip
}

// pick prefers the current clip, then variants naming the section over
// "all" variants, and breaks ties in the top rank with the RNG.
func (c *Cycler) pick(ids []string, section catalog.Section) string {
	for _, id := range ids {
		if id == c.state.CurrentClipID {
			return id
		}
	}
	if len(ids) == 1 {
		return ids[0]
	}

	var top []string
	best := -1
	for _, id := range ids {
		v, _ := c.cat.Variant(id)
		rank := 0
		if v.Lists(section) {
			rank = 1
		}
		switch {
		case rank > best:
			best = rank
			top = append(top[:0], id)
		case rank == best:
			top = append(top, id)
		}
	}
	if len(top) == 1 {
		return top[0]
	}
	return top[c.rng.IntN(len(top))]
}

func (c *Cycler) clipType(v catalog.ClipVariant, section catalog.Section) catalog.ClipType {
	if v.Type != "" {
		return v.Type
	}
	if section == catalog.SectionSolo {
		return catalog.ClipSoloFocus
	}
	if c.lookAround > 0 && c.rng.Float64() < c.lookAround {
		if c.rng.IntN(2) == 0 {
			return catalog.ClipCrowdLook
		}
		return catalog.ClipStageScan
	}
	return catalog.ClipPlaying
}
