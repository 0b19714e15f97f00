package director

import (
	"errors"

	"gig-director/catalog"
)

// ErrNoEligibleClip means neither a candidate nor the role's legacy variant
// exists. Cyclers hold their current clip when they see it.
var ErrNoEligibleClip = errors.New("no eligible clip")

// SelectCandidates returns the ids of the variants for role whose energy
// range contains intensity and that play in section, in catalog order.
// Legacy variants are fallbacks only and never appear here.
func SelectCandidates(cat *catalog.Catalog, role catalog.Role, intensity float64, section catalog.Section) []string {
	var ids []string
	cat.Each(func(v *catalog.ClipVariant) {
		if v.Legacy || v.Role != role {
			return
		}
		if !v.Energy.Contains(intensity) || !v.Plays(section) {
			return
		}
		ids = append(ids, v.ID)
	})
	return ids
}

// ResolveCandidates is SelectCandidates with the legacy fallback applied.
// The second result reports whether the fallback was used.
func ResolveCandidates(cat *catalog.Catalog, role catalog.Role, intensity float64, section catalog.Section) ([]string, bool, error) {
	if ids := SelectCandidates(cat, role, intensity, section); len(ids) > 0 {
		return ids, false, nil
	}
	if v, ok := cat.Legacy(role); ok {
		return []string{v.ID}, true, nil
	}
	return nil, false, ErrNoEligibleClip
}

// SelectCrowdVariant maps venue capacity to the small or large crowd variant
func SelectCrowdVariant(cat *catalog.Catalog, capacity int) string {
	rule := cat.Crowd()
	if capacity < rule.Threshold {
		return rule.SmallID
	}
	return rule.LargeID
}

// SelectActiveOverlayIDs returns the base overlay plus the high-energy
// overlay once intensity reaches the seed threshold. It carries no
// hysteresis; OverlayEngine is the stateful version.
func SelectActiveOverlayIDs(cat *catalog.Catalog, intensity float64) []string {
	seed := cat.Seed()
	if seed.Base == "" {
		return nil
	}
	ids := []string{seed.Base}
	if intensity >= seed.Threshold {
		ids = append(ids, seed.HighEnergy)
	}
	return ids
}
