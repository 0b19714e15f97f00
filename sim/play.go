package sim

import (
	"time"

	"gig-director/catalog"
	"gig-director/director"
)

// Frame is one tick of a headless run
type Frame struct {
	At      time.Duration
	Signals director.Signals
	Output  director.Output
}

// Play drives a Director against the gig on a simulated clock, stepping by
// step until the exit phase or the show runs out. fn sees every frame and
// may return false to stop early, which stops the director.
func Play(cat *catalog.Catalog, gig *Gig, start time.Time, step time.Duration, opts director.Options, fn func(Frame) bool) director.Output {
	d := director.New(cat, start, opts)
	limit := gig.Length() + director.DefaultEntranceDuration + opts.EntranceDuration + time.Minute

	var out director.Output
	for at := time.Duration(0); at <= limit; at += step {
		now := start.Add(at)
		sig := gig.Signals(now)
		out = d.Tick(now, sig)
		if fn != nil && !fn(Frame{At: at, Signals: sig, Output: out}) {
			return d.Stop(now)
		}
		if out.Phase == director.PhaseExit {
			return out
		}
	}
	return d.Stop(start.Add(limit))
}
