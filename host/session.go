package host

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"gig-director/catalog"
	"gig-director/debug"
	"gig-director/director"
)

// SignalSource reports the live show state. sim.Gig is one; an audio
// player bridge would be another.
type SignalSource interface {
	Signals(now time.Time) director.Signals
}

// Session runs one Director against one signal source
type Session struct {
	ID     string
	source SignalSource
	cfg    Config
	log    *zap.Logger

	director *director.Director
	progress director.Signals // song-level fields, refreshed on the song tick

	mu      sync.RWMutex
	latest  director.Output
	effects []director.Effect // effects not yet seen by a reader

	// Notify readers of updates
	updates chan struct{}

	cancel context.CancelFunc
	done   chan struct{}
}

func newSession(id string, cat *catalog.Catalog, src SignalSource, cfg Config, opts director.Options, log *zap.Logger) *Session {
	now := cfg.Clock()
	s := &Session{
		ID:       id,
		source:   src,
		cfg:      cfg,
		log:      log.With(zap.String("session", id)),
		director: director.New(cat, now, opts),
		updates:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	s.progress = src.Signals(now)
	s.latest = director.Output{Phase: director.PhaseBackstage, Clips: map[catalog.Role]director.Clip{}}
	return s
}

// Latest returns the most recent tick output
func (s *Session) Latest() director.Output {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// TakeEffects returns the effects published since the last call. Ticks that
// nobody rendered still have their one-shot effects delivered here.
func (s *Session) TakeEffects() []director.Effect {
	s.mu.Lock()
	defer s.mu.Unlock()
	fx := s.effects
	s.effects = nil
	return fx
}

// Updates signals, without blocking the tick loop, that Latest changed
func (s *Session) Updates() <-chan struct{} { return s.updates }

// Done is closed once the session loop has exited
func (s *Session) Done() <-chan struct{} { return s.done }

// Stop cancels the session and waits for its loop to exit
func (s *Session) Stop() {
	s.cancel()
	<-s.done
}

// run owns the Director: clip re-evaluation on a fast ticker, song and
// phase progression on a coarse one. Only this goroutine touches it.
func (s *Session) run(ctx context.Context) error {
	defer close(s.done)

	clipTicker := time.NewTicker(s.cfg.ClipInterval)
	songTicker := time.NewTicker(s.cfg.SongInterval)
	defer clipTicker.Stop()
	defer songTicker.Stop()

	var exitAt time.Time
	for {
		select {
		case <-ctx.Done():
			s.publish(s.director.Stop(s.cfg.Clock()))
			s.log.Info("session stopped")
			return nil
		case <-songTicker.C:
			s.progress = s.source.Signals(s.cfg.Clock())
		case <-clipTicker.C:
			now := s.cfg.Clock()
			live := s.source.Signals(now)
			out := s.director.Tick(now, merge(live, s.progress))
			s.publish(out)

			if out.Phase != director.PhaseExit {
				continue
			}
			if exitAt.IsZero() {
				exitAt = now
				s.log.Info("gig reached exit", zap.Int("songs", out.TotalSongs))
			}
			if now.Sub(exitAt) >= s.cfg.ExitLinger {
				s.publish(s.director.Stop(now))
				return nil
			}
		}
	}
}

// merge takes the fast-moving fields from live and the song position from
// progress. Stop always comes through immediately.
func merge(live, progress director.Signals) director.Signals {
	sig := progress
	sig.Role = live.Role
	sig.Intensity = live.Intensity
	sig.CrowdMood = live.CrowdMood
	sig.IsPlaying = live.IsPlaying
	sig.Stop = live.Stop || progress.Stop
	return sig
}

func (s *Session) publish(out director.Output) {
	s.mu.Lock()
	s.latest = out
	s.effects = append(s.effects, out.Effects...)
	s.mu.Unlock()

	for _, fx := range out.Effects {
		s.log.Info("effect", zap.String("effect", string(fx)), zap.String("phase", string(out.Phase)))
	}
	debug.LogEvery(50, "host", "session=%s phase=%s clip=%s overlays=%v", s.ID, out.Phase, out.Current.ID, out.Overlays)

	select {
	case s.updates <- struct{}{}:
	default:
	}
}
