package playback

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/ivlev/blueprint/internal/audio"
	"github.com/ivlev/blueprint/internal/blueprint"
	"github.com/ivlev/blueprint/internal/compositor"
	"github.com/ivlev/blueprint/internal/system"
	"github.com/ivlev/blueprint/internal/timeline"
)

// Flash level reissued when the preview wraps back to the start.
const flashLoop = 0.8

// State is the read-only snapshot published after every tick.
type State struct {
	CurrentTime      float64
	TotalDuration    float64
	Playing          bool
	Exporting        bool
	ActiveSceneIndex int
	FlashIntensity   float64
	MusicVolume      float64
	LastAudioWarning string
}

// FrameSink receives every composed frame. The preview window, a snapshot
// writer and the export recorder all sit behind this seam.
type FrameSink interface {
	PushFrame(*image.RGBA) error
}

// NullSink discards frames; useful when only the published state matters.
type NullSink struct{}

func (NullSink) PushFrame(*image.RGBA) error { return nil }

// TimeSource yields the current playback time in seconds. The clock swaps
// between the narration track's own position and a wall-clock anchor,
// whichever is authoritative at the instant.
type TimeSource interface {
	Now() float64
}

// trackTime reads playback time off an audio track's own position.
type trackTime struct {
	track *audio.Track
}

func (s trackTime) Now() float64 { return s.track.Position() }

// anchorTime measures playback time as wall time elapsed since the clock's
// anchor.
type anchorTime struct {
	clock *Clock
}

func (s anchorTime) Now() float64 { return s.clock.now().Sub(s.clock.anchor).Seconds() }

// Clock owns the preview loop: one cooperative tick per frame interval, a
// single mutable copy of the playback state, and the only write access to the
// track positions outside the export pipeline.
type Clock struct {
	prod      *blueprint.Production
	comp      *compositor.Compositor
	narration *audio.Track // may be nil (no voiceover flow)
	music     *audio.Track // may be nil
	sink      FrameSink

	fps    int
	frame  *image.RGBA
	fx     compositor.EffectsState
	state  State
	anchor time.Time

	now func() time.Time
}

// NewClock fixes the authoritative total duration at construction: the
// narration's probed duration when available, otherwise the unscaled sum of
// scene weights. The total never changes afterwards.
func NewClock(prod *blueprint.Production, comp *compositor.Compositor, narration, music *audio.Track, sink FrameSink, fps int) *Clock {
	total := 0.0
	if narration != nil {
		total = narration.Duration()
	}
	if total <= 0 {
		total = timeline.FallbackDuration(prod.Scenes)
	}
	if sink == nil {
		sink = NullSink{}
	}
	if fps <= 0 {
		fps = 60
	}

	c := &Clock{
		prod:      prod,
		comp:      comp,
		narration: narration,
		music:     music,
		sink:      sink,
		fps:       fps,
		frame:     system.GetImage(image.Rect(0, 0, comp.W, comp.H)),
		now:       time.Now,
	}
	c.state.TotalDuration = total
	c.state.MusicVolume = 0.4
	c.anchor = c.now()
	return c
}

// SetClock injects a time source for tests.
func (c *Clock) SetClock(now func() time.Time) {
	c.now = now
	c.anchor = now()
	if c.narration != nil {
		c.narration.SetClock(now)
	}
	if c.music != nil {
		c.music.SetClock(now)
	}
}

// State returns the latest published snapshot.
func (c *Clock) State() State { return c.state }

func (c *Clock) SetMusicVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c.state.MusicVolume = v
}

// Warn records a non-fatal audio advisory on the published state.
func (c *Clock) Warn(msg string) {
	c.state.LastAudioWarning = msg
}

// timeSource picks the authoritative source for the current instant: the
// narration track while it is actively advancing, else the wall-clock anchor.
// Exactly one source is authoritative at any instant, so time never
// double-advances.
func (c *Clock) timeSource() TimeSource {
	if c.narration != nil && c.narration.Advancing() {
		return trackTime{track: c.narration}
	}
	return anchorTime{clock: c}
}

func (c *Clock) currentTime() float64 {
	return c.timeSource().Now()
}

// Play enters the Playing state. Starting from the end rewinds to 0 first; the
// anchor is set so wall-clock time continues from the current position.
func (c *Clock) Play() {
	if c.state.Exporting {
		return
	}
	if c.state.CurrentTime >= c.state.TotalDuration && c.state.TotalDuration > 0 {
		c.state.CurrentTime = 0
		c.seekTracks(0)
	}
	c.anchor = c.now().Add(-time.Duration(c.state.CurrentTime * float64(time.Second)))
	if c.narration != nil {
		c.narration.Play()
	}
	if c.music != nil {
		c.music.Play()
	}
	c.state.Playing = true
}

// Pause leaves the Playing state; no tick fires until Play is called again.
func (c *Clock) Pause() {
	if c.narration != nil {
		c.narration.Pause()
	}
	if c.music != nil {
		c.music.Pause()
	}
	c.state.Playing = false
}

// Tick advances one frame: compute time, handle the loop wrap, resolve the
// scene and render, always in that order. Called by Run, and directly by
// tests.
func (c *Clock) Tick() error {
	t := c.currentTime()

	// Infinite preview loop: wrap, restart both tracks, big flash, re-anchor.
	if t >= c.state.TotalDuration && c.state.TotalDuration > 0 && !c.state.Exporting {
		t = 0
		c.seekTracks(0)
		if c.state.Playing {
			if c.narration != nil {
				c.narration.Play()
			}
			if c.music != nil {
				c.music.Play()
			}
		}
		c.anchor = c.now()
		if c.fx.FlashIntensity < flashLoop {
			c.fx.FlashIntensity = flashLoop
		}
	}

	return c.renderAt(t)
}

// renderAt composes the frame for time t and publishes the new state.
func (c *Clock) renderAt(t float64) error {
	c.fx = c.comp.Render(c.frame, c.prod, c.state.TotalDuration, t, c.fx)
	c.state.CurrentTime = t
	c.state.ActiveSceneIndex = c.fx.PrevSceneIndex
	c.state.FlashIntensity = c.fx.FlashIntensity
	return c.sink.PushFrame(c.frame)
}

// Seek re-points both tracks and the wall-clock anchor, then renders
// immediately. Seeking never waits for the next tick.
func (c *Clock) Seek(t float64) error {
	if t < 0 {
		t = 0
	}
	if c.state.TotalDuration > 0 && t > c.state.TotalDuration {
		t = c.state.TotalDuration
	}
	c.seekTracks(t)
	c.anchor = c.now().Add(-time.Duration(t * float64(time.Second)))
	return c.renderAt(t)
}

// SeekInto renders the frame at t into an alternate sink (a PNG snapshot,
// for example) without disturbing the regular one.
func (c *Clock) SeekInto(t float64, sink FrameSink) error {
	prev := c.sink
	c.sink = sink
	defer func() { c.sink = prev }()
	return c.Seek(t)
}

// Skip jumps by a signed offset, clamped to the timeline.
func (c *Clock) Skip(seconds float64) error {
	return c.Seek(c.state.CurrentTime + seconds)
}

// Restart rewinds to the beginning without changing the play/pause state.
func (c *Clock) Restart() error {
	if err := c.Seek(0); err != nil {
		return err
	}
	if c.state.Playing {
		if c.narration != nil {
			c.narration.Play()
		}
		if c.music != nil {
			c.music.Play()
		}
	}
	return nil
}

func (c *Clock) seekTracks(t float64) {
	if c.narration != nil {
		c.narration.Seek(t)
	}
	if c.music != nil {
		c.music.Seek(t)
	}
}

// BeginExport suspends the ordinary loop. Re-entry is prevented by the state
// gate, not by locking: there is one thread of control.
func (c *Clock) BeginExport() error {
	if c.state.Exporting {
		return fmt.Errorf("экспорт уже запущен")
	}
	c.Pause()
	c.state.Exporting = true
	return nil
}

// EndExport always lands in Stopped, whatever happened during export.
func (c *Clock) EndExport() {
	c.state.Exporting = false
	c.state.Playing = false
}

// Run drives the cooperative tick loop at the display rate until the context
// is cancelled or playback stops. Pausing cancels the next tick: the loop
// checks the state before every render.
func (c *Clock) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(c.fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !c.state.Playing || c.state.Exporting {
				return nil
			}
			if err := c.Tick(); err != nil {
				return err
			}
		}
	}
}

// Close releases the frame buffer.
func (c *Clock) Close() {
	c.Pause()
	system.PutImage(c.frame)
	c.frame = nil
}
