package audio

import (
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Track models a playable audio element: it owns its playback position and
// reports whether it is actively advancing. The playback clock treats an
// advancing narration track as the authoritative time source.
type Track struct {
	Path string
	Loop bool

	// CaptureRestricted marks a track that can be played locally but must not
	// be fed into the export mix (e.g. a music asset fetched without proper
	// cross-origin clearance).
	CaptureRestricted bool

	duration float64
	playing  bool
	pos      float64
	anchor   time.Time

	now func() time.Time
}

// NewTrack wraps a local audio file. Probe must be called before the duration
// is trusted.
func NewTrack(path string) *Track {
	return &Track{Path: path, now: time.Now}
}

// NewProbedTrack wraps a file whose duration is already known, skipping the
// ffprobe round-trip.
func NewProbedTrack(path string, duration float64) *Track {
	t := NewTrack(path)
	t.duration = duration
	return t
}

// Probe reads the real duration via ffprobe. Until it succeeds Duration
// returns 0 and callers fall back to estimated totals.
func (t *Track) Probe() error {
	d, err := ProbeDuration(t.Path)
	if err != nil {
		return err
	}
	t.duration = d
	return nil
}

// ProbeDuration returns the duration of an audio file in seconds.
func ProbeDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, err
	}

	var duration float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration)
	if err != nil {
		return 0, err
	}

	return duration, nil
}

func (t *Track) Duration() float64 { return t.duration }

func (t *Track) Play() {
	if t.playing {
		return
	}
	t.playing = true
	t.anchor = t.now()
}

func (t *Track) Pause() {
	if !t.playing {
		return
	}
	t.pos = t.Position()
	t.playing = false
}

// Seek re-points the playback position. Valid whether playing or paused.
func (t *Track) Seek(pos float64) {
	if pos < 0 {
		pos = 0
	}
	t.pos = pos
	t.anchor = t.now()
}

// Position is the track's own clock: the paused position plus elapsed wall
// time while playing. Looping tracks wrap modulo their duration.
func (t *Track) Position() float64 {
	pos := t.pos
	if t.playing {
		pos += t.now().Sub(t.anchor).Seconds()
	}
	if t.Loop && t.duration > 0 {
		for pos >= t.duration {
			pos -= t.duration
		}
	}
	return pos
}

// Advancing reports whether the track is currently driving time forward.
func (t *Track) Advancing() bool {
	return t.playing && !t.Ended()
}

func (t *Track) Playing() bool { return t.playing }

// Ended reports whether a non-looping track has run past its duration.
func (t *Track) Ended() bool {
	if t.Loop || t.duration <= 0 {
		return false
	}
	return t.Position() >= t.duration
}

// SetClock injects a time source; tests drive playback without real waiting.
func (t *Track) SetClock(now func() time.Time) {
	t.now = now
}
