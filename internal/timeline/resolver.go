package timeline

import (
	"github.com/ivlev/blueprint/internal/blueprint"
)

// Resolution is the answer to "what is on screen at time t".
type Resolution struct {
	Scene         blueprint.Scene
	Index         int
	LocalTime     float64 // seconds since the scene became active
	LocalDuration float64 // realized on-screen duration of the scene
}

// FallbackDuration returns the unscaled sum of target durations. It is the
// total used while the narration track has not reported a real duration yet,
// so the resolver is always callable.
func FallbackDuration(scenes []blueprint.Scene) float64 {
	sum := 0.0
	for _, s := range scenes {
		sum += s.TargetDuration
	}
	return sum
}

// ScaledDurations maps scene weights onto the authoritative total: each scene
// gets (weight / weightSum) * totalDuration, so the realized durations always
// sum to totalDuration regardless of the original weights.
func ScaledDurations(scenes []blueprint.Scene, totalDuration float64) []float64 {
	weightSum := FallbackDuration(scenes)
	durations := make([]float64, len(scenes))
	if weightSum <= 0 {
		return durations
	}
	for i, s := range scenes {
		durations[i] = (s.TargetDuration / weightSum) * totalDuration
	}
	return durations
}

// Resolve maps a playback clock time onto the scene list. Scene intervals are
// half-open [start, start+dur), so a boundary instant belongs to the incoming
// scene. Any t past the end (floating point spill at the very tail) resolves
// to the last scene with LocalTime clamped to its duration. Pure: depends only
// on the arguments, so seeking can never corrupt it.
func Resolve(scenes []blueprint.Scene, totalDuration, t float64) Resolution {
	if len(scenes) == 0 {
		return Resolution{Index: -1}
	}

	if totalDuration <= 0 {
		totalDuration = FallbackDuration(scenes)
	}

	durations := ScaledDurations(scenes, totalDuration)

	elapsed := 0.0
	for i, d := range durations {
		if t >= elapsed && t < elapsed+d {
			return Resolution{
				Scene:         scenes[i],
				Index:         i,
				LocalTime:     t - elapsed,
				LocalDuration: d,
			}
		}
		elapsed += d
	}

	// Past the final interval: pin to the last scene.
	last := len(scenes) - 1
	localTime := t - (elapsed - durations[last])
	if localTime > durations[last] {
		localTime = durations[last]
	}
	if localTime < 0 {
		localTime = 0
	}
	return Resolution{
		Scene:         scenes[last],
		Index:         last,
		LocalTime:     localTime,
		LocalDuration: durations[last],
	}
}
