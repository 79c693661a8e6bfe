package compositor

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ivlev/blueprint/internal/blueprint"
	"github.com/ivlev/blueprint/internal/media"
	"github.com/ivlev/blueprint/internal/timeline"
)

const (
	// Flash levels and decay per rendered frame.
	flashScene = 0.4
	flashDecay = 0.05

	// Call-to-action window at the tail of the production.
	ctaWindow = 3.5

	progressBarHeight = 8
	subtitleBaseline  = 450 // distance of the subtitle baseline from the bottom edge
)

// EffectsState is the only cross-frame state the compositor keeps: the flash
// wash intensity and the scene index of the previous frame. Everything else is
// recomputed from the time arguments, so seeking never corrupts a render.
type EffectsState struct {
	FlashIntensity float64
	PrevSceneIndex int
}

// Compositor draws fully composed frames for a production. It is deterministic
// given (production, time, effects state) except for two declared exceptions:
// scene media that has not decoded yet is skipped, and the film grain toggle
// draws from the compositor's own seeded RNG.
type Compositor struct {
	W, H  int
	Store *media.Store

	// ProductURL, when set, renders a QR panel alongside the call-to-action.
	ProductURL string

	faces    faceSet
	grain    *rand.Rand
	vignette *image.RGBA
	ctaBase  *image.RGBA
	qr       image.Image
}

// New builds a compositor for the given logical resolution. fontPath may be
// empty: the embedded Go fonts are used then.
func New(width, height int, store *media.Store, productURL, fontPath string) (*Compositor, error) {
	faces, err := loadFaces(fontPath)
	if err != nil {
		return nil, err
	}

	c := &Compositor{
		W:          width,
		H:          height,
		Store:      store,
		ProductURL: productURL,
		faces:      faces,
		grain:      rand.New(rand.NewSource(1)),
	}
	c.vignette = c.buildVignette()
	c.ctaBase = buildCTAButton()
	if productURL != "" {
		c.qr = buildQR(productURL)
	}
	return c, nil
}

// SeedGrain reseeds the grain RNG; export uses a fixed seed so repeated runs
// produce the same file.
func (c *Compositor) SeedGrain(seed int64) {
	c.grain = rand.New(rand.NewSource(seed))
}

// Render composes one frame at playback time t into dst and returns the
// updated effects state. Layers back to front: base fill, scene visual,
// grain, vignette, subtitles, call-to-action, transition flash, progress bar.
func (c *Compositor) Render(dst *image.RGBA, prod *blueprint.Production, totalDuration, t float64, fx EffectsState) EffectsState {
	res := timeline.Resolve(prod.Scenes, totalDuration, t)
	if res.Index < 0 {
		return fx
	}
	if totalDuration <= 0 {
		totalDuration = timeline.FallbackDuration(prod.Scenes)
	}

	// Scene boundary crossed since the previous frame: arm the flash.
	if res.Index != fx.PrevSceneIndex && fx.FlashIntensity < flashScene {
		fx.FlashIntensity = flashScene
	}
	fx.PrevSceneIndex = res.Index

	// 1. Opaque base so nothing bleeds between frames.
	fillRect(dst, dst.Bounds(), color.RGBA{0, 0, 0, 255})

	// 2. Scene visual.
	switch res.Scene.Kind {
	case blueprint.KindImage:
		if img, ok := c.Store.Get(res.Scene.ID); ok {
			c.drawSceneImage(dst, img, res.Index, res.LocalTime, t)
		}
		// Media not decoded yet: layer skipped, never an error.
	case blueprint.KindPlaceholder:
		c.drawViewfinder(dst, res.Index)
	}

	// 3. Film grain: a coarse low-opacity wash toggled per frame.
	if c.grain.Float64() > 0.5 {
		blendRect(dst, dst.Bounds(), color.RGBA{255, 255, 255, 255}, 0.05)
	}

	// 4. Vignette (constant, precomputed).
	xdraw.Draw(dst, dst.Bounds(), c.vignette, image.Point{}, xdraw.Over)

	// 5. Subtitles: full narration captions only for full-AI productions.
	if prod.Style == blueprint.StyleFullAI && res.Scene.Narration != "" {
		progress := 0.0
		if res.LocalDuration > 0 {
			progress = math.Min(1, math.Max(0, res.LocalTime/res.LocalDuration))
		}
		if chunk := SubtitleChunk(res.Scene.Narration, progress); chunk != "" {
			c.drawOutlinedText(dst, chunk, c.W/2, c.H-subtitleBaseline, c.faces.subtitle)
		}
	}

	// 6. Call-to-action during the final seconds.
	if visible, slide := CTASlide(totalDuration, t); visible {
		c.drawCTA(dst, slide, t)
	}

	// 7. Transition flash.
	if fx.FlashIntensity > 0 {
		blendRect(dst, dst.Bounds(), color.RGBA{255, 255, 255, 255}, fx.FlashIntensity)
	}

	// 8. Progress bar.
	c.drawProgressBar(dst, totalDuration, t)

	// Decay toward zero, floored exactly at 0.
	fx.FlashIntensity = math.Max(0, fx.FlashIntensity-flashDecay)

	return fx
}

// CTASlide reports whether the call-to-action is visible at time t and how far
// it has slid in: 0 at the start of the window, 1 once fully in place (two
// seconds into the 3.5 second window).
func CTASlide(totalDuration, t float64) (bool, float64) {
	timeLeft := totalDuration - t
	if timeLeft <= 0 || timeLeft >= ctaWindow {
		return false, 0
	}
	return true, math.Min(1, (ctaWindow-timeLeft)*2)
}

// drawSceneImage cover-fits the scene visual and applies the living-photo
// motion: a slow push-in over local scene time, a sine sway whose direction
// alternates with scene parity, and a high-frequency beat pulse driven by
// global time so the rhythm survives scene cuts.
func (c *Compositor) drawSceneImage(dst *image.RGBA, img image.Image, sceneIndex int, localTime, globalTime float64) {
	b := img.Bounds()
	iw, ih := float64(b.Dx()), float64(b.Dy())
	if iw <= 0 || ih <= 0 {
		return
	}

	cover := math.Max(float64(c.W)/iw, float64(c.H)/ih)

	direction := 1.0
	if sceneIndex%2 == 1 {
		direction = -1.0
	}

	scale := 1.1 + localTime*0.015
	xOffset := math.Sin(localTime*0.025) * 30 * direction
	beatPulse := math.Abs(math.Sin(globalTime*3)) * 0.015

	s := cover * (scale + beatPulse)
	tx := float64(c.W)/2 + xOffset - s*iw/2
	ty := float64(c.H)/2 - s*ih/2

	xdraw.ApproxBiLinear.Transform(dst, f64.Aff3{s, 0, tx, 0, s, ty}, img, b, xdraw.Over, nil)
}

func (c *Compositor) drawProgressBar(dst *image.RGBA, totalDuration, t float64) {
	total := totalDuration
	if total <= 0 {
		total = 1
	}
	progress := math.Min(t/total, 1)

	track := image.Rect(0, c.H-progressBarHeight, c.W, c.H)
	blendRect(dst, track, color.RGBA{255, 255, 255, 255}, 0.2)

	fill := image.Rect(0, c.H-progressBarHeight, int(float64(c.W)*progress), c.H)
	fillRect(dst, fill, color.RGBA{255, 255, 255, 255})
}

// buildVignette precomputes the radial darkening layer: fully transparent out
// to h/3 from center, easing to half-black at distance h.
func (c *Compositor) buildVignette() *image.RGBA {
	v := image.NewRGBA(image.Rect(0, 0, c.W, c.H))
	cx, cy := float64(c.W)/2, float64(c.H)/2
	inner := float64(c.H) / 3
	outer := float64(c.H)

	for y := 0; y < c.H; y++ {
		for x := 0; x < c.W; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			frac := (d - inner) / (outer - inner)
			if frac <= 0 {
				continue
			}
			if frac > 1 {
				frac = 1
			}
			a := uint8(frac * 0.5 * 255)
			v.SetRGBA(x, y, color.RGBA{0, 0, 0, a})
		}
	}
	return v
}
