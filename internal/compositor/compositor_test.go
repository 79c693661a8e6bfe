package compositor

import (
	"image"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/ivlev/blueprint/internal/blueprint"
	"github.com/ivlev/blueprint/internal/media"
)

func testProduction() *blueprint.Production {
	return &blueprint.Production{
		Style: blueprint.StyleFullAI,
		Scenes: []blueprint.Scene{
			{ID: "s1", Kind: blueprint.KindImage, Narration: "first scene words here now one two three", TargetDuration: 2.5},
			{ID: "s2", Kind: blueprint.KindPlaceholder, Narration: "film this yourself", TargetDuration: 3.0},
			{ID: "s3", Kind: blueprint.KindImage, Narration: "closing line", TargetDuration: 2.0},
		},
	}
}

func newTestCompositor(t *testing.T) *Compositor {
	t.Helper()
	store := media.NewStore()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 4), uint8(y * 4), 128, 255})
		}
	}
	store.Put("s1", img)
	store.Put("s3", img)

	c, err := New(270, 480, store, "", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestSplitSubtitleChunks(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		sizes []int
	}{
		{"thirteen words", "a b c d e f g h i j k l m", []int{6, 6, 1}},
		{"exact multiple", "a b c d e f g h i j k l", []int{6, 6}},
		{"short", "just three words", []int{3}},
		{"empty", "   ", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chunks := SplitSubtitle(tc.text)
			if len(chunks) != len(tc.sizes) {
				t.Fatalf("Expected %d chunks, got %d: %v", len(tc.sizes), len(chunks), chunks)
			}
			for i, chunk := range chunks {
				if got := len(strings.Fields(chunk)); got != tc.sizes[i] {
					t.Errorf("Chunk %d: expected %d words, got %d (%q)", i, tc.sizes[i], got, chunk)
				}
			}
		})
	}
}

func TestSubtitleChunkProgress(t *testing.T) {
	text := "a b c d e f g h i j k l m" // chunks: [a..f] [g..l] [m]

	if got := SubtitleChunk(text, 0); got != "a b c d e f" {
		t.Errorf("progress 0: got %q", got)
	}
	if got := SubtitleChunk(text, 0.5); got != "g h i j k l" {
		t.Errorf("progress 0.5: got %q", got)
	}
	// Progress 1.0 would index one past the end; it must clamp to the last chunk.
	if got := SubtitleChunk(text, 1.0); got != "m" {
		t.Errorf("progress 1.0: got %q", got)
	}
	if got := SubtitleChunk("", 0.5); got != "" {
		t.Errorf("empty narration: got %q", got)
	}
}

func TestCTASlide(t *testing.T) {
	total := 20.0

	if visible, _ := CTASlide(total, 10.0); visible {
		t.Error("CTA must be hidden mid-timeline")
	}
	if visible, _ := CTASlide(total, 16.5); visible {
		t.Error("CTA must be hidden exactly 3.5s before the end")
	}

	visible, slide := CTASlide(total, 17.0)
	if !visible {
		t.Fatal("CTA must be visible inside the final window")
	}
	if math.Abs(slide-1.0) > 1e-9 {
		// 3.0s left: (3.5-3.0)*2 = 1.0, fully slid in.
		t.Errorf("Expected slide 1.0 at 3.0s left, got %f", slide)
	}

	_, slide = CTASlide(total, 16.75)
	if math.Abs(slide-0.5) > 1e-9 {
		t.Errorf("Expected slide 0.5 at 3.25s left, got %f", slide)
	}
}

func TestFlashDecaysToExactZero(t *testing.T) {
	c := newTestCompositor(t)
	prod := testProduction()
	dst := image.NewRGBA(image.Rect(0, 0, c.W, c.H))

	fx := EffectsState{FlashIntensity: 0.12, PrevSceneIndex: 0}
	prev := fx.FlashIntensity
	for i := 0; i < 10; i++ {
		fx = c.Render(dst, prod, 10.0, 0.5, fx)
		if fx.FlashIntensity > prev {
			t.Fatalf("Flash rose from %f to %f without a scene change", prev, fx.FlashIntensity)
		}
		prev = fx.FlashIntensity
	}
	if fx.FlashIntensity != 0 {
		t.Errorf("Expected flash floored at exactly 0, got %f", fx.FlashIntensity)
	}
}

func TestSceneChangeArmsFlash(t *testing.T) {
	c := newTestCompositor(t)
	prod := testProduction()
	dst := image.NewRGBA(image.Rect(0, 0, c.W, c.H))

	// Scene 0 first, then a time inside scene 1 (weights 2.5/3/2 over 10s:
	// boundary at ~3.33s).
	fx := c.Render(dst, prod, 10.0, 1.0, EffectsState{})
	fx = c.Render(dst, prod, 10.0, 4.0, fx)

	// One decay step already applied after arming.
	want := flashScene - flashDecay
	if math.Abs(fx.FlashIntensity-want) > 1e-9 {
		t.Errorf("Expected flash %f right after a scene change, got %f", want, fx.FlashIntensity)
	}
	if fx.PrevSceneIndex != 1 {
		t.Errorf("Expected PrevSceneIndex 1, got %d", fx.PrevSceneIndex)
	}
}

func TestRenderProducesOpaqueFrame(t *testing.T) {
	c := newTestCompositor(t)
	prod := testProduction()
	dst := image.NewRGBA(image.Rect(0, 0, c.W, c.H))

	c.Render(dst, prod, 10.0, 5.0, EffectsState{})

	for _, p := range []image.Point{{0, 0}, {c.W - 1, c.H - 1}, {c.W / 2, c.H / 2}} {
		if a := dst.RGBAAt(p.X, p.Y).A; a != 255 {
			t.Errorf("Pixel %v has alpha %d, frames must be opaque", p, a)
		}
	}
}

func TestRenderPlaceholderWithoutMedia(t *testing.T) {
	// Placeholder scenes render the viewfinder even with an empty store.
	store := media.NewStore()
	c, err := New(270, 480, store, "", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	prod := &blueprint.Production{
		Style: blueprint.StyleFilmingGuide,
		Scenes: []blueprint.Scene{
			{ID: "p1", Kind: blueprint.KindPlaceholder, TargetDuration: 2.0},
		},
	}
	dst := image.NewRGBA(image.Rect(0, 0, c.W, c.H))
	c.Render(dst, prod, 2.0, 1.0, EffectsState{})

	// The REC dot is red, everything else in the viewfinder is gray-on-dark.
	found := false
	for y := 80; y < 130 && !found; y++ {
		for x := 80; x < 130; x++ {
			px := dst.RGBAAt(x, y)
			if px.R > 180 && px.G < 120 && px.B < 120 {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("Expected the REC indicator in the placeholder viewfinder")
	}
}

func TestRenderDeterministicWithSeededGrain(t *testing.T) {
	prod := testProduction()

	render := func() *image.RGBA {
		c := newTestCompositor(t)
		c.SeedGrain(1)
		dst := image.NewRGBA(image.Rect(0, 0, c.W, c.H))
		fx := EffectsState{}
		for i := 0; i < 5; i++ {
			fx = c.Render(dst, prod, 10.0, float64(i)*0.5, fx)
		}
		return dst
	}

	a, b := render(), render()
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatal("Two seeded renders of the same timeline diverged")
		}
	}
}

func TestRenderSeekIsStateless(t *testing.T) {
	c := newTestCompositor(t)
	prod := testProduction()

	// Rendering t=8 directly and rendering it after a detour through other
	// times must give the same frame when grain and flash are equal.
	direct := image.NewRGBA(image.Rect(0, 0, c.W, c.H))
	c.SeedGrain(7)
	c.Render(direct, prod, 10.0, 8.0, EffectsState{PrevSceneIndex: 2})

	detour := image.NewRGBA(image.Rect(0, 0, c.W, c.H))
	c.SeedGrain(3)
	c.Render(detour, prod, 10.0, 2.0, EffectsState{})
	c.SeedGrain(7)
	c.Render(detour, prod, 10.0, 8.0, EffectsState{PrevSceneIndex: 2})

	for i := range direct.Pix {
		if direct.Pix[i] != detour.Pix[i] {
			t.Fatal("Seeking corrupted the render: frames at t=8 differ")
		}
	}
}
