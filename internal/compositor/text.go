package compositor

import (
	"image"
	"image/color"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// faceSet holds the three text sizes the overlays use: subtitles, the CTA
// button label, and the small viewfinder labels.
type faceSet struct {
	subtitle font.Face // 56px bold
	cta      font.Face // 50px bold
	label    font.Face // 32px bold
}

// loadFaces parses either the font file at fontPath or the embedded Go bold
// face, and derives the overlay sizes from it.
func loadFaces(fontPath string) (faceSet, error) {
	data := gobold.TTF
	if fontPath != "" {
		b, err := os.ReadFile(fontPath)
		if err != nil {
			return faceSet{}, err
		}
		data = b
	}

	ft, err := opentype.Parse(data)
	if err != nil {
		return faceSet{}, err
	}

	newFace := func(size float64) (font.Face, error) {
		return opentype.NewFace(ft, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}

	var fs faceSet
	if fs.subtitle, err = newFace(56); err != nil {
		return faceSet{}, err
	}
	if fs.cta, err = newFace(50); err != nil {
		return faceSet{}, err
	}
	if fs.label, err = newFace(32); err != nil {
		return faceSet{}, err
	}
	return fs, nil
}

// drawText draws s with its left edge at x and baseline at y.
func drawText(dst *image.RGBA, s string, x, y int, face font.Face, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func textWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// drawCenteredText draws s horizontally centered on x, baseline at y.
func drawCenteredText(dst *image.RGBA, s string, x, y int, face font.Face, col color.Color) {
	drawText(dst, s, x-textWidth(face, s)/2, y, face, col)
}

// drawOutlinedText renders a heavy dark outline behind a white fill so the
// text stays legible over arbitrary imagery. The outline is the fill stamped
// at eight compass offsets.
func (c *Compositor) drawOutlinedText(dst *image.RGBA, s string, cx, baseline int, face font.Face) {
	const stroke = 4
	outline := color.RGBA{0, 0, 0, 204}
	x := cx - textWidth(face, s)/2

	offsets := [8][2]int{
		{-stroke, 0}, {stroke, 0}, {0, -stroke}, {0, stroke},
		{-stroke, -stroke}, {stroke, -stroke}, {-stroke, stroke}, {stroke, stroke},
	}
	for _, off := range offsets {
		drawText(dst, s, x+off[0], baseline+off[1], face, outline)
	}

	drawText(dst, s, x, baseline, face, color.RGBA{255, 255, 255, 255})
}
