package compositor

import (
	"image"
	"image/color"
	"image/draw"
)

// Низкоуровневые примитивы рисования. Все работают в координатах кадра и
// молча отсекают выход за границы.

func fillRect(dst *image.RGBA, r image.Rectangle, col color.RGBA) {
	draw.Draw(dst, r.Intersect(dst.Bounds()), image.NewUniform(col), image.Point{}, draw.Src)
}

// blendRect alpha-blends a uniform color over the rectangle. alpha is 0..1.
func blendRect(dst *image.RGBA, r image.Rectangle, col color.RGBA, alpha float64) {
	if alpha <= 0 {
		return
	}
	if alpha > 1 {
		alpha = 1
	}
	a := uint8(alpha * 255)
	src := image.NewUniform(color.RGBA{
		R: uint8(uint16(col.R) * uint16(a) / 255),
		G: uint8(uint16(col.G) * uint16(a) / 255),
		B: uint8(uint16(col.B) * uint16(a) / 255),
		A: a,
	})
	draw.Draw(dst, r.Intersect(dst.Bounds()), src, image.Point{}, draw.Over)
}

// hLine and vLine draw axis-aligned strokes of the given thickness.
func hLine(dst *image.RGBA, x0, x1, y, thickness int, col color.RGBA, alpha float64) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	blendRect(dst, image.Rect(x0, y-thickness/2, x1, y-thickness/2+thickness), col, alpha)
}

func vLine(dst *image.RGBA, x, y0, y1, thickness int, col color.RGBA, alpha float64) {
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	blendRect(dst, image.Rect(x-thickness/2, y0, x-thickness/2+thickness, y1), col, alpha)
}

func fillCircle(dst *image.RGBA, cx, cy, r int, col color.RGBA) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				if (image.Point{x, y}).In(dst.Bounds()) {
					dst.SetRGBA(x, y, col)
				}
			}
		}
	}
}

// verticalGradient fills the rectangle row by row, lerping top → bottom.
func verticalGradient(dst *image.RGBA, r image.Rectangle, top, bottom color.RGBA) {
	r = r.Intersect(dst.Bounds())
	h := r.Dy()
	if h <= 0 {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		t := float64(y-r.Min.Y) / float64(h)
		row := color.RGBA{
			R: lerpByte(top.R, bottom.R, t),
			G: lerpByte(top.G, bottom.G, t),
			B: lerpByte(top.B, bottom.B, t),
			A: 255,
		}
		fillRect(dst, image.Rect(r.Min.X, y, r.Max.X, y+1), row)
	}
}

// horizontalGradient fills the rectangle column by column, lerping left → right.
func horizontalGradient(dst *image.RGBA, r image.Rectangle, left, right color.RGBA) {
	r = r.Intersect(dst.Bounds())
	w := r.Dx()
	if w <= 0 {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		t := float64(x-r.Min.X) / float64(w)
		col := color.RGBA{
			R: lerpByte(left.R, right.R, t),
			G: lerpByte(left.G, right.G, t),
			B: lerpByte(left.B, right.B, t),
			A: 255,
		}
		fillRect(dst, image.Rect(x, r.Min.Y, x+1, r.Max.Y), col)
	}
}

func lerpByte(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

// roundCorners clears the corner pixels outside a radius-r rounded outline by
// zeroing their alpha. Cheap substitute for a real path clip.
func roundCorners(img *image.RGBA, r int) {
	b := img.Bounds()
	if r*2 > b.Dx() {
		r = b.Dx() / 2
	}
	if r*2 > b.Dy() {
		r = b.Dy() / 2
	}
	centers := [4]image.Point{
		{b.Min.X + r, b.Min.Y + r},
		{b.Max.X - r - 1, b.Min.Y + r},
		{b.Min.X + r, b.Max.Y - r - 1},
		{b.Max.X - r - 1, b.Max.Y - r - 1},
	}
	corners := [4]image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Min.X+r, b.Min.Y+r),
		image.Rect(b.Max.X-r, b.Min.Y, b.Max.X, b.Min.Y+r),
		image.Rect(b.Min.X, b.Max.Y-r, b.Min.X+r, b.Max.Y),
		image.Rect(b.Max.X-r, b.Max.Y-r, b.Max.X, b.Max.Y),
	}
	for i, corner := range corners {
		c := centers[i]
		for y := corner.Min.Y; y < corner.Max.Y; y++ {
			for x := corner.Min.X; x < corner.Max.X; x++ {
				dx, dy := x-c.X, y-c.Y
				if dx*dx+dy*dy > r*r {
					img.SetRGBA(x, y, color.RGBA{})
				}
			}
		}
	}
}
