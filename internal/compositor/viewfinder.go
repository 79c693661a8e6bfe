package compositor

import (
	"fmt"
	"image"
	"image/color"
)

// drawViewfinder renders the "recording" stand-in for placeholder scenes:
// a dark gradient, corner brackets, a center reticle, a REC indicator and the
// 1-based scene number. It substitutes for footage the user films themselves.
func (c *Compositor) drawViewfinder(dst *image.RGBA, sceneIndex int) {
	w, h := c.W, c.H

	verticalGradient(dst, dst.Bounds(), color.RGBA{9, 9, 11, 255}, color.RGBA{0, 0, 0, 255})

	white := color.RGBA{255, 255, 255, 255}

	// Corner brackets.
	const (
		cornerSize = 80
		padding    = 60
		bracketPx  = 4
	)
	// Top-left.
	vLine(dst, padding, padding, padding+cornerSize, bracketPx, white, 0.5)
	hLine(dst, padding, padding+cornerSize, padding, bracketPx, white, 0.5)
	// Top-right.
	vLine(dst, w-padding, padding, padding+cornerSize, bracketPx, white, 0.5)
	hLine(dst, w-padding-cornerSize, w-padding, padding, bracketPx, white, 0.5)
	// Bottom-left.
	vLine(dst, padding, h-padding-cornerSize, h-padding, bracketPx, white, 0.5)
	hLine(dst, padding, padding+cornerSize, h-padding, bracketPx, white, 0.5)
	// Bottom-right.
	vLine(dst, w-padding, h-padding-cornerSize, h-padding, bracketPx, white, 0.5)
	hLine(dst, w-padding-cornerSize, w-padding, h-padding, bracketPx, white, 0.5)

	// Center reticle.
	const retSize = 20
	hLine(dst, w/2-retSize, w/2+retSize, h/2, 2, white, 0.3)
	vLine(dst, w/2, h/2-retSize, h/2+retSize, 2, white, 0.3)

	// REC indicator.
	fillCircle(dst, 100, 100, 12, color.RGBA{239, 68, 68, 255})
	drawText(dst, "REC", 125, 112, c.faces.label, white)

	// Scene number, right-aligned.
	label := fmt.Sprintf("SCENE %d", sceneIndex+1)
	drawText(dst, label, w-100-textWidth(c.faces.label, label), 112, c.faces.label, color.RGBA{255, 255, 255, 128})
}
