package compositor

import (
	"image"
	"image/color"
	"log"
	"math"

	qrcode "github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
)

const (
	ctaButtonW = 600
	ctaButtonH = 140
	ctaSlidePx = 300 // how far the button travels up from the bottom edge
	ctaLabel   = "Shop Now"
	qrSize     = 160
)

// buildCTAButton precomputes the button background: a blue→violet horizontal
// gradient with rounded ends.
func buildCTAButton() *image.RGBA {
	btn := image.NewRGBA(image.Rect(0, 0, ctaButtonW, ctaButtonH))
	horizontalGradient(btn, btn.Bounds(), color.RGBA{37, 99, 235, 255}, color.RGBA{124, 58, 237, 255})
	roundCorners(btn, ctaButtonH/2)
	return btn
}

func buildQR(url string) image.Image {
	qr, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		log.Printf("[!] Не удалось сгенерировать QR для CTA: %v", err)
		return nil
	}
	return qr.Image(qrSize)
}

// drawCTA renders the call-to-action sliding up from the bottom edge with a
// continuous pulse on global time, plus the optional QR panel above it.
func (c *Compositor) drawCTA(dst *image.RGBA, slide, globalTime float64) {
	yPos := float64(c.H) - ctaSlidePx*slide
	pulse := 1 + math.Sin(globalTime*5)*0.02

	bw := int(float64(ctaButtonW) * pulse)
	bh := int(float64(ctaButtonH) * pulse)
	bx := c.W/2 - bw/2
	by := int(yPos+ctaButtonH/2) - bh/2

	xdraw.ApproxBiLinear.Scale(dst, image.Rect(bx, by, bx+bw, by+bh), c.ctaBase, c.ctaBase.Bounds(), xdraw.Over, nil)

	drawCenteredText(dst, ctaLabel, c.W/2, by+bh/2+17, c.faces.cta, color.RGBA{255, 255, 255, 255})

	if c.qr != nil {
		qx := c.W/2 - qrSize/2
		qy := by - qrSize - 40
		xdraw.Draw(dst, image.Rect(qx, qy, qx+qrSize, qy+qrSize), c.qr, c.qr.Bounds().Min, xdraw.Over)
	}
}
