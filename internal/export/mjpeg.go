package export

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/icza/mjpeg"
)

// MJPEGRecorder is the degraded fallback when ffmpeg is unavailable: a
// Motion-JPEG AVI, video only. Plays everywhere, carries no audio track.
type MJPEGRecorder struct {
	Width, Height int
	FPS           int
	OutputPath    string

	writer mjpeg.AviWriter
}

func (r *MJPEGRecorder) Start() error {
	w, err := mjpeg.New(r.OutputPath, int32(r.Width), int32(r.Height), int32(r.FPS))
	if err != nil {
		return err
	}
	r.writer = w
	return nil
}

func (r *MJPEGRecorder) WriteFrame(img *image.RGBA) error {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return err
	}
	return r.writer.AddFrame(buf.Bytes())
}

func (r *MJPEGRecorder) Finalize() (string, error) {
	if err := r.writer.Close(); err != nil {
		return "", err
	}
	return r.OutputPath, nil
}
