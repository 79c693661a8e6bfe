package export

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
)

// Fixed encode target: one vertical resolution, one high bitrate. The host's
// best H.264 encoder is probed, not negotiated.
const videoBitrateKbit = 25000

// Recorder consumes composed frames and finalizes them into a video file.
// The export loop only pushes frames and finalizes, so a fake recorder makes
// the whole pipeline testable without an encoder.
type Recorder interface {
	Start() error
	WriteFrame(*image.RGBA) error
	// Finalize flushes buffered output and returns the produced file path.
	Finalize() (string, error)
}

// AudioGraph describes the capture mix: the narration input plus, when
// allowed, the background music routed through a volume gain into the same
// destination. Built at most once per pipeline and reused.
type AudioGraph struct {
	NarrationPath string
	MusicPath     string // empty: narration-only mix
	MusicVolume   float64
}

// FFmpegRecorder encodes raw RGBA frames piped over stdin together with the
// audio graph, the same way the segment encoder feeds ffmpeg.
type FFmpegRecorder struct {
	Width, Height int
	FPS           int
	OutputPath    string
	Encoder       string
	Graph         AudioGraph

	cmd   *exec.Cmd
	stdin io.WriteCloser
	log   bytes.Buffer
}

func (r *FFmpegRecorder) Start() error {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", r.Width, r.Height),
		"-framerate", fmt.Sprintf("%d", r.FPS),
		"-i", "-",
	}

	// Аудио-граф: голос всегда, музыка через gain + amix если разрешена.
	audioMap := ""
	if r.Graph.NarrationPath != "" {
		args = append(args, "-i", r.Graph.NarrationPath)
		audioMap = "1:a"
		if r.Graph.MusicPath != "" {
			args = append(args, "-stream_loop", "-1", "-i", r.Graph.MusicPath)
			filter := fmt.Sprintf("[2:a]volume=%f[bg];[1:a][bg]amix=inputs=2:duration=first:dropout_transition=3[aout]", r.Graph.MusicVolume)
			args = append(args, "-filter_complex", filter)
			audioMap = "[aout]"
		}
	}

	args = append(args, "-map", "0:v")
	if audioMap != "" {
		args = append(args, "-map", audioMap, "-shortest")
	}

	args = append(args,
		"-c:v", r.Encoder,
		"-b:v", fmt.Sprintf("%dk", videoBitrateKbit),
		"-pix_fmt", "yuv420p",
		r.OutputPath,
	)

	cmd := exec.Command("ffmpeg", args...)
	cmd.Stdout = &r.log
	cmd.Stderr = &r.log

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	r.cmd = cmd
	r.stdin = stdin
	return nil
}

func (r *FFmpegRecorder) WriteFrame(img *image.RGBA) error {
	return writeRawRGBA(r.stdin, img)
}

// Finalize closes the pipe, which makes ffmpeg flush its trailing buffered
// output before exiting, and waits for the encode to complete.
func (r *FFmpegRecorder) Finalize() (string, error) {
	if r.stdin != nil {
		r.stdin.Close()
	}
	if r.cmd != nil {
		if err := r.cmd.Wait(); err != nil {
			return "", fmt.Errorf("ffmpeg wait error: %w\nLog: %s", err, r.log.String())
		}
	}
	return r.OutputPath, nil
}

func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	rgba := img
	if rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}
