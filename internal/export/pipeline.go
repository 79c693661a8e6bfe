package export

import (
	"context"
	"fmt"
	"image"
	"log"
	"math"
	"os/exec"
	"strings"

	"github.com/ivlev/blueprint/internal/audio"
	"github.com/ivlev/blueprint/internal/blueprint"
	"github.com/ivlev/blueprint/internal/compositor"
	"github.com/ivlev/blueprint/internal/playback"
	"github.com/ivlev/blueprint/internal/system"
)

// Pipeline re-plays the timeline under explicit control while a recorder
// captures every frame plus the mixed audio graph. The frame loop is the sole
// time source during export, so the produced file's length matches the
// narration exactly. There is no wall-clock fallback here.
type Pipeline struct {
	Clock      *playback.Clock
	Comp       *compositor.Compositor
	Prod       *blueprint.Production
	Narration  *audio.Track
	Music      *audio.Track // may be nil or capture-restricted
	FPS        int
	OutputPath string

	// NewRecorder can be overridden in tests; the default probes ffmpeg and
	// falls back to MJPEG.
	NewRecorder func(graph AudioGraph) (Recorder, error)

	graph *AudioGraph // built once, reused across export attempts
}

// Export drives the full capture. Any failure restores the Stopped state:
// export must never leave the session wedged in Exporting.
func (p *Pipeline) Export(ctx context.Context) (path string, err error) {
	if err := p.Clock.BeginExport(); err != nil {
		return "", err
	}
	defer p.Clock.EndExport()

	if p.Comp == nil || p.Narration == nil {
		return "", ErrMissingSource
	}
	total := p.Narration.Duration()
	if total <= 0 {
		return "", fmt.Errorf("%w: у озвучки нет длительности", ErrMissingSource)
	}
	if p.FPS <= 0 {
		p.FPS = 60
	}

	system.ReportMemory(p.Comp.W, p.Comp.H)

	graph := p.audioGraph()

	newRecorder := p.NewRecorder
	if newRecorder == nil {
		newRecorder = p.defaultRecorder
	}
	rec, err := newRecorder(*graph)
	if err != nil {
		return "", err
	}
	if err := rec.Start(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncodingUnsupported, err)
	}

	// Кадровый буфер переиспользуем через пул: 1080x1920x4 на кадр.
	frame := system.GetImage(image.Rect(0, 0, p.Comp.W, p.Comp.H))
	defer system.PutImage(frame)

	// Детеминированное зерно: два экспорта одного блюпринта дают один файл.
	p.Comp.SeedGrain(1)
	fx := compositor.EffectsState{}

	// Rewind both tracks and render the t=0 frame before capture begins so
	// the file never opens on a blank frame. The duplicate write replaces the
	// browser recorder's startup delay.
	p.Narration.Seek(0)
	if p.Music != nil {
		p.Music.Seek(0)
	}
	fx = p.Comp.Render(frame, p.Prod, total, 0, fx)
	if err := rec.WriteFrame(frame); err != nil {
		return "", fmt.Errorf("запись кадра 0: %w", err)
	}

	frameCount := int(math.Ceil(total * float64(p.FPS)))
	for i := 0; i < frameCount; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		// Drive the narration position, then read it back as ground truth.
		t := float64(i) / float64(p.FPS)
		p.Narration.Seek(t)
		pos := p.Narration.Position()

		fx = p.Comp.Render(frame, p.Prod, total, pos, fx)
		if err := rec.WriteFrame(frame); err != nil {
			return "", fmt.Errorf("запись кадра %d: %w", i, err)
		}

		if p.Narration.Ended() || pos >= total {
			break
		}
	}

	// Stop the tracks, then finalize: closing the recorder flushes the
	// trailing buffered output.
	p.Narration.Pause()
	p.Narration.Seek(0)
	if p.Music != nil {
		p.Music.Pause()
		p.Music.Seek(0)
	}

	path, err = rec.Finalize()
	if err != nil {
		return "", err
	}
	return path, nil
}

// audioGraph lazily builds the capture mix exactly once. Connecting the music
// track is allowed to fail: a restricted or absent track degrades the mix to
// narration-only with an advisory, it never fails the export.
func (p *Pipeline) audioGraph() *AudioGraph {
	if p.graph != nil {
		return p.graph
	}

	g := &AudioGraph{
		NarrationPath: p.Narration.Path,
		MusicVolume:   p.Clock.State().MusicVolume,
	}
	switch {
	case p.Music == nil:
	case p.Music.CaptureRestricted:
		p.Clock.Warn("музыка воспроизводится, но не попадет в экспорт (ограничение источника)")
		log.Printf("[!] Фоновая музыка не подключена к записи: источник без cross-origin разрешения")
	default:
		g.MusicPath = p.Music.Path
	}

	p.graph = g
	return g
}

// defaultRecorder prefers ffmpeg with the best available H.264 encoder and
// degrades to the MJPEG AVI writer when ffmpeg is missing.
func (p *Pipeline) defaultRecorder(graph AudioGraph) (Recorder, error) {
	if _, err := exec.LookPath("ffmpeg"); err == nil {
		encoder, _ := system.GetBestH264Encoder()
		return &FFmpegRecorder{
			Width:      p.Comp.W,
			Height:     p.Comp.H,
			FPS:        p.FPS,
			OutputPath: p.OutputPath,
			Encoder:    encoder,
			Graph:      graph,
		}, nil
	}

	p.Clock.Warn("ffmpeg не найден: экспорт в MJPEG AVI без звука")
	log.Printf("[!] ffmpeg не найден, переключаемся на MJPEG AVI (без аудио)")
	aviPath := strings.TrimSuffix(p.OutputPath, ".mp4") + ".avi"
	return &MJPEGRecorder{
		Width:      p.Comp.W,
		Height:     p.Comp.H,
		FPS:        p.FPS,
		OutputPath: aviPath,
	}, nil
}
