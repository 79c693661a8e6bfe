package export

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/ivlev/blueprint/internal/audio"
	"github.com/ivlev/blueprint/internal/blueprint"
	"github.com/ivlev/blueprint/internal/compositor"
	"github.com/ivlev/blueprint/internal/media"
	"github.com/ivlev/blueprint/internal/playback"
)

// fakeRecorder captures the pipeline's calls without encoding anything.
type fakeRecorder struct {
	startErr  error
	writeErr  error
	started   bool
	frames    int
	finalized bool
}

func (r *fakeRecorder) Start() error {
	r.started = true
	return r.startErr
}

func (r *fakeRecorder) WriteFrame(*image.RGBA) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	r.frames++
	return nil
}

func (r *fakeRecorder) Finalize() (string, error) {
	r.finalized = true
	return "output/fake.mp4", nil
}

func exportProduction() *blueprint.Production {
	return &blueprint.Production{
		Style: blueprint.StyleFullAI,
		Scenes: []blueprint.Scene{
			{ID: "a", Kind: blueprint.KindImage, TargetDuration: 1.0},
			{ID: "b", Kind: blueprint.KindImage, TargetDuration: 1.0},
		},
	}
}

func newTestPipeline(t *testing.T, narration, music *audio.Track) (*Pipeline, *fakeRecorder) {
	t.Helper()
	comp, err := compositor.New(90, 160, media.NewStore(), "", "")
	if err != nil {
		t.Fatalf("compositor.New: %v", err)
	}
	prod := exportProduction()
	clock := playback.NewClock(prod, comp, narration, music, playback.NullSink{}, 10)
	t.Cleanup(clock.Close)

	rec := &fakeRecorder{}
	p := &Pipeline{
		Clock:      clock,
		Comp:       comp,
		Prod:       prod,
		Narration:  narration,
		Music:      music,
		FPS:        10,
		OutputPath: "output/test.mp4",
		NewRecorder: func(AudioGraph) (Recorder, error) {
			return rec, nil
		},
	}
	return p, rec
}

func TestExportWritesWholeTimeline(t *testing.T) {
	narration := audio.NewProbedTrack("voice.mp3", 2.0)
	p, rec := newTestPipeline(t, narration, nil)

	path, err := p.Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if path != "output/fake.mp4" {
		t.Errorf("result path %q", path)
	}
	if !rec.finalized {
		t.Error("recorder was not finalized")
	}

	// 2.0s at 10 FPS: 20 loop frames plus the priming t=0 duplicate.
	want := 21
	if rec.frames != want {
		t.Errorf("wrote %d frames, want %d", rec.frames, want)
	}

	st := p.Clock.State()
	if st.Exporting || st.Playing {
		t.Error("state must be Stopped after export")
	}
	if got := narration.Position(); math.Abs(got) > 1e-9 {
		t.Errorf("narration should rewind to 0, position %f", got)
	}
}

func TestExportMissingNarration(t *testing.T) {
	p, rec := newTestPipeline(t, nil, nil)

	_, err := p.Export(context.Background())
	if !errors.Is(err, ErrMissingSource) {
		t.Fatalf("want ErrMissingSource, got %v", err)
	}
	if rec.started {
		t.Error("recorder must not start without sources")
	}
	if p.Clock.State().Exporting {
		t.Error("Exporting state was not restored")
	}
}

func TestExportUnprobedNarration(t *testing.T) {
	// The file exists but its duration is unknown: nothing to export.
	narration := audio.NewTrack("voice.mp3")
	p, _ := newTestPipeline(t, narration, nil)

	_, err := p.Export(context.Background())
	if !errors.Is(err, ErrMissingSource) {
		t.Fatalf("want ErrMissingSource, got %v", err)
	}
}

func TestExportRecorderStartFailure(t *testing.T) {
	narration := audio.NewProbedTrack("voice.mp3", 2.0)
	p, rec := newTestPipeline(t, narration, nil)
	rec.startErr = errors.New("codec refused to start")

	_, err := p.Export(context.Background())
	if !errors.Is(err, ErrEncodingUnsupported) {
		t.Fatalf("want ErrEncodingUnsupported, got %v", err)
	}
	if p.Clock.State().Exporting {
		t.Error("Exporting state was not restored after the failure")
	}
}

func TestExportWriteFailureRestoresState(t *testing.T) {
	narration := audio.NewProbedTrack("voice.mp3", 2.0)
	p, rec := newTestPipeline(t, narration, nil)
	rec.writeErr = errors.New("pipe broke")

	if _, err := p.Export(context.Background()); err == nil {
		t.Fatal("expected a write error")
	}
	st := p.Clock.State()
	if st.Exporting || st.Playing {
		t.Error("state must be Stopped after a write failure")
	}
}

func TestExportMusicInGraph(t *testing.T) {
	narration := audio.NewProbedTrack("voice.mp3", 2.0)
	music := audio.NewProbedTrack("music.mp3", 30.0)
	music.Loop = true
	p, _ := newTestPipeline(t, narration, music)
	p.Clock.SetMusicVolume(0.25)

	var got AudioGraph
	orig := p.NewRecorder
	p.NewRecorder = func(g AudioGraph) (Recorder, error) {
		got = g
		return orig(g)
	}

	if _, err := p.Export(context.Background()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if got.MusicPath != "music.mp3" {
		t.Errorf("music missing from the audio graph: %+v", got)
	}
	if math.Abs(got.MusicVolume-0.25) > 1e-9 {
		t.Errorf("music volume %f, want 0.25", got.MusicVolume)
	}
}

func TestExportRestrictedMusicDegradesWithAdvisory(t *testing.T) {
	narration := audio.NewProbedTrack("voice.mp3", 2.0)
	music := audio.NewProbedTrack("music.mp3", 30.0)
	music.Loop = true
	music.CaptureRestricted = true
	p, rec := newTestPipeline(t, narration, music)

	var got AudioGraph
	p.NewRecorder = func(g AudioGraph) (Recorder, error) {
		got = g
		return rec, nil
	}

	path, err := p.Export(context.Background())
	if err != nil {
		t.Fatalf("restricted music must not fail the export: %v", err)
	}
	if path == "" {
		t.Error("export should still produce a file")
	}
	if got.MusicPath != "" {
		t.Error("restricted music must stay out of the audio graph")
	}
	if p.Clock.State().LastAudioWarning == "" {
		t.Error("the user should get an advisory that music is missing from the capture")
	}
}

func TestExportCancellation(t *testing.T) {
	narration := audio.NewProbedTrack("voice.mp3", 2.0)
	p, _ := newTestPipeline(t, narration, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Export(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if p.Clock.State().Exporting {
		t.Error("cancellation must restore the Stopped state")
	}
}
