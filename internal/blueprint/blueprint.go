package blueprint

import (
	"fmt"

	"github.com/google/uuid"
)

// SceneKind distinguishes generated visuals from beats the user films themselves.
type SceneKind string

const (
	KindImage       SceneKind = "image"
	KindPlaceholder SceneKind = "placeholder"
)

// Style controls which overlay layers the compositor renders.
// FullAI productions burn the narration into subtitles; filming guides
// only show the structural overlays.
type Style string

const (
	StyleFullAI       Style = "full_ai"
	StyleFilmingGuide Style = "filming_guide"
)

// Scene is one timed beat of the production. TargetDuration is a weight:
// realized screen time is computed by the timeline resolver against the
// narration length, not taken from here.
type Scene struct {
	ID              string    `yaml:"id"`
	Kind            SceneKind `yaml:"kind"`
	Narration       string    `yaml:"narration"`
	VisualDirection string    `yaml:"visual_direction"`
	MediaRef        string    `yaml:"media_ref,omitempty"`
	TargetDuration  float64   `yaml:"target_duration"`
}

// Production is the complete blueprint: the narration script, the social kit
// (captions, hashtags) and the ordered scene sequence. Scene order is the
// playback order and is never reordered.
type Production struct {
	Script       string   `yaml:"script"`
	Captions     []string `yaml:"captions"`
	Hashtags     []string `yaml:"hashtags"`
	Scenes       []Scene  `yaml:"scenes"`
	MusicVibe    string   `yaml:"music_vibe"`
	ThumbnailRef string   `yaml:"thumbnail_ref,omitempty"`
	Style        Style    `yaml:"style"`
}

// NewScene fills in an ID and defaults the kind to image.
func NewScene(kind SceneKind, narration, direction string, targetDuration float64) Scene {
	if kind == "" {
		kind = KindImage
	}
	return Scene{
		ID:              uuid.NewString(),
		Kind:            kind,
		Narration:       narration,
		VisualDirection: direction,
		TargetDuration:  targetDuration,
	}
}

// Validate checks the invariants the rest of the pipeline relies on.
func (p *Production) Validate() error {
	if len(p.Scenes) == 0 {
		return fmt.Errorf("блюпринт не содержит сцен")
	}
	for i := range p.Scenes {
		s := &p.Scenes[i]
		if s.TargetDuration <= 0 {
			return fmt.Errorf("сцена %d: target_duration должен быть > 0, получено %f", i+1, s.TargetDuration)
		}
		switch s.Kind {
		case KindImage, KindPlaceholder:
		case "":
			s.Kind = KindImage
		default:
			return fmt.Errorf("сцена %d: неизвестный тип %q", i+1, s.Kind)
		}
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
	}
	switch p.Style {
	case StyleFullAI, StyleFilmingGuide:
	case "":
		p.Style = StyleFullAI
	default:
		return fmt.Errorf("неизвестный стиль продакшена %q", p.Style)
	}
	return nil
}
