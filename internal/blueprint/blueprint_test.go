package blueprint

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateDefaults(t *testing.T) {
	p := &Production{
		Scenes: []Scene{
			{Narration: "hook", TargetDuration: 2.0},
			{Kind: KindPlaceholder, Narration: "film this", TargetDuration: 3.0},
		},
	}

	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if p.Scenes[0].Kind != KindImage {
		t.Errorf("empty kind should default to image, got %q", p.Scenes[0].Kind)
	}
	if p.Scenes[0].ID == "" || p.Scenes[1].ID == "" {
		t.Error("Validate should assign IDs to scenes without one")
	}
	if p.Style != StyleFullAI {
		t.Errorf("empty style should default to full_ai, got %q", p.Style)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name string
		prod Production
	}{
		{"no scenes", Production{}},
		{"zero duration", Production{Scenes: []Scene{{Kind: KindImage, TargetDuration: 0}}}},
		{"negative duration", Production{Scenes: []Scene{{Kind: KindImage, TargetDuration: -1.5}}}},
		{"unknown kind", Production{Scenes: []Scene{{Kind: "video", TargetDuration: 2.0}}}},
		{"unknown style", Production{Style: "cinematic", Scenes: []Scene{{Kind: KindImage, TargetDuration: 2.0}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.prod
			if err := p.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestNewScene(t *testing.T) {
	s := NewScene("", "words", "close-up of the product", 2.5)
	if s.Kind != KindImage {
		t.Errorf("NewScene without a kind should give image, got %q", s.Kind)
	}
	if s.ID == "" {
		t.Error("NewScene should generate an ID")
	}
	if NewScene(KindImage, "", "", 1).ID == s.ID {
		t.Error("scene IDs must be unique")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	prod := &Production{
		Script:    "full narration text",
		Captions:  []string{"caption one", "caption two"},
		Hashtags:  []string{"luxury", "watch"},
		MusicVibe: "luxury elegant",
		Style:     StyleFilmingGuide,
		Scenes: []Scene{
			NewScene(KindImage, "opening hook", "macro shot", 2.5),
			NewScene(KindPlaceholder, "owner speaks", "selfie angle", 4.0),
		},
	}

	path := filepath.Join(t.TempDir(), "blueprint.yaml")
	if err := WriteProduction(prod, path); err != nil {
		t.Fatalf("WriteProduction: %v", err)
	}

	got, err := ReadProduction(path)
	if err != nil {
		t.Fatalf("ReadProduction: %v", err)
	}
	if got.Style != StyleFilmingGuide {
		t.Errorf("style %q after reading back", got.Style)
	}
	if len(got.Scenes) != 2 || got.Scenes[1].Kind != KindPlaceholder {
		t.Errorf("scenes corrupted on read: %+v", got.Scenes)
	}
	if got.Scenes[0].ID != prod.Scenes[0].ID {
		t.Error("scene IDs must survive write and read")
	}
}

func TestReadProductionValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	bad := &Production{Scenes: []Scene{{Kind: KindImage, TargetDuration: -2}}}
	if err := WriteProduction(bad, path); err != nil {
		t.Fatalf("WriteProduction: %v", err)
	}

	_, err := ReadProduction(path)
	if err == nil {
		t.Fatal("reading an invalid blueprint must return an error")
	}
	if !strings.Contains(err.Error(), "target_duration") {
		t.Errorf("the error should name the field: %v", err)
	}
}
