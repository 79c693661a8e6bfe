package media

import (
	"context"
	"image"
	"log"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/blueprint/internal/blueprint"
)

// Store keeps decoded scene visuals in memory. Loading is asynchronous and
// best-effort: a scene whose media failed to decode simply stays absent, and
// the compositor skips that layer. The store never fails a render.
type Store struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

func NewStore() *Store {
	return &Store{images: make(map[string]image.Image)}
}

// Get returns the decoded visual for a scene, if it has loaded.
func (s *Store) Get(sceneID string) (image.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.images[sceneID]
	return img, ok
}

// Put registers a decoded visual for a scene.
func (s *Store) Put(sceneID string, img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[sceneID] = img
}

// Prefetch decodes the media of every image scene that carries a MediaRef.
// Декодирование идет параллельно, но ограничено числом ядер, чтобы не
// раздувать память на больших блюпринтах.
func (s *Store) Prefetch(ctx context.Context, scenes []blueprint.Scene) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, scene := range scenes {
		if scene.Kind != blueprint.KindImage || scene.MediaRef == "" {
			continue
		}
		scene := scene
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := NewImageSource(scene.MediaRef)
			if err != nil {
				log.Printf("[!] Не удалось открыть медиа сцены %s (%s): %v", scene.ID, scene.MediaRef, err)
				return nil
			}
			defer src.Close()
			if src.PageCount() == 0 {
				return nil
			}
			img, err := src.RenderPage(0, 0)
			if err != nil {
				log.Printf("[!] Не удалось декодировать медиа сцены %s: %v", scene.ID, err)
				return nil
			}
			s.Put(scene.ID, img)
			return nil
		})
	}

	return g.Wait()
}

// LoadStoryboard maps the pages of a storyboard source onto consecutive image
// scenes: page 0 backs the first image scene, page 1 the second, and so on.
func (s *Store) LoadStoryboard(src Source, scenes []blueprint.Scene, dpi int) error {
	page := 0
	for _, scene := range scenes {
		if scene.Kind != blueprint.KindImage {
			continue
		}
		if page >= src.PageCount() {
			break
		}
		img, err := src.RenderPage(page, dpi)
		if err != nil {
			return err
		}
		s.Put(scene.ID, img)
		page++
	}
	return nil
}
