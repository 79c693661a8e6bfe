package system

import (
	"image"
	"sync"
)

// Пул кадровых буферов. В отличие от обычного sync.Pool он привязан к одной
// геометрии кадра: процесс рендерит ровно одно разрешение (1080x1920 или
// тестовое), поэтому буферы другого размера в пул не возвращаются.
type framePool struct {
	mu   sync.Mutex
	rect image.Rectangle
	free []*image.RGBA
}

var frames framePool

// GetImage возвращает *image.RGBA из пула или аллоцирует новый. Первый вызов
// фиксирует геометрию пула.
func GetImage(rect image.Rectangle) *image.RGBA {
	return frames.get(rect)
}

// PutImage возвращает буфер в пул. Буферы чужой геометрии отбрасываются.
func PutImage(img *image.RGBA) {
	frames.put(img)
}

func (p *framePool) get(rect image.Rectangle) *image.RGBA {
	p.mu.Lock()
	if p.rect.Empty() {
		p.rect = rect
	}
	if rect == p.rect && len(p.free) > 0 {
		img := p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
		p.mu.Unlock()
		return img
	}
	p.mu.Unlock()
	return image.NewRGBA(rect)
}

func (p *framePool) put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.mu.Lock()
	if img.Rect == p.rect {
		p.free = append(p.free, img)
	}
	p.mu.Unlock()
}
