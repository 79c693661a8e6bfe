package media

import (
	"image"

	"github.com/gen2brain/go-fitz"
)

// Source yields the visual frames a production's scenes are built from.
type Source interface {
	PageCount() int
	GetPageDimensions(index int) (width, height float64, err error)
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// FitzStoryboardSource renders the pages of a PDF storyboard so each page can
// back a scene's visual. Used by the filming-guide workflow where the pitch
// deck doubles as scene imagery.
type FitzStoryboardSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzStoryboardSource(path string) (*FitzStoryboardSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &FitzStoryboardSource{doc: doc, path: path}, nil
}

func (f *FitzStoryboardSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzStoryboardSource) GetPageDimensions(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

func (f *FitzStoryboardSource) RenderPage(index int, dpi int) (image.Image, error) {
	// go-fitz handles are not safe for concurrent rendering, so each call
	// opens its own document.
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, float64(dpi))
}

func (f *FitzStoryboardSource) Close() error {
	return f.doc.Close()
}
