package coursework

import "strconv"

const (
	MinZoom     = 50
	MaxZoom     = 200
	ZoomStep    = 25
	DefaultZoom = 100

	// MockPages is the page count shown by the document viewer; PDFs are not parsed.
	MockPages = 12
)

// Viewer is the state of the assignment document viewer.
type Viewer struct {
	Zoom int
	Page int
}

func NewViewer() Viewer {
	return Viewer{Zoom: DefaultZoom, Page: 1}
}

// ParseViewer reads the viewer state from query values; bad or missing values fall back to defaults.
func ParseViewer(zoom, page string) Viewer {
	v := NewViewer()
	if z, err := strconv.Atoi(zoom); err == nil {
		v.Zoom = z
	}
	if p, err := strconv.Atoi(page); err == nil {
		v.Page = p
	}
	return v.clamp()
}

func (v Viewer) clamp() Viewer {
	v.Zoom = snapZoom(v.Zoom)
	if v.Zoom < MinZoom {
		v.Zoom = MinZoom
	}
	if v.Zoom > MaxZoom {
		v.Zoom = MaxZoom
	}
	if v.Page < 1 {
		v.Page = 1
	}
	if v.Page > MockPages {
		v.Page = MockPages
	}
	return v
}

func (v Viewer) ZoomIn() Viewer   { v.Zoom += ZoomStep; return v.clamp() }
func (v Viewer) ZoomOut() Viewer  { v.Zoom -= ZoomStep; return v.clamp() }
func (v Viewer) NextPage() Viewer { v.Page++; return v.clamp() }
func (v Viewer) PrevPage() Viewer { v.Page--; return v.clamp() }

func (v Viewer) CanZoomIn() bool  { return v.Zoom < MaxZoom }
func (v Viewer) CanZoomOut() bool { return v.Zoom > MinZoom }
func (v Viewer) HasNext() bool    { return v.Page < MockPages }
func (v Viewer) HasPrev() bool    { return v.Page > 1 }
func (v Viewer) Pages() int       { return MockPages }

// snapZoom rounds zoom to the nearest step, halves rounding up.
func snapZoom(zoom int) int {
	off := (zoom - MinZoom) % ZoomStep
	if off < 0 {
		off += ZoomStep
	}
	zoom -= off
	if 2*off >= ZoomStep {
		zoom += ZoomStep
	}
	return zoom
}
