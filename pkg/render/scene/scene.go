// Package scene defines the declarative vector scene handed to the
// rasterizer: an ordered tree of draw commands with no behavior.
//
// A Scene is a pure value. Layers render back to front in slice order, and
// elements within a layer render in slice order, so z-ordering is explicit
// in the structure. Serialization to SVG lives in this package ([ToSVG]);
// nothing here mutates a composed scene.
package scene

// Scene is a fully resolved vector scene: defs (gradients, filters,
// markers) plus ordered draw layers.
type Scene struct {
	Width  float64
	Height float64
	Defs   []Def
	Layers []Layer
}

// Layer is a named group of elements sharing a z-position.
type Layer struct {
	Name     string
	Elements []Element
}

// Add appends a layer and returns a pointer to it for element appends.
func (s *Scene) Add(name string) *Layer {
	s.Layers = append(s.Layers, Layer{Name: name})
	return &s.Layers[len(s.Layers)-1]
}

// Append adds elements to the layer.
func (l *Layer) Append(els ...Element) {
	l.Elements = append(l.Elements, els...)
}

// Def is a referenced definition (gradient, filter, marker).
type Def interface{ def() }

// Stop is one gradient color stop. Offset is a percentage (0-100).
type Stop struct {
	Offset  uint8
	Color   string
	Opacity float64
}

// LinearGradient is an axis-aligned linear gradient. Coordinates are
// percentages of the painted box.
type LinearGradient struct {
	ID             string
	X1, Y1, X2, Y2 uint8
	Stops          []Stop
}

// RadialGradient is a centered radial gradient.
type RadialGradient struct {
	ID    string
	Stops []Stop
}

// GaussianBlur is a blur filter, used for node glows.
type GaussianBlur struct {
	ID     string
	StdDev float64
}

// ArrowMarker is a small directional arrowhead attachable to path ends.
type ArrowMarker struct {
	ID    string
	Color string
	Size  float64
}

func (LinearGradient) def() {}
func (RadialGradient) def() {}
func (GaussianBlur) def()   {}
func (ArrowMarker) def()    {}

// Element is a single draw command.
type Element interface{ element() }

// Rect is an optionally rounded rectangle.
type Rect struct {
	X, Y, W, H float64
	Rx         float64
	Fill       string // color or url(#id)
	Opacity    float64
}

// Line is a straight stroke.
type Line struct {
	X1, Y1, X2, Y2 float64
	Stroke         string
	Width          float64
	Opacity        float64
}

// Circle is a filled and/or stroked circle.
type Circle struct {
	CX, CY, R   float64
	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64
	Filter      string // blur filter id, empty for none
}

// Path is an arbitrary SVG path, stroked but not filled.
type Path struct {
	D         string
	Stroke    string
	Width     float64
	Opacity   float64
	MarkerEnd string // arrow marker id, empty for none
}

// Text is a single text run.
type Text struct {
	X, Y    float64
	Content string
	Size    float64
	Fill    string
	Anchor  string // start, middle, end; empty means start
	Weight  string // bold or empty
	Opacity float64
}

func (Rect) element()   {}
func (Line) element()   {}
func (Circle) element() {}
func (Path) element()   {}
func (Text) element()   {}
