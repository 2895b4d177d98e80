package scene

import (
	"bytes"
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo/float"
)

const fontStack = "system-ui,-apple-system,sans-serif"

// ToSVG serializes the scene as a standalone SVG document.
func ToSVG(s *Scene) []byte {
	var buf bytes.Buffer
	WriteSVG(s, &buf)
	return buf.Bytes()
}

// WriteSVG streams the scene as SVG to w.
func WriteSVG(s *Scene, w io.Writer) {
	canvas := svg.New(w)
	canvas.Start(s.Width, s.Height)

	if len(s.Defs) > 0 {
		canvas.Def()
		for _, d := range s.Defs {
			writeDef(canvas, d)
		}
		canvas.DefEnd()
	}

	for _, layer := range s.Layers {
		canvas.Group(fmt.Sprintf(`id="%s"`, layer.Name))
		for _, el := range layer.Elements {
			writeElement(canvas, el)
		}
		canvas.Gend()
	}

	canvas.End()
}

func writeDef(canvas *svg.SVG, d Def) {
	switch v := d.(type) {
	case LinearGradient:
		canvas.LinearGradient(v.ID, v.X1, v.Y1, v.X2, v.Y2, offcolors(v.Stops))
	case RadialGradient:
		canvas.RadialGradient(v.ID, 50, 50, 50, 50, 50, offcolors(v.Stops))
	case GaussianBlur:
		canvas.Filter(v.ID, `x="-50%"`, `y="-50%"`, `width="200%"`, `height="200%"`)
		canvas.FeGaussianBlur(svg.Filterspec{In: "SourceGraphic"}, v.StdDev, v.StdDev)
		canvas.Fend()
	case ArrowMarker:
		size := v.Size
		if size <= 0 {
			size = 6
		}
		canvas.Marker(v.ID, size, size/2, size, size, `orient="auto"`, `markerUnits="userSpaceOnUse"`)
		canvas.Path(fmt.Sprintf("M0,0 L%.1f,%.1f L0,%.1f z", size, size/2, size),
			fmt.Sprintf("fill:%s", v.Color))
		canvas.MarkerEnd()
	}
}

func offcolors(stops []Stop) []svg.Offcolor {
	oc := make([]svg.Offcolor, len(stops))
	for i, st := range stops {
		oc[i] = svg.Offcolor{Offset: st.Offset, Color: st.Color, Opacity: st.Opacity}
	}
	return oc
}

func writeElement(canvas *svg.SVG, el Element) {
	switch v := el.(type) {
	case Rect:
		style := fmt.Sprintf("fill:%s", v.Fill)
		if v.Opacity > 0 && v.Opacity < 1 {
			style += fmt.Sprintf(";fill-opacity:%.2f", v.Opacity)
		}
		if v.Rx > 0 {
			canvas.Roundrect(v.X, v.Y, v.W, v.H, v.Rx, v.Rx, style)
		} else {
			canvas.Rect(v.X, v.Y, v.W, v.H, style)
		}
	case Line:
		canvas.Line(v.X1, v.Y1, v.X2, v.Y2, strokeStyle(v.Stroke, v.Width, v.Opacity))
	case Circle:
		style := fmt.Sprintf("fill:%s", v.Fill)
		if v.Stroke != "" {
			style += fmt.Sprintf(";stroke:%s;stroke-width:%.2f", v.Stroke, v.StrokeWidth)
		}
		if v.Opacity > 0 && v.Opacity < 1 {
			style += fmt.Sprintf(";opacity:%.2f", v.Opacity)
		}
		if v.Filter != "" {
			style += fmt.Sprintf(";filter:url(#%s)", v.Filter)
		}
		canvas.Circle(v.CX, v.CY, v.R, style)
	case Path:
		style := strokeStyle(v.Stroke, v.Width, v.Opacity) + ";fill:none;stroke-linecap:round"
		if v.MarkerEnd != "" {
			style += fmt.Sprintf(";marker-end:url(#%s)", v.MarkerEnd)
		}
		canvas.Path(v.D, style)
	case Text:
		style := fmt.Sprintf("fill:%s;font-size:%.1fpx;font-family:%s", v.Fill, v.Size, fontStack)
		if v.Anchor != "" {
			style += ";text-anchor:" + v.Anchor
		}
		if v.Weight != "" {
			style += ";font-weight:" + v.Weight
		}
		if v.Opacity > 0 && v.Opacity < 1 {
			style += fmt.Sprintf(";fill-opacity:%.2f", v.Opacity)
		}
		canvas.Text(v.X, v.Y, v.Content, style)
	}
}

func strokeStyle(stroke string, width, opacity float64) string {
	s := fmt.Sprintf("stroke:%s;stroke-width:%.2f", stroke, width)
	if opacity > 0 && opacity < 1 {
		s += fmt.Sprintf(";stroke-opacity:%.2f", opacity)
	}
	return s
}
