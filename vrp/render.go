package vrp

import (
	"image/color"
	"io"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/svg"
)

// Node fill/stroke colors, keyed by node state. Selection overrides the
// skill-based fill; a time window colors the stroke instead.
var (
	depotFill    = color.RGBA{220, 20, 60, 255}
	depotStroke  = color.RGBA{139, 0, 0, 255}
	plainFill    = color.RGBA{30, 144, 255, 255}
	plainStroke  = color.RGBA{0, 0, 205, 255}
	skillFill    = color.RGBA{147, 112, 219, 255}
	skillStroke  = color.RGBA{72, 61, 139, 255}
	windowStroke = color.RGBA{255, 126, 101, 255}
	selFill      = color.RGBA{255, 165, 0, 255}
	selStroke    = color.RGBA{255, 140, 0, 255}

	axisColor = color.RGBA{211, 211, 211, 255}
	labelInk  = color.RGBA{51, 51, 51, 255}
)

// routePalette cycles per vehicle index when drawing route polylines.
var routePalette = []color.RGBA{
	{230, 25, 75, 255},
	{60, 180, 75, 255},
	{67, 99, 216, 255},
	{245, 130, 49, 255},
	{145, 30, 180, 255},
	{70, 240, 240, 255},
	{240, 50, 230, 255},
	{188, 246, 12, 255},
	{250, 190, 190, 255},
	{0, 128, 128, 255},
	{230, 190, 255, 255},
	{154, 99, 36, 255},
}

// nodeColors resolves a node's fill, stroke, and stroke width from its
// state: depot, required skills, time window, and selection.
func nodeColors(n Node, selected bool) (fill, stroke color.RGBA, strokeWidth float64) {
	switch {
	case selected:
		fill, stroke = selFill, selStroke
	case n.IsDepot:
		fill, stroke = depotFill, depotStroke
	case n.HasSkills():
		fill, stroke = skillFill, skillStroke
	default:
		fill, stroke = plainFill, plainStroke
	}

	strokeWidth = 1
	if selected {
		strokeWidth = 2
	}
	if n.TimeWindow != nil {
		strokeWidth = 2
		if !selected {
			stroke = windowStroke
		}
	}
	return fill, stroke, strokeWidth
}

// SceneRenderer draws a scenario view as vector graphics.
type SceneRenderer struct {
	Projector Projector
}

// NewSceneRenderer creates a renderer for the projector's canvas size.
func NewSceneRenderer(p Projector) *SceneRenderer {
	return &SceneRenderer{Projector: p}
}

// canvasRenderer is the subset of the canvas render target both the SVG
// and rasterizer backends implement.
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// RenderSVG writes the scene as an SVG document.
func (r *SceneRenderer) RenderSVG(w io.Writer, view SceneView) error {
	svgRenderer := svg.New(w, r.Projector.Width, r.Projector.Height, nil)
	r.renderToCanvas(svgRenderer, view)
	return svgRenderer.Close()
}

// renderToCanvas draws background, axes, routes, and nodes, in that
// order, so nodes sit on top of their route polylines.
func (r *SceneRenderer) renderToCanvas(renderer canvasRenderer, view SceneView) {
	width := r.Projector.Width
	height := r.Projector.Height

	// The canvas origin is bottom-left with y up; projected screen
	// coordinates are top-left with y down.
	toCanvas := func(px, py float64) (float64, float64) {
		return px, height - py
	}

	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	// Axes cross at the logical origin, which projects to canvas center.
	axisStyle := canvas.DefaultStyle
	axisStyle.Fill = canvas.Paint{Color: canvas.Transparent}
	axisStyle.Stroke = canvas.Paint{Color: axisColor}
	axisStyle.StrokeWidth = 1.0
	axisStyle.Dashes = []float64{4.0, 2.0}

	hAxis := &canvas.Path{}
	hAxis.MoveTo(toCanvas(0, height/2))
	hAxis.LineTo(toCanvas(width, height/2))
	renderer.RenderPath(hAxis, axisStyle, canvas.Identity)

	vAxis := &canvas.Path{}
	vAxis.MoveTo(toCanvas(width/2, 0))
	vAxis.LineTo(toCanvas(width/2, height))
	renderer.RenderPath(vAxis, axisStyle, canvas.Identity)

	// Route polylines, one color per vehicle slot. Routes with fewer
	// than two resolvable stops draw nothing.
	for i, route := range view.Routes {
		points := r.Projector.RoutePolyline(route, view.Nodes)
		if points == nil {
			continue
		}
		routeStyle := canvas.DefaultStyle
		routeStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		routeStyle.Stroke = canvas.Paint{Color: routePalette[i%len(routePalette)]}
		routeStyle.StrokeWidth = 2.0

		path := &canvas.Path{}
		for j, pt := range points {
			cx, cy := toCanvas(pt[0], pt[1])
			if j == 0 {
				path.MoveTo(cx, cy)
			} else {
				path.LineTo(cx, cy)
			}
		}
		renderer.RenderPath(path, routeStyle, canvas.Identity)
	}

	// Nodes: depot as a square, customers as circles.
	for _, n := range view.Nodes {
		px, py := r.Projector.ToScreen(n.X, n.Y)
		cx, cy := toCanvas(px, py)
		fill, stroke, strokeWidth := nodeColors(n, n.ID == view.SelectedNodeID)

		style := canvas.DefaultStyle
		style.Fill = canvas.Paint{Color: fill}
		style.Stroke = canvas.Paint{Color: stroke}
		style.StrokeWidth = strokeWidth

		var path *canvas.Path
		if n.IsDepot {
			path = canvas.Rectangle(DepotSize, DepotSize)
			path = path.Translate(cx-DepotSize/2, cy-DepotSize/2)
		} else {
			path = canvas.Circle(NodeRadius)
			path = path.Translate(cx, cy)
		}
		renderer.RenderPath(path, style, canvas.Identity)
	}

	// Node id labels live in the raster renderer; vector text would need
	// a loaded font family.
}
