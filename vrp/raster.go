package vrp

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RenderPNG rasterizes the scene into a PNG: light background, dashed
// axes, route polylines, nodes, and node id labels below each node.
func (r *SceneRenderer) RenderPNG(w io.Writer, view SceneView) error {
	width := int(r.Projector.Width)
	height := int(r.Projector.Height)
	if width <= 0 || height <= 0 {
		return fmt.Errorf("render png: invalid canvas size %dx%d", width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{249, 249, 249, 255})
		}
	}

	drawDashedLine(img, 0, height/2, width, height/2, axisColor)
	drawDashedLine(img, width/2, 0, width/2, height, axisColor)
	drawText(img, width/2+5, height/2+15, "(0,0)", color.RGBA{128, 128, 128, 255})

	for i, route := range view.Routes {
		points := r.Projector.RoutePolyline(route, view.Nodes)
		if points == nil {
			continue
		}
		c := routePalette[i%len(routePalette)]
		for j := 1; j < len(points); j++ {
			drawLine(img,
				int(points[j-1][0]), int(points[j-1][1]),
				int(points[j][0]), int(points[j][1]), c)
		}
	}

	for _, n := range view.Nodes {
		px, py := r.Projector.ToScreen(n.X, n.Y)
		cx, cy := int(px), int(py)
		fill, stroke, _ := nodeColors(n, n.ID == view.SelectedNodeID)

		if n.IsDepot {
			drawSquare(img, cx, cy, int(DepotSize), fill)
			strokeSquare(img, cx, cy, int(DepotSize), stroke)
		} else {
			drawCircle(img, cx, cy, int(NodeRadius), fill)
			strokeCircle(img, cx, cy, int(NodeRadius), stroke)
		}
		drawText(img, cx-4, cy+int(NodeRadius)+12, fmt.Sprintf("%d", n.ID), labelInk)
	}

	return png.Encode(w, img)
}

// drawLine draws a 1px line using linear interpolation.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := float64(x1 - x0)
	dy := float64(y1 - y0)
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps == 0 {
		setPixel(img, x0, y0, c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		setPixel(img, x0+int(t*dx+0.5), y0+int(t*dy+0.5), c)
	}
}

// drawDashedLine draws a line in 4-on/2-off pixel dashes.
func drawDashedLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := float64(x1 - x0)
	dy := float64(y1 - y0)
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	for i := 0; i <= steps; i++ {
		if i%6 >= 4 {
			continue
		}
		t := float64(i) / math.Max(float64(steps), 1)
		setPixel(img, x0+int(t*dx+0.5), y0+int(t*dy+0.5), c)
	}
}

// drawCircle draws a filled circle.
func drawCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				setPixel(img, cx+dx, cy+dy, c)
			}
		}
	}
}

// strokeCircle draws a circle outline.
func strokeCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	outer := radius * radius
	inner := (radius - 1) * (radius - 1)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d := dx*dx + dy*dy
			if d <= outer && d > inner {
				setPixel(img, cx+dx, cy+dy, c)
			}
		}
	}
}

// drawSquare draws a filled square centered at (cx, cy).
func drawSquare(img *image.RGBA, cx, cy, size int, c color.RGBA) {
	half := size / 2
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			setPixel(img, cx+dx, cy+dy, c)
		}
	}
}

// strokeSquare draws a square outline centered at (cx, cy).
func strokeSquare(img *image.RGBA, cx, cy, size int, c color.RGBA) {
	half := size / 2
	for d := -half; d <= half; d++ {
		setPixel(img, cx+d, cy-half, c)
		setPixel(img, cx+d, cy+half, c)
		setPixel(img, cx-half, cy+d, c)
		setPixel(img, cx+half, cy+d, c)
	}
}

// drawText renders text at the given position with the basic 7x13 face.
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if x >= 0 && x < img.Bounds().Max.X && y >= 0 && y < img.Bounds().Max.Y {
		img.Set(x, y, c)
	}
}
