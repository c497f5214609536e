package vrp

import "math"

// Canvas geometry constants. The scale factor is the fixed
// pixels-per-logical-unit; node sizes are in screen pixels.
const (
	DefaultScaleFactor = 5.0
	DefaultCanvasW     = 800.0
	DefaultCanvasH     = 600.0

	// NodeRadius is the customer circle radius; DepotSize the depot
	// square's edge length.
	NodeRadius = 8.0
	DepotSize  = 12.0
)

// Projector maps between logical scenario coordinates and screen pixels.
// The logical origin projects to the canvas center and the vertical axis
// is flipped: screen y grows downward, logical y grows upward.
type Projector struct {
	Width  float64
	Height float64
	Scale  float64
}

// NewProjector creates a projector for the given canvas size with the
// default scale factor.
func NewProjector(width, height float64) Projector {
	return Projector{Width: width, Height: height, Scale: DefaultScaleFactor}
}

// ToScreen projects a logical point to screen pixels.
func (p Projector) ToScreen(x, y float64) (px, py float64) {
	px = p.Width/2 + x*p.Scale
	py = p.Height/2 - y*p.Scale
	return px, py
}

// ToLogical is the exact inverse of ToScreen.
func (p Projector) ToLogical(px, py float64) (x, y float64) {
	x = (px - p.Width/2) / p.Scale
	y = (p.Height/2 - py) / p.Scale
	return x, y
}

// hitRadius is the screen-space click radius for a node: the depot square
// uses its half-diagonal, customers their circle radius.
func hitRadius(n Node) float64 {
	if n.IsDepot {
		return DepotSize / math.Sqrt2
	}
	return NodeRadius
}

// HitTest resolves a screen point to a node. Nodes are checked in stored
// order and the first hit wins; overlapping nodes are disambiguated by
// insertion order, not by nearest center. That tie-break is contractual.
func (p Projector) HitTest(px, py float64, nodes []Node) (Node, bool) {
	for _, n := range nodes {
		cx, cy := p.ToScreen(n.X, n.Y)
		distSq := (px-cx)*(px-cx) + (py-cy)*(py-cy)
		r := hitRadius(n)
		if distSq <= r*r {
			return n, true
		}
	}
	return Node{}, false
}

// RoutePolyline projects a route's node ids through ToScreen, yielding
// one [px, py] pair per resolvable stop. Routes with fewer than two
// resolvable stops yield nil: there is nothing to draw.
func (p Projector) RoutePolyline(route Route, nodes []Node) [][2]float64 {
	byID := make(map[int]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	points := make([][2]float64, 0, len(route))
	for _, id := range route {
		n, ok := byID[id]
		if !ok {
			continue
		}
		px, py := p.ToScreen(n.X, n.Y)
		points = append(points, [2]float64{px, py})
	}
	if len(points) < 2 {
		return nil
	}
	return points
}

// round1 rounds to one decimal, the precision synthesized nodes carry.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ClickAt applies left-click semantics to the store: a hit selects the
// node, a miss synthesizes a new customer node at the clicked logical
// position (one-decimal precision, no skills, no window), inserts it, and
// selects it. The affected node is returned either way.
func (st *Store) ClickAt(p Projector, px, py float64) Node {
	nodes := st.Nodes()
	if hit, ok := p.HitTest(px, py, nodes); ok {
		_ = st.SelectNode(hit.ID)
		return hit
	}

	x, y := p.ToLogical(px, py)
	return st.AddNode(Node{
		X:              round1(x),
		Y:              round1(y),
		IsDepot:        false,
		RequiredSkills: []string{},
	})
}

// ContextClickAt applies right-click semantics: a hit on a customer
// removes it, a hit on the depot is rejected with ErrDepotProtected, and
// a miss is a no-op.
func (st *Store) ContextClickAt(p Projector, px, py float64) error {
	nodes := st.Nodes()
	hit, ok := p.HitTest(px, py, nodes)
	if !ok {
		return nil
	}
	return st.RemoveNode(hit.ID)
}
