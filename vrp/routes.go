package vrp

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// RouteSummary describes one vehicle's route for the summary panel.
type RouteSummary struct {
	Vehicle int      `json:"vehicle"`
	NodeIDs []int    `json:"node_ids"`
	Stops   int      `json:"stops"`
	Skills  []string `json:"skills"`
	Length  float64  `json:"length"`
}

// routeLineString resolves a route's node ids to a logical-plane
// line string. Ids that no longer resolve to a node are skipped.
func routeLineString(route Route, nodes []Node) orb.LineString {
	byID := make(map[int]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	ls := make(orb.LineString, 0, len(route))
	for _, id := range route {
		if n, ok := byID[id]; ok {
			ls = append(ls, orb.Point{n.X, n.Y})
		}
	}
	return ls
}

// RouteLength returns the Euclidean length of a route in logical units.
// Routes with fewer than two resolvable stops have length zero.
func RouteLength(route Route, nodes []Node) float64 {
	ls := routeLineString(route, nodes)
	if len(ls) < 2 {
		return 0
	}
	return planar.Length(ls)
}

// RoutesBound returns the logical bounding box covering every stop of
// every route, and false when no route has a resolvable stop.
func RoutesBound(routes []Route, nodes []Node) (orb.Bound, bool) {
	var bound orb.Bound
	found := false
	for _, route := range routes {
		ls := routeLineString(route, nodes)
		if len(ls) == 0 {
			continue
		}
		if !found {
			bound = ls.Bound()
			found = true
		} else {
			bound = bound.Union(ls.Bound())
		}
	}
	return bound, found
}

// SummarizeRoutes builds per-vehicle summaries for the current routes:
// stop counts (customers only, depot endpoints excluded), the vehicle's
// skill assignment, and the geometric route length.
func SummarizeRoutes(s Scenario, routes []Route) []RouteSummary {
	depotIDs := make(map[int]bool)
	for _, n := range s.Nodes {
		if n.IsDepot {
			depotIDs[n.ID] = true
		}
	}

	summaries := make([]RouteSummary, 0, len(routes))
	for vehicle, route := range routes {
		stops := 0
		for _, id := range route {
			if !depotIDs[id] {
				stops++
			}
		}
		skills := s.VehicleSkills[fmt.Sprintf("%d", vehicle)]
		if skills == nil {
			skills = []string{}
		}
		ids := make([]int, len(route))
		copy(ids, route)
		summaries = append(summaries, RouteSummary{
			Vehicle: vehicle,
			NodeIDs: ids,
			Stops:   stops,
			Skills:  skills,
			Length:  RouteLength(route, s.Nodes),
		})
	}
	return summaries
}
