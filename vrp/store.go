package vrp

import (
	"fmt"
	"sync"
)

// Store owns the canonical scenario plus the derived editor state: the
// current selection, the last solve outcome, and the status line. All
// mutators run to completion under a single lock, so the store behaves as
// a single-writer state machine even when the host is multi-threaded.
//
// Routes are derived state: every structural change to the scenario
// (nodes, vehicle count, skills) discards them, because a stale route set
// referencing removed or moved nodes is semantically wrong.
type Store struct {
	mu             sync.RWMutex
	scenario       Scenario
	selectedNodeID int // 0 means no selection; node ids start at 1
	routes         []Route
	statusMessage  string
	maxDistance    *float64
	totalDistance  *float64
}

// NewStore creates a store seeded with the given scenario. The first node,
// if any, starts selected, mirroring how the editor opens on the example.
func NewStore(s Scenario) *Store {
	st := &Store{
		scenario:      s.Clone(),
		statusMessage: "Ready",
	}
	if len(st.scenario.Nodes) > 0 {
		st.selectedNodeID = st.scenario.Nodes[0].ID
	}
	if st.scenario.VehicleSkills == nil {
		st.scenario.VehicleSkills = make(map[string][]string)
	}
	return st
}

// SceneView is the read surface exposed to the presentation layer.
type SceneView struct {
	Nodes           []Node              `json:"nodes"`
	NumVehicles     int                 `json:"num_vehicles"`
	AvailableSkills []string            `json:"available_skills"`
	VehicleSkills   map[string][]string `json:"vehicle_skills"`
	SelectedNodeID  int                 `json:"selected_node_id,omitempty"`
	Routes          []Route             `json:"routes"`
	StatusMessage   string              `json:"status_message"`
	MaxDistance     *float64            `json:"max_distance,omitempty"`
	TotalDistance   *float64            `json:"total_distance,omitempty"`
}

// View returns a deep-copied snapshot of everything the presentation
// layer renders.
func (st *Store) View() SceneView {
	st.mu.RLock()
	defer st.mu.RUnlock()

	sc := st.scenario.Clone()
	v := SceneView{
		Nodes:           sc.Nodes,
		NumVehicles:     sc.NumVehicles,
		AvailableSkills: sc.AvailableSkills,
		VehicleSkills:   sc.VehicleSkills,
		SelectedNodeID:  st.selectedNodeID,
		Routes:          cloneRoutes(st.routes),
		StatusMessage:   st.statusMessage,
	}
	if st.maxDistance != nil {
		d := *st.maxDistance
		v.MaxDistance = &d
	}
	if st.totalDistance != nil {
		d := *st.totalDistance
		v.TotalDistance = &d
	}
	return v
}

// Snapshot returns a deep copy of the current scenario. The solve
// orchestrator posts this snapshot, so edits made after a trigger do not
// affect the outstanding request.
func (st *Store) Snapshot() Scenario {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.scenario.Clone()
}

// Nodes returns a deep copy of the node list in stored order.
func (st *Store) Nodes() []Node {
	st.mu.RLock()
	defer st.mu.RUnlock()
	nodes := make([]Node, len(st.scenario.Nodes))
	for i, n := range st.scenario.Nodes {
		nodes[i] = n.Clone()
	}
	return nodes
}

// Routes returns a copy of the last solve's routes, empty if invalidated.
func (st *Store) Routes() []Route {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return cloneRoutes(st.routes)
}

// SelectedNodeID returns the selected node id, 0 when nothing is selected.
func (st *Store) SelectedNodeID() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.selectedNodeID
}

// StatusMessage returns the current status line.
func (st *Store) StatusMessage() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.statusMessage
}

// AddNode appends a node to the scenario and selects it. A zero id is
// assigned max(existing ids, default 0)+1; ids are never reused within a
// session. Any node-set change invalidates routes, the stricter of the
// two policies the editor historically had.
func (st *Store) AddNode(n Node) Node {
	st.mu.Lock()
	defer st.mu.Unlock()

	if n.ID == 0 {
		n.ID = st.nextNodeIDLocked()
	}
	st.scenario.Nodes = append(st.scenario.Nodes, n.Clone())
	st.selectedNodeID = n.ID
	st.invalidateRoutesLocked()
	st.statusMessage = fmt.Sprintf("Added Node %d", n.ID)
	return n
}

// RemoveNode deletes a non-depot node. Removing the depot is rejected
// with ErrDepotProtected and no state change; an unknown id yields
// ErrNodeNotFound.
func (st *Store) RemoveNode(id int) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	idx := -1
	for i, n := range st.scenario.Nodes {
		if n.ID == id {
			if n.IsDepot {
				st.statusMessage = "Depot cannot be removed."
				return ErrDepotProtected
			}
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNodeNotFound
	}

	st.scenario.Nodes = append(st.scenario.Nodes[:idx], st.scenario.Nodes[idx+1:]...)
	if st.selectedNodeID == id {
		st.selectedNodeID = 0
	}
	st.invalidateRoutesLocked()
	st.statusMessage = fmt.Sprintf("Removed Node %d", id)
	return nil
}

// UpdateNode replaces the node with the matching id, re-selects it, and
// invalidates routes. The node's time window must be valid.
func (st *Store) UpdateNode(n Node) error {
	if err := ValidateTimeWindow(n.TimeWindow); err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	for i, existing := range st.scenario.Nodes {
		if existing.ID == n.ID {
			st.scenario.Nodes[i] = n.Clone()
			st.selectedNodeID = n.ID
			st.invalidateRoutesLocked()
			st.statusMessage = fmt.Sprintf("Updated Node %d", n.ID)
			return nil
		}
	}
	return ErrNodeNotFound
}

// SelectNode sets the selection. Passing 0 deselects. Selecting an
// unknown id is ErrNodeNotFound with no state change.
func (st *Store) SelectNode(id int) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if id == 0 {
		st.selectedNodeID = 0
		st.statusMessage = "Node deselected"
		return nil
	}
	if _, ok := st.scenario.NodeByID(id); !ok {
		return ErrNodeNotFound
	}
	st.selectedNodeID = id
	st.statusMessage = fmt.Sprintf("Selected Node %d", id)
	return nil
}

// SetNumVehicles resizes the fleet. The vehicle-skill map is rebuilt to
// hold exactly the keys "0".."count-1": retained indices keep their
// assignments, new indices start empty, removed indices are dropped.
func (st *Store) SetNumVehicles(count int) error {
	if count < 0 {
		return validationErrorf("number of vehicles must be non-negative, got %d", count)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	skills := make(map[string][]string, count)
	for i := 0; i < count; i++ {
		key := fmt.Sprintf("%d", i)
		if prev, ok := st.scenario.VehicleSkills[key]; ok {
			kept := make([]string, len(prev))
			copy(kept, prev)
			skills[key] = kept
		} else {
			skills[key] = []string{}
		}
	}
	st.scenario.NumVehicles = count
	st.scenario.VehicleSkills = skills
	st.invalidateRoutesLocked()
	st.statusMessage = fmt.Sprintf("Number of vehicles set to %d", count)
	return nil
}

// SetSkills replaces the skill registry and the vehicle assignments.
// Skills no longer present in the registry are stripped from every
// vehicle assignment and from every node's required skills, so that all
// referenced skills stay inside available_skills.
func (st *Store) SetSkills(available []string, vehicleSkills map[string][]string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	allowed := make(map[string]bool, len(available))
	registry := make([]string, 0, len(available))
	for _, s := range available {
		if !allowed[s] {
			allowed[s] = true
			registry = append(registry, s)
		}
	}
	st.scenario.AvailableSkills = registry

	filtered := make(map[string][]string, len(vehicleSkills))
	for k, v := range vehicleSkills {
		kept := make([]string, 0, len(v))
		for _, s := range v {
			if allowed[s] {
				kept = append(kept, s)
			}
		}
		filtered[k] = kept
	}
	st.scenario.VehicleSkills = filtered

	for i, n := range st.scenario.Nodes {
		if len(n.RequiredSkills) == 0 {
			continue
		}
		kept := n.RequiredSkills[:0]
		for _, s := range n.RequiredSkills {
			if allowed[s] {
				kept = append(kept, s)
			}
		}
		st.scenario.Nodes[i].RequiredSkills = kept
	}

	st.invalidateRoutesLocked()
	st.statusMessage = "Skills updated"
}

// ClearRoutes discards the last solve outcome but leaves the scenario alone.
func (st *Store) ClearRoutes() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.invalidateRoutesLocked()
	st.statusMessage = "Routes cleared."
}

// ClearAll resets the scenario to just the depot (or empty if there is
// none), dropping selection and routes. Fleet and skill settings survive.
func (st *Store) ClearAll() {
	st.mu.Lock()
	defer st.mu.Unlock()

	if depot, ok := st.scenario.Depot(); ok {
		st.scenario.Nodes = []Node{depot.Clone()}
	} else {
		st.scenario.Nodes = nil
	}
	st.selectedNodeID = 0
	st.invalidateRoutesLocked()
	st.statusMessage = "Scenario cleared."
}

// LoadScenario replaces the whole scenario, clearing selection and routes.
func (st *Store) LoadScenario(s Scenario, status string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.scenario = s.Clone()
	if st.scenario.VehicleSkills == nil {
		st.scenario.VehicleSkills = make(map[string][]string)
	}
	st.selectedNodeID = 0
	st.invalidateRoutesLocked()
	st.statusMessage = status
}

// LoadExample replaces the scenario with the bundled example.
func (st *Store) LoadExample() error {
	s, err := ExampleScenario()
	if err != nil {
		return fmt.Errorf("load example: %w", err)
	}
	st.LoadScenario(s, "Loaded example scenario.")
	return nil
}

// beginSolve is the Pending entry: it discards the previous outcome and
// sets the in-progress status line.
func (st *Store) beginSolve() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.invalidateRoutesLocked()
	st.statusMessage = "Solving..."
}

// adoptRoutes installs a successful solve outcome.
func (st *Store) adoptRoutes(routes []Route, maxDistance, totalDistance *float64, status string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.routes = cloneRoutes(routes)
	st.maxDistance = nil
	st.totalDistance = nil
	if maxDistance != nil {
		d := *maxDistance
		st.maxDistance = &d
	}
	if totalDistance != nil {
		d := *totalDistance
		st.totalDistance = &d
	}
	st.statusMessage = status
}

// setStatus records a status line without touching any other state.
func (st *Store) setStatus(msg string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.statusMessage = msg
}

// failSolve clears the outcome and records the failure message.
func (st *Store) failSolve(msg string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.invalidateRoutesLocked()
	st.statusMessage = msg
}

func (st *Store) invalidateRoutesLocked() {
	st.routes = nil
	st.maxDistance = nil
	st.totalDistance = nil
}

func (st *Store) nextNodeIDLocked() int {
	max := 0
	for _, n := range st.scenario.Nodes {
		if n.ID > max {
			max = n.ID
		}
	}
	return max + 1
}

func cloneRoutes(routes []Route) []Route {
	if routes == nil {
		return nil
	}
	out := make([]Route, len(routes))
	for i, r := range routes {
		c := make(Route, len(r))
		copy(c, r)
		out[i] = c
	}
	return out
}
