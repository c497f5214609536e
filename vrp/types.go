package vrp

// Node is a single location on the scenario plane: the depot or a customer.
// Coordinates are unit-less logical plane positions, not screen pixels.
type Node struct {
	ID             int      `json:"id"`
	X              float64  `json:"x"`
	Y              float64  `json:"y"`
	IsDepot        bool     `json:"is_depot"`
	TimeWindow     *[2]int  `json:"time_window,omitempty"`
	RequiredSkills []string `json:"required_skills,omitempty"`
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	c := n
	if n.TimeWindow != nil {
		tw := *n.TimeWindow
		c.TimeWindow = &tw
	}
	if n.RequiredSkills != nil {
		c.RequiredSkills = make([]string, len(n.RequiredSkills))
		copy(c.RequiredSkills, n.RequiredSkills)
	}
	return c
}

// HasSkills reports whether the node requires at least one skill.
func (n Node) HasSkills() bool {
	return len(n.RequiredSkills) > 0
}

// Scenario is the complete solver input: nodes, fleet size, the
// scenario-global skill registry, and per-vehicle skill assignments keyed
// by the vehicle index as a string ("0".."num_vehicles-1").
// This struct is the exact JSON payload posted to the solve endpoint.
type Scenario struct {
	Nodes           []Node              `json:"nodes"`
	NumVehicles     int                 `json:"num_vehicles"`
	AvailableSkills []string            `json:"available_skills"`
	VehicleSkills   map[string][]string `json:"vehicle_skills"`
}

// Clone returns a deep copy of the scenario.
func (s Scenario) Clone() Scenario {
	c := Scenario{
		NumVehicles:     s.NumVehicles,
		Nodes:           make([]Node, len(s.Nodes)),
		AvailableSkills: make([]string, len(s.AvailableSkills)),
		VehicleSkills:   make(map[string][]string, len(s.VehicleSkills)),
	}
	for i, n := range s.Nodes {
		c.Nodes[i] = n.Clone()
	}
	copy(c.AvailableSkills, s.AvailableSkills)
	for k, v := range s.VehicleSkills {
		skills := make([]string, len(v))
		copy(skills, v)
		c.VehicleSkills[k] = skills
	}
	return c
}

// Depot returns the first depot node and true, or a zero Node and false.
// The model assumes a single depot but does not enforce it; the first one
// in stored order wins.
func (s Scenario) Depot() (Node, bool) {
	for _, n := range s.Nodes {
		if n.IsDepot {
			return n, true
		}
	}
	return Node{}, false
}

// NodeByID returns the node with the given id and true, or false if absent.
func (s Scenario) NodeByID(id int) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Route is one vehicle's visiting order as a sequence of node ids.
// A valid solver route starts and ends at the depot, but the model trusts
// the solver's output rather than enforcing that shape.
type Route []int

// Solver result status values as reported by the solve endpoint.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SolverResult is the solve endpoint's response body. Distances are
// pointers so that an absent field can be told apart from zero.
type SolverResult struct {
	Status        string   `json:"status"`
	Routes        []Route  `json:"routes,omitempty"`
	MaxDistance   *float64 `json:"max_distance,omitempty"`
	TotalDistance *float64 `json:"total_distance,omitempty"`
	Message       string   `json:"message,omitempty"`
}
