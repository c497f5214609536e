package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vrpstudio/vrp"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// newTestServer wires a full editor against a fake solver handler and
// returns the server plus the store for direct assertions.
func newTestServer(t *testing.T, solver http.HandlerFunc) (*httptest.Server, *vrp.Store) {
	t.Helper()

	if solver == nil {
		solver = func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(vrp.SolverResult{
				Status: vrp.StatusSuccess,
				Routes: []vrp.Route{{1, 2, 1}},
			})
		}
	}
	backend := httptest.NewServer(solver)
	t.Cleanup(backend.Close)

	example, err := vrp.ExampleScenario()
	if err != nil {
		t.Fatalf("example scenario: %v", err)
	}
	store := vrp.NewStore(example)
	orch := vrp.NewOrchestrator(store, vrp.NewSolverClient(backend.URL), nil)
	renderer := vrp.NewSceneRenderer(vrp.NewProjector(vrp.DefaultCanvasW, vrp.DefaultCanvasH))

	server := httptest.NewServer(newHTTPServer(store, orch, renderer))
	t.Cleanup(server.Close)
	return server, store
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeView(t *testing.T, resp *http.Response) vrp.SceneView {
	t.Helper()
	defer resp.Body.Close()
	var view vrp.SceneView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return view
}

// ---------------------------------------------------------------------------
// read endpoints
// ---------------------------------------------------------------------------

func TestHandler_Health(t *testing.T) {
	server, _ := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var health struct {
		Status     string `json:"status"`
		Nodes      int    `json:"nodes"`
		SolveState string `json:"solve_state"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" {
		t.Errorf("health status = %q, want ok", health.Status)
	}
	if health.Nodes == 0 {
		t.Error("health should report the seeded node count")
	}
	if health.SolveState != "idle" {
		t.Errorf("solve state = %q, want idle", health.SolveState)
	}
}

func TestHandler_Scenario(t *testing.T) {
	server, _ := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/api/scenario")
	if err != nil {
		t.Fatal(err)
	}
	view := decodeView(t, resp)
	if len(view.Nodes) == 0 {
		t.Error("scenario view has no nodes")
	}
	if view.StatusMessage != "Ready" {
		t.Errorf("status message = %q, want Ready", view.StatusMessage)
	}
}

func TestHandler_Scenario_MethodNotAllowed(t *testing.T) {
	server, _ := newTestServer(t, nil)
	resp := postJSON(t, server.URL+"/api/scenario", "{}")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

// ---------------------------------------------------------------------------
// click endpoints
// ---------------------------------------------------------------------------

func TestHandler_Click_AddsNode(t *testing.T) {
	server, store := newTestServer(t, nil)
	before := len(store.Nodes())

	// Far corner: guaranteed miss on the example nodes.
	resp := postJSON(t, server.URL+"/api/click", `{"px": 790, "py": 590}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var result struct {
		Node vrp.Node      `json:"node"`
		View vrp.SceneView `json:"view"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Node.ID == 0 {
		t.Error("click response has no node")
	}
	if len(store.Nodes()) != before+1 {
		t.Errorf("node count = %d, want %d", len(store.Nodes()), before+1)
	}
	if result.View.SelectedNodeID != result.Node.ID {
		t.Errorf("selection = %d, want the new node %d", result.View.SelectedNodeID, result.Node.ID)
	}
}

func TestHandler_ContextClick_DepotConflict(t *testing.T) {
	server, store := newTestServer(t, nil)
	before := len(store.Nodes())

	// The example depot sits at the logical origin, canvas center.
	resp := postJSON(t, server.URL+"/api/contextclick", `{"px": 400, "py": 300}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
	if len(store.Nodes()) != before {
		t.Error("depot removal must not change the node set")
	}
}

func TestHandler_Click_BadBody(t *testing.T) {
	server, _ := newTestServer(t, nil)
	resp := postJSON(t, server.URL+"/api/click", "{not json")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

// ---------------------------------------------------------------------------
// editing endpoints
// ---------------------------------------------------------------------------

func TestHandler_UpdateNode(t *testing.T) {
	server, store := newTestServer(t, nil)

	resp := postJSON(t, server.URL+"/api/node",
		`{"id": 2, "x": 5, "y": 5, "time_window_start": "8", "time_window_end": "17", "required_skills": ["refrigeration"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	n, ok := store.Snapshot().NodeByID(2)
	if !ok {
		t.Fatal("node 2 vanished")
	}
	if n.TimeWindow == nil || n.TimeWindow[0] != 8 || n.TimeWindow[1] != 17 {
		t.Errorf("time window = %v, want [8,17]", n.TimeWindow)
	}
}

func TestHandler_UpdateNode_RejectsJunkWindow(t *testing.T) {
	server, _ := newTestServer(t, nil)
	resp := postJSON(t, server.URL+"/api/node",
		`{"id": 2, "time_window_start": "soon", "time_window_end": "17"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
}

func TestHandler_Vehicles(t *testing.T) {
	server, store := newTestServer(t, nil)

	resp := postJSON(t, server.URL+"/api/vehicles", `{"count": "5"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := store.Snapshot().NumVehicles; got != 5 {
		t.Errorf("vehicles = %d, want 5", got)
	}

	resp = postJSON(t, server.URL+"/api/vehicles", `{"count": "many"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("junk count status = %d, want 422", resp.StatusCode)
	}
}

func TestHandler_Skills(t *testing.T) {
	server, store := newTestServer(t, nil)

	resp := postJSON(t, server.URL+"/api/skills",
		`{"available_skills": ["fragile"], "vehicle_skills": {"0": ["fragile"]}}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	s := store.Snapshot()
	if len(s.AvailableSkills) != 1 || s.AvailableSkills[0] != "fragile" {
		t.Errorf("skills = %v, want [fragile]", s.AvailableSkills)
	}
}

// ---------------------------------------------------------------------------
// solve endpoint
// ---------------------------------------------------------------------------

func TestHandler_Solve(t *testing.T) {
	server, store := newTestServer(t, nil)

	resp := postJSON(t, server.URL+"/api/solve", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	view := decodeView(t, resp)
	if len(view.Routes) != 1 {
		t.Errorf("routes in view = %v, want one route", view.Routes)
	}
	if len(store.Routes()) != 1 {
		t.Error("store did not adopt the routes")
	}
}

func TestHandler_Solve_ValidationError(t *testing.T) {
	server, store := newTestServer(t, nil)

	// Customers but no vehicles.
	if err := store.SetNumVehicles(0); err != nil {
		t.Fatal(err)
	}
	resp := postJSON(t, server.URL+"/api/solve", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
}

func TestHandler_Solve_SolverFailure(t *testing.T) {
	server, store := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"error","message":"No solution found."}`))
	})

	resp := postJSON(t, server.URL+"/api/solve", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
	if got := store.StatusMessage(); got != "No solution found." {
		t.Errorf("status line = %q, want the solver message", got)
	}
}

// ---------------------------------------------------------------------------
// lifecycle endpoints
// ---------------------------------------------------------------------------

func TestHandler_ClearAndExample(t *testing.T) {
	server, store := newTestServer(t, nil)

	resp := postJSON(t, server.URL+"/api/clear", "")
	resp.Body.Close()
	if got := len(store.Nodes()); got != 1 {
		t.Errorf("nodes after clear = %d, want just the depot", got)
	}

	resp = postJSON(t, server.URL+"/api/example", "")
	resp.Body.Close()
	if got := len(store.Nodes()); got < 2 {
		t.Errorf("nodes after example reload = %d, want the full example", got)
	}
}

func TestHandler_Save_NotImplemented(t *testing.T) {
	server, _ := newTestServer(t, nil)
	resp := postJSON(t, server.URL+"/api/save", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", resp.StatusCode)
	}
}

func TestHandler_RoutesClear(t *testing.T) {
	server, store := newTestServer(t, nil)

	resp := postJSON(t, server.URL+"/api/solve", "")
	resp.Body.Close()
	if len(store.Routes()) == 0 {
		t.Fatal("setup: solve did not produce routes")
	}

	resp = postJSON(t, server.URL+"/api/routes/clear", "")
	resp.Body.Close()
	if len(store.Routes()) != 0 {
		t.Error("routes survived /api/routes/clear")
	}
	if got := len(store.Nodes()); got < 2 {
		t.Error("clearing routes must not touch the scenario")
	}
}

// ---------------------------------------------------------------------------
// render endpoints
// ---------------------------------------------------------------------------

func TestHandler_CanvasSVG(t *testing.T) {
	server, _ := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/canvas.svg")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Error("response body is not an SVG document")
	}
}

func TestHandler_CanvasPNG(t *testing.T) {
	server, _ := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/canvas.png")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	if buf.Len() < 8 || !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("response body is not a PNG")
	}
}
