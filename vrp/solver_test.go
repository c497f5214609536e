package vrp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// ---------------------------------------------------------------------------
// Solve: success path
// ---------------------------------------------------------------------------

func TestSolverClient_Solve(t *testing.T) {
	var received Scenario
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/solve" {
			t.Errorf("request path = %s, want /api/solve", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","routes":[[1,2,1]],"max_distance":42.5}`))
	}))
	defer server.Close()

	client := NewSolverClient(server.URL)
	result, err := client.Solve(context.Background(), testScenario())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if result.Status != StatusSuccess {
		t.Errorf("status = %q, want success", result.Status)
	}
	if len(result.Routes) != 1 || len(result.Routes[0]) != 3 {
		t.Errorf("routes = %v, want [[1 2 1]]", result.Routes)
	}
	if result.MaxDistance == nil || *result.MaxDistance != 42.5 {
		t.Errorf("max distance = %v, want 42.5", result.MaxDistance)
	}

	// The full scenario travels on the wire.
	if received.NumVehicles != 2 {
		t.Errorf("posted num_vehicles = %d, want 2", received.NumVehicles)
	}
	if len(received.Nodes) != 3 {
		t.Errorf("posted %d nodes, want 3", len(received.Nodes))
	}
	if _, ok := received.VehicleSkills["0"]; !ok {
		t.Error("posted scenario is missing vehicle_skills")
	}
}

// ---------------------------------------------------------------------------
// Solve: error responses
// ---------------------------------------------------------------------------

func TestSolverClient_ErrorBodyMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"error","message":"No solution found."}`))
	}))
	defer server.Close()

	client := NewSolverClient(server.URL)
	_, err := client.Solve(context.Background(), testScenario())

	var se *SolverStatusError
	if !errors.As(err, &se) {
		t.Fatalf("error type %T, want *SolverStatusError", err)
	}
	if se.Code != http.StatusInternalServerError {
		t.Errorf("code = %d, want 500", se.Code)
	}
	if se.Message != "No solution found." {
		t.Errorf("message = %q, want the decoded body message", se.Message)
	}
}

func TestSolverClient_NonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream timeout</html>"))
	}))
	defer server.Close()

	client := NewSolverClient(server.URL)
	_, err := client.Solve(context.Background(), testScenario())

	var se *SolverStatusError
	if !errors.As(err, &se) {
		t.Fatalf("error type %T, want *SolverStatusError", err)
	}
	if se.Message != "" {
		t.Errorf("message = %q, want empty for undecodable body", se.Message)
	}
	if se.Code != http.StatusBadGateway {
		t.Errorf("code = %d, want 502", se.Code)
	}
}

func TestSolverClient_MalformedSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewSolverClient(server.URL)
	if _, err := client.Solve(context.Background(), testScenario()); err == nil {
		t.Fatal("malformed success body accepted")
	}
}

func TestSolverClient_EmptyURL(t *testing.T) {
	client := NewSolverClient("")
	if _, err := client.Solve(context.Background(), testScenario()); err == nil {
		t.Fatal("empty base URL accepted")
	}
}

func TestSolverClient_ContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewSolverClient(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Solve(ctx, testScenario()); err == nil {
		t.Fatal("cancelled context accepted")
	}
}
