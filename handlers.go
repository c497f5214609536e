package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"vrpstudio/vrp"
)

// writeJSON encodes v as the response body, logging encode failures.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HTTP] Error encoding response: %v", err)
	}
}

// writeError maps a domain error to an HTTP status with a JSON body in
// the same {"status":"error","message":...} shape the solver uses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var ve *vrp.ValidationError
	switch {
	case errors.As(err, &ve):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, vrp.ErrDepotProtected):
		status = http.StatusConflict
	case errors.Is(err, vrp.ErrNodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, vrp.ErrSolvePending):
		status = http.StatusConflict
	case errors.Is(err, vrp.ErrNotImplemented):
		status = http.StatusNotImplemented
	}
	writeJSON(w, status, map[string]string{
		"status":  vrp.StatusError,
		"message": err.Error(),
	})
}

// decodeBody decodes the request body into dst, rejecting malformed JSON.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status":  vrp.StatusError,
			"message": "invalid JSON body: " + err.Error(),
		})
		return false
	}
	return true
}

// requireMethod rejects requests with the wrong verb.
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// withLogging logs each request with duration.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[HTTP] %s %s from %s (%s)", r.Method, r.URL.Path, r.RemoteAddr, time.Since(start))
	})
}

// newHTTPServer creates an HTTP server with all editor endpoints
func newHTTPServer(store *vrp.Store, orch *vrp.Orchestrator, renderer *vrp.SceneRenderer) http.Handler {
	mux := http.NewServeMux()
	projector := renderer.Projector

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, struct {
			Status     string    `json:"status"`
			Timestamp  time.Time `json:"timestamp"`
			Nodes      int       `json:"nodes"`
			SolveState string    `json:"solve_state"`
		}{
			Status:     "ok",
			Timestamp:  time.Now(),
			Nodes:      len(store.Nodes()),
			SolveState: orch.State().String(),
		})
	})

	// Current editor state: scenario, selection, routes, status line
	mux.HandleFunc("/api/scenario", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		writeJSON(w, http.StatusOK, store.View())
	})

	// Left-click at a canvas pixel: select a hit node or add a new one
	mux.HandleFunc("/api/click", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var req struct {
			PX float64 `json:"px"`
			PY float64 `json:"py"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		node := store.ClickAt(projector, req.PX, req.PY)
		writeJSON(w, http.StatusOK, struct {
			Node vrp.Node      `json:"node"`
			View vrp.SceneView `json:"view"`
		}{node, store.View()})
	})

	// Right-click at a canvas pixel: remove a hit customer node
	mux.HandleFunc("/api/contextclick", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var req struct {
			PX float64 `json:"px"`
			PY float64 `json:"py"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if err := store.ContextClickAt(projector, req.PX, req.PY); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, store.View())
	})

	// Update a node's editable fields. Time window bounds arrive as the
	// raw form strings so empty means "no constraint" and junk is
	// rejected instead of coerced to zero.
	mux.HandleFunc("/api/node", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var req struct {
			ID              int      `json:"id"`
			X               float64  `json:"x"`
			Y               float64  `json:"y"`
			IsDepot         bool     `json:"is_depot"`
			TimeWindowStart string   `json:"time_window_start"`
			TimeWindowEnd   string   `json:"time_window_end"`
			RequiredSkills  []string `json:"required_skills"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		tw, err := vrp.ParseTimeWindow(req.TimeWindowStart, req.TimeWindowEnd)
		if err != nil {
			writeError(w, err)
			return
		}
		skills := req.RequiredSkills
		if skills == nil {
			skills = []string{}
		}
		node := vrp.Node{
			ID:             req.ID,
			X:              req.X,
			Y:              req.Y,
			IsDepot:        req.IsDepot,
			TimeWindow:     tw,
			RequiredSkills: skills,
		}
		if err := store.UpdateNode(node); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, store.View())
	})

	// Select or deselect a node (id 0 deselects)
	mux.HandleFunc("/api/select", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var req struct {
			ID int `json:"id"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if err := store.SelectNode(req.ID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, store.View())
	})

	// Resize the fleet. The count arrives as the raw form string.
	mux.HandleFunc("/api/vehicles", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var req struct {
			Count string `json:"count"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		count, err := vrp.ParseCount(req.Count)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := store.SetNumVehicles(count); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, store.View())
	})

	// Replace the skill registry and per-vehicle assignments
	mux.HandleFunc("/api/skills", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var req struct {
			AvailableSkills []string            `json:"available_skills"`
			VehicleSkills   map[string][]string `json:"vehicle_skills"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.VehicleSkills == nil {
			req.VehicleSkills = map[string][]string{}
		}
		store.SetSkills(req.AvailableSkills, req.VehicleSkills)
		writeJSON(w, http.StatusOK, store.View())
	})

	// Trigger a solve of the current scenario
	mux.HandleFunc("/api/solve", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		if err := orch.Solve(r.Context()); err != nil {
			var ve *vrp.ValidationError
			if errors.As(err, &ve) || errors.Is(err, vrp.ErrSolvePending) {
				writeError(w, err)
				return
			}
			// Transport and solver failures already updated the status
			// line; surface them with the store view attached.
			writeJSON(w, http.StatusBadGateway, struct {
				Status  string        `json:"status"`
				Message string        `json:"message"`
				View    vrp.SceneView `json:"view"`
			}{vrp.StatusError, err.Error(), store.View()})
			return
		}
		writeJSON(w, http.StatusOK, store.View())
	})

	// Discard the current routes, keep the scenario
	mux.HandleFunc("/api/routes/clear", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		store.ClearRoutes()
		writeJSON(w, http.StatusOK, store.View())
	})

	// Reset the scenario to just the depot
	mux.HandleFunc("/api/clear", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		store.ClearAll()
		writeJSON(w, http.StatusOK, store.View())
	})

	// Replace the scenario with the bundled example
	mux.HandleFunc("/api/example", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		if err := store.LoadExample(); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, store.View())
	})

	// Save the current scenario. Acknowledged stub: always 501.
	mux.HandleFunc("/api/save", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		writeError(w, store.SaveCurrent())
	})

	// Per-vehicle route summaries with geometric lengths
	mux.HandleFunc("/api/summary", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		writeJSON(w, http.StatusOK, vrp.SummarizeRoutes(store.Snapshot(), store.Routes()))
	})

	// Vector rendering of the current scene
	mux.HandleFunc("/canvas.svg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-cache")
		if err := renderer.RenderSVG(w, store.View()); err != nil {
			log.Printf("Error encoding scene SVG: %v", err)
		}
	})

	// Raster rendering of the current scene
	mux.HandleFunc("/canvas.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		if err := renderer.RenderPNG(w, store.View()); err != nil {
			log.Printf("Error encoding scene PNG: %v", err)
		}
	})

	return withLogging(mux)
}
