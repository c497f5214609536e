package vrp

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed example_scenario.json
var exampleScenarioJSON []byte

// ExampleScenario returns the bundled example scenario that seeds the
// editor's initial state and backs the "load example" action.
func ExampleScenario() (Scenario, error) {
	var s Scenario
	if err := json.Unmarshal(exampleScenarioJSON, &s); err != nil {
		return Scenario{}, fmt.Errorf("unmarshal example scenario: %w", err)
	}
	return s, nil
}

// LoadScenarioFile reads a scenario from a JSON file and validates its
// structural consistency before it is allowed to replace store state.
func LoadScenarioFile(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario file: %w", err)
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("unmarshal scenario: %w", err)
	}
	if err := ValidateScenario(s); err != nil {
		return Scenario{}, fmt.Errorf("invalid scenario in %s: %w", path, err)
	}
	return s, nil
}

// SaveScenarioFile writes a scenario to disk as indented JSON, creating
// the parent directory if needed.
func SaveScenarioFile(path string, s Scenario) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scenario: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create scenario directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write scenario file: %w", err)
	}
	return nil
}

// SaveCurrent is the editor's "Save" action. It is an acknowledged stub:
// the surface exists but always fails until a persistence story lands.
func (st *Store) SaveCurrent() error {
	return fmt.Errorf("save scenario: %w", ErrNotImplemented)
}
