package main

import (
	"flag"
	"fmt"
)

// Version is set at build time via -ldflags
var Version = "dev"

// AppOptions carries the parsed CLI flags into the App.
type AppOptions struct {
	ConfigFile string
	SolverURL  string
	HTTPPort   int
}

var (
	configFile = flag.String("config", "config.yaml", "Path to configuration file")
	solverURL  = flag.String("solver-url", "", "Solver service base URL (overrides config)")
	httpPort   = flag.Int("http-port", 0, "HTTP server port (overrides config, default 8080)")
)

func main() {
	flag.Parse()
	fmt.Printf("vrpstudio version: %s\n", Version)

	app := NewApp()
	app.ApplyOptions(AppOptions{
		ConfigFile: *configFile,
		SolverURL:  *solverURL,
		HTTPPort:   *httpPort,
	})
	app.RunService()
}
