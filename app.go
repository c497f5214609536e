package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/joho/godotenv"

	"vrpstudio/vrp"
)

// App encapsulates the application state and dependencies
type App struct {
	Config       *vrp.Config
	Store        *vrp.Store
	Orchestrator *vrp.Orchestrator
	Renderer     *vrp.SceneRenderer
	Publisher    *vrp.Publisher
	MQTTClient   mqtt.Client

	// CLI flags (effectively dependencies)
	ConfigFile string
	SolverURL  string
	HTTPPort   int
}

// NewApp creates a new App instance
func NewApp() *App {
	return &App{}
}

// ApplyOptions applies CLI options to the App instance
func (a *App) ApplyOptions(opts AppOptions) {
	a.ConfigFile = opts.ConfigFile
	a.SolverURL = opts.SolverURL
	a.HTTPPort = opts.HTTPPort
}

// loadConfig resolves the effective configuration: config.yaml when
// present, defaults otherwise, with CLI flags as the final override.
func (a *App) loadConfig() *vrp.Config {
	var config *vrp.Config
	if _, err := os.Stat(a.ConfigFile); err == nil {
		loaded, err := vrp.LoadConfig(a.ConfigFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v (looked at %s)", err, a.ConfigFile)
		}
		config = loaded
		log.Printf("Loaded config from %s", a.ConfigFile)
	} else {
		config = vrp.DefaultConfig()
		log.Printf("No config file at %s, using defaults", a.ConfigFile)
	}

	if a.SolverURL != "" {
		config.Solver.URL = a.SolverURL
	}
	if url := os.Getenv("SOLVER_URL"); url != "" && config.Solver.URL == "" {
		config.Solver.URL = url
	}
	if a.HTTPPort > 0 {
		config.HTTPPort = a.HTTPPort
	}
	return config
}

// initMQTT connects to the configured broker and wires the solve event
// publisher. Without a broker the editor runs standalone.
func (a *App) initMQTT() {
	broker := a.Config.MQTT.Broker
	if broker == "" {
		log.Println("MQTT broker not configured, solve events will not be published")
		return
	}

	if a.Config.MQTT.PublishPrefix != "" {
		os.Setenv("MQTT_PUBLISH_PREFIX", a.Config.MQTT.PublishPrefix)
	}

	clientID := a.Config.MQTT.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("vrpstudio-%d", time.Now().Unix())
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)
	if a.Config.MQTT.Username != "" {
		opts.SetUsername(a.Config.MQTT.Username)
		opts.SetPassword(a.Config.MQTT.Password)
	}
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		log.Printf("[MQTT] Connected to %s", broker)
	})
	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		log.Printf("[MQTT] Connection lost: %v", err)
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.WaitTimeout(10*time.Second) && token.Error() != nil {
		log.Printf("Warning: MQTT connect to %s failed: %v", broker, token.Error())
		return
	}

	a.MQTTClient = client
	a.Publisher = vrp.NewPublisher(client)
	fmt.Println("MQTT solve event publisher initialized")
}

// RunService starts the scenario editor service
func (a *App) RunService() {
	fmt.Println("Starting vrpstudio service...")

	// .env carries local overrides such as SOLVER_URL and MQTT credentials
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	a.Config = a.loadConfig()
	if a.Config.Solver.URL == "" {
		log.Fatal("Solver URL not configured (use -solver-url, SOLVER_URL, or solver.url in config.yaml)")
	}

	// Seed the editor with the bundled example scenario
	example, err := vrp.ExampleScenario()
	if err != nil {
		log.Fatalf("Failed to load example scenario: %v", err)
	}
	a.Store = vrp.NewStore(example)

	a.initMQTT()

	client := vrp.NewSolverClient(a.Config.Solver.URL,
		vrp.WithTimeout(time.Duration(a.Config.Solver.TimeoutSeconds)*time.Second))
	a.Orchestrator = vrp.NewOrchestrator(a.Store, client, a.Publisher)
	a.Orchestrator.SetTimeout(time.Duration(a.Config.Solver.TimeoutSeconds) * time.Second)

	projector := vrp.Projector{
		Width:  a.Config.Canvas.Width,
		Height: a.Config.Canvas.Height,
		Scale:  a.Config.Canvas.Scale,
	}
	a.Renderer = vrp.NewSceneRenderer(projector)

	handler := newHTTPServer(a.Store, a.Orchestrator, a.Renderer)
	server := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", a.Config.HTTPPort),
		Handler: handler,
	}
	go func() {
		log.Printf("[HTTP] Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[HTTP] Server error: %v", err)
		}
	}()

	fmt.Println("\nService Running")
	fmt.Println("===============")
	fmt.Printf("\nSolver: %s\n", a.Config.Solver.URL)
	fmt.Printf("Canvas: %.0fx%.0f at scale %.1f\n",
		projector.Width, projector.Height, projector.Scale)
	fmt.Printf("\nHTTP endpoints (port %d):\n", a.Config.HTTPPort)
	fmt.Println("  GET  /health            - Health check")
	fmt.Println("  GET  /api/scenario      - Current editor state")
	fmt.Println("  POST /api/click         - Left-click at canvas pixel")
	fmt.Println("  POST /api/contextclick  - Right-click at canvas pixel")
	fmt.Println("  POST /api/node          - Update node fields")
	fmt.Println("  POST /api/select        - Select or deselect a node")
	fmt.Println("  POST /api/vehicles      - Set the vehicle count")
	fmt.Println("  POST /api/skills        - Replace skills and assignments")
	fmt.Println("  POST /api/solve         - Solve the current scenario")
	fmt.Println("  POST /api/routes/clear  - Clear routes")
	fmt.Println("  POST /api/clear         - Reset to just the depot")
	fmt.Println("  POST /api/example       - Load the example scenario")
	fmt.Println("  POST /api/save          - Save scenario (not implemented)")
	fmt.Println("  GET  /api/summary       - Per-vehicle route summaries")
	fmt.Println("  GET  /canvas.svg        - Vector scene render")
	fmt.Println("  GET  /canvas.png        - Raster scene render")

	if a.Publisher != nil {
		prefix := a.Config.MQTT.PublishPrefix
		if prefix == "" {
			prefix = "vrpstudio"
		}
		fmt.Printf("\nMQTT solve events: %s/solves\n", prefix)
	}

	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	fmt.Println("\nShutting down service...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[HTTP] Shutdown error: %v", err)
	}
	if a.MQTTClient != nil {
		a.MQTTClient.Disconnect(250)
	}
	fmt.Println("Service stopped")
}
