package vrp

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// SolveEvent is the broadcast record of one finished solve attempt.
type SolveEvent struct {
	CorrelationID string   `json:"correlation_id"`
	Nodes         int      `json:"nodes"`
	Vehicles      int      `json:"vehicles"`
	Status        string   `json:"status"`
	Message       string   `json:"message,omitempty"`
	Timestamp     int64    `json:"timestamp"`
	Routes        int      `json:"routes"`
	MaxDistance   *float64 `json:"max_distance,omitempty"`
	TotalDistance *float64 `json:"total_distance,omitempty"`
}

// Publisher broadcasts solve outcomes over MQTT.
type Publisher struct {
	client        mqtt.Client
	publishPrefix string
	qos           byte
	retain        bool
	last          *SolveEvent
	mu            sync.RWMutex
}

// NewPublisher creates a solve event publisher.
// If client is nil, publishing is disabled (for testing).
func NewPublisher(client mqtt.Client) *Publisher {
	prefix := os.Getenv("MQTT_PUBLISH_PREFIX")
	if prefix == "" {
		prefix = "vrpstudio"
	}

	return &Publisher{
		client:        client,
		publishPrefix: prefix,
		qos:           1,    // QoS 1: solve outcomes should arrive at least once
		retain:        true, // retain the latest outcome for late subscribers
	}
}

// PublishSolveEvent publishes a solve outcome to {prefix}/solves and
// remembers it as the latest event.
func (p *Publisher) PublishSolveEvent(ev SolveEvent) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	p.mu.Lock()
	p.last = &ev
	p.mu.Unlock()

	topic := fmt.Sprintf("%s/solves", p.publishPrefix)

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshaling solve event: %w", err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	log.Printf("Published solve event %s: status=%s routes=%d",
		ev.CorrelationID, ev.Status, ev.Routes)
	return nil
}

// LastEvent returns the most recently published solve event.
func (p *Publisher) LastEvent() (*SolveEvent, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last == nil {
		return nil, false
	}
	evCopy := *p.last
	return &evCopy, true
}

// SetQoS sets the Quality of Service level for publishing (0, 1, or 2)
func (p *Publisher) SetQoS(qos byte) {
	if qos <= 2 {
		p.qos = qos
	}
}

// SetRetain sets whether published messages should be retained by the broker
func (p *Publisher) SetRetain(retain bool) {
	p.retain = retain
}
