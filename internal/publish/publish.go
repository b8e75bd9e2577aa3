// Package publish sends decoded GLL fixes to an MQTT broker as JSON.
package publish

import (
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"gllwatch/internal/gps"
)

type Config struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
	Retain   bool

	// PublishTimeout bounds how long Publish waits for the broker.
	PublishTimeout time.Duration
}

// Client is the part of mqtt.Client the publisher uses.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

type Publisher struct {
	cfg    Config
	client Client

	sent   atomic.Uint64
	failed atomic.Uint64
}

// Connect dials the broker and returns a ready publisher.
func Connect(cfg Config) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker is required")
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, token.Error())
	}
	log.Printf("mqtt connected broker=%s topic=%s", cfg.Broker, cfg.Topic)
	return New(cfg, client), nil
}

// New wraps an already connected client.
func New(cfg Config, client Client) *Publisher {
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 2 * time.Second
	}
	return &Publisher{cfg: cfg, client: client}
}

// Publish marshals f and sends it to the configured topic.
func (p *Publisher) Publish(f gps.Fix) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal fix: %w", err)
	}
	token := p.client.Publish(p.cfg.Topic, p.cfg.QoS, p.cfg.Retain, payload)
	if !token.WaitTimeout(p.cfg.PublishTimeout) {
		p.failed.Add(1)
		return fmt.Errorf("mqtt publish %s: timeout after %s", p.cfg.Topic, p.cfg.PublishTimeout)
	}
	if err := token.Error(); err != nil {
		p.failed.Add(1)
		return fmt.Errorf("mqtt publish %s: %w", p.cfg.Topic, err)
	}
	p.sent.Add(1)
	return nil
}

// Handle publishes f and logs failures; it fits gps.Config.OnFix.
func (p *Publisher) Handle(f gps.Fix) {
	if err := p.Publish(f); err != nil {
		log.Printf("mqtt publish failed: %v", err)
	}
}

// Stats returns the number of successful and failed publishes.
func (p *Publisher) Stats() (sent, failed uint64) {
	return p.sent.Load(), p.failed.Load()
}

func (p *Publisher) Close() {
	if p == nil || p.client == nil {
		return
	}
	p.client.Disconnect(250)
}
