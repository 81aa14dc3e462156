package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/ukydev/report-map/internal/models"
)

// ErrPublishTimeout is returned when the broker does not acknowledge a
// publish within the configured timeout.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Publisher announces newly stored reports.
type Publisher interface {
	PublishReport(ctx context.Context, report models.Report) error
}

// NopPublisher discards every report.
type NopPublisher struct{}

// PublishReport does nothing.
func (NopPublisher) PublishReport(context.Context, models.Report) error { return nil }

// MQTTOptions configures the broker connection.
type MQTTOptions struct {
	Broker         string
	ClientID       string
	Topic          string
	ConnectTimeout time.Duration
	PublishTimeout time.Duration
}

// MQTTPublisher publishes reports as JSON messages on a single topic.
type MQTTPublisher struct {
	client  mqtt.Client
	topic   string
	timeout time.Duration
}

// NewMQTTPublisher wraps an already connected client.
func NewMQTTPublisher(client mqtt.Client, topic string, timeout time.Duration) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic, timeout: timeout}
}

// ConnectMQTT connects to the broker and returns a publisher for opts.Topic.
func ConnectMQTT(opts MQTTOptions) (*MQTTPublisher, error) {
	clientOpts := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(opts.ConnectTimeout)

	client := mqtt.NewClient(clientOpts)
	token := client.Connect()
	if !token.WaitTimeout(opts.ConnectTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", opts.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", opts.Broker, err)
	}
	return NewMQTTPublisher(client, opts.Topic, opts.PublishTimeout), nil
}

// PublishReport sends report with QoS 1 and waits for the broker ack.
func (p *MQTTPublisher) PublishReport(ctx context.Context, report models.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	token := p.client.Publish(p.topic, 1, false, payload)
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-timer.C:
		return ErrPublishTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
