package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// MQTTOptions configures the alert publisher.
type MQTTOptions struct {
	Broker   string // e.g. tcp://localhost:1883
	ClientID string
	Topic    string
	Timeout  time.Duration
}

// MQTTChannel publishes alerts as JSON to a broker topic.
type MQTTChannel struct {
	client  mqtt.Client
	topic   string
	timeout time.Duration
}

// NewMQTTChannel connects to the broker.
func NewMQTTChannel(opts MQTTOptions, logger *slog.Logger) (*MQTTChannel, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	co := mqtt.NewClientOptions()
	co.AddBroker(opts.Broker)
	co.SetClientID(opts.ClientID)
	co.SetCleanSession(true)
	co.SetAutoReconnect(true)
	co.SetConnectRetry(true)
	co.SetConnectRetryInterval(5 * time.Second)
	co.SetMaxReconnectInterval(60 * time.Second)
	co.SetKeepAlive(30 * time.Second)
	co.SetPingTimeout(10 * time.Second)
	co.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("mqtt connected", "broker", opts.Broker)
	})
	co.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	client := mqtt.NewClient(co)
	token := client.Connect()
	if !token.WaitTimeout(opts.Timeout) {
		// stop the background connect retries
		client.Disconnect(0)
		return nil, fmt.Errorf("mqtt connect to %s: timed out", opts.Broker)
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return nil, fmt.Errorf("mqtt connect to %s: %w", opts.Broker, err)
	}

	return newMQTTChannel(client, opts.Topic, opts.Timeout), nil
}

func newMQTTChannel(client mqtt.Client, topic string, timeout time.Duration) *MQTTChannel {
	return &MQTTChannel{client: client, topic: topic, timeout: timeout}
}

func (m *MQTTChannel) Name() string { return "mqtt" }

func (m *MQTTChannel) Send(_ context.Context, alert weather.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	token := m.client.Publish(m.topic, 1, false, payload)
	if !token.WaitTimeout(m.timeout) {
		return fmt.Errorf("mqtt publish to %s: timed out", m.topic)
	}
	return token.Error()
}

// Close disconnects from the broker.
func (m *MQTTChannel) Close() {
	m.client.Disconnect(250)
}
