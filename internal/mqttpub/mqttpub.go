// Package mqttpub republishes sensor states to an MQTT broker so a home
// automation host can subscribe instead of polling the REST API. Each sensor
// gets a retained JSON message on tidewatch/<entry>/<sensor>.
package mqttpub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"tidewatch/internal/sensor"
)

const publishTimeout = 5 * time.Second

// Publisher wraps an MQTT client and pushes sensor snapshots to it.
type Publisher struct {
	client mqtt.Client
	logger *slog.Logger

	mu        sync.RWMutex
	connected bool
}

// New builds a publisher for the broker at host:port. It does not connect.
func New(broker string, port int, clientID string, logger *slog.Logger) *Publisher {
	p := &Publisher{logger: logger}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", broker, port))
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		p.setConnected(true)
		logger.Info("mqtt connected", "broker", broker, "port", port)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	p.client = mqtt.NewClient(opts)
	return p
}

// Connect starts the connection attempt. With retry enabled the client keeps
// trying in the background, so an unreachable broker is not fatal here.
func (p *Publisher) Connect() error {
	token := p.client.Connect()
	if token.WaitTimeout(publishTimeout) && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return nil
}

// PublishStates pushes each state to its topic, retained so late subscribers
// get the latest reading. Intended as a poll coordinator's update hook.
func (p *Publisher) PublishStates(entryID string, states []sensor.State) {
	if !p.IsConnected() {
		p.logger.Debug("mqtt not connected, skipping publish", "entry", entryID)
		return
	}

	for _, s := range states {
		topic := topicFor(s)
		data, err := json.Marshal(s)
		if err != nil {
			p.logger.Error("marshal sensor state", "sensor", s.ID, "error", err)
			continue
		}

		token := p.client.Publish(topic, 1, true, data)
		if !token.WaitTimeout(publishTimeout) {
			p.logger.Warn("publish timeout", "topic", topic)
			continue
		}
		if token.Error() != nil {
			p.logger.Error("publish failed", "topic", topic, "error", token.Error())
			continue
		}
		p.logger.Debug("published", "topic", topic)
	}
}

// topicFor maps a sensor id like "9414275_tides_tides" onto
// "tidewatch/9414275_tides/tides".
func topicFor(s sensor.State) string {
	suffix := strings.TrimPrefix(s.ID, s.EntryID+"_")
	return fmt.Sprintf("tidewatch/%s/%s", s.EntryID, suffix)
}

func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}

// Disconnect closes the broker connection, letting in-flight messages drain.
func (p *Publisher) Disconnect() {
	p.client.Disconnect(250)
	p.setConnected(false)
}
