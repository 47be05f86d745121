// FilePath: internal/mqtt/listener.go
package mqtt

import (
	"context"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/beeguardai/hub/internal/config"
	"github.com/beeguardai/hub/internal/errors"
	"github.com/beeguardai/hub/internal/hubservice"
	nuts "github.com/vaudience/go-nuts"
)

// Listener subscribes to TTN device uplinks and feeds them through the
// same ingestion path as HTTP payloads.
type Listener struct {
	client     paho.Client
	hubservice *hubservice.HubService
	cfg        config.MQTTConfig
}

func NewListener(cfg config.MQTTConfig, svc *hubservice.HubService) *Listener {
	return &Listener{hubservice: svc, cfg: cfg}
}

// Start connects to the TTN broker and subscribes to all device uplinks
// of the configured application.
func (l *Listener) Start() error {
	opts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", l.cfg.Host, l.cfg.Port)).
		SetClientID(nuts.NID("bgd", 8)).
		SetUsername(l.cfg.AppID + "@ttn").
		SetPassword(l.cfg.APIKey).
		SetAutoReconnect(true).
		SetOnConnectHandler(l.onConnect).
		SetConnectionLostHandler(l.onConnectionLost)

	l.client = paho.NewClient(opts)
	token := l.client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("error connecting to MQTT broker: %w", err)
	}
	return nil
}

// Stop disconnects from the broker, allowing in-flight handlers to finish
func (l *Listener) Stop() {
	if l.client != nil && l.client.IsConnected() {
		l.client.Disconnect(250)
	}
	nuts.L.Infof("[MQTT] Listener stopped")
}

func (l *Listener) onConnect(client paho.Client) {
	topic := fmt.Sprintf("v3/%s@ttn/devices/+/up", l.cfg.AppID)
	if token := client.Subscribe(topic, 0, l.onMessage); token.Wait() && token.Error() != nil {
		nuts.L.Errorf("[MQTT] Failed to subscribe to %s: %v", topic, token.Error())
		return
	}
	nuts.L.Infof("[MQTT] Subscribed to %s", topic)
}

func (l *Listener) onConnectionLost(client paho.Client, err error) {
	nuts.L.Warnf("[MQTT] Connection lost: %v", err)
}

func (l *Listener) onMessage(client paho.Client, msg paho.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := l.hubservice.IngestReading(ctx, msg.Payload(), "mqtt")
	if err != nil {
		// Unregistered devices are a configuration problem; no retry.
		if errors.IsNotFound(err) {
			nuts.L.Warnf("[MQTT] Uplink from unregistered device on %s", msg.Topic())
			return
		}
		nuts.L.Errorf("[MQTT] Failed to ingest uplink on %s: %v", msg.Topic(), err)
	}
}
