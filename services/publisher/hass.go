package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"sjsage522/promonotifier/internal/promo"
	"sjsage522/promonotifier/logger"
	apperrors "sjsage522/promonotifier/pkg/errors"
)

const (
	hassSource = "home_assistant"

	deviceName       = "Honkai Impact 3rd Promos"
	deviceIdentifier = "honkai_promos"
	triggerName      = "New Codes Trigger"
	triggerType      = "codes"
	triggerSubtype   = "found_new"
	triggerUniqueID  = "trigger"

	// quiesce is how long Disconnect waits for in-flight work, in milliseconds
	quiesce = 250
)

// mqttClient is the part of mqtt.Client the publisher needs
type mqttClient interface {
	Connect() mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// HassConfig contains the Home Assistant MQTT settings
type HassConfig struct {
	Broker          string
	Username        string
	Password        string
	DiscoveryPrefix string
	Version         string
	Timeout         time.Duration
}

// DeviceInfo is the device block of a discovery payload
type DeviceInfo struct {
	Name        string   `json:"name"`
	SWVersion   string   `json:"sw_version,omitempty"`
	Identifiers []string `json:"identifiers"`
}

// TriggerConfig is the discovery payload of an MQTT device trigger
type TriggerConfig struct {
	AutomationType string     `json:"automation_type"`
	Name           string     `json:"name"`
	Topic          string     `json:"topic"`
	Type           string     `json:"type"`
	Subtype        string     `json:"subtype"`
	UniqueID       string     `json:"unique_id"`
	Device         DeviceInfo `json:"device"`
}

// HassPublisher fires a Home Assistant device trigger over MQTT
type HassPublisher struct {
	client          mqttClient
	discoveryPrefix string
	version         string
	timeout         time.Duration
	log             *logger.Logger
}

// NewHassPublisher creates a publisher with a paho MQTT client
func NewHassPublisher(cfg HassConfig) *HassPublisher {
	log := logger.ForPublisher()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(deviceIdentifier + "-" + uuid.NewString()[:8]).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectTimeout(cfg.Timeout).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn().Err(err).Msg("MQTT connection lost")
		})

	return newHassPublisher(cfg, mqtt.NewClient(opts))
}

func newHassPublisher(cfg HassConfig, client mqttClient) *HassPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HassPublisher{
		client:          client,
		discoveryPrefix: cfg.DiscoveryPrefix,
		version:         cfg.Version,
		timeout:         timeout,
		log:             logger.ForPublisher(),
	}
}

// ConfigTopic is where the retained discovery payload is published
func (p *HassPublisher) ConfigTopic() string {
	return fmt.Sprintf("%s/device_automation/%s/%s/config", p.discoveryPrefix, deviceIdentifier, triggerUniqueID)
}

// TriggerTopic is where events are published
func (p *HassPublisher) TriggerTopic() string {
	return fmt.Sprintf("%s/%s/%s", deviceIdentifier, triggerUniqueID, triggerSubtype)
}

// TriggerConfig builds the discovery payload
func (p *HassPublisher) TriggerConfig() TriggerConfig {
	return TriggerConfig{
		AutomationType: "trigger",
		Name:           triggerName,
		Topic:          p.TriggerTopic(),
		Type:           triggerType,
		Subtype:        triggerSubtype,
		UniqueID:       triggerUniqueID,
		Device: DeviceInfo{
			Name:        deviceName,
			SWVersion:   p.version,
			Identifiers: []string{deviceIdentifier},
		},
	}
}

// Connect connects to the broker and sends the trigger configuration
func (p *HassPublisher) Connect(ctx context.Context) error {
	p.log.Debug().Msg("Connecting to Home Assistant MQTT broker ...")
	if err := p.wait(ctx, p.client.Connect()); err != nil {
		return apperrors.NewPublisher(hassSource, "failed to connect to MQTT broker", err)
	}
	return p.WriteConfig(ctx)
}

// WriteConfig publishes the retained discovery payload
func (p *HassPublisher) WriteConfig(ctx context.Context) error {
	payload, err := json.Marshal(p.TriggerConfig())
	if err != nil {
		return apperrors.NewPublisher(hassSource, "failed to encode trigger config", err)
	}

	p.log.Debug().Str("topic", p.ConfigTopic()).Msg("Sending configuration to Home Assistant ...")
	if err := p.wait(ctx, p.client.Publish(p.ConfigTopic(), 1, true, payload)); err != nil {
		return apperrors.NewPublisher(hassSource, "failed to publish trigger config", err)
	}
	return nil
}

// Publish fires the trigger with the event as payload
func (p *HassPublisher) Publish(ctx context.Context, event promo.Event) error {
	payload, err := event.JSON()
	if err != nil {
		return apperrors.NewPublisher(hassSource, "failed to encode event", err)
	}

	p.log.Debug().
		Str("topic", p.TriggerTopic()).
		Int("codes", event.Len()).
		Msg("Sending trigger to Home Assistant ...")
	if err := p.wait(ctx, p.client.Publish(p.TriggerTopic(), 1, false, payload)); err != nil {
		return apperrors.NewPublisher(hassSource, "failed to fire trigger", err)
	}
	return nil
}

// Close disconnects from the broker
func (p *HassPublisher) Close() error {
	p.client.Disconnect(quiesce)
	return nil
}

func (p *HassPublisher) wait(ctx context.Context, token mqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.timeout):
		return fmt.Errorf("timed out after %v", p.timeout)
	}
}
