package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/air_monitor/internal/acquisition"
	"github.com/relabs-tech/air_monitor/internal/config"
)

const publishTimeout = 2 * time.Second

// StatusMessage is published on the status topic after every cycle.
type StatusMessage struct {
	Status    string  `json:"status"`
	OK        bool    `json:"ok"`
	ErrorKind string  `json:"error_kind,omitempty"`
	Error     string  `json:"error,omitempty"`
	Device    string  `json:"device,omitempty"`
	Time      float64 `json:"time"`
}

type mqttPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Publisher mirrors cycle results to MQTT as retained messages.
type Publisher struct {
	client       mqttPublisher
	disconnect   func()
	topicReading string
	topicStatus  string
	status       func() string
	log          *slog.Logger
}

// ConnectPublisher connects to cfg.MQTTBroker. status supplies the status
// text published alongside each result.
func ConnectPublisher(cfg *config.Config, status func() string, logger *slog.Logger) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDStation).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	logger.Info("connected to MQTT broker", "component", "mqtt", "broker", cfg.MQTTBroker)

	p := newPublisher(client, cfg.TopicReading, cfg.TopicStatus, status, logger)
	p.disconnect = func() { client.Disconnect(250) }
	return p, nil
}

func newPublisher(client mqttPublisher, topicReading, topicStatus string, status func() string, logger *slog.Logger) *Publisher {
	return &Publisher{
		client:       client,
		topicReading: topicReading,
		topicStatus:  topicStatus,
		status:       status,
		log:          logger.With("component", "mqtt"),
	}
}

// Observe publishes the reading of a successful cycle and the status of
// every cycle. Publish failures are logged.
func (p *Publisher) Observe(res acquisition.Result) {
	msg := StatusMessage{
		OK:   res.Err == nil,
		Time: float64(res.Started.UnixNano()) / float64(time.Second),
	}
	if p.status != nil {
		msg.Status = p.status()
	}
	if res.Err != nil {
		msg.ErrorKind = acquisition.ErrorKind(res.Err)
		msg.Error = res.Err.Error()
	} else {
		msg.Device = res.Device.String()
		p.publish(p.topicReading, res.Reading)
	}
	if p.topicStatus != "" {
		p.publish(p.topicStatus, msg)
	}
}

func (p *Publisher) publish(topic string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		p.log.Error("json marshal error", "topic", topic, "error", err)
		return
	}
	token := p.client.Publish(topic, 0, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		p.log.Warn("MQTT publish timed out", "topic", topic)
		return
	}
	if err := token.Error(); err != nil {
		p.log.Warn("MQTT publish error", "topic", topic, "error", err)
	}
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.disconnect != nil {
		p.disconnect()
	}
}
