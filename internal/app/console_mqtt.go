package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/air_monitor/internal/config"
	"github.com/relabs-tech/air_monitor/internal/env"
)

// RunConsoleMQTT prints readings and status messages published by a
// station until ctx is cancelled.
func RunConsoleMQTT(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	if cfg.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is not configured")
	}
	log := logger.With("component", "console")

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Info("connected to MQTT broker", "broker", cfg.MQTTBroker)

	readingToken := client.Subscribe(cfg.TopicReading, 0, func(_ mqtt.Client, msg mqtt.Message) {
		line, err := formatReadingMessage(msg.Payload())
		if err != nil {
			log.Warn("reading unmarshal error", "error", err)
			return
		}
		fmt.Fprintln(out, line)
	})
	readingToken.Wait()
	if readingToken.Error() != nil {
		return readingToken.Error()
	}
	log.Info("subscribed", "topic", cfg.TopicReading)

	if cfg.TopicStatus != "" {
		statusToken := client.Subscribe(cfg.TopicStatus, 0, func(_ mqtt.Client, msg mqtt.Message) {
			line, err := formatStatusMessage(msg.Payload())
			if err != nil {
				log.Warn("status unmarshal error", "error", err)
				return
			}
			fmt.Fprintln(out, line)
		})
		statusToken.Wait()
		if statusToken.Error() != nil {
			return statusToken.Error()
		}
		log.Info("subscribed", "topic", cfg.TopicStatus)
	}

	<-ctx.Done()
	log.Info("shutting down")
	return nil
}

func formatReadingMessage(payload []byte) (string, error) {
	var r env.Reading
	if err := json.Unmarshal(payload, &r); err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"[AIR ]  %s  T=%5.1f°C  RH=%5.1f%%  PM1=%5.1f PM2.5=%5.1f PM4=%5.1f PM10=%5.1f  VOC=%5.1f NOx=%5.1f",
		stampString(r.Timestamp), r.Temperature, r.Humidity, r.PM1, r.PM25, r.PM4, r.PM10, r.VOC, r.NOx,
	), nil
}

func formatStatusMessage(payload []byte) (string, error) {
	var m StatusMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return "", err
	}
	if !m.OK {
		return fmt.Sprintf("[STAT]  %s  cycle failed (%s): %s", stampString(m.Time), m.ErrorKind, m.Error), nil
	}
	return fmt.Sprintf("[STAT]  %s  ok device=%s", stampString(m.Time), m.Device), nil
}

func stampString(sec float64) string {
	return time.Unix(0, int64(sec*float64(time.Second))).UTC().Format(time.RFC3339)
}
