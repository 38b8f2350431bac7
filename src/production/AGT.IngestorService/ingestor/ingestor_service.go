package agtingestor

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	config "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Config"
	"gitlab.com/agrisense1/agt.farm_server/src/production/AGT.IngestorService/client"
	logger "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Logger"
	hardware_models "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models/hardware"
)

type Ingestor struct {
	cfg        *config.IngestorConfig
	apiClient  *client.APIClient
	mqttClient mqtt.Client
	msgCh      chan hardware_models.ReadingWithTopic
	wg         sync.WaitGroup
	logger     *logger.Logger
}

func New(cfg *config.IngestorConfig, apiClient *client.APIClient, logger *logger.Logger) *Ingestor {
	return &Ingestor{
		cfg:       cfg,
		apiClient: apiClient,
		msgCh:     make(chan hardware_models.ReadingWithTopic, 4096),
		logger:    logger,
	}
}

func (i *Ingestor) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(i.brokerURL()).
		SetClientID(i.cfg.MQTT.ClientID).
		SetOrderMatters(false).
		SetKeepAlive(i.cfg.MQTT.KeepAlive).
		SetPingTimeout(i.cfg.MQTT.PingTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetCleanSession(false)

	if i.cfg.MQTT.BrokerUser != "" {
		opts.SetUsername(i.cfg.MQTT.BrokerUser)
		opts.SetPassword(i.cfg.MQTT.BrokerPass)
	}

	if i.cfg.MQTT.UseTLS {
		tlsCfg, err := i.tlsConfig(i.cfg.MQTT.CACertPath)
		if err != nil {
			return err
		}
		opts.SetTLSConfig(tlsCfg)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		i.logger.Logger.Error().Err(err).Msg("MQTT connection lost")
	}
	opts.OnConnect = func(c mqtt.Client) {
		topic := i.cfg.MQTT.Topic
		if i.cfg.MQTT.SharedGroup != "" {
			topic = fmt.Sprintf("$share/%s/%s", i.cfg.MQTT.SharedGroup, i.cfg.MQTT.Topic)
		}
		i.logger.Logger.Info().Str("topic", topic).Msg("MQTT connected, subscribing to topic")
		if token := c.Subscribe(topic, 1, i.onMessage); token.Wait() && token.Error() != nil {
			i.logger.Logger.Error().Err(token.Error()).Str("topic", topic).Msg("Failed to subscribe to MQTT topic")
		}
	}

	i.mqttClient = mqtt.NewClient(opts)
	if tk := i.mqttClient.Connect(); tk.Wait() && tk.Error() != nil {
		return tk.Error()
	}

	// batch writer
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		i.batchWriter(ctx)
	}()

	return nil
}

func (i *Ingestor) Stop() {
	if i.mqttClient != nil && i.mqttClient.IsConnected() {
		i.mqttClient.Disconnect(500)
	}
	close(i.msgCh)
	i.wg.Wait()
}

func (i *Ingestor) IsConnected() bool {
	return i.mqttClient != nil && i.mqttClient.IsConnected()
}

func (i *Ingestor) onMessage(_ mqtt.Client, m mqtt.Message) {
	i.logger.Logger.Debug().Str("topic", m.Topic()).Str("payload", string(m.Payload())).Msg("Received MQTT message")

	var payload map[string]interface{}
	if err := json.Unmarshal(m.Payload(), &payload); err != nil {
		payload = map[string]interface{}{"raw": string(m.Payload())}
	}

	// Parse topic to extract farm_id and sensor_id
	// Expected format: farms/<farm_id>/sensors/<sensor_id>/readings
	parts := strings.Split(m.Topic(), "/")
	if len(parts) < 5 || parts[0] != "farms" || parts[2] != "sensors" {
		i.logger.Logger.Warn().Str("topic", m.Topic()).Str("expected", "farms/<farm_id>/sensors/<sensor_id>/readings").Msg("Invalid topic format")
		farmID := "unknown"
		sensorID := "unknown"
		if len(parts) >= 2 {
			farmID = parts[1]
		}
		if len(parts) >= 4 {
			sensorID = parts[3]
		}
		i.publishError(farmID, sensorID, "invalid_topic", fmt.Sprintf("Invalid topic format: %s, expected: farms/<farm_id>/sensors/<sensor_id>/readings", m.Topic()))
		return
	}

	farmID := parts[1]
	sensorID := parts[3]

	reading := hardware_models.ReadingWithTopic{
		FarmID:     farmID,
		SensorID:   sensorID,
		Topic:      m.Topic(),
		Payload:    payload,
		ReceivedAt: time.Now().UTC(),
	}

	i.logger.Logger.Debug().Str("farm_id", farmID).Str("sensor_id", sensorID).Msg("Queuing reading")
	i.msgCh <- reading
}

func (i *Ingestor) batchWriter(ctx context.Context) {
	batch := make([]hardware_models.ReadingWithTopic, 0, i.cfg.BatchSize)
	timer := time.NewTimer(i.cfg.BatchWindow)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		i.logger.Logger.Info().Int("batch_size", len(batch)).Msg("Flushing batch to API Service")

		readings := make([]client.IngestReading, 0, len(batch))
		for _, queued := range batch {
			reading, err := i.toIngestReading(queued)
			if err != nil {
				i.logger.Logger.Warn().Err(err).Str("sensor_id", queued.SensorID).Msg("Dropping malformed reading")
				i.publishError(queued.FarmID, queued.SensorID, "invalid_payload", err.Error())
				continue
			}
			readings = append(readings, reading)
		}

		if len(readings) > 0 {
			result, err := i.apiClient.CreateReadings(ctx, readings)
			if err != nil {
				i.logger.Logger.Error().Err(err).Int("count", len(readings)).Msg("Error creating readings via API")
			} else {
				i.logger.Logger.Info().Int("accepted", result.Accepted).Int("rejected", result.Rejected).Msg("Batch processed")
				if result.Rejected > 0 {
					i.reportUnknownSensors(ctx, batch)
				}
			}
		}

		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case rd, ok := <-i.msgCh:
			if !ok {
				flush()
				return
			}
			batch = append(batch, rd)
			if len(batch) >= i.cfg.BatchSize {
				flush()
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(i.cfg.BatchWindow)
			}
		case <-timer.C:
			flush()
			timer.Reset(i.cfg.BatchWindow)
		}
	}
}

// reportUnknownSensors checks each distinct sensor in a batch that had
// rejections and publishes feedback for the ones the registry does not
// know, so misprovisioned devices can be spotted in the field.
func (i *Ingestor) reportUnknownSensors(ctx context.Context, batch []hardware_models.ReadingWithTopic) {
	checked := map[string]bool{}
	for _, queued := range batch {
		if checked[queued.SensorID] {
			continue
		}
		checked[queued.SensorID] = true

		exists, err := i.apiClient.ValidateSensor(ctx, queued.SensorID)
		if err != nil {
			i.logger.Logger.Warn().Err(err).Str("sensor_id", queued.SensorID).Msg("Sensor validation failed")
			continue
		}
		if !exists {
			i.publishError(queued.FarmID, queued.SensorID, "sensor_not_found", fmt.Sprintf("Sensor %s is not registered", queued.SensorID))
		}
	}
}

// toIngestReading maps a raw payload onto the internal API shape.
// Timestamp falls back to receipt time when the device omits it.
func (i *Ingestor) toIngestReading(queued hardware_models.ReadingWithTopic) (client.IngestReading, error) {
	reading := client.IngestReading{
		SensorID: queued.SensorID,
		Ts:       queued.ReceivedAt.Format(time.RFC3339),
	}

	if raw, ok := queued.Payload["timestamp"].(string); ok {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			reading.Ts = ts.UTC().Format(time.RFC3339)
		}
	}

	reading.SoilMoisture = payloadNumber(queued.Payload, "soil_moisture", "soilMoisture", "moisture")
	reading.TempC = payloadNumber(queued.Payload, "temp_c", "tempC", "temperature")

	if reading.SoilMoisture == nil && reading.TempC == nil {
		return client.IngestReading{}, fmt.Errorf("payload carries no numeric fields")
	}
	return reading, nil
}

func payloadNumber(payload map[string]interface{}, keys ...string) *float64 {
	for _, key := range keys {
		if v, ok := payload[key]; ok {
			if n, ok := v.(float64); ok {
				return &n
			}
		}
	}
	return nil
}

func (i *Ingestor) brokerURL() string {
	scheme := "tcp"
	if i.cfg.MQTT.UseTLS {
		scheme = "tcps"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, i.cfg.MQTT.BrokerHost, i.cfg.MQTT.BrokerPort)
}

func (i *Ingestor) tlsConfig(caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}
	ca, err := os.ReadFile(caFile)
	if err != nil {
		return nil, err
	}
	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("bad CA file")
	}
	cfg.RootCAs = cp
	return cfg, nil
}

// publishError publishes an error message to the error topic so field
// devices get feedback on rejected data
func (i *Ingestor) publishError(farmID, sensorID, errorType, message string) {
	if i.mqttClient == nil || !i.mqttClient.IsConnected() {
		return
	}

	errorPayload := map[string]interface{}{
		"error_type": errorType,
		"message":    message,
		"farm_id":    farmID,
		"sensor_id":  sensorID,
		"timestamp":  time.Now().UTC(),
	}

	payloadJSON, err := json.Marshal(errorPayload)
	if err != nil {
		i.logger.Logger.Error().Err(err).Msg("Failed to marshal error payload")
		return
	}

	errorTopic := fmt.Sprintf("ingestor/errors/%s/%s", farmID, sensorID)
	token := i.mqttClient.Publish(errorTopic, 1, false, payloadJSON)

	if token.Wait() && token.Error() != nil {
		i.logger.Logger.Error().Err(token.Error()).Str("topic", errorTopic).Msg("Failed to publish error")
	}
}
