package hardware_models

import "time"

// ReadingWithTopic pairs a raw payload with the MQTT topic it arrived
// on, queued between the MQTT callback and the batch writer.
type ReadingWithTopic struct {
	FarmID     string                 `json:"farm_id"`
	SensorID   string                 `json:"sensor_id"`
	Topic      string                 `json:"topic"`
	Payload    map[string]interface{} `json:"payload"`
	ReceivedAt time.Time              `json:"received_at"`
}
