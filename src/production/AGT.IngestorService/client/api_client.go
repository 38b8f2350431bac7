package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// APIClient handles communication with the API Service's internal
// ingestion endpoints.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	apiSecret  string
	circuit    *gobreaker.CircuitBreaker
	maxRetries int
	retryDelay time.Duration
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL, apiSecret string) *APIClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "api-service",
		MaxRequests: 3,
		Interval:    1 * time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &APIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiSecret:  apiSecret,
		circuit:    cb,
		maxRetries: 3,
		retryDelay: 1 * time.Second,
	}
}

// ValidateSensorRequest represents the request to validate a sensor
type ValidateSensorRequest struct {
	SensorID string `json:"sensor_id"`
}

// ValidateSensorResponse represents the response from sensor validation
type ValidateSensorResponse struct {
	Exists bool   `json:"exists"`
	FarmID string `json:"farm_id,omitempty"`
	Error  string `json:"error,omitempty"`
}

// IngestReading is one reading in a batch post
type IngestReading struct {
	SensorID     string   `json:"sensor_id"`
	Ts           string   `json:"ts"`
	SoilMoisture *float64 `json:"soil_moisture,omitempty"`
	TempC        *float64 `json:"temp_c,omitempty"`
}

// CreateReadingsRequest represents a batch of readings
type CreateReadingsRequest struct {
	Readings []IngestReading `json:"readings"`
}

// CreateReadingsResponse represents the response from reading creation
type CreateReadingsResponse struct {
	Accepted int    `json:"accepted"`
	Rejected int    `json:"rejected"`
	Error    string `json:"error,omitempty"`
}

// retryWithBackoff executes a function with exponential backoff. The
// circuit breaker wraps each attempt; an open circuit fails fast
// without burning attempts.
func (c *APIClient) retryWithBackoff(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		_, err := c.circuit.Execute(func() (interface{}, error) {
			return nil, operation()
		})
		if err == nil {
			return nil
		}
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return fmt.Errorf("circuit breaker is open: %w", err)
		}

		lastErr = err
		if attempt == c.maxRetries {
			break
		}

		delay := time.Duration(float64(c.retryDelay) * math.Pow(2, float64(attempt)))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

// ValidateSensor checks if a sensor exists in the API Service
func (c *APIClient) ValidateSensor(ctx context.Context, sensorID string) (bool, error) {
	var exists bool

	err := c.retryWithBackoff(ctx, func() error {
		resp, err := c.makeRequest(ctx, http.MethodPost, "/internal/validate-sensor", ValidateSensorRequest{SensorID: sensorID})
		if err != nil {
			return fmt.Errorf("failed to validate sensor: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status validating sensor: %d", resp.StatusCode)
		}

		var result ValidateSensorResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("failed to decode validation response: %w", err)
		}
		exists = result.Exists
		return nil
	})

	return exists, err
}

// CreateReadings posts a batch of readings to the API Service
func (c *APIClient) CreateReadings(ctx context.Context, readings []IngestReading) (*CreateReadingsResponse, error) {
	var result CreateReadingsResponse

	err := c.retryWithBackoff(ctx, func() error {
		resp, err := c.makeRequest(ctx, http.MethodPost, "/internal/readings", CreateReadingsRequest{Readings: readings})
		if err != nil {
			return fmt.Errorf("failed to create readings: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("unexpected status creating readings: %d: %s", resp.StatusCode, string(body))
		}

		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("failed to decode create response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Health checks the API Service liveness endpoint
func (c *APIClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health/live", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

// GetCircuitBreakerStatus returns the current breaker state for health
// reporting
func (c *APIClient) GetCircuitBreakerStatus() map[string]interface{} {
	counts := c.circuit.Counts()
	return map[string]interface{}{
		"state":         c.circuit.State().String(),
		"failure_count": counts.ConsecutiveFailures,
	}
}

func (c *APIClient) makeRequest(ctx context.Context, method, path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiSecret)

	return c.httpClient.Do(req)
}
