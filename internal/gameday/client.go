package gameday

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// DefaultTimeout — таймаут одного запроса.
const DefaultTimeout = 5 * time.Second

// Probe — результат одного HTTP запроса.
type Probe struct {
	URL        string  `json:"url"`
	StatusCode int     `json:"status_code,omitempty"`
	LatencyMS  float64 `json:"latency_ms"`
	Error      string  `json:"error,omitempty"`
	Success    bool    `json:"success"`

	body []byte
}

// Client — HTTP клиент, замеряющий латентность запросов.
type Client struct {
	httpClient *http.Client
}

// NewClient создаёт клиент с таймаутом timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Get выполняет GET запрос.
func (c *Client) Get(ctx context.Context, url string) Probe {
	return c.Do(ctx, http.MethodGet, url, nil)
}

// PostJSON выполняет POST с JSON телом.
func (c *Client) PostJSON(ctx context.Context, url string, body any) Probe {
	return c.Do(ctx, http.MethodPost, url, body)
}

// Do выполняет запрос и замеряет время. Ошибка транспорта или статус >= 400
// считаются неуспехом и попадают в Probe.Error.
func (c *Client) Do(ctx context.Context, method, url string, body any) Probe {
	start := time.Now()
	p := Probe{URL: url}

	resp, err := c.do(ctx, method, url, body)
	if err == nil {
		p.StatusCode = resp.StatusCode
		p.body, err = io.ReadAll(resp.Body)
		resp.Body.Close()
		if err == nil && resp.StatusCode >= http.StatusBadRequest {
			err = fmt.Errorf("%d %s for url %s", resp.StatusCode, http.StatusText(resp.StatusCode), url)
		}
	}

	p.LatencyMS = round2(millis(time.Since(start)))
	if err != nil {
		p.Error = err.Error()
		return p
	}
	p.Success = true
	return p
}

func (c *Client) do(ctx context.Context, method, url string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
