package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds a single inference call.
const DefaultTimeout = 30 * time.Second

// HTTPDetector posts images to an inference service that answers with
// {"detections":[{"x1":..,"y1":..,"x2":..,"y2":..,"class":..,"confidence":..}]}.
type HTTPDetector struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewHTTPDetector returns a detector for the given predict endpoint. A nil
// client gets one with DefaultTimeout.
func NewHTTPDetector(url string, client *http.Client, logger *slog.Logger) *HTTPDetector {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPDetector{url: strings.TrimRight(url, "/"), client: client, logger: logger}
}

// Detect uploads the image file as multipart field "file" together with the
// confidence threshold.
func (d *HTTPDetector) Detect(ctx context.Context, req Request) ([]Detection, error) {
	data, err := os.ReadFile(req.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(req.ImagePath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("copy image data: %w", err)
	}
	if err := writer.WriteField("confidence", strconv.FormatFloat(req.Confidence, 'f', -1, 64)); err != nil {
		return nil, fmt.Errorf("write confidence: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Detections []Detection `json:"detections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if d.logger != nil {
		d.logger.Debug("inference done", "image", filepath.Base(req.ImagePath), "detections", len(result.Detections), "took", time.Since(start))
	}
	return result.Detections, nil
}

// CheckHealth queries <url>/health.
func (d *HTTPDetector) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("detector unhealthy: %d", resp.StatusCode)
	}
	return nil
}
