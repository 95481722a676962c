package ingestcli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/pitchtrack/internal/domain/model"
	"github.com/okian/pitchtrack/internal/domain/types"
	"github.com/okian/pitchtrack/pkg/logger"
)

// HTTPClient talks to a running pitchtrack server.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client for baseURL with a request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// apiError mirrors the server's error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Health checks /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer closeBody(resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health check returned %d", ErrStatus, resp.StatusCode)
	}
	return nil
}

// Ingest uploads files as one multipart batch.
func (c *HTTPClient) Ingest(ctx context.Context, files []model.RawFile) (types.IngestResult, error) {
	var (
		out  types.IngestResult
		body bytes.Buffer
	)
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.Name)
		if err != nil {
			return out, fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return out, fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return out, fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ingest", &body)
	if err != nil {
		return out, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	err = c.do(req, &out)
	return out, err
}

// Publish asks the server to publish the artifacts of key.
func (c *HTTPClient) Publish(ctx context.Context, key string) (types.PublishResult, error) {
	var out types.PublishResult
	u := c.baseURL + "/subjects/" + url.PathEscape(key) + "/publish"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, http.NoBody)
	if err != nil {
		return out, fmt.Errorf("failed to create request: %w", err)
	}
	err = c.do(req, &out)
	return out, err
}

func (c *HTTPClient) do(req *http.Request, v any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer closeBody(resp)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e apiError
		if json.Unmarshal(data, &e) == nil && e.Message != "" {
			return fmt.Errorf("%w: %s %s: %d %s: %s", ErrStatus, req.Method, req.URL.Path, resp.StatusCode, e.Code, e.Message)
		}
		return fmt.Errorf("%w: %s %s: %d", ErrStatus, req.Method, req.URL.Path, resp.StatusCode)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
	}
}
