// Package images provides a client for the photo background-removal
// service. Each product photo is downloaded from the catalog CDN, run
// through the service, and written to a locally served output directory so
// the marketplace can fetch the processed version by URL.
package images

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/relist/internal/common"
)

const (
	// DefaultTimeout mirrors the processing service's own request limit;
	// background removal on large photos is slow.
	DefaultTimeout = 120 * time.Second

	// maxDownloadBytes caps a single source photo download.
	maxDownloadBytes = 32 << 20
)

// Client calls the background-removal service.
type Client struct {
	baseURL    string
	background string
	outputDir  string
	publicBase string
	httpClient *http.Client
	logger     arbor.ILogger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates an image service client from configuration.
func NewClient(cfg common.ImagesConfig, logger arbor.ILogger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		background: cfg.Background,
		outputDir:  cfg.OutputDir,
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: common.ParseDurationOr(cfg.Timeout, DefaultTimeout),
		},
		logger: logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ProcessImage downloads the source photo, runs it through the
// background-removal service, writes the processed PNG into the output
// directory, and returns its public URL.
func (c *Client) ProcessImage(ctx context.Context, sourceURL string) (string, error) {
	source, err := c.download(ctx, sourceURL)
	if err != nil {
		return "", fmt.Errorf("failed to download source photo: %w", err)
	}

	processed, err := c.process(ctx, sourceURL, source)
	if err != nil {
		return "", err
	}

	name := uuid.New().String() + ".png"
	if err := os.MkdirAll(c.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create photo output dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(c.outputDir, name), processed, 0644); err != nil {
		return "", fmt.Errorf("failed to write processed photo: %w", err)
	}

	publicURL := c.publicBase + "/" + name
	c.logger.Debug().
		Str("source", sourceURL).
		Str("url", publicURL).
		Msg("Processed photo")

	return publicURL, nil
}

// Health probes the processing service.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("image service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image service unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) download(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
}

// process posts the photo to the service's /process endpoint as multipart
// form data and returns the processed PNG bytes.
func (c *Client) process(ctx context.Context, sourceURL string, image []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("image", filepath.Base(sourceURL))
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if c.background != "" {
		if err := writer.WriteField("background", c.background); err != nil {
			return nil, fmt.Errorf("failed to build multipart body: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("image service error: status %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
