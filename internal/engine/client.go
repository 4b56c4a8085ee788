// Package engine is the HTTP adapter for the external face verification
// engine. Raw responses are validated into typed results before callers see
// them.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	dErrors "faceguard/pkg/domain-errors"
)

const (
	DefaultBaseURL  = "http://localhost:5005"
	DefaultModel    = "Facenet512"
	DefaultDetector = "opencv"

	// maxResponseBytes bounds how much of an engine response is read.
	maxResponseBytes = 4 << 20
	// maxErrorBody bounds how much of a failed response is echoed in errors.
	maxErrorBody = 256
)

// Client calls the engine's /verify, /analyze and /detect endpoints.
type Client struct {
	baseURL  string
	model    string
	detector string
	timeout  time.Duration
	client   *http.Client
}

type Option func(*Client)

func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

func WithDetector(detector string) Option {
	return func(c *Client) {
		if detector != "" {
			c.detector = detector
		}
	}
}

// WithTimeout bounds each engine request. Zero leaves the HTTP client's own
// timeout in place. It applies regardless of where WithHTTPClient appears.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		model:    DefaultModel,
		detector: DefaultDetector,
		client:   &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.client
		hc.Timeout = c.timeout
		c.client = &hc
	}
	return c
}

// Model returns the recognition model requested from the engine.
func (c *Client) Model() string {
	return c.model
}

// Detector returns the detector backend requested from the engine.
func (c *Client) Detector() string {
	return c.detector
}

type formFile struct {
	field string
	data  []byte
}

// Verify compares two images.
func (c *Client) Verify(ctx context.Context, img1, img2 []byte) (Verification, error) {
	body, err := c.post(ctx, "/verify",
		[]formFile{{"img1", img1}, {"img2", img2}},
		map[string]string{
			"model_name":       c.model,
			"detector_backend": c.detector,
		},
	)
	if err != nil {
		return Verification{}, err
	}
	v, err := ParseVerification(body)
	if err != nil {
		return Verification{}, err
	}
	if v.Model == "" {
		v.Model = c.model
	}
	if v.DetectorBackend == "" {
		v.DetectorBackend = c.detector
	}
	return v, nil
}

// Analyze estimates age, gender and emotion for the first face in img.
func (c *Client) Analyze(ctx context.Context, img []byte) (Analysis, error) {
	body, err := c.post(ctx, "/analyze",
		[]formFile{{"img", img}},
		map[string]string{"detector_backend": c.detector},
	)
	if err != nil {
		return Analysis{}, err
	}
	return ParseAnalysis(body)
}

// DetectFaces returns faces found with at least minConfidence.
func (c *Client) DetectFaces(ctx context.Context, img []byte, minConfidence float64) ([]Face, error) {
	body, err := c.post(ctx, "/detect",
		[]formFile{{"img", img}},
		map[string]string{"min_confidence": strconv.FormatFloat(minConfidence, 'f', -1, 64)},
	)
	if err != nil {
		return nil, err
	}
	return ParseFaces(body)
}

// HasFace reports whether any detected face reaches minConfidence.
func (c *Client) HasFace(ctx context.Context, img []byte, minConfidence float64) (bool, error) {
	faces, err := c.DetectFaces(ctx, img, minConfidence)
	if err != nil {
		return false, err
	}
	for _, f := range faces {
		if f.Confidence >= minConfidence {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) post(ctx context.Context, endpoint string, files []formFile, fields map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="%s.img"`, f.field, f.field))
		h.Set("Content-Type", http.DetectContentType(f.data))
		part, err := writer.CreatePart(h)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create form file")
		}
		if _, err := part.Write(f.data); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to write image data")
		}
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to write form field")
		}
	}
	if err := writer.Close(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to close multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create engine request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeEngine, fmt.Sprintf("engine request to %s failed: %v", endpoint, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeEngine, "failed to read engine response")
	}
	if resp.StatusCode != http.StatusOK {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, dErrors.New(dErrors.CodeEngine, fmt.Sprintf("engine %s returned status %d: %s", endpoint, resp.StatusCode, snippet))
	}
	return body, nil
}
