// Package remote implements processor.Processor against the
// third-party service's HTTP surface: a multipart upload that answers
// with a download URL for the processed artifact. The service has no
// stable API, so the client tolerates several response shapes and
// retries transient failures with backoff; the overall call stays
// bounded by the caller's context deadline.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/djoldoshevv/Turniti/backoff"
	"github.com/djoldoshevv/Turniti/processor"
)

// Compile-time interface check.
var _ processor.Processor = (*Client)(nil)

// Client uploads documents to the remote service and downloads the
// processed artifact.
type Client struct {
	baseURL    string
	uploadPath string
	httpClient *http.Client
	workDir    string
	bo         backoff.Strategy
	attempts   int
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for upload and download.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Client) { r.httpClient = c }
}

// WithUploadPath sets the upload endpoint path (default "/upload").
func WithUploadPath(p string) Option {
	return func(r *Client) { r.uploadPath = p }
}

// WithBackoff sets the retry delay strategy for transient failures.
func WithBackoff(bo backoff.Strategy) Option {
	return func(r *Client) { r.bo = bo }
}

// WithAttempts sets how many times a transient failure is attempted
// before giving up (default 3).
func WithAttempts(n int) Option {
	return func(r *Client) {
		if n > 0 {
			r.attempts = n
		}
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Client) { r.logger = logger }
}

// New creates a Client for the given service base URL. Artifacts are
// downloaded into workDir.
func New(baseURL, workDir string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		uploadPath: "/upload",
		httpClient: &http.Client{},
		workDir:    workDir,
		bo:         backoff.Default(),
		attempts:   3,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Process uploads the file, waits for the service's answer, and
// downloads the processed artifact next to workDir. Transient failures
// (network errors, 5xx) are retried; 4xx responses and malformed
// answers are permanent.
func (c *Client) Process(ctx context.Context, filePath string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			delay := c.bo.Delay(attempt - 1)
			c.logger.Debug("retrying upload",
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", timeoutError(ctx.Err())
			}
		}

		artifact, err := c.processOnce(ctx, filePath)
		if err == nil {
			return artifact, nil
		}
		if ctx.Err() != nil {
			return "", timeoutError(ctx.Err())
		}

		var perr *processor.Error
		if errors.As(err, &perr) && perr.Reason != processor.ReasonUnavailable {
			// Permanent failure; retrying cannot help.
			return "", err
		}
		lastErr = err
	}

	return "", lastErr
}

func (c *Client) processOnce(ctx context.Context, filePath string) (string, error) {
	downloadURL, err := c.upload(ctx, filePath)
	if err != nil {
		return "", err
	}

	artifact := filepath.Join(c.workDir,
		fmt.Sprintf("processed_%d_%s", time.Now().UnixNano(), filepath.Base(filePath)))
	if err := c.download(ctx, downloadURL, artifact); err != nil {
		return "", err
	}
	return artifact, nil
}

// upload posts the file as multipart form data and extracts the
// artifact's download URL from the response.
func (c *Client) upload(ctx context.Context, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", &processor.Error{
			Reason:  processor.ReasonUnknown,
			Message: "could not open the submitted file",
			Err:     err,
		}
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, werr := mw.CreateFormFile("file", filepath.Base(filePath))
		if werr == nil {
			_, werr = io.Copy(part, f)
		}
		if cerr := mw.Close(); werr == nil {
			werr = cerr
		}
		pw.CloseWithError(werr)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.uploadPath, pr)
	if err != nil {
		return "", fmt.Errorf("remote: build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", unavailableError("upload failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", unavailableError("reading upload response failed", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return "", unavailableError(
			fmt.Sprintf("service returned %d", resp.StatusCode), nil)
	case resp.StatusCode >= 400:
		return "", &processor.Error{
			Reason:  processor.ReasonMalformed,
			Message: fmt.Sprintf("service rejected the document (%d)", resp.StatusCode),
		}
	}

	downloadURL, err := extractDownloadURL(body)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(downloadURL, "http") {
		downloadURL = c.baseURL + downloadURL
	}
	return downloadURL, nil
}

// extractDownloadURL finds the artifact URL in the upload response.
// The service answers inconsistently, so several field names and a raw
// URL body are all accepted.
func extractDownloadURL(body []byte) (string, error) {
	var payload struct {
		DownloadURL string `json:"downloadUrl"`
		URL         string `json:"url"`
		File        string `json:"file"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, candidate := range []string{payload.DownloadURL, payload.URL, payload.File} {
			if candidate != "" {
				return candidate, nil
			}
		}
	}

	if s := strings.TrimSpace(string(body)); strings.HasPrefix(s, "http") {
		return s, nil
	}

	return "", &processor.Error{
		Reason:  processor.ReasonMalformed,
		Message: "could not find a download URL in the service response",
	}
}

// download streams the artifact to destPath.
func (c *Client) download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("remote: build download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return unavailableError("artifact download failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unavailableError(
			fmt.Sprintf("artifact download returned %d", resp.StatusCode), nil)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("remote: create artifact file: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(destPath)
		return unavailableError("writing artifact failed", err)
	}
	return out.Close()
}

func unavailableError(msg string, err error) *processor.Error {
	return &processor.Error{
		Reason:  processor.ReasonUnavailable,
		Message: msg,
		Err:     err,
	}
}

func timeoutError(err error) *processor.Error {
	return &processor.Error{
		Reason:  processor.ReasonTimeout,
		Message: "processing timed out",
		Err:     err,
	}
}
