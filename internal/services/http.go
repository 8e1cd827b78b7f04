package services

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/m3ux/internal/shared"
	"golang.org/x/oauth2"
)

// NewHTTPClient returns base (or a client with the configured timeout) and,
// when a token is configured, wraps it so every request carries it as a
// bearer token.
func NewHTTPClient(cfg shared.HTTPConfig, base *http.Client) *http.Client {
	if base == nil {
		base = &http.Client{Timeout: cfg.Timeout()}
	}
	if cfg.Token == "" {
		return base
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.Token,
		TokenType:   "Bearer",
	}))
	client.Timeout = base.Timeout
	return client
}

// HTTPSource downloads a playlist with a GET request.
type HTTPSource struct {
	url       string
	userAgent string
	encoding  string
	storePath string
	headers   *shared.CurlHeaders
	client    *http.Client
	logger    *log.Logger
}

func NewHTTPSource(url string, opts Options) *HTTPSource {
	return &HTTPSource{
		url:       url,
		userAgent: opts.HTTP.UserAgent,
		encoding:  opts.Encoding,
		storePath: opts.StorePath,
		headers:   opts.Headers,
		client:    NewHTTPClient(opts.HTTP, opts.Client),
		logger:    opts.logger(),
	}
}

func (h *HTTPSource) Name() string { return h.url }

// Load fetches the playlist. Any status other than 200 fails with
// [shared.ErrDownload]. Headers parsed from a cURL command override the
// configured user agent.
func (h *HTTPSource) Load(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
	if h.headers != nil {
		h.headers.Apply(req)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", shared.ErrDownload, h.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		h.logger.Error("download failed", "url", h.url, "status", resp.StatusCode)
		return "", fmt.Errorf("%w: %s returned status %d", shared.ErrDownload, h.url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read body: %w", shared.ErrDownload, err)
	}

	text, err := Decode(data, h.encoding)
	if err != nil {
		return "", err
	}

	if h.storePath != "" {
		if err := store(h.storePath, text); err != nil {
			return "", err
		}
		h.logger.Debug("stored playlist", "path", h.storePath)
	}

	h.logger.Info("downloaded playlist", "url", h.url, "size", len(data))
	return text, nil
}
