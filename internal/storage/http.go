package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"
)

// HTTPSource proxies files hosted on other web servers.
type HTTPSource struct {
	client       *http.Client
	probeTimeout time.Duration
}

// NewHTTPSource bounds every fetch, body included, by fetchTimeout.
func NewHTTPSource(probeTimeout, fetchTimeout time.Duration) *HTTPSource {
	return &HTTPSource{
		client:       &http.Client{Timeout: fetchTimeout},
		probeTimeout: probeTimeout,
	}
}

func (s *HTTPSource) Stat(ctx context.Context, rawURL string) (*ObjectInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: bad url: %v", ErrUnavailable, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: probe failed: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: probe returned %d", ErrUnavailable, resp.StatusCode)
	}

	info := &ObjectInfo{
		Name:        remoteName(rawURL),
		Size:        resp.ContentLength,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if lm, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		info.ModTime = lm
	}

	return info, nil
}

func (s *HTTPSource) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: bad url: %v", ErrUnavailable, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch failed: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		slog.Warn("remote file fetch rejected", "url", rawURL, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: fetch returned %d", ErrUnavailable, resp.StatusCode)
	}

	return resp.Body, nil
}

func remoteName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		return ""
	}
	return name
}
