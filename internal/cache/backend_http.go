package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// HTTPBackend talks to an archive server over GET/PUT with optional
// basic auth, per §4.6's http backend kind.
type HTTPBackend struct {
	NameTag  string
	BaseURL  string
	Username string
	Password string
	Client   *http.Client
}

func (h *HTTPBackend) Name() string { return h.NameTag }

func (h *HTTPBackend) client() *http.Client {
	if h.Client != nil {
		return h.Client
	}
	return http.DefaultClient
}

func (h *HTTPBackend) url(key string) string { return h.BaseURL + "/" + key }

func (h *HTTPBackend) do(ctx context.Context, method, key string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, h.url(key), body)
	if err != nil {
		return nil, err
	}
	if h.Username != "" {
		req.SetBasicAuth(h.Username, h.Password)
	}
	return h.client().Do(req)
}

func (h *HTTPBackend) Lookup(ctx context.Context, key string) (bool, error) {
	resp, err := h.do(ctx, http.MethodHead, key, nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func (h *HTTPBackend) Download(ctx context.Context, key string, w io.Writer) error {
	resp, err := h.do(ctx, http.MethodGet, key, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", h.url(key), resp.Status)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

func (h *HTTPBackend) Upload(ctx context.Context, key string, r io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, h.url(key), r)
	if err != nil {
		return err
	}
	req.ContentLength = size
	if h.Username != "" {
		req.SetBasicAuth(h.Username, h.Password)
	}
	resp, err := h.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("PUT %s: %s", h.url(key), resp.Status)
	}
	return nil
}

// Scan is unsupported for an http backend — there is no standard
// directory-listing contract over plain GET/PUT, so the index cache
// must be populated from local scans or other backends.
func (h *HTTPBackend) Scan(ctx context.Context) ([]string, error) {
	return nil, errors.New("http backend does not support scan")
}

func (h *HTTPBackend) Clean(ctx context.Context, keys []string) error {
	for _, k := range keys {
		resp, err := h.do(ctx, http.MethodDelete, k, nil)
		if err != nil {
			return err
		}
		resp.Body.Close()
	}
	return nil
}
