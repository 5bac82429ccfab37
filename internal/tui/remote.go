package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"grimm.is/rampart/internal/brand"
	"grimm.is/rampart/internal/model"
	"grimm.is/rampart/internal/store"
)

// RemoteBackend implements Backend using the HTTP API
type RemoteBackend struct {
	BaseURL string
	Client  *http.Client
}

// NewRemoteBackend creates a new remote backend
func NewRemoteBackend(baseURL string) *RemoteBackend {
	return &RemoteBackend{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// do sends body as JSON and decodes a successful answer into out.
func (b *RemoteBackend) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.BaseURL+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", brand.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return errors.New(e.Error)
		}
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (b *RemoteBackend) Snapshot(ctx context.Context) (store.State, uint64, error) {
	var resp struct {
		Version uint64      `json:"version"`
		State   store.State `json:"state"`
	}
	if err := b.do(ctx, http.MethodGet, "/api/state", nil, &resp); err != nil {
		return store.State{}, 0, err
	}
	return resp.State, resp.Version, nil
}

func (b *RemoteBackend) Fetch(ctx context.Context, kind model.Kind) error {
	if kind == model.KindSystem {
		if err := b.do(ctx, http.MethodPost, "/api/system/info/fetch", nil, nil); err != nil {
			return err
		}
		return b.do(ctx, http.MethodPost, "/api/system/updates/fetch", nil, nil)
	}
	return b.do(ctx, http.MethodPost, "/api/"+string(kind)+"/fetch", nil, nil)
}

func (b *RemoteBackend) Toggle(ctx context.Context, kind model.Kind, id string, enabled bool) error {
	path := fmt.Sprintf("/api/%s/%s/toggle", kind, url.PathEscape(id))
	return b.do(ctx, http.MethodPatch, path, map[string]bool{"enabled": enabled}, nil)
}

func (b *RemoteBackend) Delete(ctx context.Context, kind model.Kind, id string) error {
	return b.do(ctx, http.MethodDelete, fmt.Sprintf("/api/%s/%s", kind, url.PathEscape(id)), nil, nil)
}

func (b *RemoteBackend) CreateRule(ctx context.Context, rule model.FirewallRule) error {
	return b.do(ctx, http.MethodPost, "/api/firewall", rule, nil)
}

func (b *RemoteBackend) InstallUpdate(ctx context.Context, id string) error {
	return b.do(ctx, http.MethodPost, "/api/system/updates/"+url.PathEscape(id)+"/install", nil, nil)
}
