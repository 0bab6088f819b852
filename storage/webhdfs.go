package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WebHDFSBackend talks to an HDFS namenode over the WebHDFS REST API.
type WebHDFSBackend struct {
	baseURL string
	user    string
	root    string
	client  *http.Client
}

func NewWebHDFSBackend(baseURL, user, root string, timeout time.Duration) *WebHDFSBackend {
	return &WebHDFSBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		user:    user,
		root:    strings.Trim(root, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (b *WebHDFSBackend) endpoint(path, op string, extra url.Values) string {
	q := url.Values{}
	q.Set("op", op)
	if b.user != "" {
		q.Set("user.name", b.user)
	}
	for k, v := range extra {
		q[k] = v
	}
	full := strings.Trim(path, "/")
	if b.root != "" {
		full = b.root + "/" + full
	}
	return fmt.Sprintf("%s/webhdfs/v1/%s?%s", b.baseURL, full, q.Encode())
}

// Write creates or overwrites a file. The namenode answers with a redirect
// to a datanode, which the client follows with the same body.
func (b *WebHDFSBackend) Write(ctx context.Context, path string, data []byte) error {
	extra := url.Values{"overwrite": {"true"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, b.endpoint(path, "CREATE", extra), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhdfs create: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return remoteError("create", resp)
	}
	return nil
}

func (b *WebHDFSBackend) Read(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint(path, "OPEN", nil), nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhdfs open: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, remoteError("open", resp)
	}
	return io.ReadAll(resp.Body)
}

func (b *WebHDFSBackend) Remove(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, b.endpoint(path, "DELETE", nil), nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhdfs delete: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return remoteError("delete", resp)
	}

	var result struct {
		Boolean bool `json:"boolean"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("webhdfs delete: decode response: %w", err)
	}
	if !result.Boolean {
		return ErrNotFound
	}
	return nil
}

func remoteError(op string, resp *http.Response) error {
	var body struct {
		RemoteException struct {
			Exception string `json:"exception"`
			Message   string `json:"message"`
		} `json:"RemoteException"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &body) == nil && body.RemoteException.Message != "" {
		return fmt.Errorf("webhdfs %s: %s: %s", op, body.RemoteException.Exception, body.RemoteException.Message)
	}
	return fmt.Errorf("webhdfs %s: unexpected status %d", op, resp.StatusCode)
}
