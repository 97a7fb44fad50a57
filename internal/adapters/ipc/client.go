package ipc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"strings"

	"go.trai.ch/respawn/internal/core/domain"
	"go.trai.ch/respawn/internal/core/ports"
	"go.trai.ch/zerr"
)

// baseURL is a placeholder host; every request is dialed on the unix socket.
const baseURL = "http://respawn"

var _ ports.LeaderClient = (*Client)(nil)

// Client implements ports.LeaderClient over the leader's unix socket.
type Client struct {
	socketPath string
	http       *http.Client
}

// Dial creates a client for the leader listening at socketPath. The connection is
// made lazily on the first call.
func Dial(socketPath string) (*Client, error) {
	if _, err := os.Stat(socketPath); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrLeaderUnavailable.Error()), "socket", socketPath)
	}

	var dialer net.Dialer
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			return dialer.DialContext(ctx, "unix", socketPath)
		},
	}
	return &Client{
		socketPath: socketPath,
		http:       &http.Client{Transport: transport},
	}, nil
}

// Compile implements ports.LeaderClient.
func (c *Client) Compile(ctx context.Context, file string) (domain.DestinationMap, error) {
	var resp CompileResponse
	if err := c.post(ctx, CompilePath, "text/plain", strings.NewReader(file), &resp); err != nil {
		return nil, zerr.With(err, "file", file)
	}
	if resp.Filenames == nil {
		resp.Filenames = domain.DestinationMap{}
	}
	return resp.Filenames, nil
}

// FileRequired implements ports.LeaderClient.
func (c *Client) FileRequired(ctx context.Context, paths []string) error {
	body, err := json.Marshal(paths)
	if err != nil {
		return zerr.Wrap(err, "failed to encode paths")
	}
	var resp StatusResponse
	return c.post(ctx, FileRequiredPath, "application/json", bytes.NewReader(body), &resp)
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+path, body)
	if err != nil {
		return zerr.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrLeaderUnavailable.Error()), "socket", c.socketPath)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return zerr.Wrap(err, domain.ErrLeaderRequestFailed.Error())
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(data))
		var e ErrorResponse
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		err := zerr.With(domain.ErrLeaderRequestFailed, "status", resp.StatusCode)
		return zerr.With(err, "reason", msg)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return zerr.Wrap(err, "failed to decode leader response")
	}
	return nil
}
