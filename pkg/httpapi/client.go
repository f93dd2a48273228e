package httpapi

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

	"src.devlab.sh/pkg/boxes"
	"src.devlab.sh/pkg/calc"
)

// ErrNotFound is returned by Client.Load when the server has no snapshot for
// the requested id.
var ErrNotFound = errors.New("snapshot not found")

// Client talks to a server running Handler.
type Client struct {
	base string
	reg  *boxes.Registry
	http *http.Client
}

// NewClient returns a Client for the server at baseURL, such as
// "http://localhost:8080". Loaded snapshots are completed against reg. If hc
// is nil, http.DefaultClient is used.
func NewClient(baseURL string, reg *boxes.Registry, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{strings.TrimSuffix(baseURL, "/"), reg, hc}
}

func (c *Client) url(sid string) string {
	return c.base + Path + "?id=" + url.QueryEscape(sid)
}

// Load fetches the snapshot stored under sid.
func (c *Client) Load(ctx context.Context, sid string) (calc.State, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(sid), nil)
	if err != nil {
		return calc.State{}, err
	}
	data, err := c.do(req)
	if err != nil {
		return calc.State{}, fmt.Errorf("load %s: %w", sid, err)
	}
	st, err := calc.DecodeSnapshot(c.reg, data)
	if err != nil {
		return calc.State{}, fmt.Errorf("load %s: %w", sid, err)
	}
	return st, nil
}

// Save stores st under sid.
func (c *Client) Save(ctx context.Context, sid string, st calc.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url(sid), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if _, err := c.do(req); err != nil {
		return fmt.Errorf("save %s: %w", sid, err)
	}
	return nil
}

// Delete forgets the snapshot stored under sid. Deleting a snapshot that
// doesn't exist is not an error.
func (c *Client) Delete(ctx context.Context, sid string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.url(sid), nil)
	if err != nil {
		return err
	}
	if _, err := c.do(req); err != nil {
		return fmt.Errorf("delete %s: %w", sid, err)
	}
	return nil
}

// List returns the ids of all stored snapshots, sorted.
func (c *Client) List(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+ListPath, nil)
	if err != nil {
		return nil, err
	}
	data, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	var list IDList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return list.IDs, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return data, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	}
	var body errorBody
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return nil, fmt.Errorf("%s: %s", resp.Status, body.Error)
	}
	return nil, errors.New(resp.Status)
}
