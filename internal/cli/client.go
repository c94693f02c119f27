package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/haskel/pitwall/internal/server"
)

// Client is an HTTP client for the pitwall API
type Client struct {
	baseURL  string
	client   *http.Client
	user     string
	password string
}

// NewClient creates a client for the server named by the global flags.
func NewClient() *Client {
	return newClient(GetServerURL(), user, password)
}

func newClient(baseURL, user, password string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		user:     user,
		password: password,
	}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status int
	server.ErrorResponse
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server returned status %d", e.Status)
	}
	return fmt.Sprintf("%s (%s, status %d)", e.ErrorResponse.Error, e.Code, e.Status)
}

// Get performs a GET request
func (c *Client) Get(path string) ([]byte, int, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, err
	}

	return c.do(req)
}

// Post performs a POST request with JSON body
func (c *Client) Post(path string, body any) ([]byte, int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, 0, err
		}
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	if c.user != "" && c.password != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	return data, resp.StatusCode, nil
}

// Call sends a request and decodes a 2xx answer into out. A nil body
// means GET. The raw answer is returned for --json output.
func (c *Client) Call(path string, body, out any) ([]byte, error) {
	var (
		data   []byte
		status int
		err    error
	)
	if body == nil {
		data, status, err = c.Get(path)
	} else {
		data, status, err = c.Post(path, body)
	}
	if err != nil {
		return nil, err
	}

	if status < 200 || status > 299 {
		apiErr := &APIError{Status: status}
		_ = json.Unmarshal(data, &apiErr.ErrorResponse)
		return data, apiErr
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return data, fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return data, nil
}

// Health checks if server is running
func (c *Client) Health() error {
	_, status, err := c.Get("/health")
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("server returned status %d", status)
	}
	return nil
}

func circuitPath(circuit, action string) string {
	p := "/v1/circuits/" + url.PathEscape(circuit)
	if action != "" {
		p += "/" + action
	}
	return p
}
