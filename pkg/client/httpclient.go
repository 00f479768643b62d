package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "ordernorm"

// JSONClient is a thin HTTP client for the JSON APIs documents are pushed
// to. Response bodies are read fully; callers inspect the status themselves.
type JSONClient struct {
	baseURL string
	http    *http.Client
	headers http.Header
}

func NewJSONClient(baseURL string, timeout time.Duration) *JSONClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &JSONClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		headers: http.Header{"User-Agent": {userAgent}},
	}
}

// SetHeader adds a header sent with every request.
func (c *JSONClient) SetHeader(key, value string) {
	c.headers.Set(key, value)
}

type Response struct {
	*http.Response
	Body []byte
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

func (c *JSONClient) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post encodes body with encoding/json.
func (c *JSONClient) Post(ctx context.Context, path string, body any) (*Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return c.Do(ctx, http.MethodPost, path, raw)
}

// Do sends body as is; a nil body sends no Content-Type.
func (c *JSONClient) Do(ctx context.Context, method, path string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}
	return &Response{Response: resp, Body: data}, nil
}

// ErrorMessage is the most specific message an error body offers, or the
// raw body when it is not the usual JSON shape.
func ErrorMessage(resp *Response) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Code    string `json:"code"`
	}
	if err := resp.DecodeJSON(&body); err == nil {
		for _, s := range []string{body.Message, body.Error, body.Code} {
			if s != "" {
				return s
			}
		}
	}
	return string(resp.Body)
}
