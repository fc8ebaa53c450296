package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// apiClient talks to a running redistoon server.
type apiClient struct {
	base string
	hc   *http.Client
}

func newAPIClient(serverURL string) *apiClient {
	return &apiClient{
		base: strings.TrimRight(serverURL, "/"),
		hc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// documentReply mirrors the server's document response payload.
type documentReply struct {
	Key      string `json:"key"`
	Revision string `json:"revision"`
	Body     string `json:"body"`
}

// documentInfo mirrors one entry of the server's document listing.
type documentInfo struct {
	Key       string    `json:"key"`
	Revision  string    `json:"revision"`
	UpdatedAt time.Time `json:"updated_at"`
	Tokens    int       `json:"tokens"`
}

func (c *apiClient) do(ctx context.Context, method, path string, query url.Values, body io.Reader) ([]byte, int, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, 0, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("cannot reach server at %s: %w (is 'redistoon serve' running?)", c.base, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if resp.StatusCode >= 400 {
		return nil, resp.StatusCode, apiError(resp.StatusCode, data)
	}
	return data, resp.StatusCode, nil
}

// apiError extracts the server's error message from a failed response.
func apiError(status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return fmt.Errorf("%s", payload.Error)
	}
	return fmt.Errorf("server returned status %d", status)
}

func (c *apiClient) doJSON(ctx context.Context, method, path string, query url.Values, request, reply any) error {
	var body io.Reader
	if request != nil {
		payload, err := json.Marshal(request)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}
	data, _, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if reply == nil {
		return nil
	}
	if err := json.Unmarshal(data, reply); err != nil {
		return fmt.Errorf("unexpected server response: %w", err)
	}
	return nil
}

func documentPath(key string, parts ...string) string {
	p := "/v1/documents/" + url.PathEscape(key)
	if len(parts) > 0 {
		p += "/" + strings.Join(parts, "/")
	}
	return p
}

func pathQuery(path string) url.Values {
	q := url.Values{}
	if path != "" && path != "$" {
		q.Set("path", path)
	}
	return q
}

func (c *apiClient) getDocument(ctx context.Context, key, path string) (string, error) {
	data, _, err := c.do(ctx, http.MethodGet, documentPath(key), pathQuery(path), nil)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *apiClient) putDocument(ctx context.Context, key, body string) (*documentReply, error) {
	data, _, err := c.do(ctx, http.MethodPut, documentPath(key), nil, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	var reply documentReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, fmt.Errorf("unexpected server response: %w", err)
	}
	return &reply, nil
}

// deleteDocument deletes the whole document (empty path) or the value at
// path. The reply is nil when the whole document was removed.
func (c *apiClient) deleteDocument(ctx context.Context, key, path string) (*documentReply, error) {
	data, status, err := c.do(ctx, http.MethodDelete, documentPath(key), pathQuery(path), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		return nil, nil
	}
	var reply documentReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, fmt.Errorf("unexpected server response: %w", err)
	}
	return &reply, nil
}

func (c *apiClient) docType(ctx context.Context, key, path string) (string, error) {
	var reply struct {
		Type string `json:"type"`
	}
	if err := c.doJSON(ctx, http.MethodGet, documentPath(key, "type"), pathQuery(path), nil, &reply); err != nil {
		return "", err
	}
	return reply.Type, nil
}

func (c *apiClient) listDocuments(ctx context.Context) ([]documentInfo, error) {
	var reply struct {
		Documents []documentInfo `json:"documents"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/documents", nil, nil, &reply); err != nil {
		return nil, err
	}
	return reply.Documents, nil
}

func (c *apiClient) merge(ctx context.Context, key, body string) (*documentReply, error) {
	data, _, err := c.do(ctx, http.MethodPost, documentPath(key, "merge"), nil, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	var reply documentReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, fmt.Errorf("unexpected server response: %w", err)
	}
	return &reply, nil
}

func (c *apiClient) validate(ctx context.Context, key string) error {
	return c.doJSON(ctx, http.MethodPost, documentPath(key, "validate"), nil, nil, nil)
}

func (c *apiClient) setPath(ctx context.Context, key, path string, value json.RawMessage) (*documentReply, error) {
	request := map[string]any{"op": "set", "path": path, "value": value}
	var reply documentReply
	if err := c.doJSON(ctx, http.MethodPost, documentPath(key, "path"), nil, request, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *apiClient) tokenCounts(ctx context.Context, key string) (toonTokens, jsonTokens int, err error) {
	var reply struct {
		ToonTokens int `json:"toon_tokens"`
		JSONTokens int `json:"json_tokens"`
	}
	if err := c.doJSON(ctx, http.MethodGet, documentPath(key, "tokens"), nil, nil, &reply); err != nil {
		return 0, 0, err
	}
	return reply.ToonTokens, reply.JSONTokens, nil
}

type arrayReply struct {
	Key      string          `json:"key"`
	Revision string          `json:"revision"`
	Length   int             `json:"length"`
	Value    json.RawMessage `json:"value"`
	Body     string          `json:"body"`
}

func (c *apiClient) arrayAppend(ctx context.Context, key, path string, values []json.RawMessage) (*arrayReply, error) {
	request := map[string]any{"path": path, "values": values}
	var reply arrayReply
	if err := c.doJSON(ctx, http.MethodPost, documentPath(key, "array", "append"), nil, request, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *apiClient) arrayInsert(ctx context.Context, key, path string, index int, value json.RawMessage) (*documentReply, error) {
	request := map[string]any{"path": path, "index": index, "value": value}
	var reply documentReply
	if err := c.doJSON(ctx, http.MethodPost, documentPath(key, "array", "insert"), nil, request, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *apiClient) arrayPop(ctx context.Context, key, path string, index *int) (*arrayReply, error) {
	request := map[string]any{"path": path}
	if index != nil {
		request["index"] = *index
	}
	var reply arrayReply
	if err := c.doJSON(ctx, http.MethodPost, documentPath(key, "array", "pop"), nil, request, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *apiClient) arrayLength(ctx context.Context, key, path string) (int, error) {
	var reply struct {
		Length int `json:"length"`
	}
	if err := c.doJSON(ctx, http.MethodGet, documentPath(key, "array", "length"), pathQuery(path), nil, &reply); err != nil {
		return 0, err
	}
	return reply.Length, nil
}
