package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sgpropdata/docpipe/internal/core/domain"
)

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrTemporary, "ollama "+operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return httpError(operation, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

// httpError tags 5xx responses as temporary so callers with retry policies
// can distinguish them from model or request errors.
func httpError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	msg := strings.TrimSpace(string(body))

	err := fmt.Errorf("ollama %s status: %s", operation, resp.Status)
	if msg != "" {
		err = fmt.Errorf("ollama %s status: %s: %s", operation, resp.Status, msg)
	}
	if resp.StatusCode >= 500 {
		return domain.WrapError(domain.ErrTemporary, "ollama "+operation, err)
	}
	return err
}
