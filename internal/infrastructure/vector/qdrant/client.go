package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sgpropdata/docpipe/internal/core/domain"
)

// chunkIDNamespace derives point UUIDs from chunk ids. Re-ingesting the same
// document overwrites its points instead of duplicating them.
var chunkIDNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// Client stores and searches document chunks in a qdrant collection over its
// HTTP API.
type Client struct {
	baseURL    string
	collection string
	vectorSize int
	httpClient *http.Client

	ensureMu sync.Mutex
	ensured  bool
}

func New(baseURL, collection string, vectorSize int) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		vectorSize: vectorSize,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) UpsertChunks(ctx context.Context, chunks []domain.DocumentChunk, vectors [][]float32) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	if len(chunks) != len(vectors) {
		return 0, fmt.Errorf("chunks/vectors mismatch: %d vs %d", len(chunks), len(vectors))
	}

	size := c.vectorSize
	if size <= 0 {
		size = len(vectors[0])
	}
	if err := c.ensureCollection(ctx, size); err != nil {
		return 0, err
	}

	type point struct {
		ID      string         `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	points := make([]point, 0, len(chunks))
	for i, chunk := range chunks {
		payload := map[string]any{
			"chunk_id":      chunk.ChunkID,
			"document_name": chunk.DocumentName,
			"chunk_index":   chunk.ChunkIndex,
			"text":          chunk.ChunkText,
		}
		for k, v := range chunk.Metadata {
			payload[k] = v
		}
		points = append(points, point{
			ID:      uuid.NewSHA1(chunkIDNamespace, []byte(chunk.ChunkID)).String(),
			Vector:  vectors[i],
			Payload: payload,
		})
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, c.collection)
	if err := c.do(ctx, http.MethodPut, url, map[string]any{"points": points}, nil, "upsert"); err != nil {
		return 0, err
	}
	return len(points), nil
}

func (c *Client) Search(ctx context.Context, queryVector []float32, limit int, filter domain.ChunkFilter) ([]domain.SearchResult, error) {
	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        limit,
		"with_payload": true,
	}
	if filter.DocumentName != "" {
		reqBody["filter"] = map[string]any{
			"must": []map[string]any{
				{
					"key": "document_name",
					"match": map[string]any{
						"value": filter.DocumentName,
					},
				},
			},
		}
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection)
	if err := c.do(ctx, http.MethodPost, url, reqBody, &searchResp, "search"); err != nil {
		return nil, err
	}

	out := make([]domain.SearchResult, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, domain.SearchResult{
			ChunkID:      getStringPayload(r.Payload, "chunk_id"),
			DocumentName: getStringPayload(r.Payload, "document_name"),
			ChunkText:    getStringPayload(r.Payload, "text"),
			Score:        r.Score,
			Metadata:     r.Payload,
		})
	}
	return out, nil
}

// Count returns the exact number of points in the collection. A missing
// collection counts as empty.
func (c *Client) Count(ctx context.Context) (int, error) {
	var countResp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/count", c.baseURL, c.collection)
	err := c.do(ctx, http.MethodPost, url, map[string]any{"exact": true}, &countResp, "count")
	if err != nil {
		if strings.Contains(err.Error(), "404") {
			return 0, nil
		}
		return 0, err
	}
	return countResp.Result.Count, nil
}

// Reset drops the collection and recreates it empty so the store stays
// usable without a warm-up ingest.
func (c *Client) Reset(ctx context.Context) error {
	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	if err := c.do(ctx, http.MethodDelete, url, nil, nil, "delete collection"); err != nil {
		return err
	}

	c.ensureMu.Lock()
	c.ensured = false
	c.ensureMu.Unlock()

	if c.vectorSize > 0 {
		return c.ensureCollection(ctx, c.vectorSize)
	}
	return nil
}

func (c *Client) ensureCollection(ctx context.Context, vectorSize int) error {
	c.ensureMu.Lock()
	if c.ensured {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}

	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	err := c.do(ctx, http.MethodPut, url, reqBody, nil, "ensure collection")
	// 409 means the collection already exists (depends on version/config).
	if err != nil && !strings.Contains(err.Error(), "409") {
		return err
	}

	c.ensureMu.Lock()
	c.ensured = true
	c.ensureMu.Unlock()
	return nil
}

func (c *Client) do(ctx context.Context, method, url string, payload any, out any, operation string) error {
	var reqBody io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", operation, err)
		}
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrTemporary, "qdrant "+operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(body)); msg != "" {
			return fmt.Errorf("qdrant %s status: %d %s: %s", operation, resp.StatusCode, http.StatusText(resp.StatusCode), msg)
		}
		return fmt.Errorf("qdrant %s status: %d %s", operation, resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", operation, err)
		}
	}
	return nil
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
