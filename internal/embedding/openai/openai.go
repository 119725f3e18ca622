package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"tabvec/internal/domain"
)

// Client is an OpenAI-compatible embeddings client implementing the Embedder interface.
// Ollama's /api/embed response shape is accepted as well.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	batchSize  int
	client     *http.Client
	maxRetries int
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Timeout   time.Duration
	BatchSize int
	// AllowMissingKey permits servers that need no key, such as a local Ollama.
	AllowMissingKey bool
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" && !cfg.AllowMissingKey {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	bs := cfg.BatchSize
	if bs <= 0 {
		bs = 32
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     key,
		timeout:    t,
		batchSize:  bs,
		client:     &http.Client{Timeout: t},
		maxRetries: 5,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai" }

// Embed returns one embedding per text, sending the texts in batches.
func (c *Client) Embed(ctx context.Context, texts []string, modelID string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := min(start+c.batchSize, len(texts))
		vecs, err := c.embedBatch(ctx, texts[start:end], modelID)
		if err != nil {
			return nil, err
		}
		if len(vecs) != end-start {
			return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(vecs), end-start)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type openAIResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

type ollamaResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) embedBatch(ctx context.Context, texts []string, modelID string) ([][]float32, error) {
	url := fmt.Sprintf("%s/embeddings", c.baseURL)
	data, err := json.Marshal(embeddingRequest{Input: texts, Model: modelID})
	if err != nil {
		return nil, err
	}
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() == nil && attempt < c.maxRetries {
				sleep(ctx, retryDelay(attempt))
				continue
			}
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			delay := retryDelay(attempt)
			// Respect Retry-After if provided
			if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
				delay = time.Duration(secs) * time.Second
			}
			_ = resp.Body.Close()
			if attempt < c.maxRetries {
				sleep(ctx, delay)
				continue
			}
			return nil, fmt.Errorf("openai embeddings failed: %s", resp.Status)
		}

		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 300 {
			if isModelNotFound(resp.StatusCode, payload) {
				return nil, domain.NewModelUnavailable(modelID, fmt.Errorf("server replied %s", resp.Status))
			}
			return nil, fmt.Errorf("openai embeddings failed: %s", resp.Status)
		}
		return decodeEmbeddings(payload, len(texts))
	}
	return nil, errors.New("no embedding returned")
}

func decodeEmbeddings(payload []byte, n int) ([][]float32, error) {
	// Try OpenAI-compatible response first
	var openaiOut openAIResponse
	if err := json.Unmarshal(payload, &openaiOut); err == nil && len(openaiOut.Data) > 0 {
		if len(openaiOut.Data) != n {
			return nil, fmt.Errorf("got %d embeddings for %d inputs", len(openaiOut.Data), n)
		}
		out := make([][]float32, n)
		for _, d := range openaiOut.Data {
			if d.Index < 0 || d.Index >= n || out[d.Index] != nil {
				// index missing or inconsistent: fall back to response order
				out = out[:0]
				for _, d := range openaiOut.Data {
					out = append(out, d.Embedding)
				}
				return out, nil
			}
			out[d.Index] = d.Embedding
		}
		return out, nil
	}
	// Fallback to Ollama-native shape: { "embeddings": [[...]] }
	var ollamaOut ollamaResponse
	if err := json.Unmarshal(payload, &ollamaOut); err == nil && len(ollamaOut.Embeddings) > 0 {
		return ollamaOut.Embeddings, nil
	}
	return nil, errors.New("no embedding returned")
}

func isModelNotFound(status int, payload []byte) bool {
	if status == http.StatusNotFound {
		return true
	}
	var e errorResponse
	if err := json.Unmarshal(payload, &e); err != nil {
		return false
	}
	return e.Error.Code == "model_not_found"
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
