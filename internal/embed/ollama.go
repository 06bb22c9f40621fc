package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	scouterr "github.com/docscout/docscout/internal/errors"
)

// Ollama defaults.
const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "nomic-embed-text"

	// availabilityTimeout bounds the Available probe so an unreachable
	// server degrades search quickly instead of stalling it.
	availabilityTimeout = 2 * time.Second
)

// OllamaEmbedder generates embeddings via a local Ollama server.
type OllamaEmbedder struct {
	baseURL    string
	model      string
	dimensions int
	client     *http.Client
}

// OllamaOptions configures the Ollama embedder.
type OllamaOptions struct {
	// BaseURL is the Ollama server address (default: http://localhost:11434).
	BaseURL string

	// Model is the embedding model name (default: nomic-embed-text).
	Model string

	// Dimensions is the model's embedding dimension (default: 768).
	Dimensions int

	// Timeout bounds each embedding request (default: 60s).
	Timeout time.Duration
}

// ollamaEmbedRequest is the request body for POST /api/embed.
type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// ollamaEmbedResponse is the response body of POST /api/embed.
type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewOllamaEmbedder creates an embedder backed by an Ollama server.
func NewOllamaEmbedder(opts OllamaOptions) *OllamaEmbedder {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultOllamaURL
	}
	if opts.Model == "" {
		opts.Model = DefaultOllamaModel
	}
	if opts.Dimensions <= 0 {
		opts.Dimensions = DefaultOllamaDimensions
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &OllamaEmbedder{
		baseURL:    opts.BaseURL,
		model:      opts.Model,
		dimensions: opts.Dimensions,
		client:     &http.Client{Timeout: opts.Timeout},
	}
}

// Embed generates an embedding for a single text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, scouterr.InternalError("marshaling embed request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, scouterr.InternalError("building embed request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, scouterr.Wrap(err, scouterr.ErrCodeBackendUnavailable, "embedding request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, scouterr.New(scouterr.ErrCodeBackendUnavailable,
			fmt.Sprintf("ollama returned %d: %s", resp.StatusCode, string(msg)), nil)
	}

	var parsed ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, scouterr.InternalError("decoding embed response", err)
	}
	if len(parsed.Embeddings) != len(texts) {
		return nil, scouterr.InternalError(
			fmt.Sprintf("ollama returned %d embeddings for %d inputs", len(parsed.Embeddings), len(texts)), nil)
	}

	for i, vec := range parsed.Embeddings {
		parsed.Embeddings[i] = normalizeVector(vec)
	}
	return parsed.Embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *OllamaEmbedder) Dimensions() int {
	return e.dimensions
}

// ModelName returns the model identifier.
func (e *OllamaEmbedder) ModelName() string {
	return "ollama/" + e.model
}

// Available reports whether the Ollama server responds. The probe uses a
// short timeout independent of the embedding timeout.
func (e *OllamaEmbedder) Available(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, availabilityTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, e.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// Close releases resources.
func (e *OllamaEmbedder) Close() error {
	e.client.CloseIdleConnections()
	return nil
}
