package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"shipment-dispatch-service/internal/platform/obs"
	"shipment-dispatch-service/internal/ports"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiTransport implements OracleTransport using the Gemini API.
// Role instructions travel as the system instruction, the payload as the
// single user turn. The client is safe for concurrent use.
type GeminiTransport struct {
	client      *genai.Client
	model       string
	temperature float32
}

type GeminiOption func(*genai.ClientConfig)

// WithGeminiBaseURL points the client at another endpoint, such as a proxy.
func WithGeminiBaseURL(baseURL string) GeminiOption {
	return func(c *genai.ClientConfig) { c.HTTPOptions.BaseURL = baseURL }
}

func WithGeminiHTTPClient(hc *http.Client) GeminiOption {
	return func(c *genai.ClientConfig) { c.HTTPClient = hc }
}

func NewGeminiTransport(ctx context.Context, apiKey, model string, temperature float32, opts ...GeminiOption) (*GeminiTransport, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is empty")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultGeminiModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiTransport{client: client, model: model, temperature: temperature}, nil
}

func (g *GeminiTransport) Send(ctx context.Context, req ports.OracleRequest) (_ string, err error) {
	defer obs.Time(ctx, "gemini.GenerateContent")(&err)

	temperature := g.temperature
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(req.Payload),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.Instructions, genai.RoleUser),
			Temperature:       &temperature,
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", req.Role, err)
	}

	// An empty reply is still a reply; the extractor rejects it.
	return resp.Text(), nil
}
