package assistant

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// Defaults for the hosted model.
const (
	DefaultGeminiURL   = "https://generativelanguage.googleapis.com"
	DefaultModel       = "gemini-2.5-flash"
	DefaultTemperature = 0.4
)

// Gemini asks the Gemini API once per question, without retries.
type Gemini struct {
	baseURL     string
	model       string
	temperature float64
	http        *http.Client
	limiter     *rate.Limiter

	client *genai.Client
}

// GeminiOption configures a Gemini client.
type GeminiOption func(*Gemini)

// WithBaseURL points the client at another API host.
func WithBaseURL(u string) GeminiOption {
	return func(g *Gemini) { g.baseURL = strings.TrimRight(u, "/") }
}

// WithModel selects the model identifier.
func WithModel(m string) GeminiOption {
	return func(g *Gemini) { g.model = m }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) GeminiOption {
	return func(g *Gemini) { g.temperature = t }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) GeminiOption {
	return func(g *Gemini) { g.http = hc }
}

// WithLimiter spaces consecutive requests.
func WithLimiter(l *rate.Limiter) GeminiOption {
	return func(g *Gemini) { g.limiter = l }
}

// NewGemini creates a client. With an empty apiKey no SDK client is built
// and every call fails with ErrNoCredential before anything is sent.
func NewGemini(apiKey string, opts ...GeminiOption) (*Gemini, error) {
	g := &Gemini{
		baseURL:     DefaultGeminiURL,
		model:       DefaultModel,
		temperature: DefaultTemperature,
		http:        &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	if apiKey == "" {
		return g, nil
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  g.http,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

// Generate implements Generator.
func (g *Gemini) Generate(ctx context.Context, systemInstruction, question string) (string, error) {
	if g.client == nil {
		return "", ErrNoCredential
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(question), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(float32(g.temperature)),
	})
	if err != nil {
		return "", fmt.Errorf("calling model %s: %w", g.model, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("model returned no text")
	}
	return text, nil
}
