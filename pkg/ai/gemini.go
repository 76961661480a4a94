package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	defaultTextModel  = "gemini-3-flash-preview"
	defaultImageModel = "gemini-2.5-flash-image"
)

// GeminiClient calls the Google AI Studio (Gemini) API.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	textModel  string
	imageModel string
	httpClient *http.Client
}

// GeminiOption customizes a GeminiClient.
type GeminiOption func(*GeminiClient)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) GeminiOption {
	return func(c *GeminiClient) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) GeminiOption {
	return func(c *GeminiClient) { c.httpClient = client }
}

// WithTextModel overrides the model used for prompt generation.
func WithTextModel(model string) GeminiOption {
	return func(c *GeminiClient) { c.textModel = normalizeModel(model) }
}

// WithImageModel overrides the model used for image generation.
func WithImageModel(model string) GeminiOption {
	return func(c *GeminiClient) { c.imageModel = normalizeModel(model) }
}

// NewGeminiClient constructs a client with the provided API key.
func NewGeminiClient(apiKey string, opts ...GeminiOption) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key required")
	}
	c := &GeminiClient{
		apiKey:     apiKey,
		baseURL:    defaultGeminiBaseURL,
		textModel:  defaultTextModel,
		imageModel: defaultImageModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func normalizeModel(model string) string {
	model = strings.TrimSpace(model)
	model = strings.TrimPrefix(model, "models/")
	return model
}

func (c *GeminiClient) generate(ctx context.Context, model string, req generateRequest) (generateResponse, error) {
	var resp generateResponse
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	if err := c.doJSON(ctx, url, req, &resp); err != nil {
		return generateResponse{}, err
	}
	return resp, nil
}

// generateText runs a text generation and returns the first text part.
func (c *GeminiClient) generateText(ctx context.Context, parts []part, cfg *generationConfig) (string, error) {
	resp, err := c.generate(ctx, c.textModel, generateRequest{
		Contents:         []content{{Role: "user", Parts: parts}},
		GenerationConfig: cfg,
	})
	if err != nil {
		return "", err
	}
	text, ok := resp.firstText()
	if !ok {
		return "", fmt.Errorf("empty response from gemini")
	}
	return text, nil
}

// generateImage runs an image generation and returns a PNG data URL.
func (c *GeminiClient) generateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := c.generate(ctx, c.imageModel, generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{ImageConfig: &imageConfig{AspectRatio: "1:1"}},
	})
	if err != nil {
		return "", err
	}
	data, ok := resp.firstImage()
	if !ok {
		return "", fmt.Errorf("no image data in gemini response")
	}
	return "data:image/png;base64," + data, nil
}

func (c *GeminiClient) doJSON(ctx context.Context, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return fmt.Errorf("gemini api error: %s", errResp.Error.Message)
		}
		return fmt.Errorf("gemini api error: %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return err
	}
	return nil
}

// imagePart builds an inline image part from a data URL or raw base64 payload.
func imagePart(image string) part {
	mimeType := "image/jpeg"
	data := image
	if strings.HasPrefix(image, "data:") {
		rest := strings.TrimPrefix(image, "data:")
		if idx := strings.Index(rest, ";base64,"); idx >= 0 {
			if mt := rest[:idx]; mt != "" {
				mimeType = mt
			}
			data = rest[idx+len(";base64,"):]
		}
	}
	return part{InlineData: &inlineData{MimeType: mimeType, Data: data}}
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio"`
}

type schema struct {
	Type        string            `json:"type"`
	Description string            `json:"description,omitempty"`
	Properties  map[string]schema `json:"properties,omitempty"`
	Items       *schema           `json:"items,omitempty"`
	Required    []string          `json:"required,omitempty"`
}

type generationConfig struct {
	ResponseMimeType string       `json:"responseMimeType,omitempty"`
	ResponseSchema   *schema      `json:"responseSchema,omitempty"`
	ImageConfig      *imageConfig `json:"imageConfig,omitempty"`
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (r generateResponse) firstText() (string, bool) {
	for _, cand := range r.Candidates {
		for _, p := range cand.Content.Parts {
			if strings.TrimSpace(p.Text) != "" {
				return p.Text, true
			}
		}
	}
	return "", false
}

func (r generateResponse) firstImage() (string, bool) {
	for _, cand := range r.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				return p.InlineData.Data, true
			}
		}
	}
	return "", false
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
