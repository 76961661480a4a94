package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"promptifie/pkg/domain"
)

// PromptFromImage describes an image as a prompt in the requested dialect.
func (c *GeminiClient) PromptFromImage(ctx context.Context, image string, model domain.PromptModel) (string, error) {
	parts := []part{imagePart(image), {Text: instructionFor(model)}}
	out, err := c.generateText(ctx, parts, nil)
	if err != nil {
		return "", err
	}
	if model == domain.ModelGemini {
		return fmt.Sprintf("%s\n\n%s\n\n%s", identityTemplatePrefix, out, identityTemplateSuffix), nil
	}
	return out, nil
}

// EnhancePrompt rewrites a prompt with richer detail.
func (c *GeminiClient) EnhancePrompt(ctx context.Context, input string) (string, error) {
	return c.generateText(ctx, []part{{Text: enhanceInstruction(input)}}, nil)
}

// AnalyzePromptQuality returns short improvement suggestions for a prompt.
func (c *GeminiClient) AnalyzePromptQuality(ctx context.Context, prompt string) (string, error) {
	return c.generateText(ctx, []part{{Text: qualityInstruction(prompt)}}, nil)
}

// RandomIdea produces a single fresh image prompt.
func (c *GeminiClient) RandomIdea(ctx context.Context) (string, error) {
	return c.generateText(ctx, []part{{Text: randomIdeaInstruction}}, nil)
}

// RemixPrompt blends two images into one descriptive prompt.
func (c *GeminiClient) RemixPrompt(ctx context.Context, imageA, imageB string) (string, error) {
	parts := []part{imagePart(imageA), imagePart(imageB), {Text: remixInstruction}}
	return c.generateText(ctx, parts, nil)
}

// GenerateImage renders an image for the prompt as a PNG data URL.
func (c *GeminiClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	return c.generateImage(ctx, prompt)
}

// LogoConcept renders a logo concept as a PNG data URL.
func (c *GeminiClient) LogoConcept(ctx context.Context, brandName, industry, colorStyle, iconStyle string) (string, error) {
	return c.generateImage(ctx, logoInstruction(brandName, industry, colorStyle, iconStyle))
}

// SeamlessPattern renders a tileable pattern as a PNG data URL.
func (c *GeminiClient) SeamlessPattern(ctx context.Context, description, style string) (string, error) {
	return c.generateImage(ctx, patternInstruction(description, style))
}

var styleSchema = &schema{
	Type: "object",
	Properties: map[string]schema{
		"movements":   {Type: "array", Items: &schema{Type: "string"}, Description: "Artistic Movement"},
		"genres":      {Type: "array", Items: &schema{Type: "string"}, Description: "Style/Genre"},
		"influences":  {Type: "array", Items: &schema{Type: "string"}, Description: "Artist Influence"},
		"lighting":    {Type: "array", Items: &schema{Type: "string"}, Description: "Lighting"},
		"palette":     {Type: "array", Items: &schema{Type: "string"}, Description: "Color Palette"},
		"composition": {Type: "array", Items: &schema{Type: "string"}, Description: "Composition"},
	},
	Required: []string{"movements", "genres", "influences", "lighting", "palette", "composition"},
}

// AnalyzeStyle deconstructs the artistic attributes of an image.
func (c *GeminiClient) AnalyzeStyle(ctx context.Context, image string) (domain.StyleProfile, error) {
	parts := []part{imagePart(image), {Text: styleInstruction}}
	cfg := &generationConfig{ResponseMimeType: "application/json", ResponseSchema: styleSchema}
	out, err := c.generateText(ctx, parts, cfg)
	if err != nil {
		return domain.StyleProfile{}, err
	}
	var profile domain.StyleProfile
	if err := json.Unmarshal([]byte(out), &profile); err != nil {
		return domain.StyleProfile{}, fmt.Errorf("decode style analysis: %w", err)
	}
	return profile, nil
}

var paletteSchema = &schema{
	Type: "object",
	Properties: map[string]schema{
		"palette": {Type: "array", Items: &schema{Type: "string"}, Description: "Array of dominant hex color codes"},
	},
	Required: []string{"palette"},
}

// ExtractPalette extracts the dominant colors of an image as hex codes.
func (c *GeminiClient) ExtractPalette(ctx context.Context, image string) ([]string, error) {
	parts := []part{imagePart(image), {Text: paletteInstruction}}
	cfg := &generationConfig{ResponseMimeType: "application/json", ResponseSchema: paletteSchema}
	out, err := c.generateText(ctx, parts, cfg)
	if err != nil {
		return nil, err
	}
	var result struct {
		Palette []string `json:"palette"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		return nil, fmt.Errorf("decode palette: %w", err)
	}
	return result.Palette, nil
}
