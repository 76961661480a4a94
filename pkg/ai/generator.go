package ai

import (
	"context"

	"promptifie/pkg/domain"
)

// PromptGenerator produces and refines text prompts, optionally from images.
type PromptGenerator interface {
	PromptFromImage(ctx context.Context, image string, model domain.PromptModel) (string, error)
	EnhancePrompt(ctx context.Context, input string) (string, error)
	AnalyzePromptQuality(ctx context.Context, prompt string) (string, error)
	RandomIdea(ctx context.Context) (string, error)
	RemixPrompt(ctx context.Context, imageA, imageB string) (string, error)
	AnalyzeStyle(ctx context.Context, image string) (domain.StyleProfile, error)
	ExtractPalette(ctx context.Context, image string) ([]string, error)
}

// ImageGenerator renders images, returned as base64 PNG data URLs.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
	LogoConcept(ctx context.Context, brandName, industry, colorStyle, iconStyle string) (string, error)
	SeamlessPattern(ctx context.Context, description, style string) (string, error)
}
