package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"promptifie/internal/util"
	"promptifie/pkg/domain"
	"promptifie/pkg/events"
	"promptifie/pkg/queue"
	"promptifie/pkg/session"
	"promptifie/pkg/storage"
)

// toolCost is the flat coin price of every generation tool.
const toolCost = 10

// PromptFromImage describes an uploaded image as a prompt and records
// the result in the creation history.
func (a *App) PromptFromImage(ctx context.Context, email, image string, model domain.PromptModel) (domain.Creation, error) {
	mgr, err := a.chargeTool(email, domain.ToolImageToPrompt)
	if err != nil {
		return domain.Creation{}, err
	}
	prompt, err := a.prompts.PromptFromImage(ctx, image, model)
	if err != nil {
		a.recordFailure(email, domain.ToolImageToPrompt, "", err)
		return domain.Creation{}, err
	}
	creation := mgr.AddCreation(session.NewCreation{Prompt: prompt, ImageURL: image, Model: string(model)})
	a.recordSuccess(email, domain.ToolImageToPrompt, prompt, map[string]string{"model": string(model)})
	return creation, nil
}

// GenerateImage renders an image from a prompt, stores the artifact, and
// records the creation. For Free tier accounts it also consumes one
// daily use.
func (a *App) GenerateImage(ctx context.Context, email, prompt string) (domain.Creation, error) {
	mgr, err := a.chargeTool(email, domain.ToolImageGen)
	if err != nil {
		return domain.Creation{}, err
	}
	mgr.ConsumeDailyUse()
	image, err := a.images.GenerateImage(ctx, prompt)
	if err != nil {
		a.recordFailure(email, domain.ToolImageGen, prompt, err)
		return domain.Creation{}, err
	}
	key := a.saveArtifact(ctx, email, image)
	creation := mgr.AddCreation(session.NewCreation{Prompt: prompt, ImageKey: key, ImageURL: image, Model: "Flux AI"})
	a.recordSuccess(email, domain.ToolImageGen, prompt, nil)
	return creation, nil
}

// EnhancePrompt rewrites a prompt with richer detail.
func (a *App) EnhancePrompt(ctx context.Context, email, input string) (string, error) {
	if _, err := a.chargeTool(email, domain.ToolMagicEnhance); err != nil {
		return "", err
	}
	out, err := a.prompts.EnhancePrompt(ctx, input)
	if err != nil {
		a.recordFailure(email, domain.ToolMagicEnhance, input, err)
		return "", err
	}
	a.recordSuccess(email, domain.ToolMagicEnhance, input, nil)
	return out, nil
}

// AnalyzePromptQuality suggests improvements for a prompt. Free of
// charge, so it leaves no audit entry.
func (a *App) AnalyzePromptQuality(ctx context.Context, email, prompt string) (string, error) {
	return a.prompts.AnalyzePromptQuality(ctx, prompt)
}

// RandomIdea produces one fresh prompt idea. Free of charge.
func (a *App) RandomIdea(ctx context.Context, email string) (string, error) {
	return a.prompts.RandomIdea(ctx)
}

// RemixPrompt blends two images into one prompt and records the result.
func (a *App) RemixPrompt(ctx context.Context, email, imageA, imageB string) (domain.Creation, error) {
	mgr, err := a.chargeTool(email, domain.ToolRemix)
	if err != nil {
		return domain.Creation{}, err
	}
	prompt, err := a.prompts.RemixPrompt(ctx, imageA, imageB)
	if err != nil {
		a.recordFailure(email, domain.ToolRemix, "", err)
		return domain.Creation{}, err
	}
	creation := mgr.AddCreation(session.NewCreation{Prompt: prompt, ImageURL: imageA, Model: "Remix Tool"})
	a.recordSuccess(email, domain.ToolRemix, prompt, nil)
	return creation, nil
}

// ExtractPalette extracts the dominant colors of an image.
func (a *App) ExtractPalette(ctx context.Context, email, image string) ([]string, error) {
	if _, err := a.chargeTool(email, domain.ToolPalette); err != nil {
		return nil, err
	}
	palette, err := a.prompts.ExtractPalette(ctx, image)
	if err != nil {
		a.recordFailure(email, domain.ToolPalette, "", err)
		return nil, err
	}
	a.recordSuccess(email, domain.ToolPalette, "", map[string]string{"colors": fmt.Sprintf("%d", len(palette))})
	return palette, nil
}

// AnalyzeStyle deconstructs the artistic attributes of an image. The
// style breakdown and the precise color extraction run concurrently;
// when the palette call succeeds its hex codes replace the loose
// palette tags of the breakdown.
func (a *App) AnalyzeStyle(ctx context.Context, email, image string) (domain.StyleProfile, error) {
	if _, err := a.chargeTool(email, domain.ToolStyleAnalyzer); err != nil {
		return domain.StyleProfile{}, err
	}
	var profile domain.StyleProfile
	var palette []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := a.prompts.AnalyzeStyle(gctx, image)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		// best effort; the breakdown already carries palette tags
		p, err := a.prompts.ExtractPalette(gctx, image)
		if err == nil {
			palette = p
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		a.recordFailure(email, domain.ToolStyleAnalyzer, "", err)
		return domain.StyleProfile{}, err
	}
	if len(palette) > 0 {
		profile.Palette = palette
	}
	a.recordSuccess(email, domain.ToolStyleAnalyzer, "", nil)
	return profile, nil
}

// LogoConcept renders a logo concept as a PNG data URL.
func (a *App) LogoConcept(ctx context.Context, email, brandName, industry, colorStyle, iconStyle string) (string, error) {
	if _, err := a.chargeTool(email, domain.ToolLogo); err != nil {
		return "", err
	}
	image, err := a.images.LogoConcept(ctx, brandName, industry, colorStyle, iconStyle)
	if err != nil {
		a.recordFailure(email, domain.ToolLogo, brandName, err)
		return "", err
	}
	a.recordSuccess(email, domain.ToolLogo, brandName, map[string]string{"industry": industry})
	return image, nil
}

// SeamlessPattern renders a tileable pattern and records the creation.
func (a *App) SeamlessPattern(ctx context.Context, email, description, style string) (domain.Creation, error) {
	mgr, err := a.chargeTool(email, domain.ToolPattern)
	if err != nil {
		return domain.Creation{}, err
	}
	image, err := a.images.SeamlessPattern(ctx, description, style)
	if err != nil {
		a.recordFailure(email, domain.ToolPattern, description, err)
		return domain.Creation{}, err
	}
	prompt := fmt.Sprintf("Seamless pattern: %s in %s style", description, style)
	key := a.saveArtifact(ctx, email, image)
	creation := mgr.AddCreation(session.NewCreation{Prompt: prompt, ImageKey: key, ImageURL: image, Model: "Gemini Pattern Engine"})
	a.recordSuccess(email, domain.ToolPattern, prompt, nil)
	return creation, nil
}

// TransformImage covers the local pixel tools (upscale, background
// removal, magic eraser). They charge coins and echo the processed
// payload; the pixel work happens client side.
func (a *App) TransformImage(ctx context.Context, email string, tool domain.Tool, image string) (string, error) {
	switch tool {
	case domain.ToolUpscaler, domain.ToolBgRemover, domain.ToolMagicEraser:
	default:
		return "", ErrUnsupportedTool
	}
	if _, err := a.chargeTool(email, tool); err != nil {
		return "", err
	}
	a.recordSuccess(email, tool, "", nil)
	return image, nil
}

// EnqueueGeneration queues a tool run for background processing.
func (a *App) EnqueueGeneration(ctx context.Context, email string, tool domain.Tool, prompt string) (queue.JobStatus, error) {
	if a.jobs == nil {
		return queue.JobStatus{}, fmt.Errorf("job queue not configured")
	}
	switch tool {
	case domain.ToolImageGen, domain.ToolMagicEnhance:
	default:
		return queue.JobStatus{}, ErrUnsupportedTool
	}
	return a.jobs.Enqueue(ctx, email, tool, prompt)
}

// JobStatus reports the state of a queued generation.
func (a *App) JobStatus(ctx context.Context, jobID string) (queue.JobStatus, bool, error) {
	if a.jobs == nil {
		return queue.JobStatus{}, false, fmt.Errorf("job queue not configured")
	}
	return a.jobs.GetJob(ctx, jobID)
}

// StartWorker launches the background consumers for queued generations.
func (a *App) StartWorker(ctx context.Context) {
	if a.jobs == nil {
		return
	}
	a.jobs.Start(ctx, a.concurrency, a.runJob)
}

func (a *App) runJob(ctx context.Context, job queue.JobStatus) error {
	switch job.Tool {
	case domain.ToolImageGen:
		_, err := a.GenerateImage(ctx, job.Email, job.Prompt)
		return err
	case domain.ToolMagicEnhance:
		_, err := a.EnhancePrompt(ctx, job.Email, job.Prompt)
		return err
	default:
		return ErrUnsupportedTool
	}
}

// chargeTool deducts the flat tool price from the session balance.
func (a *App) chargeTool(email string, tool domain.Tool) (*session.Manager, error) {
	mgr := a.registry.Get(email)
	if err := mgr.ConsumeCoins(toolCost); err != nil {
		return nil, err
	}
	return mgr, nil
}

func (a *App) recordSuccess(email string, tool domain.Tool, prompt string, metadata map[string]string) {
	a.record(email, tool, prompt, domain.OutcomeSucceeded, "", metadata)
	a.publish(events.Event{Type: events.TypeGenerationDone, Email: email, Payload: map[string]string{"tool": string(tool)}})
}

func (a *App) recordFailure(email string, tool domain.Tool, prompt string, cause error) {
	a.record(email, tool, prompt, domain.OutcomeFailed, cause.Error(), nil)
	a.publish(events.Event{Type: events.TypeGenerationFailed, Email: email, Payload: map[string]string{"tool": string(tool)}})
}

func (a *App) record(email string, tool domain.Tool, prompt string, outcome domain.GenerationOutcome, errMsg string, metadata map[string]string) {
	entry := domain.Generation{
		ID:           util.NewID(),
		Email:        email,
		Tool:         tool,
		Prompt:       prompt,
		CoinCost:     toolCost,
		Outcome:      outcome,
		ErrorMessage: errMsg,
		Metadata:     metadata,
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.generations.RecordGeneration(entry); err != nil {
		slog.Warn("record generation failed", "tool", tool, "err", err)
	}
}

// saveArtifact uploads the rendered image and returns its object key,
// or "" when no object store is configured or the upload fails.
func (a *App) saveArtifact(ctx context.Context, email, image string) string {
	if a.artifacts == nil {
		return ""
	}
	key := storage.ArtifactKey(email, util.NewID())
	if err := storage.SaveDataURL(ctx, a.artifacts, key, image); err != nil {
		slog.Warn("store artifact failed", "key", key, "err", err)
		return ""
	}
	return key
}
