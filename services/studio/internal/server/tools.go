package server

import (
	"net/http"
	"strings"

	"promptifie/pkg/domain"
)

// handleTool routes /api/tools/{name}. Every tool is a POST carrying a
// small JSON body.
func (s *Server) handleTool(w http.ResponseWriter, r *http.Request, email string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.toolsLimiter, "too many generation requests") {
		s.audit(r, "studio.tool", "rate_limited", "email", email)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/api/tools/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var req struct {
		Image       string `json:"image"`
		ImageB      string `json:"imageB"`
		Model       string `json:"model"`
		Prompt      string `json:"prompt"`
		Input       string `json:"input"`
		BrandName   string `json:"brandName"`
		Industry    string `json:"industry"`
		ColorStyle  string `json:"colorStyle"`
		IconStyle   string `json:"iconStyle"`
		Description string `json:"description"`
		Style       string `json:"style"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ctx := r.Context()

	switch name {
	case "image-to-prompt":
		model := domain.PromptModel(req.Model)
		if model == "" {
			model = domain.ModelGeneral
		}
		creation, err := s.app.PromptFromImage(ctx, email, req.Image, model)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, creation)
	case "image-generator":
		creation, err := s.app.GenerateImage(ctx, email, req.Prompt)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, creation)
	case "magic-enhance":
		out, err := s.app.EnhancePrompt(ctx, email, req.Input)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"prompt": out})
	case "prompt-quality":
		out, err := s.app.AnalyzePromptQuality(ctx, email, req.Prompt)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"suggestions": out})
	case "random-idea":
		out, err := s.app.RandomIdea(ctx, email)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"prompt": out})
	case "remix":
		creation, err := s.app.RemixPrompt(ctx, email, req.Image, req.ImageB)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, creation)
	case "palette":
		palette, err := s.app.ExtractPalette(ctx, email, req.Image)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]string{"palette": palette})
	case "style-analyzer":
		profile, err := s.app.AnalyzeStyle(ctx, email, req.Image)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	case "logo":
		image, err := s.app.LogoConcept(ctx, email, req.BrandName, req.Industry, req.ColorStyle, req.IconStyle)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"image": image})
	case "pattern":
		creation, err := s.app.SeamlessPattern(ctx, email, req.Description, req.Style)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, creation)
	case "upscaler", "background-remover", "magic-eraser":
		out, err := s.app.TransformImage(ctx, email, transformTool(name), req.Image)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"image": out})
	default:
		writeError(w, http.StatusNotFound, "unknown tool")
	}
}

func transformTool(name string) domain.Tool {
	switch name {
	case "upscaler":
		return domain.ToolUpscaler
	case "background-remover":
		return domain.ToolBgRemover
	default:
		return domain.ToolMagicEraser
	}
}
