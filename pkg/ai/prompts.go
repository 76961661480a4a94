package ai

import (
	"fmt"

	"promptifie/pkg/domain"
)

const identityTemplateInstruction = `
Analyze the provided image and generate a structured description for the following categories.
Maintain 100% identical facial identity for the subject.
Respond ONLY with the filled version of this template:
+Important Identity Rules
[Describe rules based on the image]
+Subject & Outfit (Editable)
[Describe subject]
+Pose & Body Position (Editable)
[Describe pose]
+Setting & Environment (Editable)
[Describe setting]
+Lighting
[Describe lighting]
+Camera & Composition (Editable)
[Describe camera]
+Atmosphere
[Describe atmosphere]
`

const (
	identityTemplatePrefix = "Generate an ultra hyper-realistic portrait..."
	identityTemplateSuffix = "+Quality: 8K... --ar 3:4"
)

// instructionFor returns the image analysis instruction for a prompt model.
func instructionFor(model domain.PromptModel) string {
	switch model {
	case domain.ModelGemini:
		return identityTemplateInstruction
	case domain.ModelStructured:
		return "Deconstruct this image into a structured prompt. Format: Subject: [details], Environment: [details], Visual Style: [lighting, camera, medium, colors]."
	case domain.ModelGraphicDesign:
		return "Analyze the graphic design elements. Describe layout, typography, color palette, and visual hierarchy."
	case domain.ModelJSON:
		return "Analyze this image and output a JSON object describing its core components: subject, background, lighting, artistic_style, and predominant_colors."
	case domain.ModelFlux:
		return "Generate a concise, natural language prompt optimized for Flux.1 models."
	case domain.ModelMidjourney:
		return "Write a Midjourney-optimized prompt with descriptive keywords and parameters like --ar, --v 6.0."
	case domain.ModelStableDiffusion:
		return "Create a Stable Diffusion prompt with comma-separated tags and keyword weighting."
	default:
		return "Provide a detailed natural language description to recreate this image with AI."
	}
}

func enhanceInstruction(input string) string {
	return fmt.Sprintf("Enhance this prompt for AI art generation: %q", input)
}

func qualityInstruction(prompt string) string {
	return fmt.Sprintf("Provide 3 short, helpful bullet points to improve this AI image prompt: %q", prompt)
}

const randomIdeaInstruction = "Generate one creative, vivid, and detailed AI image prompt (e.g. fantasy, sci-fi, or abstract). Return ONLY the prompt text."

const remixInstruction = "Analyze both images. Create a single descriptive prompt that blends the core elements of both in a creative way."

const styleInstruction = `Analyze the provided image and deconstruct its artistic DNA.
Identify the following attributes:
Artistic Movement, Style/Genre, Artist Influence, Lighting, Color Palette, and Composition.
Return the result as a JSON object where each key is a category and the value is an array of string tags.`

const paletteInstruction = `Analyze the provided image and extract a professional color palette of the 7 most dominant and harmonious colors.
Return the result as a JSON object containing a property 'palette' which is an array of 7 Hex color strings (e.g. ["#FFFFFF", "#000000"]).`

func logoInstruction(brandName, industry, colorStyle, iconStyle string) string {
	return fmt.Sprintf(`Create a high-quality, professional logo for a brand named %q.
The industry is %q.
The color mood should be %q.
The icon style must be %q.
The logo should be clean, modern, and minimalist.
It should include the icon and the brand name in a professional font.
Vector art style, isolated on a white background.`, brandName, industry, colorStyle, iconStyle)
}

func patternInstruction(description, style string) string {
	return fmt.Sprintf(`Create a professional, high-quality, perfectly seamless repeating pattern of %q in %q style.
The image MUST be tileable, where the top edge matches the bottom and the left edge matches the right edge exactly.
Flat design, professional artistic quality, isolated elements on a harmonious background. Square 1:1 ratio.`, description, style)
}
