package domain

import "time"

// Tier is the subscription level controlling the daily-use quota.
type Tier string

const (
	TierFree     Tier = "Free"
	TierStandard Tier = "Standard"
	TierPro      Tier = "Pro"
	TierUltimate Tier = "Ultimate"
	TierBusiness Tier = "Business"
)

// Paid reports whether the tier is exempt from the daily free quota.
func (t Tier) Paid() bool {
	return t != TierFree && t != ""
}

// PromptModel selects the flavor of prompt produced by image analysis.
type PromptModel string

const (
	ModelGeneral         PromptModel = "General Image Prompt"
	ModelStructured      PromptModel = "Structured Prompt"
	ModelGraphicDesign   PromptModel = "Graphic Design"
	ModelJSON            PromptModel = "JSON Prompt"
	ModelFlux            PromptModel = "Flux Prompt"
	ModelMidjourney      PromptModel = "Midjourney"
	ModelStableDiffusion PromptModel = "Stable Diffusion"
	ModelGemini          PromptModel = "Gemini Prompt"
)

// Tool identifies which generation tool produced an artifact.
type Tool string

const (
	ToolImageToPrompt Tool = "image_to_prompt"
	ToolImageGen      Tool = "image_generator"
	ToolUpscaler      Tool = "upscaler"
	ToolBgRemover     Tool = "background_remover"
	ToolMagicEraser   Tool = "magic_eraser"
	ToolMagicEnhance  Tool = "magic_enhance"
	ToolPalette       Tool = "palette"
	ToolStyleAnalyzer Tool = "style_analyzer"
	ToolLogo          Tool = "logo"
	ToolPattern       Tool = "pattern"
	ToolRemix         Tool = "remix"
)

// Account is a registered user in the account registry.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Creation is one generated artifact and its originating prompt.
// Immutable after creation except the favorite and published flags.
type Creation struct {
	ID          string    `json:"id"`
	Prompt      string    `json:"prompt"`
	ImageKey    string    `json:"imageKey,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Model       string    `json:"model"`
	Timestamp   time.Time `json:"timestamp"`
	IsFavorite  bool      `json:"isFavorite"`
	IsPublished bool      `json:"isPublished,omitempty"`
}

// CommunityCreation is a Creation copied into the public gallery at
// publish time. It never references the source creation.
type CommunityCreation struct {
	Creation
	UserName string `json:"userName"`
	Likes    int    `json:"likes"`
	HasLiked bool   `json:"hasLiked,omitempty"`
}

// MarketplaceItem is a prompt offered for sale. Price is fixed at
// listing time and the buyer list never contains duplicates.
type MarketplaceItem struct {
	ID         string   `json:"id"`
	SellerName string   `json:"sellerName"`
	Prompt     string   `json:"prompt"`
	Price      int      `json:"price"`
	BoughtBy   []string `json:"boughtBy"`
}

// CustomStyle is a reusable prompt-suffix preset.
type CustomStyle struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Toast is a transient user notification.
type Toast struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// DailyUsage is the persisted free-tier quota record, keyed by email.
type DailyUsage struct {
	Count int    `json:"count"`
	Date  string `json:"date"`
}

// StyleProfile is the structured result of style analysis.
type StyleProfile struct {
	Movements   []string `json:"movements"`
	Genres      []string `json:"genres"`
	Influences  []string `json:"influences"`
	Lighting    []string `json:"lighting"`
	Palette     []string `json:"palette"`
	Composition []string `json:"composition"`
}

// GenerationOutcome records how a tool invocation ended.
type GenerationOutcome string

const (
	OutcomeSucceeded GenerationOutcome = "succeeded"
	OutcomeFailed    GenerationOutcome = "failed"
)

// Generation is one audit-log entry for a tool invocation. Spent coins
// are recorded even on failure: generations are pay-to-attempt.
type Generation struct {
	ID           string            `json:"id"`
	Email        string            `json:"email"`
	Tool         Tool              `json:"tool"`
	Prompt       string            `json:"prompt"`
	CoinCost     int               `json:"coinCost"`
	Outcome      GenerationOutcome `json:"outcome"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}
