package postflow

// Platform is the publication target the content is optimized for.
type Platform string

// Supported platforms.
const (
	PlatformTwitter  Platform = "twitter"
	PlatformLinkedIn Platform = "linkedin"
	PlatformBlog     Platform = "blog"
	PlatformGeneral  Platform = "general"
)

// Tone constrains the voice of the generated content.
type Tone string

// Supported tones.
const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneInformative  Tone = "informative"
	ToneEngaging     Tone = "engaging"
)

// PlatformInfo describes a supported platform for catalog consumers.
type PlatformInfo struct {
	Name        Platform `json:"name"`
	DisplayName string   `json:"display_name"`
	// MaxLength is the hard character limit enforced on generated
	// content, 0 when the platform imposes none.
	MaxLength   int    `json:"max_length,omitempty"`
	Description string `json:"description"`
}

// ToneInfo describes a supported tone for catalog consumers.
type ToneInfo struct {
	Name        Tone   `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

var platformCatalog = []PlatformInfo{
	{Name: PlatformTwitter, DisplayName: "Twitter/X", MaxLength: 280, Description: "Short-form social media content"},
	{Name: PlatformLinkedIn, DisplayName: "LinkedIn", MaxLength: 3000, Description: "Professional networking content"},
	{Name: PlatformBlog, DisplayName: "Blog Post", Description: "Long-form blog content"},
	{Name: PlatformGeneral, DisplayName: "General", Description: "General purpose content"},
}

var toneCatalog = []ToneInfo{
	{Name: ToneProfessional, DisplayName: "Professional", Description: "Formal, authoritative, business-focused"},
	{Name: ToneCasual, DisplayName: "Casual", Description: "Conversational, relatable, friendly"},
	{Name: ToneInformative, DisplayName: "Informative", Description: "Educational, fact-focused, clear explanations"},
	{Name: ToneEngaging, DisplayName: "Engaging", Description: "Enthusiastic, interactive, call-to-action oriented"},
}

// Platforms returns the catalog of supported platforms.
// The returned slice must not be modified.
func Platforms() []PlatformInfo {
	return platformCatalog
}

// Tones returns the catalog of supported tones.
// The returned slice must not be modified.
func Tones() []ToneInfo {
	return toneCatalog
}

// Valid reports whether p is a supported platform.
func (p Platform) Valid() bool {
	for _, info := range platformCatalog {
		if info.Name == p {
			return true
		}
	}
	return false
}

// MaxLength returns the character limit for the platform, 0 for none.
func (p Platform) MaxLength() int {
	for _, info := range platformCatalog {
		if info.Name == p {
			return info.MaxLength
		}
	}
	return 0
}

// Valid reports whether t is a supported tone.
func (t Tone) Valid() bool {
	for _, info := range toneCatalog {
		if info.Name == t {
			return true
		}
	}
	return false
}
