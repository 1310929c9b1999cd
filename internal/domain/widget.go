package domain

// Branding variants
const (
	BrandingQualia   = "qualia"
	BrandingTzironis = "tzironis"
)

// WidgetConfig holds UI configuration for the chat page
type WidgetConfig struct {
	Branding       string   `json:"branding"`
	Name           string   `json:"name"`
	Title          string   `json:"title"`
	WelcomeMessage string   `json:"welcome_message"`
	Placeholder    string   `json:"placeholder"`
	ShowSources    bool     `json:"show_sources"`
	Suggestions    []string `json:"suggestions"`
	AppURL         string   `json:"app_url,omitempty"`
}

var featuredQuestions = []string{
	"Βρες μου πληροφορίες για προϊόντα στο tzironis.gr και πες μου τι προσφέρουν",
	"Ποια είναι τα καλύτερα προϊόντα καθαρισμού και χαρτικά για επαγγελματική χρήση;",
	"Σύγκρινε τις τιμές των απορρυπαντικών μεταξύ διαφορετικών προμηθευτών στην Ελλάδα",
	"Προτείνε μου οικολογικά προϊόντα καθαρισμού που είναι διαθέσιμα στην ελληνική αγορά",
}

// DefaultWidgetConfig returns the widget configuration for a branding variant.
// Unknown variants get the Qualia defaults.
func DefaultWidgetConfig(branding string) WidgetConfig {
	suggestions := make([]string, len(featuredQuestions))
	copy(suggestions, featuredQuestions)

	if branding == BrandingTzironis {
		return WidgetConfig{
			Branding:       BrandingTzironis,
			Name:           "Tzironis Business Suite",
			Title:          "Γεια σου Tzironis!",
			WelcomeMessage: "Είμαι η Qualia, η προσωπική σου βοηθός. Τι θα ήθελες να αναζητήσουμε σήμερα;",
			Placeholder:    "Ρώτα οτιδήποτε...",
			ShowSources:    true,
			Suggestions:    suggestions,
		}
	}
	return WidgetConfig{
		Branding:       BrandingQualia,
		Name:           "Qualia",
		Title:          "Welcome to Qualia!",
		WelcomeMessage: "I'm your Qualia AI Assistant. How can I help you today?",
		Placeholder:    "Ask anything...",
		ShowSources:    true,
		Suggestions:    suggestions,
	}
}
