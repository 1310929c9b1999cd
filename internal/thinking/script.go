package thinking

import (
	"fmt"
	"time"

	"github.com/liliang-cn/qualia/internal/domain"
)

// Locales with a built-in script
const (
	LocaleGreek   = "el"
	LocaleEnglish = "en"
)

// Script returns the six-step reasoning animation for query in the given
// locale. Unknown locales fall back to Greek.
func Script(locale, query string) []Step {
	if locale == LocaleEnglish {
		return []Step{
			{Content: fmt.Sprintf("Analyzing your question: \"%s\"", query), Type: domain.StepThinking, Delay: 800 * time.Millisecond},
			{Content: fmt.Sprintf("Processing information about \"%s\"", query), Type: domain.StepThinking, Delay: 1000 * time.Millisecond},
			{Content: fmt.Sprintf("Searching the web for relevant information about \"%s\"", query), Type: domain.StepSearch, Delay: 1200 * time.Millisecond},
			{Content: "Analyzing the search results", Type: domain.StepThinking, Delay: 1000 * time.Millisecond},
			{Content: "Found several reliable sources with information", Type: domain.StepResult, Delay: 1000 * time.Millisecond},
			{Content: "Composing my answer from the information gathered", Type: domain.StepThinking, Delay: 1500 * time.Millisecond},
		}
	}
	return []Step{
		{Content: fmt.Sprintf("Αναλύω την ερώτησή σου: \"%s\"", query), Type: domain.StepThinking, Delay: 800 * time.Millisecond},
		{Content: fmt.Sprintf("Επεξεργάζομαι τις πληροφορίες σχετικά με \"%s\"", query), Type: domain.StepThinking, Delay: 1000 * time.Millisecond},
		{Content: fmt.Sprintf("Αναζητώ στο διαδίκτυο για σχετικές πληροφορίες σχετικά με \"%s\"", query), Type: domain.StepSearch, Delay: 1200 * time.Millisecond},
		{Content: "Αναλύω τα αποτελέσματα της αναζήτησης", Type: domain.StepThinking, Delay: 1000 * time.Millisecond},
		{Content: "Βρήκα αρκετές αξιόπιστες πηγές με πληροφορίες", Type: domain.StepResult, Delay: 1000 * time.Millisecond},
		{Content: "Συνθέτω την απάντησή μου με βάση τις πληροφορίες που συγκέντρωσα", Type: domain.StepThinking, Delay: 1500 * time.Millisecond},
	}
}

// ErrorReply is the assistant message used when a turn fails unexpectedly.
func ErrorReply(locale string) string {
	if locale == LocaleEnglish {
		return "Sorry, I ran into an error while processing your request. Please try again."
	}
	return "Συγγνώμη, αντιμετώπισα ένα σφάλμα κατά την επεξεργασία του αιτήματός σας. Παρακαλώ δοκιμάστε ξανά."
}
