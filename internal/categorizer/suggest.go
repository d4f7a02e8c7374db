package categorizer

import (
	"fmt"
	"strings"

	"github.com/expenseiq/expenseiq/internal/lexicon"
	"github.com/expenseiq/expenseiq/internal/model"
)

// MinSuggestLength is the description length above which a suggestion is
// worth showing while the user is still typing.
const MinSuggestLength = 3

// Picker selects a uniform index in [0, n).
type Picker interface {
	Intn(n int) int
}

var templates = []func(name, icon string) string{
	func(name, _ string) string { return fmt.Sprintf("🤖 AI suggests \"%s\" category", name) },
	func(name, icon string) string { return fmt.Sprintf("💡 Smart categorization: %s %s", icon, name) },
	func(name, _ string) string { return fmt.Sprintf("🎯 AI detected: %s expense", name) },
	func(name, _ string) string { return fmt.Sprintf("⚡ Auto-categorized as %s", name) },
	func(name, _ string) string { return fmt.Sprintf("🔍 AI analysis: Best fit is %s", name) },
}

// SuggestionMessage renders one of the suggestion templates for c. The
// template choice carries no meaning.
func SuggestionMessage(p Picker, c model.Category) string {
	tmpl := templates[p.Intn(len(templates))]
	return tmpl(lexicon.Name(c), lexicon.Icon(c))
}

// ShouldSuggest reports whether description is long enough to suggest for.
func ShouldSuggest(description string) bool {
	return len([]rune(strings.TrimSpace(description))) > MinSuggestLength
}
