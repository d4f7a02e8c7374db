// Package categorizer maps free-text expense descriptions to categories
// with a deterministic keyword score.
package categorizer

import (
	"regexp"
	"strings"

	"github.com/expenseiq/expenseiq/internal/lexicon"
	"github.com/expenseiq/expenseiq/internal/model"
)

const (
	exactMatchBonus   = 10
	wordBoundaryBonus = 5
)

type keyword struct {
	text string
	word *regexp.Regexp
}

type scorer struct {
	category model.Category
	keywords []keyword
}

// scorers is built once from the lexicon and keeps its order.
var scorers = func() []scorer {
	var out []scorer
	for _, e := range lexicon.All() {
		s := scorer{category: e.Category}
		for _, kw := range e.Keywords {
			s.keywords = append(s.keywords, keyword{
				text: kw,
				word: regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`),
			})
		}
		out = append(out, s)
	}
	return out
}()

// Score is the keyword score of one category for a description.
type Score struct {
	Category model.Category
	Points   int
}

// Categorize returns the best-matching category for description. The
// strictly highest score wins, ties go to the earlier category in
// enumeration order, and a description with no keyword hits is "other".
func Categorize(description string) model.Category {
	best := model.CategoryOther
	highest := 0
	for _, s := range Scores(description) {
		if s.Points > highest {
			highest = s.Points
			best = s.Category
		}
	}
	return best
}

// Scores returns the score of every category in enumeration order.
// Surrounding whitespace is ignored, so " coffee " still counts as an
// exact match.
func Scores(description string) []Score {
	desc := strings.ToLower(strings.TrimSpace(description))
	out := make([]Score, 0, len(scorers))
	for _, s := range scorers {
		points := 0
		if desc != "" {
			points = s.score(desc)
		}
		out = append(out, Score{Category: s.category, Points: points})
	}
	return out
}

func (s scorer) score(desc string) int {
	points := 0
	for _, kw := range s.keywords {
		if !strings.Contains(desc, kw.text) {
			continue
		}
		points += len(kw.text)
		if desc == kw.text {
			points += exactMatchBonus
		}
		if kw.word.MatchString(desc) {
			points += wordBoundaryBonus
		}
	}
	return points
}
