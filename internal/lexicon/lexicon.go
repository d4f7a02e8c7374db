// Package lexicon holds the static category table: keywords used for
// scoring, plus the icon, display name and chart color of each category.
package lexicon

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/expenseiq/expenseiq/internal/model"
)

// Entry is the metadata for one category. Keywords are lower case and
// must be treated as read-only.
type Entry struct {
	Category model.Category
	Name     string
	Icon     string
	Color    string
	Keywords []string
}

// entries follows model.Categories() order.
var entries = []Entry{
	{
		Category: model.CategoryFood, Name: "Food & Dining", Icon: "🍔", Color: "#FF6384",
		Keywords: []string{
			"restaurant", "food", "lunch", "dinner", "breakfast", "cafe", "coffee",
			"pizza", "burger", "sandwich", "groceries", "supermarket", "starbucks",
			"mcdonalds", "kfc", "subway", "dominos", "meal", "snack", "drink",
			"market", "deli", "bakery", "kitchen", "dining", "eat", "hungry",
			"taco", "sushi", "chinese", "italian", "mexican", "thai", "indian",
		},
	},
	{
		Category: model.CategoryTransport, Name: "Transportation", Icon: "🚗", Color: "#36A2EB",
		Keywords: []string{
			"gas", "fuel", "uber", "lyft", "taxi", "bus", "train", "subway",
			"parking", "toll", "car", "bike", "flight", "airline", "airport",
			"metro", "transportation", "commute", "travel", "vehicle", "auto",
			"garage", "mechanic", "oil change", "tire", "repair",
		},
	},
	{
		Category: model.CategoryShopping, Name: "Shopping", Icon: "🛍️", Color: "#FFCE56",
		Keywords: []string{
			"amazon", "shop", "store", "mall", "purchase", "buy", "clothes",
			"clothing", "shoes", "electronics", "gadget", "phone", "laptop",
			"computer", "target", "walmart", "costco", "online", "delivery",
			"order", "fashion", "accessories", "jewelry", "watch", "bag",
		},
	},
	{
		Category: model.CategoryEntertainment, Name: "Entertainment", Icon: "🎬", Color: "#4BC0C0",
		Keywords: []string{
			"movie", "cinema", "theater", "netflix", "spotify", "game", "gaming",
			"concert", "show", "ticket", "event", "party", "bar", "pub",
			"club", "entertainment", "fun", "hobby", "book", "magazine",
			"subscription", "youtube", "streaming", "music", "video",
		},
	},
	{
		Category: model.CategoryBills, Name: "Bills & Utilities", Icon: "💡", Color: "#9966FF",
		Keywords: []string{
			"electric", "electricity", "water", "gas", "internet", "phone",
			"mobile", "bill", "utility", "rent", "mortgage", "insurance",
			"cable", "wifi", "heating", "cooling", "power", "energy",
			"subscription", "service", "monthly", "payment", "due",
		},
	},
	{
		Category: model.CategoryHealth, Name: "Healthcare", Icon: "🏥", Color: "#FF9F40",
		Keywords: []string{
			"doctor", "hospital", "pharmacy", "medicine", "medical", "health",
			"dental", "dentist", "checkup", "appointment", "prescription",
			"clinic", "therapy", "treatment", "surgery", "medication",
			"vitamins", "supplements", "fitness", "gym", "wellness",
		},
	},
	{
		Category: model.CategoryEducation, Name: "Education", Icon: "📚", Color: "#FF6384",
		Keywords: []string{
			"school", "college", "university", "tuition", "books", "course",
			"class", "education", "learning", "student", "study", "training",
			"workshop", "seminar", "certification", "exam", "fee", "academic",
		},
	},
	{
		Category: model.CategoryTravel, Name: "Travel", Icon: "✈️", Color: "#C9CBCF",
		Keywords: []string{
			"hotel", "flight", "vacation", "trip", "travel", "booking",
			"airbnb", "resort", "cruise", "tour", "sightseeing", "luggage",
			"passport", "visa", "tourism", "adventure", "holiday", "journey",
		},
	},
	{
		Category: model.CategoryOther, Name: "Other", Icon: "📦", Color: "#4BC0C0",
	},
}

var byCategory = func() map[model.Category]Entry {
	m := make(map[model.Category]Entry, len(entries))
	for _, e := range entries {
		m[e.Category] = e
	}
	return m
}()

// maxSuggestDistance bounds the edit distance of a "did you mean" hint.
const maxSuggestDistance = 3

// All returns every entry in enumeration order.
func All() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Lookup returns the entry for c.
func Lookup(c model.Category) (Entry, bool) {
	e, ok := byCategory[c]
	return e, ok
}

// Name returns the display name of c, or the raw tag if c is unknown.
func Name(c model.Category) string {
	if e, ok := byCategory[c]; ok {
		return e.Name
	}
	return string(c)
}

// Icon returns the icon glyph of c, falling back to the "other" icon.
func Icon(c model.Category) string {
	if e, ok := byCategory[c]; ok {
		return e.Icon
	}
	return byCategory[model.CategoryOther].Icon
}

// Color returns the chart color of c, falling back to the "other" color.
func Color(c model.Category) string {
	if e, ok := byCategory[c]; ok {
		return e.Color
	}
	return byCategory[model.CategoryOther].Color
}

// Parse resolves user input to a category. Tags and display names are
// matched case-insensitively. Unknown input yields an error that names the
// closest category when one is near enough.
func Parse(input string) (model.Category, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	for _, e := range entries {
		if s == string(e.Category) || s == strings.ToLower(e.Name) {
			return e.Category, nil
		}
	}
	if near, ok := Closest(s); ok {
		return "", fmt.Errorf("unknown category %q (did you mean %q?)", input, near)
	}
	return "", fmt.Errorf("unknown category %q", input)
}

// Closest returns the category tag with the smallest edit distance to s,
// provided the distance is small enough to be a plausible typo.
func Closest(s string) (model.Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}
	best := model.Category("")
	bestDist := maxSuggestDistance + 1
	for _, e := range entries {
		d := levenshtein.ComputeDistance(s, string(e.Category))
		if d < bestDist {
			best, bestDist = e.Category, d
		}
	}
	return best, best != ""
}
