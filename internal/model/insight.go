package model

// Insight is a generated observation about spending. Never persisted.
type Insight struct {
	Icon    string `json:"icon"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
