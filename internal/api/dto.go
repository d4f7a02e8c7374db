package api

import (
	"github.com/expenseiq/expenseiq/internal/chart"
	"github.com/expenseiq/expenseiq/internal/lexicon"
	"github.com/expenseiq/expenseiq/internal/tracker"
)

// ListQuery is bound from GET /expenses query parameters.
type ListQuery struct {
	Search   string `form:"q" json:"q"`
	Category string `form:"category" json:"category" binding:"omitempty,category"`
	Limit    int    `form:"limit" json:"limit" binding:"omitempty,min=1,max=1000"`
}

// SummaryResponse is the dashboard headline.
type SummaryResponse struct {
	TotalThisMonth            float64 `json:"totalThisMonth"`
	TransactionCountThisMonth int     `json:"transactionCountThisMonth"`
	TopCategoryThisMonth      *string `json:"topCategoryThisMonth"`
	TopCategoryName           string  `json:"topCategoryName"`
}

func newSummaryResponse(s tracker.Summary) SummaryResponse {
	out := SummaryResponse{
		TotalThisMonth:            s.TotalThisMonth.InexactFloat64(),
		TransactionCountThisMonth: s.TransactionCountThisMonth,
		TopCategoryName:           "None",
	}
	if s.TopCategoryThisMonth != "" {
		tag := string(s.TopCategoryThisMonth)
		out.TopCategoryThisMonth = &tag
		out.TopCategoryName = lexicon.Name(s.TopCategoryThisMonth)
	}
	return out
}

// PointResponse is one chart point.
type PointResponse struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
	Date  string  `json:"date,omitempty"`
}

func newPointResponses(points []chart.Point) []PointResponse {
	out := make([]PointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, PointResponse{
			Label: p.Label,
			Value: p.Value.InexactFloat64(),
			Color: p.Color,
			Date:  p.Date.String(),
		})
	}
	return out
}

// CategoryResponse describes one lexicon entry.
type CategoryResponse struct {
	Category string   `json:"category"`
	Name     string   `json:"name"`
	Icon     string   `json:"icon"`
	Color    string   `json:"color"`
	Keywords []string `json:"keywords"`
}

type warningResponse struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}
