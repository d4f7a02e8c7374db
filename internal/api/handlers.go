package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/expenseiq/expenseiq/internal/errors"
	"github.com/expenseiq/expenseiq/internal/lexicon"
	"github.com/expenseiq/expenseiq/internal/model"
	"github.com/expenseiq/expenseiq/internal/snapshot"
	"github.com/expenseiq/expenseiq/internal/store"
	"github.com/expenseiq/expenseiq/internal/tracker"
	"github.com/expenseiq/expenseiq/internal/validator"
)

// maxImportBytes caps the size of an uploaded snapshot.
const maxImportBytes = 10 << 20

// Handler serves the expense endpoints.
type Handler struct {
	svc Service
}

// NewHandler creates a Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// withNotices gives each mutating request its own notice buffer so a
// warning only reaches the client whose request raised it.
func withNotices(c *gin.Context) (context.Context, *tracker.Collector) {
	notices := &tracker.Collector{}
	return tracker.WithNotifier(c.Request.Context(), notices), notices
}

func warnings(notices *tracker.Collector) []warningResponse {
	out := []warningResponse{}
	for _, n := range notices.Drain() {
		out = append(out, warningResponse{Level: string(n.Level), Message: n.Message})
	}
	return out
}

// ListExpenses handles GET /expenses.
func (h *Handler) ListExpenses(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	expenses := h.svc.List(store.Query{
		Search:   q.Search,
		Category: model.Category(q.Category),
		Limit:    q.Limit,
	})
	c.JSON(http.StatusOK, gin.H{"expenses": expenses, "count": len(expenses)})
}

// GetExpense handles GET /expenses/:id.
func (h *Handler) GetExpense(c *gin.Context) {
	e, err := h.svc.Get(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expense": e})
}

// CreateExpense handles POST /expenses.
func (h *Handler) CreateExpense(c *gin.Context) {
	var in tracker.NewExpense
	if err := c.ShouldBindJSON(&in); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	ctx, notices := withNotices(c)
	e, err := h.svc.AddExpense(ctx, in)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"expense": e, "warnings": warnings(notices)})
}

// DeleteExpense handles DELETE /expenses/:id.
func (h *Handler) DeleteExpense(c *gin.Context) {
	ctx, notices := withNotices(c)
	if err := h.svc.DeleteExpense(ctx, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id"), "warnings": warnings(notices)})
}

// ListCategories handles GET /categories.
func (h *Handler) ListCategories(c *gin.Context) {
	entries := lexicon.All()
	out := make([]CategoryResponse, 0, len(entries))
	for _, e := range entries {
		keywords := append([]string{}, e.Keywords...)
		out = append(out, CategoryResponse{
			Category: string(e.Category),
			Name:     e.Name,
			Icon:     e.Icon,
			Color:    e.Color,
			Keywords: keywords,
		})
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

// SuggestCategory handles GET /categories/suggest?description=. Short
// descriptions get a null suggestion.
func (h *Handler) SuggestCategory(c *gin.Context) {
	s, ok := h.svc.Suggestion(c.Query("description"))
	if !ok {
		c.JSON(http.StatusOK, gin.H{"suggestion": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestion": s})
}

// Dashboard handles GET /dashboard.
func (h *Handler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, newSummaryResponse(h.svc.DashboardSummary()))
}

// CategoryChart handles GET /charts/category.
func (h *Handler) CategoryChart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"points": newPointResponses(h.svc.CategoryChartSeries())})
}

// TrendChart handles GET /charts/trend.
func (h *Handler) TrendChart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"points": newPointResponses(h.svc.TrendChartSeries())})
}

// Insights handles GET /insights.
func (h *Handler) Insights(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"insights": h.svc.Insights()})
}

// Export handles GET /export and serves the snapshot as a download.
func (h *Handler) Export(c *gin.Context) {
	doc := h.svc.ExportSnapshot()
	data, err := snapshot.Encode(doc)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternal, err))
		return
	}
	name := fmt.Sprintf("expenseiq_data_%s.json", doc.ExportedAt.Format(model.DateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// Import handles POST /import. The request body is a snapshot document.
func (h *Handler) Import(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes+1))
	if err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	if len(data) > maxImportBytes {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Import file is too large"))
		return
	}
	ctx, notices := withNotices(c)
	n, err := h.svc.ImportSnapshot(ctx, data)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": n, "warnings": warnings(notices)})
}

// invalidInput turns a binding failure into an INVALID_INPUT error with
// readable field messages where available.
func invalidInput(err error) *apperrors.AppError {
	if msgs := validator.Messages(err); len(msgs) > 0 {
		return apperrors.WrapWithMessage(apperrors.ErrInvalidInput, msgs[0], err)
	}
	return apperrors.WrapWithMessage(apperrors.ErrInvalidInput, "Invalid request: "+err.Error(), err)
}
