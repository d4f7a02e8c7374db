// Package api exposes the tracker over a JSON HTTP interface.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/expenseiq/expenseiq/internal/logger"
	"github.com/expenseiq/expenseiq/internal/validator"
)

const shutdownTimeout = 5 * time.Second

// NewRouter builds the Gin engine with every route registered.
func NewRouter(h *Handler) *gin.Engine {
	validator.Register()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogging())
	router.Use(CORS())

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	expenses := v1.Group("/expenses")
	expenses.GET("", h.ListExpenses)
	expenses.POST("", h.CreateExpense)
	expenses.GET("/:id", h.GetExpense)
	expenses.DELETE("/:id", h.DeleteExpense)

	categories := v1.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.GET("/suggest", h.SuggestCategory)

	charts := v1.Group("/charts")
	charts.GET("/category", h.CategoryChart)
	charts.GET("/trend", h.TrendChart)

	v1.GET("/dashboard", h.Dashboard)
	v1.GET("/insights", h.Insights)
	v1.GET("/export", h.Export)
	v1.POST("/import", h.Import)

	return router
}

// Serve runs handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Get().Infof("Starting ExpenseIQ server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Get().Infow("shutting down server", "addr", addr)
	return srv.Shutdown(shutdownCtx)
}
