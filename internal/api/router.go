package api

import (
	"sales-report/internal/api/handler"
	"sales-report/pkg/router"

	_ "sales-report/docs"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// NewRouter wires the report endpoints and the swagger UI
func NewRouter(h *handler.ReportHandler, logger *zap.Logger) *router.Router {
	r := router.New(logger)
	RegisterRoutes(r, h)
	return r
}

func RegisterRoutes(r *router.Router, h *handler.ReportHandler) {
	r.GET("/api/v1/health", h.Health)
	r.GET("/api/v1/summary", h.GetSummary)
	r.POST("/api/v1/reports", h.CreateReport)
	r.GET("/swagger/*", httpSwagger.WrapHandler)
}
