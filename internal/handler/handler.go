package handler

import (
	"cross-market-pulse/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer  trace.Tracer
	explore *service.ExploreService
}

func New(tracer trace.Tracer, explore *service.ExploreService) *Handler {
	return &Handler{
		tracer:  tracer,
		explore: explore,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/queries", h.ListQueries)
	r.POST("/api/queries/run", h.RunQuery)
	r.GET("/api/averages", h.GetAverages)
	r.GET("/api/snapshot", h.GetSnapshot)
	r.GET("/api/coins", h.ListCoins)
	r.GET("/api/coins/:id/prices", h.GetCoinPrices)
}
