package handler

import (
	"errors"
	"net/http"
	"strings"

	"cross-market-pulse/internal/domain"
	"cross-market-pulse/internal/queries"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// ListQueries godoc
// @Summary      List the predefined query catalog
// @Description  Returns every predefined query grouped by topic, in display order
// @Tags         queries
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/queries [get]
func (h *Handler) ListQueries(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.list-queries")
	defer span.End()

	grouped := make(map[string][]queries.Entry, len(queries.Catalog))
	groups := queries.Groups()
	for _, g := range groups {
		grouped[g] = queries.ByGroup(g)
	}

	c.JSON(http.StatusOK, gin.H{
		"groups":  groups,
		"queries": grouped,
	})
}

type runQueryRequest struct {
	SQL string `json:"sql" binding:"required"`
}

// RunQuery godoc
// @Summary      Run a read-only SQL query
// @Description  Executes arbitrary query text and returns a tabular result.
// @Description  A malformed query returns 400 with the error message, never a crash.
// @Tags         queries
// @Accept       json
// @Produce      json
// @Param        request  body  runQueryRequest  true  "Query text"
// @Success      200  {object}  domain.ResultTable
// @Failure      400  {object}  map[string]string
// @Router       /api/queries/run [post]
func (h *Handler) RunQuery(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.run-query")
	defer span.End()

	var req runQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing sql field"})
		return
	}
	if strings.TrimSpace(req.SQL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty query"})
		return
	}

	table, err := h.explore.RunQuery(ctx, req.SQL)
	if err != nil {
		// A bad query is user input, not a server fault: report and move on.
		if errors.Is(err, domain.ErrQuery) {
			span.SetAttributes(attribute.String("query.error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "columns": []string{}, "rows": [][]any{}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, table)
}
