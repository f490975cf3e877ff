package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

const dateLayout = "2006-01-02"

// dateRange pulls start/end query params, defaulting to the trailing year.
func dateRange(c *gin.Context) (string, string, bool) {
	now := time.Now().UTC()
	start := c.DefaultQuery("start", now.AddDate(-1, 0, 0).Format(dateLayout))
	end := c.DefaultQuery("end", now.Format(dateLayout))

	for _, d := range []string{start, end} {
		if _, err := time.Parse(dateLayout, d); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD: " + d})
			return "", "", false
		}
	}
	return start, end, true
}

// GetAverages godoc
// @Summary      Average prices over a date range
// @Description  Returns the mean coin price, oil price, and index close for the range.
// @Description  Ranges with no data yield 0 rather than an error.
// @Tags         explore
// @Produce      json
// @Param        start   query  string  false  "Range start (YYYY-MM-DD)"
// @Param        end     query  string  false  "Range end (YYYY-MM-DD)"
// @Param        coin    query  string  false  "Coin id"    default(bitcoin)
// @Param        ticker  query  string  false  "Index ticker"  default(^GSPC)
// @Success      200  {object}  map[string]float64
// @Failure      400  {object}  map[string]string
// @Router       /api/averages [get]
func (h *Handler) GetAverages(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-averages")
	defer span.End()

	start, end, ok := dateRange(c)
	if !ok {
		return
	}
	coin := c.DefaultQuery("coin", "bitcoin")
	ticker := c.DefaultQuery("ticker", "^GSPC")
	span.SetAttributes(attribute.String("coin", coin), attribute.String("ticker", ticker))

	coinAvg, err := h.explore.AverageCoinPrice(ctx, coin, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	oilAvg, err := h.explore.AverageOilPrice(ctx, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	stockAvg, err := h.explore.AverageStockClose(ctx, ticker, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"coin_avg":  coinAvg,
		"oil_avg":   oilAvg,
		"stock_avg": stockAvg,
	})
}

// GetSnapshot godoc
// @Summary      Cross-market daily snapshot
// @Description  Dates where the primary coin, oil, and both snapshot indices all have prices
// @Tags         explore
// @Produce      json
// @Param        start  query  string  false  "Range start (YYYY-MM-DD)"
// @Param        end    query  string  false  "Range end (YYYY-MM-DD)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/snapshot [get]
func (h *Handler) GetSnapshot(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-snapshot")
	defer span.End()

	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	rows, err := h.explore.DailySnapshot(ctx, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"snapshot": rows})
}

// ListCoins godoc
// @Summary      List tracked coins
// @Description  Distinct coins present in the price history, ordered by id
// @Tags         explore
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/coins [get]
func (h *Handler) ListCoins(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-coins")
	defer span.End()

	coins, err := h.explore.ListTrackedCoins(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"coins": coins})
}

// GetCoinPrices godoc
// @Summary      Daily price series for one coin
// @Tags         explore
// @Produce      json
// @Param        id     path   string  true   "Coin id (e.g. bitcoin)"
// @Param        start  query  string  false  "Range start (YYYY-MM-DD)"
// @Param        end    query  string  false  "Range end (YYYY-MM-DD)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/coins/{id}/prices [get]
func (h *Handler) GetCoinPrices(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-coin-prices")
	defer span.End()

	coinID := c.Param("id")
	span.SetAttributes(attribute.String("coin", coinID))

	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	series, err := h.explore.CoinPriceSeries(ctx, coinID, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"coin_id": coinID, "prices": series})
}
