package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"stock-dashboard/cache"
	"stock-dashboard/database"
	"stock-dashboard/logger"
	"stock-dashboard/models"
)

// StocksHandler serves stock rows from Postgres with a cache in front of
// the per-ticker and latest queries.
type StocksHandler struct {
	store database.StockStore
	cache cache.Cache
	ttl   time.Duration
	log   logger.Interface
}

func NewStocksHandler(store database.StockStore, c cache.Cache, ttl time.Duration, log logger.Interface) *StocksHandler {
	return &StocksHandler{store: store, cache: c, ttl: ttl, log: log}
}

func (h *StocksHandler) GetAllStocks(c *gin.Context) {
	stocks, err := h.store.All(c.Request.Context())
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving data"})
		return
	}
	c.JSON(http.StatusOK, stocks)
}

func (h *StocksHandler) GetLatest(c *gin.Context) {
	h.cached(c, cache.LatestKey, h.store.Latest)
}

func (h *StocksHandler) GetByTicker(c *gin.Context) {
	ticker := strings.ToUpper(c.Param("ticker"))
	h.cached(c, cache.HistoryKey(ticker), func(ctx context.Context) ([]models.StockRecord, error) {
		return h.store.ByTicker(ctx, ticker)
	})
}

// cached answers from the cache when it can, otherwise from load, and then
// fills the cache. Cache failures never fail the request.
func (h *StocksHandler) cached(c *gin.Context, key string, load func(context.Context) ([]models.StockRecord, error)) {
	ctx := c.Request.Context()

	var stocks []models.StockRecord
	err := h.cache.Get(ctx, key, &stocks)
	if err == nil {
		c.JSON(http.StatusOK, stocks)
		return
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		h.log.ErrorContext(ctx, err, logger.Field{Key: "cache_key", Value: key})
	}

	stocks, err = load(ctx)
	if err != nil {
		h.log.ErrorContext(ctx, err, logger.Field{Key: "cache_key", Value: key})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving data"})
		return
	}

	if err := h.cache.Set(ctx, key, stocks, h.ttl); err != nil {
		h.log.ErrorContext(ctx, err, logger.Field{Key: "cache_key", Value: key})
	}
	c.JSON(http.StatusOK, stocks)
}
