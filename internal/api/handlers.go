package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"trading-journal/internal/importer"
	"trading-journal/internal/journal"
	"trading-journal/internal/models"
	"trading-journal/internal/store"
)

// Handler serves the journal API.
type Handler struct {
	Service *journal.Service
}

// Register mounts the journal routes on r.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/api/health", h.health)

	trades := r.Group("/api/trades")
	trades.GET("", h.listTrades)
	trades.POST("", h.createTrade)
	trades.POST("/preview", h.preview)
	trades.GET("/:id", h.getTrade)
	trades.PUT("/:id", h.updateTrade)
	trades.DELETE("/:id", h.deleteTrade)

	r.GET("/api/stats", h.stats)
	r.GET("/api/stats/setups", h.setupReport)

	r.GET("/api/setups", h.listSetups)
	r.POST("/api/setups", h.addSetup)

	r.POST("/api/import/validate", h.validateImport)
}

func (h *Handler) health(c *gin.Context) {
	if err := h.Service.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "ERROR", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Trading Journal API is running"})
}

func tradeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid trade id")
		return 0, false
	}
	return id, true
}

func (h *Handler) listTrades(c *gin.Context) {
	sortBy, err := store.ParseSortField(c.Query("sortBy"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	filter := store.TradeFilter{
		SortBy:    sortBy,
		Ascending: strings.EqualFold(c.Query("order"), "asc"),
		Symbol:    strings.TrimSpace(c.Query("symbol")),
		SetupName: strings.TrimSpace(c.Query("setup")),
	}
	if v := c.Query("flagged"); v != "" {
		flagged, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(c, "invalid flagged")
			return
		}
		filter.FlaggedOnly = flagged
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "invalid limit")
			return
		}
		filter.Limit = n
	}

	trades, err := h.Service.ListTrades(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, trades)
}

func (h *Handler) getTrade(c *gin.Context) {
	id, ok := tradeID(c)
	if !ok {
		return
	}
	trade, err := h.Service.GetTrade(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, trade)
}

func bindInput(c *gin.Context) (models.TradeInput, bool) {
	var in models.TradeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return in, false
	}
	return in, true
}

func (h *Handler) createTrade(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}
	trade, err := h.Service.CreateTrade(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":         trade.ID,
		"is_flagged": trade.IsFlagged,
		"message":    "Trade created successfully",
	})
}

func (h *Handler) updateTrade(c *gin.Context) {
	id, ok := tradeID(c)
	if !ok {
		return
	}
	in, ok := bindInput(c)
	if !ok {
		return
	}
	trade, err := h.Service.UpdateTrade(c.Request.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         trade.ID,
		"is_flagged": trade.IsFlagged,
		"message":    "Trade updated successfully",
	})
}

func (h *Handler) deleteTrade(c *gin.Context) {
	id, ok := tradeID(c)
	if !ok {
		return
	}
	if err := h.Service.DeleteTrade(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trade deleted successfully"})
}

// preview is lenient: incomplete bodies yield nil derived values.
func (h *Handler) preview(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Service.Preview(in))
}

func (h *Handler) stats(c *gin.Context) {
	summary, err := h.Service.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) setupReport(c *gin.Context) {
	report, err := h.Service.SetupReport(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) listSetups(c *gin.Context) {
	setups, err := h.Service.ListSetups(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, setups)
}

func (h *Handler) addSetup(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	setup, err := h.Service.AddSetup(c.Request.Context(), body.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":      setup.ID,
		"name":    setup.Name,
		"message": "Setup created successfully",
	})
}

// validateImport accepts candidate rows as JSON objects keyed by field
// name and reports their completeness.
func (h *Handler) validateImport(c *gin.Context) {
	var body struct {
		Rows []map[string]any `json:"rows"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	cs := make([]importer.Candidate, 0, len(body.Rows))
	for _, r := range body.Rows {
		cs = append(cs, importer.Candidate(r))
	}
	c.JSON(http.StatusOK, journal.ValidateCandidates(cs))
}
