package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal/internal/config"
	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/journal"
	"trading-journal/internal/models"
	"trading-journal/internal/store"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	svc := journal.NewService(s, zerolog.Nop())
	return NewRouter(svc, config.ServerConfig{Mode: gin.TestMode}, zerolog.Nop())
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func tradeBody() map[string]any {
	return map[string]any{
		"symbol":        "BANKNIFTY",
		"timeframe":     "15m",
		"direction":     "Short",
		"datetime":      "2024-03-01T10:00",
		"entry_price":   100,
		"stop_loss":     105,
		"take_profit":   90,
		"risk_amount":   25,
		"position_size": 5,
		"setup_name":    "Reversal",
		"htf_trend":     "Downtrend",
		"confirmations": []string{"Delta", "Structure"},
		"exit_price":    90,
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]string](t, w)
	assert.Equal(t, "OK", body["status"])
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodOptions, "/api/trades", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSRestrictedOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestTradeLifecycle(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/trades", tradeBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	assert.Equal(t, "Trade created successfully", created["message"])
	id := int64(created["id"].(float64))
	require.NotZero(t, id)

	path := "/api/trades/" + strconv.FormatInt(id, 10)
	w = do(t, r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	trade := decode[models.Trade](t, w)
	assert.Equal(t, "BANKNIFTY", trade.Symbol)
	assert.Equal(t, models.TrendDown, trade.HTFTrend)
	require.NotNil(t, trade.RMultiple)
	assert.InDelta(t, 2.0, *trade.RMultiple, 1e-9)
	require.NotNil(t, trade.PnL)
	assert.InDelta(t, 50.0, *trade.PnL, 1e-9)
	assert.False(t, trade.IsFlagged)

	update := tradeBody()
	update["sl_moved"] = true
	w = do(t, r, http.MethodPut, path, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[map[string]any](t, w)
	assert.Equal(t, true, updated["is_flagged"])

	w = do(t, r, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Trade not found", decode[map[string]string](t, w)["error"])
}

func TestCreateTradeIgnoresClientFlag(t *testing.T) {
	r := newTestRouter(t)

	body := tradeBody()
	body["is_flagged"] = true
	body["pnl"] = 99999

	w := do(t, r, http.MethodPost, "/api/trades", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, false, decode[map[string]any](t, w)["is_flagged"])
}

func TestCreateTradeValidationError(t *testing.T) {
	r := newTestRouter(t)

	body := tradeBody()
	body["direction"] = "Up"

	w := do(t, r, http.MethodPost, "/api/trades", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "direction")
}

func TestBadTradeID(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/trades/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPut, "/api/trades/9999", tradeBody())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListTradesSortingAndFilter(t *testing.T) {
	r := newTestRouter(t)

	for _, dt := range []string{"2024-03-01T10:00", "2024-03-02T10:00"} {
		body := tradeBody()
		body["datetime"] = dt
		require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/api/trades", body).Code)
	}
	flagged := tradeBody()
	flagged["followed_rules"] = false
	flagged["datetime"] = "2024-02-01T10:00"
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/api/trades", flagged).Code)

	w := do(t, r, http.MethodGet, "/api/trades", nil)
	require.Equal(t, http.StatusOK, w.Code)
	trades := decode[[]models.Trade](t, w)
	require.Len(t, trades, 3)
	assert.Equal(t, 2, trades[0].DateTime.Day())

	w = do(t, r, http.MethodGet, "/api/trades?sortBy=datetime&order=asc", nil)
	trades = decode[[]models.Trade](t, w)
	require.Len(t, trades, 3)
	assert.Equal(t, 2, int(trades[0].DateTime.Month()))

	w = do(t, r, http.MethodGet, "/api/trades?flagged=true", nil)
	trades = decode[[]models.Trade](t, w)
	require.Len(t, trades, 1)
	assert.True(t, trades[0].IsFlagged)

	w = do(t, r, http.MethodGet, "/api/trades?flagged=false", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Trade](t, w), 3)

	w = do(t, r, http.MethodGet, "/api/trades?sortBy=pnl", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/trades?flagged=yes", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/trades/preview", map[string]any{
		"direction":   "Long",
		"entry_price": 100,
		"stop_loss":   95,
		"take_profit": 105,
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Nil(t, body["pnl"])
	assert.Nil(t, body["r_multiple"])
	assert.Equal(t, 1.0, body["risk_reward"])
	assert.Equal(t, true, body["is_flagged"])

	trades := decode[[]models.Trade](t, do(t, r, http.MethodGet, "/api/trades", nil))
	assert.Empty(t, trades)
}

func TestPreviewEndpoint_Direction(t *testing.T) {
	r := newTestRouter(t)
	body := func(dir string) map[string]any {
		return map[string]any{
			"direction":     dir,
			"entry_price":   100,
			"stop_loss":     95,
			"take_profit":   110,
			"position_size": 10,
			"exit_price":    108,
		}
	}

	for _, dir := range []string{"", "Sideways"} {
		w := do(t, r, http.MethodPost, "/api/trades/preview", body(dir))
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[map[string]any](t, w)
		for _, field := range []string{"pnl", "r_multiple", "outcome", "risk_reward", "is_flagged"} {
			assert.Nil(t, got[field], "direction %q field %s", dir, field)
		}
	}

	w := do(t, r, http.MethodPost, "/api/trades/preview", body("buy"))
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string]any](t, w)
	assert.Equal(t, 80.0, got["pnl"])
	assert.Equal(t, 1.6, got["r_multiple"])
	assert.Equal(t, "Win", got["outcome"])
	assert.Equal(t, 2.0, got["risk_reward"])
}

func TestStatsEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	empty := decode[models.StatsSummary](t, w)
	assert.Zero(t, empty.TotalTrades)
	assert.Equal(t, "N/A", empty.BestSetup.Name)

	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/api/trades", tradeBody()).Code)

	summary := decode[models.StatsSummary](t, do(t, r, http.MethodGet, "/api/stats", nil))
	assert.Equal(t, 1, summary.TotalTrades)
	assert.Equal(t, 100.0, summary.WinRate)
	assert.Equal(t, 2.0, summary.AvgR)
	assert.Equal(t, "Reversal", summary.BestSetup.Name)

	w = do(t, r, http.MethodGet, "/api/stats/setups", nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[journal.Report](t, w)
	require.Len(t, report.Setups, 1)
}

func TestSetupEndpoints(t *testing.T) {
	r := newTestRouter(t)

	setups := decode[[]models.Setup](t, do(t, r, http.MethodGet, "/api/setups", nil))
	assert.Len(t, setups, len(store.DefaultSetups))

	w := do(t, r, http.MethodPost, "/api/setups", map[string]string{"name": "Gap Fill"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Gap Fill", decode[map[string]any](t, w)["name"])

	w = do(t, r, http.MethodPost, "/api/setups", map[string]string{"name": "Gap Fill"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Setup name already exists", decode[map[string]string](t, w)["error"])

	w = do(t, r, http.MethodPost, "/api/setups", map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateImportEndpoint(t *testing.T) {
	r := newTestRouter(t)

	complete := tradeBody()
	complete["entry_reason"] = "failed breakout"
	partial := tradeBody()
	delete(partial, "symbol")

	w := do(t, r, http.MethodPost, "/api/import/validate", map[string]any{
		"rows": []any{complete, partial},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	v := decode[journal.Validation](t, w)
	assert.Equal(t, 1, v.Complete)
	assert.Equal(t, 1, v.FirstIncomplete)
	require.Len(t, v.Rows, 2)
	assert.Contains(t, v.Rows[1].Missing, "symbol")
	assert.Contains(t, v.Rows[1].Missing, "entry_reason")
}

func TestErrorStatus(t *testing.T) {
	status, msg := errorStatus(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, assert.AnError.Error(), msg)

	status, msg = errorStatus(apperrors.NewStoreError("list trades", assert.AnError))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Database error", msg)

	status, msg = errorStatus(apperrors.NewStoreError("get trade", apperrors.ErrTradeNotFound))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Trade not found", msg)
}
