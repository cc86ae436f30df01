// internal/app/features/products/stats.go
package products

import (
	"context"
	"net/http"

	metricsstore "github.com/dalemusser/slothstore/internal/app/store/metrics"
	"github.com/dalemusser/slothstore/internal/app/system/httpx"
	"github.com/dalemusser/slothstore/internal/app/system/timeouts"
)

// ServeStats handles GET /products/stats: per-product stock and sold totals,
// their sums, and store-wide document counts.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	stats, err := h.Catalog.Stats(ctx)
	if err != nil {
		httpx.ServerError(w, r, h.Log, "products: stats failed", err)
		return
	}

	var totals statsTotals
	for _, s := range stats {
		totals.Stock += s.TotalStock
		totals.Sold += s.TotalSold
	}

	data := map[string]any{
		"products": stats,
		"totals":   totals,
	}
	if h.DB != nil {
		data["counts"] = metricsstore.FetchCounts(ctx, h.DB)
	}
	httpx.Success(w, http.StatusOK, map[string]any{"data": data})
}
