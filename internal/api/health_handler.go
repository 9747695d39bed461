package api

import (
	"net/http"
)

// Health отвечает на проверку живости.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "health check received")
	Text(w, http.StatusOK, "OK")
}
