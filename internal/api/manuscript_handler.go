package api

import (
	"net/http"
)

// SyncManuscript синхронизирует манускрипт проекта.
// POST /manuscript/sync
func (h *Handler) SyncManuscript(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if reqErr := decodeJSON(w, r, &req); reqErr != nil {
		reqErr.write(w)
		return
	}

	m, err := req.ToDomain()
	if err != nil {
		invalidManuscript(err).write(w)
		return
	}

	result, err := h.syncer.Sync(r.Context(), m)
	if err != nil {
		if r.Context().Err() != nil {
			h.logger.WarnContext(r.Context(), "client went away during sync", "project_id", m.ProjectID)
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	JSON(w, http.StatusOK, SyncFromDomain(result))
}
