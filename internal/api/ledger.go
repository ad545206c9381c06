package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/ledger"
	"github.com/starford/folio/internal/models"
)

func kindParam(r *http.Request) (models.Kind, error) {
	kind, err := models.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return "", fmt.Errorf("%s: %w", err.Error(), apperr.ErrInvalidArgument)
	}
	return kind, nil
}

// LedgerState handles GET /api/ledger.
//
//	@Summary		Everything the visitor has opened, plus flags
//	@Tags			ledger
//	@Produce		json
//	@Success		200	{object}	ledger.State
//	@Router			/ledger [get]
func (h *Handler) LedgerState(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.State(r.Context(), visitorFrom(r))
	if err != nil {
		writeError(w, "ledger state", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// MarkViewed handles POST /api/ledger/{kind}/{id}.
//
//	@Summary		Record that the visitor opened an item
//	@Tags			ledger
//	@Produce		json
//	@Param			kind	path		string	true	"notes or events"
//	@Param			id		path		int		true	"Item id"
//	@Success		200		{object}	MarkViewedResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/ledger/{kind}/{id} [post]
func (h *Handler) MarkViewed(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, "mark viewed", err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		writeError(w, "mark viewed", err)
		return
	}
	added, err := h.svc.MarkViewed(r.Context(), visitorFrom(r), kind, id)
	if err != nil {
		writeError(w, "mark viewed", err)
		return
	}
	writeJSON(w, http.StatusOK, MarkViewedResponse{Kind: kind, ID: id, Added: added})
}

// Highlight handles GET /api/ledger/{kind}/{id}/highlight?entry=&open=.
//
//	@Summary		Whether an item should be marked as unseen
//	@Tags			ledger
//	@Produce		json
//	@Param			kind	path		string	true	"notes or events"
//	@Param			id		path		int		true	"Item id"
//	@Param			entry	query		int		false	"Item the visitor arrived at"
//	@Param			open	query		int		false	"Item currently open"
//	@Success		200		{object}	portfolio.Highlight
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/ledger/{kind}/{id}/highlight [get]
func (h *Handler) Highlight(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, "highlight", err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		writeError(w, "highlight", err)
		return
	}
	q := r.URL.Query()
	entry, err := positiveInt(q.Get("entry"), "entry", true)
	if err != nil {
		writeError(w, "highlight", err)
		return
	}
	open, err := positiveInt(q.Get("open"), "open", true)
	if err != nil {
		writeError(w, "highlight", err)
		return
	}
	res, err := h.svc.Highlight(r.Context(), visitorFrom(r), kind, id, entry, open)
	if err != nil {
		writeError(w, "highlight", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SetFlag handles PUT /api/ledger/flags/{flag} with body {"value": bool}.
//
//	@Summary		Set a visitor flag
//	@Tags			ledger
//	@Accept			json
//	@Produce		json
//	@Param			flag	path		string			true	"Flag name"
//	@Param			body	body		SetFlagRequest	true	"New value"
//	@Success		200		{object}	FlagResponse
//	@Failure		400		{object}	errResponse
//	@Router			/ledger/flags/{flag} [put]
func (h *Handler) SetFlag(w http.ResponseWriter, r *http.Request) {
	flag, err := ledger.ParseFlag(chi.URLParam(r, "flag"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<10)
	var req SetFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("body must be {\"value\": bool}"))
		return
	}
	if err := h.svc.SetFlag(r.Context(), visitorFrom(r), flag, *req.Value); err != nil {
		writeError(w, "set flag", err)
		return
	}
	writeJSON(w, http.StatusOK, FlagResponse{Flag: flag, Value: *req.Value})
}

// LedgerReset handles DELETE /api/ledger.
//
//	@Summary		Forget everything the visitor has seen
//	@Tags			ledger
//	@Success		204
//	@Router			/ledger [delete]
func (h *Handler) LedgerReset(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reset(r.Context(), visitorFrom(r)); err != nil {
		writeError(w, "ledger reset", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stream handles GET /api/ledger/stream.
//
//	@Summary		Server-sent ledger and content updates
//	@Tags			ledger
//	@Produce		text/event-stream
//	@Success		200
//	@Router			/ledger/stream [get]
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	h.broker.Serve(w, r, visitorFrom(r))
}
