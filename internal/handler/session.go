package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/goshop/internal/model"
	"github.com/dukerupert/goshop/internal/shopping"
)

type SessionHandler struct {
	svc    *shopping.Service
	logger *slog.Logger
}

func NewSessionHandler(svc *shopping.Service, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, logger: logger}
}

type sessionResponse struct {
	Items    []model.CategoryGroup `json:"items"`
	InCart   []int64               `json:"in_cart"`
	Progress shopping.Progress     `json:"progress"`
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ActiveItems()
	if err != nil {
		writeError(w, h.logger, err, "load session")
		return
	}
	cart := h.svc.Cart()
	resp := sessionResponse{
		Items:    shopping.GroupByCategory(items),
		InCart:   cart.IDs(),
		Progress: shopping.SessionProgress(items, cart.Has),
	}
	if resp.Items == nil {
		resp.Items = []model.CategoryGroup{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.SessionNotes()
	if err != nil {
		writeError(w, h.logger, err, "list notes")
		return
	}
	if notes == nil {
		notes = []model.SessionNote{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *SessionHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID int64  `json:"item_id"`
		Note   string `json:"note"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	note, err := h.svc.AddSessionNote(req.ItemID, req.Note)
	if err != nil {
		writeError(w, h.logger, err, "add note")
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (h *SessionHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.svc.DeleteSessionNote(id); err != nil {
		writeError(w, h.logger, err, "delete note")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) ToggleCart(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return
	}
	inCart, err := h.svc.ToggleCart(id)
	if err != nil {
		writeError(w, h.logger, err, "update cart")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "in_cart": inCart})
}

func (h *SessionHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearCart()
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Share(w http.ResponseWriter, r *http.Request) {
	text, err := h.svc.ShareSession()
	if err != nil {
		writeError(w, h.logger, err, "build share text")
		return
	}
	writeText(w, http.StatusOK, "text/plain; charset=utf-8", text)
}

func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	text, err := h.svc.ExportSessionList()
	if err != nil {
		writeError(w, h.logger, err, "export session")
		return
	}
	writeText(w, http.StatusOK, "text/plain; charset=utf-8", text)
}

func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.CompleteSession()
	if err != nil {
		writeError(w, h.logger, err, "complete session")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
