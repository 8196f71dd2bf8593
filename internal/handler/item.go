package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/goshop/internal/model"
	"github.com/dukerupert/goshop/internal/shopping"
)

type ItemHandler struct {
	svc    *shopping.Service
	logger *slog.Logger
}

func NewItemHandler(svc *shopping.Service, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{svc: svc, logger: logger}
}

type itemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	// Suggest picks a category from the name when Category is blank.
	Suggest bool `json:"suggest"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Search(r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, h.logger, err, "list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) Grouped(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Search(r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, h.logger, err, "list items")
		return
	}
	groups := shopping.GroupByCategory(items)
	if groups == nil {
		groups = []model.CategoryGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Suggest && req.Category == "" {
		req.Category = h.svc.SuggestCategory(req.Name)
	}

	item, err := h.svc.AddItem(req.Name, req.Category)
	if err != nil {
		writeError(w, h.logger, err, "create item")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req itemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.svc.UpdateItem(id, req.Name, req.Category)
	if err != nil {
		writeError(w, h.logger, err, "update item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return
	}
	item, err := h.svc.ToggleActive(id)
	if err != nil {
		writeError(w, h.logger, err, "update item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.svc.DeleteItem(id); err != nil {
		writeError(w, h.logger, err, "delete item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.DeleteAll()
	if err != nil {
		writeError(w, h.logger, err, "delete items")
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (h *ItemHandler) SelectAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.SelectAll(r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, h.logger, err, "select items")
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (h *ItemHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ClearAll(r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, h.logger, err, "clear items")
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (h *ItemHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"category": h.svc.SuggestCategory(r.URL.Query().Get("name")),
	})
}
