package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/goshop/internal/shopping"
)

type CategoryHandler struct {
	svc    *shopping.Service
	logger *slog.Logger
}

func NewCategoryHandler(svc *shopping.Service, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{svc: svc, logger: logger}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories()
	if err != nil {
		writeError(w, h.logger, err, "list categories")
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	n, err := h.svc.RenameCategory(r.PathValue("name"), req.Name)
	if err != nil {
		writeError(w, h.logger, err, "rename category")
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.DeleteCategory(r.PathValue("name"))
	if err != nil {
		writeError(w, h.logger, err, "delete category")
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}
