package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/goshop/internal/csvimport"
	"github.com/dukerupert/goshop/internal/shopping"
)

type TransferHandler struct {
	svc    *shopping.Service
	logger *slog.Logger
}

func NewTransferHandler(svc *shopping.Service, logger *slog.Logger) *TransferHandler {
	return &TransferHandler{svc: svc, logger: logger}
}

func (h *TransferHandler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportBackup()
	if err != nil {
		writeError(w, h.logger, err, "export backup")
		return
	}
	writeText(w, http.StatusOK, "text/plain; charset=utf-8", data)
}

// ImportBackup replaces every item with the pasted backup string in the
// request body.
func (h *TransferHandler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeMessage(w, http.StatusRequestEntityTooLarge, "backup too large")
		return
	}

	n, err := h.svc.ImportBackup(string(body))
	if err != nil {
		writeError(w, h.logger, err, "import backup")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}

// ImportCSV accepts either a raw CSV body or a multipart upload with a "file"
// field.
func (h *TransferHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "please select a CSV file")
			return
		}
		defer file.Close()
		src = file
	}

	result, err := h.svc.ImportCSV(src)
	if err != nil {
		writeError(w, h.logger, err, "import CSV")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"imported": result.Imported,
		"skipped":  result.Skipped,
		"message":  result.String(),
	})
}

func (h *TransferHandler) CSVTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", `attachment; filename="`+csvimport.TemplateFilename+`"`)
	writeText(w, http.StatusOK, "text/csv; charset=utf-8", csvimport.Template())
}
