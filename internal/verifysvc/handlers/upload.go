package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/veritag/veriqr-services/internal/verifysvc/excel"
)

// BulkUploadHandler ingests a product spreadsheet. The reconciler summary is
// returned bare (not enveloped) because its shape is the import contract.
func (h *Handler) BulkUploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.CreateResponse(w, Response{Message: "No file uploaded", Code: 400})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		h.CreateResponse(w, Response{
			Message: "Invalid file type. Please upload an Excel file (.xlsx or .xls)",
			Code:    400,
		})
		return
	}

	rows, err := excel.ParseProducts(file)
	if err != nil {
		var schemaErr *excel.SchemaError
		switch {
		case errors.Is(err, excel.ErrEmptyFile):
			h.CreateResponse(w, Response{Message: "Excel file is empty or has no valid data rows", Code: 400})
		case errors.As(err, &schemaErr):
			h.CreateResponse(w, Response{Message: schemaErr.Error(), Code: 400})
		default:
			h.CreateResponse(w, Response{
				Message: "Failed to parse Excel file. Please check the file format.",
				Code:    400,
				Error:   err.Error(),
			})
		}
		return
	}

	summary, err := h.importService.Reconcile(r.Context(), rows)
	if err != nil {
		log.Errorf("Error [ImportService.Reconcile] %s", err)
		h.CreateResponse(w, Response{Message: "Internal server error", Code: 500, Error: "bulk import failed"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
