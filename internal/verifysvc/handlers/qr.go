package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	log "github.com/sirupsen/logrus"

	"github.com/veritag/veriqr-services/internal/verifysvc/service"
	"github.com/veritag/veriqr-services/internal/verifysvc/store"
)

type bulkDownloadRequest struct {
	ProductIds []string `json:"productIds"`
}

// ProductQRHandler serves the printable QR PNG for one product. Public so
// print shops can fetch codes without an admin token.
func (h *Handler) ProductQRHandler(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	pngData, err := h.qrService.ProductPNG(r.Context(), productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.CreateResponse(w, Response{Message: "Product not found", Code: 404})
			return
		}
		log.Errorf("Error [QRService.ProductPNG] %s", err)
		h.CreateResponse(w, Response{Message: "Internal server error", Code: 500, Error: "could not render QR"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=qr_%s.png", productID))
	w.Write(pngData)
}

// BulkDownloadQRHandler zips QR images for the selected products; an empty
// or missing selection means all products.
func (h *Handler) BulkDownloadQRHandler(w http.ResponseWriter, r *http.Request) {
	var req bulkDownloadRequest
	if r.Body != nil {
		// tolerate an empty body, it means "all products"
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	var buf bytes.Buffer
	n, err := h.qrService.BulkArchive(r.Context(), req.ProductIds, &buf)
	if err != nil {
		if errors.Is(err, service.ErrNoProducts) {
			h.CreateResponse(w, Response{Message: "No products found", Code: 404})
			return
		}
		log.Errorf("Error [QRService.BulkArchive] %s", err)
		h.CreateResponse(w, Response{Message: "Internal server error", Code: 500, Error: "could not build archive"})
		return
	}

	log.Infof("bulk QR download of %d products", n)

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=qr_codes_%d.zip", time.Now().Unix()))
	w.Write(buf.Bytes())
}
