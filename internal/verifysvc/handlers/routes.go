package handlers

import (
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		// public routes
		r.Get("/health", h.HealthHandler)
		r.Get("/scan/verify", h.VerifyScanHandler)
		r.Get("/products/{productId}/qr", h.ProductQRHandler)

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Post("/products", h.CreateProductHandler)
			r.Get("/products", h.ListProductsHandler)
			r.Get("/products/{productId}", h.GetProductHandler)
			r.Patch("/products/{productId}/status", h.UpdateProductStatusHandler)
			r.Delete("/products/{productId}", h.DeleteProductHandler)

			r.Post("/upload/excel", h.BulkUploadHandler)
			r.Post("/qr/bulk-download", h.BulkDownloadQRHandler)
		})
	})
}
