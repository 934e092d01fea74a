package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	log "github.com/sirupsen/logrus"

	"github.com/veritag/veriqr-services/internal/verifysvc/service"
	"github.com/veritag/veriqr-services/internal/verifysvc/store"
)

type createProductRequest struct {
	ProductId   string `json:"productId"`
	ProductName string `json:"productName"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateResponse(w, Response{Message: "Invalid request body", Code: 400, Error: err.Error()})
		return
	}

	product, err := h.productService.CreateProduct(r.Context(), req.ProductId, req.ProductName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			h.CreateResponse(w, Response{Message: err.Error(), Code: 400})
		case errors.Is(err, store.ErrDuplicate):
			h.CreateResponse(w, Response{Message: "Product with this ID already exists", Code: 409})
		default:
			log.Errorf("Error [ProductService.CreateProduct] %s", err)
			h.CreateResponse(w, Response{Message: "Internal server error", Code: 500, Error: "could not create product"})
		}
		return
	}

	h.CreateResponse(w, Response{Message: "Product created", Code: 201, Data: product})
}

func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	filter := store.ListFilter{
		Search: r.URL.Query().Get("search"),
		Status: r.URL.Query().Get("status"),
	}

	products, total, err := h.productService.ListProducts(r.Context(), filter, page, limit)
	if err != nil {
		log.Errorf("Error [ProductService.ListProducts] %s", err)
		h.CreateResponse(w, Response{Message: "Internal server error", Code: 500, Error: "could not list products"})
		return
	}

	pages := (total + int64(limit) - 1) / int64(limit)
	h.CreateResponse(w, Response{
		Code: 200,
		Data: map[string]interface{}{
			"products":   products,
			"pagination": pagination{Page: page, Limit: limit, Total: total, Pages: pages},
		},
	})
}

func (h *Handler) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	product, err := h.productService.GetProduct(r.Context(), productID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			h.CreateResponse(w, Response{Message: "Invalid product ID format", Code: 400})
		case errors.Is(err, store.ErrNotFound):
			h.CreateResponse(w, Response{Message: "Product not found", Code: 404})
		default:
			log.Errorf("Error [ProductService.GetProduct] %s", err)
			h.CreateResponse(w, Response{Message: "Internal server error", Code: 500, Error: "could not load product"})
		}
		return
	}

	h.CreateResponse(w, Response{Code: 200, Data: product})
}

func (h *Handler) UpdateProductStatusHandler(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateResponse(w, Response{Message: "Invalid request body", Code: 400, Error: err.Error()})
		return
	}

	product, err := h.productService.UpdateStatus(r.Context(), productID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			h.CreateResponse(w, Response{Message: err.Error(), Code: 400})
		case errors.Is(err, store.ErrNotFound):
			h.CreateResponse(w, Response{Message: "Product not found", Code: 404})
		default:
			log.Errorf("Error [ProductService.UpdateStatus] %s", err)
			h.CreateResponse(w, Response{Message: "Internal server error", Code: 500, Error: "could not update status"})
		}
		return
	}

	h.CreateResponse(w, Response{Message: "Product status updated", Code: 200, Data: product})
}

func (h *Handler) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	if err := h.productService.DeleteProduct(r.Context(), productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.CreateResponse(w, Response{Message: "Product not found", Code: 404})
			return
		}
		log.Errorf("Error [ProductService.DeleteProduct] %s", err)
		h.CreateResponse(w, Response{Message: "Internal server error", Code: 500, Error: "could not delete product"})
		return
	}

	h.CreateResponse(w, Response{Message: "Product deleted", Code: 200})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}
