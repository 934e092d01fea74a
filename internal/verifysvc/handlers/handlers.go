package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"

	"github.com/veritag/veriqr-services/internal/verifysvc/service"
)

type Handler struct {
	tokenAuth      *jwtauth.JWTAuth
	verifyService  *service.VerifyService
	productService *service.ProductService
	importService  *service.ImportService
	qrService      *service.QRService
	maxUploadBytes int64
}

func NewHandler(verifySvc *service.VerifyService, productSvc *service.ProductService,
	importSvc *service.ImportService, qrSvc *service.QRService, maxUploadBytes int64) *Handler {
	return &Handler{
		verifyService:  verifySvc,
		productService: productSvc,
		importService:  importSvc,
		qrService:      qrSvc,
		maxUploadBytes: maxUploadBytes,
	}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

func (rs *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	json.NewEncoder(w).Encode(rsp)
}

func (h *Handler) InitAuth(secret string) {
	h.tokenAuth = jwtauth.New("HS256", []byte(secret), nil)
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "verify service is running",
		Code:    200,
		Data: map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}
	h.CreateResponse(w, rsp)
}

// VerifyScanHandler is the public anti-counterfeit endpoint. The payload's
// status field is the authoritative signal; the HTTP code mirrors it for
// plain clients.
func (h *Handler) VerifyScanHandler(w http.ResponseWriter, r *http.Request) {
	pid := r.URL.Query().Get("pid")

	result, err := h.verifyService.Verify(r.Context(), pid, r.RemoteAddr)
	if err != nil {
		log.Errorf("Error [VerifyService.Verify] %s", err)
		h.CreateResponse(w, Response{Message: "Internal server error", Code: 500, Error: "verification failed"})
		return
	}

	code := http.StatusOK
	switch result.Kind {
	case service.KindMalformed:
		code = http.StatusBadRequest
	case service.KindNotFound, service.KindExhausted:
		code = http.StatusNotFound
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(result)
}
