package httpapi

import (
	"net/http"
	"strings"

	"staywise-data/internal/service"

	"go.uber.org/zap"
)

// ReceiptHandler 收据 Handler
type ReceiptHandler struct {
	receiptService service.ReceiptService
	logger         *zap.Logger
}

// NewReceiptHandler 创建收据 Handler
func NewReceiptHandler(receiptService service.ReceiptService, logger *zap.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
		logger:         logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
// GET  /api/v1/receipts/{paymentId}
// POST /api/v1/receipts/{paymentId}/whatsapp
func (h *ReceiptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/receipts/")
	if rest == "" || rest == r.URL.Path {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if paymentID, ok := strings.CutSuffix(rest, "/whatsapp"); ok {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.SendWhatsApp(w, r, paymentID)
		return
	}
	if strings.Contains(rest, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.Get(w, r, rest)
}

// Get 渲染收据
func (h *ReceiptHandler) Get(w http.ResponseWriter, r *http.Request, paymentID string) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	receipt, err := h.receiptService.Get(r.Context(), p.OwnerID, paymentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(receipt))
}

// SendWhatsApp 收据发送给租客
func (h *ReceiptHandler) SendWhatsApp(w http.ResponseWriter, r *http.Request, paymentID string) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	resp, err := h.receiptService.SendWhatsApp(r.Context(), p.OwnerID, paymentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}
