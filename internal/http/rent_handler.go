package httpapi

import (
	"fmt"
	"net/http"

	"staywise-data/internal/service"

	"go.uber.org/zap"
)

// RentHandler 租金账单 Handler
type RentHandler struct {
	rentService service.RentService
	logger      *zap.Logger
}

// NewRentHandler 创建账单 Handler
func NewRentHandler(rentService service.RentService, logger *zap.Logger) *RentHandler {
	return &RentHandler{
		rentService: rentService,
		logger:      logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *RentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 路由分发
	switch r.URL.Path {
	case "/api/v1/rent":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.GetForPeriod(w, r)
	case "/api/v1/rent/mark-paid":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.MarkPaid(w, r)
	case "/api/v1/rent/mark-unpaid":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.MarkUnpaid(w, r)
	case "/api/v1/rent/summary":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Summary(w, r)
	case "/api/v1/rent/export":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Export(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func periodRequest(r *http.Request, ownerID string) service.RentPeriodRequest {
	q := r.URL.Query()
	return service.RentPeriodRequest{
		OwnerID: ownerID,
		Year:    parseInt(q.Get("year"), 0),
		Month:   parseInt(q.Get("month"), 0),
	}
}

// GetForPeriod 账期账单（缺失的惰性创建）
func (h *RentHandler) GetForPeriod(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	resp, err := h.rentService.GetRentForPeriod(r.Context(), periodRequest(r, p.OwnerID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// MarkPaid 标记已缴
func (h *RentHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req service.MarkPaidRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	req.OwnerID = p.OwnerID

	payment, err := h.rentService.MarkPaid(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(payment))
}

// MarkUnpaid 回退未缴
func (h *RentHandler) MarkUnpaid(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req struct {
		PaymentID string `json:"paymentId"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	payment, err := h.rentService.MarkUnpaid(r.Context(), p.OwnerID, req.PaymentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(payment))
}

// Summary 当前账期汇总
func (h *RentHandler) Summary(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	sum, err := h.rentService.Summary(r.Context(), p.OwnerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(sum))
}

// Export 导出账期账单 XLSX
func (h *RentHandler) Export(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	data, filename, err := h.rentService.Export(r.Context(), periodRequest(r, p.OwnerID))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
