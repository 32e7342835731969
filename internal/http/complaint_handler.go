package httpapi

import (
	"net/http"

	"staywise-data/internal/service"

	"go.uber.org/zap"
)

// ComplaintHandler 投诉 Handler
type ComplaintHandler struct {
	complaintService service.ComplaintService
	logger           *zap.Logger
}

// NewComplaintHandler 创建投诉 Handler
func NewComplaintHandler(complaintService service.ComplaintService, logger *zap.Logger) *ComplaintHandler {
	return &ComplaintHandler{
		complaintService: complaintService,
		logger:           logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *ComplaintHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 路由分发
	switch r.URL.Path {
	case "/api/v1/complaints":
		switch r.Method {
		case http.MethodGet:
			h.List(w, r)
		case http.MethodPost:
			h.File(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "/api/v1/complaints/status":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.SetStatus(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// File 租客发起投诉
func (h *ComplaintHandler) File(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req service.FileComplaintRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	c, err := h.complaintService.File(r.Context(), p, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(c))
}

// List 投诉列表（租客只看自己的）
func (h *ComplaintHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	q := r.URL.Query()
	resp, err := h.complaintService.List(r.Context(), p, parseInt(q.Get("page"), 1), parseInt(q.Get("size"), 20))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// SetStatus 标记解决/取消解决
func (h *ComplaintHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req service.SetComplaintStatusRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	c, err := h.complaintService.SetStatus(r.Context(), p, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(c))
}
