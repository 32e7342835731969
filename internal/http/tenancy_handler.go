package httpapi

import (
	"net/http"

	"staywise-data/internal/service"

	"go.uber.org/zap"
)

// TenancyHandler 租客与租约 Handler
type TenancyHandler struct {
	tenancyService service.TenancyService
	logger         *zap.Logger
}

// NewTenancyHandler 创建租约 Handler
func NewTenancyHandler(tenancyService service.TenancyService, logger *zap.Logger) *TenancyHandler {
	return &TenancyHandler{
		tenancyService: tenancyService,
		logger:         logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *TenancyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 路由分发
	switch r.URL.Path {
	case "/api/v1/tenants":
		switch r.Method {
		case http.MethodGet:
			h.ListActive(w, r)
		case http.MethodPost:
			h.CreateTenant(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "/api/v1/tenants/assign":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Assign(w, r)
	case "/api/v1/tenants/vacate":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Vacate(w, r)
	case "/api/v1/tenants/me":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.MyAssignment(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// CreateTenant 建档租客（不分配床位）
func (h *TenancyHandler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req service.CreateTenantRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	req.OwnerID = p.OwnerID

	resp, err := h.tenancyService.CreateTenant(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(resp))
}

// ListActive 在租列表
func (h *TenancyHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	list, err := h.tenancyService.ListActive(r.Context(), p.OwnerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(list))
}

// MyAssignment 租客门户：自己的在租信息
func (h *TenancyHandler) MyAssignment(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	view, err := h.tenancyService.MyAssignment(r.Context(), p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(view))
}

// Assign 入住
func (h *TenancyHandler) Assign(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req service.AssignRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	req.OwnerID = p.OwnerID

	resp, err := h.tenancyService.Assign(r.Context(), req)
	if err != nil {
		h.logger.Warn("Assign failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(resp))
}

// Vacate 退租
func (h *TenancyHandler) Vacate(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req service.VacateRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	req.OwnerID = p.OwnerID

	if err := h.tenancyService.Vacate(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"vacated": true}))
}
