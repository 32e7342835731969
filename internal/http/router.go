package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterAuthRoutes 注册认证路由（无需 Token）
func (r *Router) RegisterAuthRoutes(h *AuthHandler) {
	r.Handle("/api/v1/auth/register", h.ServeHTTP)
	r.Handle("/api/v1/auth/login", h.ServeHTTP)
}

// RegisterPropertyRoutes 物业路由（OWNER/MANAGER）
func (r *Router) RegisterPropertyRoutes(auth *AuthMiddleware, h *PropertyHandler) {
	guarded := auth.Wrap(RequireManage(h.ServeHTTP))
	r.Handle("/api/v1/buildings", guarded)
	r.Handle("/api/v1/rooms", guarded)
	r.Handle("/api/v1/beds", guarded)
	r.Handle("/api/v1/occupancy", guarded)
}

// RegisterTenancyRoutes 租约路由（管理端 OWNER/MANAGER；/me 是租客门户）
func (r *Router) RegisterTenancyRoutes(auth *AuthMiddleware, h *TenancyHandler) {
	guarded := auth.Wrap(RequireManage(h.ServeHTTP))
	r.Handle("/api/v1/tenants", guarded)
	r.Handle("/api/v1/tenants/assign", guarded)
	r.Handle("/api/v1/tenants/vacate", guarded)
	r.Handle("/api/v1/tenants/me", auth.Wrap(h.ServeHTTP))
}

// RegisterRentRoutes 账单路由（OWNER/MANAGER）
func (r *Router) RegisterRentRoutes(auth *AuthMiddleware, h *RentHandler) {
	guarded := auth.Wrap(RequireManage(h.ServeHTTP))
	r.Handle("/api/v1/rent", guarded)
	r.Handle("/api/v1/rent/mark-paid", guarded)
	r.Handle("/api/v1/rent/mark-unpaid", guarded)
	r.Handle("/api/v1/rent/summary", guarded)
	r.Handle("/api/v1/rent/export", guarded)
}

// RegisterComplaintRoutes 投诉路由（角色门禁在 service 层：
// 发起限 TENANT，改状态限 OWNER/MANAGER，列表按身份过滤）
func (r *Router) RegisterComplaintRoutes(auth *AuthMiddleware, h *ComplaintHandler) {
	guarded := auth.Wrap(h.ServeHTTP)
	r.Handle("/api/v1/complaints", guarded)
	r.Handle("/api/v1/complaints/status", guarded)
}

// RegisterReceiptRoutes 收据路由（OWNER/MANAGER）
func (r *Router) RegisterReceiptRoutes(auth *AuthMiddleware, h *ReceiptHandler) {
	r.Handle("/api/v1/receipts/", auth.Wrap(RequireManage(h.ServeHTTP)))
}

// RegisterHealthRoute 健康检查
func (r *Router) RegisterHealthRoute() {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
