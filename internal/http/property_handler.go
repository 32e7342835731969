package httpapi

import (
	"net/http"

	"staywise-data/internal/service"

	"go.uber.org/zap"
)

// PropertyHandler 物业管理 Handler（楼栋/房间/床位/看板）
type PropertyHandler struct {
	propertyService service.PropertyService
	logger          *zap.Logger
}

// NewPropertyHandler 创建物业 Handler
func NewPropertyHandler(propertyService service.PropertyService, logger *zap.Logger) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
		logger:          logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *PropertyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 路由分发
	switch r.URL.Path {
	case "/api/v1/buildings":
		switch r.Method {
		case http.MethodGet:
			h.ListBuildings(w, r)
		case http.MethodPost:
			h.CreateBuilding(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "/api/v1/rooms":
		switch r.Method {
		case http.MethodGet:
			h.ListRooms(w, r)
		case http.MethodPost:
			h.CreateRoom(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "/api/v1/beds":
		switch r.Method {
		case http.MethodGet:
			h.ListBeds(w, r)
		case http.MethodPost:
			h.CreateBed(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "/api/v1/occupancy":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Occupancy(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// CreateBuilding 创建楼栋
func (h *PropertyHandler) CreateBuilding(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req service.CreateBuildingRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	req.OwnerID = p.OwnerID

	b, err := h.propertyService.CreateBuilding(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(b))
}

// ListBuildings 楼栋列表（带房间/床位统计）
func (h *PropertyHandler) ListBuildings(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	list, err := h.propertyService.ListBuildings(r.Context(), p.OwnerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(list))
}

// CreateRoom 创建房间
func (h *PropertyHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req service.CreateRoomRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	req.OwnerID = p.OwnerID

	room, err := h.propertyService.CreateRoom(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(room))
}

// ListRooms 房间列表（可按楼栋过滤）
func (h *PropertyHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	buildingID := r.URL.Query().Get("buildingId")
	list, err := h.propertyService.ListRooms(r.Context(), p.OwnerID, buildingID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(list))
}

// CreateBed 创建床位
func (h *PropertyHandler) CreateBed(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req service.CreateBedRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	req.OwnerID = p.OwnerID

	bed, err := h.propertyService.CreateBed(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(bed))
}

// ListBeds 床位列表（可按房间/状态过滤，带当前租客）
func (h *PropertyHandler) ListBeds(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	q := r.URL.Query()
	list, err := h.propertyService.ListBeds(r.Context(), p.OwnerID, q.Get("roomId"), q.Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(list))
}

// Occupancy 入住看板
func (h *PropertyHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	sum, err := h.propertyService.Occupancy(r.Context(), p.OwnerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(sum))
}
