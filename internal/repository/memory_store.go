package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"staywise-data/internal/domain"

	"github.com/google/uuid"
)

// MemoryStore 内存实现：DB 未就绪时支撑本地联测，也是 service 单测的
// 快速后端。跨实体的原子单元（入住/退租/账单物化）用同一把锁模拟
// 数据库事务，保证与 Postgres 实现相同的不变量
type MemoryStore struct {
	mu sync.Mutex

	owners      map[string]*domain.Owner
	users       map[string]*domain.User
	buildings   map[string]*domain.Building
	rooms       map[string]*domain.Room
	beds        map[string]*domain.Bed
	assignments map[string]*domain.TenantAssignment
	payments    map[string]*domain.Payment
	complaints  map[string]*domain.Complaint
	notifs      map[string]*domain.Notification

	nextOwnerSerial int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		owners:      map[string]*domain.Owner{},
		users:       map[string]*domain.User{},
		buildings:   map[string]*domain.Building{},
		rooms:       map[string]*domain.Room{},
		beds:        map[string]*domain.Bed{},
		assignments: map[string]*domain.TenantAssignment{},
		payments:    map[string]*domain.Payment{},
		complaints:  map[string]*domain.Complaint{},
		notifs:      map[string]*domain.Notification{},
	}
}

// 确保实现了全部接口
var (
	_ OwnersRepository        = (*MemoryStore)(nil)
	_ UsersRepository         = (*MemoryStore)(nil)
	_ PropertiesRepository    = (*MemoryStore)(nil)
	_ AssignmentsRepository   = (*MemoryStore)(nil)
	_ PaymentsRepository      = (*MemoryStore)(nil)
	_ ComplaintsRepository    = (*MemoryStore)(nil)
	_ NotificationsRepository = (memoryNotifications{})
)

// --- Owners ---

func (s *MemoryStore) RegisterOwner(_ context.Context, name, email, phone string, passwordHash []byte) (*domain.Owner, *domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUserByEmail(email) != nil {
		return nil, nil, domain.Conflictf("user with this email already exists")
	}

	s.nextOwnerSerial++
	owner := &domain.Owner{
		OwnerID:   uuid.NewString(),
		Name:      name,
		Email:     email,
		Serial:    s.nextOwnerSerial,
		CreatedAt: time.Now(),
	}
	if phone != "" {
		owner.Phone = sql.NullString{String: phone, Valid: true}
	}
	s.owners[owner.OwnerID] = owner

	user := &domain.User{
		UserID:       uuid.NewString(),
		Owner:        domain.LinkedTo(owner.OwnerID),
		Name:         name,
		Email:        email,
		Phone:        owner.Phone,
		PasswordHash: passwordHash,
		Role:         domain.RoleOwner,
		CreatedAt:    time.Now(),
	}
	s.users[user.UserID] = user
	return owner, user, nil
}

func (s *MemoryStore) GetOwner(_ context.Context, ownerID string) (*domain.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.owners[ownerID]
	if !ok {
		return nil, domain.NotFoundf("owner not found")
	}
	cp := *o
	return &cp, nil
}

// --- Users ---

func (s *MemoryStore) findUserByEmail(email string) *domain.User {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.findUserByEmail(email)
	if u == nil {
		return nil, domain.NotFoundf("user not found")
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetUser(_ context.Context, userID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, domain.NotFoundf("user not found")
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) CreateTenant(_ context.Context, ownerID string, p NewTenantUser) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUserByEmail(p.Email) != nil {
		return nil, domain.Conflictf("user email already exists")
	}
	u := &domain.User{
		UserID:       uuid.NewString(),
		Owner:        domain.LinkedTo(ownerID),
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Role:         domain.RoleTenant,
		CreatedAt:    time.Now(),
	}
	if p.Phone != "" {
		u.Phone = sql.NullString{String: p.Phone, Valid: true}
	}
	s.users[u.UserID] = u
	cp := *u
	return &cp, nil
}

// --- Properties ---

func (s *MemoryStore) CreateBuilding(_ context.Context, ownerID, name, address, buildingType string) (*domain.Building, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := &domain.Building{
		BuildingID: uuid.NewString(),
		OwnerID:    ownerID,
		Name:       name,
		Type:       buildingType,
		CreatedAt:  time.Now(),
	}
	if address != "" {
		b.Address = sql.NullString{String: address, Valid: true}
	}
	s.buildings[b.BuildingID] = b
	cp := *b
	return &cp, nil
}

func (s *MemoryStore) GetBuilding(_ context.Context, ownerID, buildingID string) (*domain.Building, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buildings[buildingID]
	if !ok || b.OwnerID != ownerID {
		return nil, domain.NotFoundf("building not found")
	}
	cp := *b
	return &cp, nil
}

func (s *MemoryStore) ListBuildings(_ context.Context, ownerID string) ([]BuildingView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]BuildingView, 0)
	for _, b := range s.buildings {
		if b.OwnerID != ownerID {
			continue
		}
		v := BuildingView{Building: *b}
		for _, r := range s.rooms {
			if r.BuildingID == b.BuildingID {
				v.RoomCount++
			}
		}
		items = append(items, v)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

func (s *MemoryStore) CreateRoom(_ context.Context, ownerID, buildingID, roomNumber string, floor sql.NullInt64) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buildings[buildingID]
	if !ok || b.OwnerID != ownerID {
		return nil, domain.NotFoundf("building not found")
	}
	for _, existing := range s.rooms {
		if existing.BuildingID == buildingID && existing.RoomNumber == roomNumber {
			return nil, domain.Conflictf("room number already exists in building")
		}
	}
	r := &domain.Room{
		RoomID:     uuid.NewString(),
		OwnerID:    ownerID,
		BuildingID: buildingID,
		RoomNumber: roomNumber,
		Floor:      floor,
	}
	s.rooms[r.RoomID] = r
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) ListRooms(_ context.Context, ownerID, buildingID string) ([]RoomView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]RoomView, 0)
	for _, r := range s.rooms {
		if r.OwnerID != ownerID {
			continue
		}
		if buildingID != "" && r.BuildingID != buildingID {
			continue
		}
		v := RoomView{Room: *r}
		if b, ok := s.buildings[r.BuildingID]; ok {
			v.BuildingName = b.Name
		}
		for _, bd := range s.beds {
			if bd.RoomID == r.RoomID {
				v.BedCount++
			}
		}
		items = append(items, v)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].RoomNumber < items[j].RoomNumber })
	return items, nil
}

func (s *MemoryStore) CreateBed(_ context.Context, ownerID, roomID, bedNumber string) (*domain.Bed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomID]
	if !ok || r.OwnerID != ownerID {
		return nil, domain.NotFoundf("room not found")
	}
	for _, existing := range s.beds {
		if existing.RoomID == roomID && existing.BedNumber == bedNumber {
			return nil, domain.Conflictf("bed number already exists in room")
		}
	}
	bd := &domain.Bed{
		BedID:     uuid.NewString(),
		OwnerID:   ownerID,
		RoomID:    roomID,
		BedNumber: bedNumber,
		Status:    domain.BedAvailable,
	}
	s.beds[bd.BedID] = bd
	cp := *bd
	return &cp, nil
}

func (s *MemoryStore) ListBeds(_ context.Context, ownerID, roomID, status string) ([]BedView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]BedView, 0)
	for _, bd := range s.beds {
		if bd.OwnerID != ownerID {
			continue
		}
		if roomID != "" && bd.RoomID != roomID {
			continue
		}
		if status != "" && bd.Status != status {
			continue
		}
		v := BedView{Bed: *bd}
		if r, ok := s.rooms[bd.RoomID]; ok {
			v.RoomNumber = r.RoomNumber
			if b, ok := s.buildings[r.BuildingID]; ok {
				v.BuildingName = b.Name
			}
		}
		for _, a := range s.assignments {
			if a.BedID.Valid && a.BedID.String == bd.BedID && a.Status == domain.AssignmentActive {
				if u, ok := s.users[a.TenantID]; ok {
					v.TenantName = u.Name
					v.TenantEmail = u.Email
				}
			}
		}
		items = append(items, v)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].BedNumber < items[j].BedNumber })
	return items, nil
}

func (s *MemoryStore) Occupancy(_ context.Context, ownerID string) (*OccupancySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum OccupancySummary
	for _, bd := range s.beds {
		if bd.OwnerID != ownerID {
			continue
		}
		sum.TotalBeds++
		if bd.Status == domain.BedOccupied {
			sum.OccupiedBeds++
		} else {
			sum.AvailableBeds++
		}
	}
	for _, a := range s.assignments {
		if a.OwnerID == ownerID && a.Status == domain.AssignmentActive {
			sum.ActiveTenants++
		}
	}
	return &sum, nil
}

// --- Assignments ---

func (s *MemoryStore) Assign(_ context.Context, ownerID string, p AssignParams) (*AssignResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bedID := sql.NullString{}
	roomID := sql.NullString{}
	buildingID := sql.NullString{}

	var bed *domain.Bed
	if p.BedID != "" {
		bd, ok := s.beds[p.BedID]
		if !ok || bd.OwnerID != ownerID {
			return nil, domain.NotFoundf("bed not found")
		}
		// 先在副本上做状态机检查，提交点再落地（模拟事务原子性）
		check := *bd
		if err := check.Occupy(); err != nil {
			return nil, err
		}
		bed = bd
		bedID = sql.NullString{String: bd.BedID, Valid: true}
		roomID = sql.NullString{String: bd.RoomID, Valid: true}
		if r, ok := s.rooms[bd.RoomID]; ok {
			buildingID = sql.NullString{String: r.BuildingID, Valid: true}
		}
	} else if p.RoomID != "" {
		r, ok := s.rooms[p.RoomID]
		if !ok || r.OwnerID != ownerID {
			return nil, domain.NotFoundf("room not found")
		}
		roomID = sql.NullString{String: r.RoomID, Valid: true}
		buildingID = sql.NullString{String: r.BuildingID, Valid: true}
	} else if p.BuildingID != "" {
		b, ok := s.buildings[p.BuildingID]
		if !ok || b.OwnerID != ownerID {
			return nil, domain.NotFoundf("building not found")
		}
		buildingID = sql.NullString{String: b.BuildingID, Valid: true}
	} else {
		return nil, domain.Invalidf("assignment target is required")
	}

	result := &AssignResult{}
	var pendingUser *domain.User
	var pendingNotif *domain.Notification
	var linkTenant *domain.User

	if p.NewTenant != nil {
		if s.findUserByEmail(p.NewTenant.Email) != nil {
			return nil, domain.Conflictf("user email already exists")
		}
		owner, ok := s.owners[ownerID]
		if !ok {
			return nil, domain.NotFoundf("owner not found")
		}
		owner.NextTenantSerial++
		tenantSerial := owner.NextTenantSerial

		buildingSerial := 0
		if buildingID.Valid {
			b := s.buildings[buildingID.String]
			if b.Serial.Valid {
				buildingSerial = int(b.Serial.Int64)
			} else {
				owner.NextBuildingSerial++
				buildingSerial = owner.NextBuildingSerial
				b.Serial = sql.NullInt64{Int64: int64(buildingSerial), Valid: true}
			}
		}
		code := domain.TenantCode(owner.Serial, buildingSerial, tenantSerial)

		pendingUser = &domain.User{
			UserID:       uuid.NewString(),
			Owner:        domain.LinkedTo(ownerID),
			Name:         p.NewTenant.Name,
			Email:        p.NewTenant.Email,
			PasswordHash: p.NewTenant.PasswordHash,
			Role:         domain.RoleTenant,
			Serial:       sql.NullInt64{Int64: int64(tenantSerial), Valid: true},
			TenantCode:   sql.NullString{String: code, Valid: true},
			CreatedAt:    time.Now(),
		}
		if p.NewTenant.Phone != "" {
			pendingUser.Phone = sql.NullString{String: p.NewTenant.Phone, Valid: true}
		}
		pendingNotif = &domain.Notification{
			NotificationID: uuid.NewString(),
			OwnerID:        ownerID,
			UserID:         pendingUser.UserID,
			Channel:        "WHATSAPP",
			Message:        fmt.Sprintf("Welcome %s! Your tenant code is %s.", p.NewTenant.Name, code),
			Status:         domain.NotificationQueued,
			CreatedAt:      time.Now(),
		}
		result.TenantID = pendingUser.UserID
		result.TenantCode = code
	} else {
		u, ok := s.users[p.TenantID]
		if !ok || u.Role != domain.RoleTenant {
			return nil, domain.NotFoundf("tenant not found")
		}
		newLink, err := u.Owner.LinkTo(ownerID)
		if err != nil {
			return nil, err
		}
		if !u.Owner.Linked() {
			linkTenant = u
			_ = newLink
		}
		result.TenantID = u.UserID
	}

	// 同一租客至多一条 ACTIVE 租约
	for _, a := range s.assignments {
		if a.TenantID == result.TenantID && a.Status == domain.AssignmentActive {
			return nil, domain.Conflictf("tenant or bed already has an active assignment")
		}
	}

	// 提交点：以上校验全部通过后一次性落地
	a := &domain.TenantAssignment{
		AssignmentID: uuid.NewString(),
		OwnerID:      ownerID,
		TenantID:     result.TenantID,
		BedID:        bedID,
		RoomID:       roomID,
		BuildingID:   buildingID,
		StartDate:    p.StartDate,
		MonthlyRent:  p.MonthlyRent,
		Deposit:      p.Deposit,
		Status:       domain.AssignmentActive,
		CreatedAt:    time.Now(),
	}
	if bed != nil {
		bed.Status = domain.BedOccupied
	}
	if pendingUser != nil {
		s.users[pendingUser.UserID] = pendingUser
	}
	if pendingNotif != nil {
		s.notifs[pendingNotif.NotificationID] = pendingNotif
	}
	if linkTenant != nil {
		linkTenant.Owner = domain.LinkedTo(ownerID)
	}
	s.assignments[a.AssignmentID] = a
	result.Assignment = *a
	return result, nil
}

func (s *MemoryStore) Vacate(_ context.Context, ownerID, assignmentID, note string) (*domain.TenantAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assignments[assignmentID]
	if !ok || a.OwnerID != ownerID || a.Status != domain.AssignmentActive {
		return nil, domain.NotFoundf("active assignment not found")
	}
	if err := a.End(time.Now(), note); err != nil {
		return nil, err
	}
	if a.BedID.Valid {
		if bd, ok := s.beds[a.BedID.String]; ok {
			bd.Status = domain.BedAvailable
		}
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) ListActive(_ context.Context, ownerID string) ([]AssignmentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]AssignmentView, 0)
	for _, a := range s.assignments {
		if a.OwnerID != ownerID || a.Status != domain.AssignmentActive {
			continue
		}
		v := AssignmentView{
			AssignmentID: a.AssignmentID,
			TenantID:     a.TenantID,
			StartDate:    a.StartDate,
			MonthlyRent:  a.MonthlyRent,
			Status:       a.Status,
		}
		if a.Deposit.Valid {
			d := a.Deposit.Int64
			v.Deposit = &d
		}
		if u, ok := s.users[a.TenantID]; ok {
			v.TenantName = u.Name
			v.TenantEmail = u.Email
			if u.TenantCode.Valid {
				v.TenantCode = u.TenantCode.String
			}
		}
		if a.BedID.Valid {
			if bd, ok := s.beds[a.BedID.String]; ok {
				v.BedNumber = bd.BedNumber
			}
		}
		if a.RoomID.Valid {
			if r, ok := s.rooms[a.RoomID.String]; ok {
				v.RoomNumber = r.RoomNumber
			}
		}
		if a.BuildingID.Valid {
			if b, ok := s.buildings[a.BuildingID.String]; ok {
				v.BuildingName = b.Name
			}
		}
		items = append(items, v)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].StartDate.After(items[j].StartDate) })
	return items, nil
}

func (s *MemoryStore) ListActiveAssignments(_ context.Context, ownerID string) ([]domain.TenantAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.TenantAssignment, 0)
	for _, a := range s.assignments {
		if a.OwnerID == ownerID && a.Status == domain.AssignmentActive {
			items = append(items, *a)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].StartDate.After(items[j].StartDate) })
	return items, nil
}

func (s *MemoryStore) GetActiveByTenant(_ context.Context, tenantID string) (*domain.TenantAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.assignments {
		if a.TenantID == tenantID && a.Status == domain.AssignmentActive {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.NotFoundf("active assignment not found")
}

// --- Payments ---

func (s *MemoryStore) findPayment(assignmentID string, year, month int) *domain.Payment {
	for _, p := range s.payments {
		if p.AssignmentID == assignmentID && p.PeriodYear == year && p.PeriodMonth == month {
			return p
		}
	}
	return nil
}

func (s *MemoryStore) GetOrCreateForPeriod(_ context.Context, ownerID string, a domain.TenantAssignment, year, month int) (*domain.Payment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.findPayment(a.AssignmentID, year, month); existing != nil {
		cp := *existing
		return &cp, false, nil
	}
	p := &domain.Payment{
		PaymentID:    uuid.NewString(),
		OwnerID:      ownerID,
		AssignmentID: a.AssignmentID,
		PeriodYear:   year,
		PeriodMonth:  month,
		Amount:       a.MonthlyRent,
		Status:       domain.PaymentUnpaid,
		CreatedAt:    time.Now(),
	}
	s.payments[p.PaymentID] = p
	cp := *p
	return &cp, true, nil
}

func (s *MemoryStore) GetPayment(_ context.Context, ownerID, paymentID string) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[paymentID]
	if !ok || p.OwnerID != ownerID {
		return nil, domain.NotFoundf("payment not found")
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) MarkPaid(_ context.Context, ownerID, paymentID, method, reference, note string, at time.Time) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[paymentID]
	if !ok || p.OwnerID != ownerID {
		return nil, domain.NotFoundf("payment not found")
	}
	p.MarkPaid(at, method, reference, note)
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) MarkUnpaid(_ context.Context, ownerID, paymentID string) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[paymentID]
	if !ok || p.OwnerID != ownerID {
		return nil, domain.NotFoundf("payment not found")
	}
	p.MarkUnpaid()
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) SummaryForPeriod(_ context.Context, ownerID string, year, month int) (*domain.RentSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := domain.RentSummary{PeriodYear: year, PeriodMonth: month}
	for _, p := range s.payments {
		if p.OwnerID != ownerID || p.PeriodYear != year || p.PeriodMonth != month {
			continue
		}
		sum.TotalExpected += p.Amount
		switch p.Status {
		case domain.PaymentPaid:
			sum.TotalCollected += p.Amount
			sum.CountPaid++
		case domain.PaymentUnpaid:
			sum.CountUnpaid++
		}
	}
	sum.PendingValue = sum.TotalExpected - sum.TotalCollected
	return &sum, nil
}

func (s *MemoryStore) ListForPeriod(_ context.Context, ownerID string, year, month int) ([]RentRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]RentRow, 0)
	for _, p := range s.payments {
		if p.OwnerID != ownerID || p.PeriodYear != year || p.PeriodMonth != month {
			continue
		}
		row := RentRow{Payment: *p}
		if a, ok := s.assignments[p.AssignmentID]; ok {
			if u, ok := s.users[a.TenantID]; ok {
				row.TenantName = u.Name
				row.TenantEmail = u.Email
				if u.TenantCode.Valid {
					row.TenantCode = u.TenantCode.String
				}
			}
			if a.BedID.Valid {
				if bd, ok := s.beds[a.BedID.String]; ok {
					row.BedNumber = bd.BedNumber
				}
			}
			if a.RoomID.Valid {
				if r, ok := s.rooms[a.RoomID.String]; ok {
					row.RoomNumber = r.RoomNumber
				}
			}
			if a.BuildingID.Valid {
				if b, ok := s.buildings[a.BuildingID.String]; ok {
					row.BuildingName = b.Name
				}
			}
		}
		items = append(items, row)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].TenantName < items[j].TenantName
	})
	return items, nil
}

func (s *MemoryStore) GetReceiptData(_ context.Context, ownerID, paymentID string) (*ReceiptData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[paymentID]
	if !ok || p.OwnerID != ownerID {
		return nil, domain.NotFoundf("payment not found")
	}
	d := &ReceiptData{Payment: *p}
	if o, ok := s.owners[ownerID]; ok {
		d.OwnerName = o.Name
	}
	if a, ok := s.assignments[p.AssignmentID]; ok {
		d.TenantID = a.TenantID
		if u, ok := s.users[a.TenantID]; ok {
			d.TenantName = u.Name
			if u.Phone.Valid {
				d.TenantPhone = u.Phone.String
			}
		}
		if a.BedID.Valid {
			if bd, ok := s.beds[a.BedID.String]; ok {
				d.BedNumber = bd.BedNumber
			}
		}
		if a.RoomID.Valid {
			if r, ok := s.rooms[a.RoomID.String]; ok {
				d.RoomNumber = r.RoomNumber
			}
		}
		if a.BuildingID.Valid {
			if b, ok := s.buildings[a.BuildingID.String]; ok {
				d.BuildingName = b.Name
				if b.Address.Valid {
					d.Address = b.Address.String
				}
			}
		}
	}
	return d, nil
}

// --- Complaints ---

func (s *MemoryStore) Create(_ context.Context, ownerID, tenantID, title, description string) (*domain.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &domain.Complaint{
		ComplaintID: uuid.NewString(),
		OwnerID:     ownerID,
		TenantID:    tenantID,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now(),
	}
	s.complaints[c.ComplaintID] = c
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context, ownerID, tenantID string, page, size int) ([]ComplaintView, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]ComplaintView, 0)
	for _, c := range s.complaints {
		if c.OwnerID != ownerID {
			continue
		}
		if tenantID != "" && c.TenantID != tenantID {
			continue
		}
		v := ComplaintView{Complaint: *c}
		if u, ok := s.users[c.TenantID]; ok {
			v.TenantName = u.Name
			v.TenantEmail = u.Email
		}
		all = append(all, v)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 50
	}
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (s *MemoryStore) SetStatus(_ context.Context, ownerID, complaintID string, resolved bool, note string, at time.Time) (*domain.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.complaints[complaintID]
	if !ok || c.OwnerID != ownerID {
		return nil, domain.NotFoundf("complaint not found")
	}
	c.SetResolved(resolved, note, at)
	cp := *c
	return &cp, nil
}

// --- Notifications ---

// CreateNotification 实现 NotificationsRepository.Create 的语义；
// ComplaintsRepository.Create 占用了 Create 方法名，这里借包装器区分
func (s *MemoryStore) Notifications() NotificationsRepository {
	return memoryNotifications{s}
}

type memoryNotifications struct{ s *MemoryStore }

func (m memoryNotifications) Create(_ context.Context, ownerID, userID, channel, message string) (*domain.Notification, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	n := &domain.Notification{
		NotificationID: uuid.NewString(),
		OwnerID:        ownerID,
		UserID:         userID,
		Channel:        channel,
		Message:        message,
		Status:         domain.NotificationQueued,
		CreatedAt:      time.Now(),
	}
	m.s.notifs[n.NotificationID] = n
	cp := *n
	return &cp, nil
}

// NotificationCount 测试辅助：某用户的通知条数
func (s *MemoryStore) NotificationCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.notifs {
		if v.UserID == userID {
			n++
		}
	}
	return n
}
