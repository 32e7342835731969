package domain

// 床位状态机：AVAILABLE → OCCUPIED → AVAILABLE → …（循环，无终态）
const (
	BedAvailable = "AVAILABLE"
	BedOccupied  = "OCCUPIED"
)

// Bed 床位领域模型（对应 beds 表）
// 不变量：bed.status == OCCUPIED 当且仅当恰有一条 ACTIVE 租约引用它；
// 状态翻转必须与租约变更在同一事务内提交
type Bed struct {
	BedID     string `db:"bed_id"`
	OwnerID   string `db:"owner_id"`
	RoomID    string `db:"room_id"`
	BedNumber string `db:"bed_number"`
	Status    string `db:"status"`
}

// Occupy AVAILABLE → OCCUPIED。前置状态不满足返回 Conflict，不静默覆盖
func (b *Bed) Occupy() error {
	if b.Status != BedAvailable {
		return Conflictf("bed %s is currently occupied", b.BedNumber)
	}
	b.Status = BedOccupied
	return nil
}

// Release OCCUPIED → AVAILABLE，由退租触发
func (b *Bed) Release() error {
	if b.Status != BedOccupied {
		return Conflictf("bed %s is not occupied", b.BedNumber)
	}
	b.Status = BedAvailable
	return nil
}
