package domain

import (
	"database/sql"
	"time"
)

// 物业类型：HOUSE 不细分房间/床位，租约可直接挂在楼栋上
const (
	BuildingPG     = "PG"
	BuildingOffice = "OFFICE"
	BuildingHouse  = "HOUSE"
	BuildingShop   = "SHOP"
)

// Building 楼栋领域模型（对应 buildings 表）
type Building struct {
	BuildingID string         `db:"building_id"`
	OwnerID    string         `db:"owner_id"`
	Name       string         `db:"name"`
	Address    sql.NullString `db:"address"`
	Type       string         `db:"building_type"`

	// Serial 楼栋序号，首次向该楼栋添加租客时惰性分配（事务内 get-or-create）
	Serial sql.NullInt64 `db:"serial"`

	CreatedAt time.Time `db:"created_at"`
}

// ValidBuildingType 校验物业类型
func ValidBuildingType(t string) bool {
	switch t {
	case BuildingPG, BuildingOffice, BuildingHouse, BuildingShop:
		return true
	}
	return false
}
