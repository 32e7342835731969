package domain

import "database/sql"

// Room 房间领域模型（对应 rooms 表）
// owner_id 冗余存储，便于按业主直接过滤
type Room struct {
	RoomID     string        `db:"room_id"`
	OwnerID    string        `db:"owner_id"`
	BuildingID string        `db:"building_id"`
	RoomNumber string        `db:"room_number"`
	Floor      sql.NullInt64 `db:"floor"`
}
