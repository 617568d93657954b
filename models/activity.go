package models

import "time"

const ActivityTable = "abl_activity_log"

// 动作标签，和活动日志里写入的值保持一致
const (
	ActionReturned = "status:returned"
	ActionLost     = "status:lost"
	ActionExtend   = "extend"
)

// ActivityEntry 借用单的只追加审计记录，写入后不再更新/删除
type ActivityEntry struct {
	ID              string  `gorm:"type:uuid;primaryKey" json:"id"`
	BorrowRequestID string  `gorm:"type:uuid;index;not null" json:"borrowRequestId"`
	Action          string  `gorm:"size:40;not null" json:"action"`
	ActorID         *string `gorm:"type:uuid" json:"actorId,omitempty"` // null = 系统/匿名
	Notes           string  `gorm:"size:500" json:"notes"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (ActivityEntry) TableName() string { return ActivityTable }
