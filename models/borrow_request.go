// models/borrow_request.go
package models

import "time"

const RequestTable = "abl_borrow_requests"

// 存储状态机：overdue 不落库，由 lifecycle.Classify 动态计算
type BorrowStatus string

const (
	StatusPending  BorrowStatus = "pending"
	StatusApproved BorrowStatus = "approved"
	StatusBorrowed BorrowStatus = "borrowed"
	StatusReturned BorrowStatus = "returned"
	StatusLost     BorrowStatus = "lost"
)

func ValidStatus(s BorrowStatus) bool {
	switch s {
	case StatusPending, StatusApproved, StatusBorrowed, StatusReturned, StatusLost:
		return true
	}
	return false
}

// 设备类别，和借用表单的下拉一致
var AssetTypes = []string{
	"headset", "yubikey", "keyboard", "mouse", "laptop", "monitor",
	"lan_cable", "hdmi", "power_cable", "projector", "projector_screen",
	"led_tv", "flashdrive", "ups", "type_c_adaptor", "nuc", "other",
}

func ValidAssetType(t string) bool {
	for _, a := range AssetTypes {
		if a == t {
			return true
		}
	}
	return false
}

type BorrowRequest struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	RequestCode string `gorm:"size:32;uniqueIndex;not null" json:"requestCode"` // ABL-YYYYMMDD-NNNN
	TicketID    string `gorm:"size:64;index;not null" json:"ticketId"`

	BorrowerName  string `gorm:"size:200;not null" json:"borrowerName"`
	BorrowerEmail string `gorm:"size:255;index;not null" json:"borrowerEmail"` // 写入时统一小写
	Department    string `gorm:"size:120" json:"department,omitempty"`

	AssetType  string `gorm:"size:40;not null" json:"assetType"`
	AssetLabel string `gorm:"size:120" json:"assetLabel,omitempty"`
	Reason     string `gorm:"size:500;not null" json:"reason"`

	Status     BorrowStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	BorrowedAt time.Time    `gorm:"index;not null" json:"borrowedAt"`
	DueAt      time.Time    `gorm:"index;not null" json:"dueAt"`
	ReturnedAt *time.Time   `gorm:"index" json:"returnedAt,omitempty"` // 仅在 status=returned 时非空

	ITOwner *string `gorm:"type:uuid" json:"itOwner,omitempty"`
	Notes   string  `gorm:"size:500" json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (BorrowRequest) TableName() string { return RequestTable }
