package lifecycle

import (
	"time"

	"asset_borrow_ledger/models"
)

// SlaStats 监控面板顶部的汇总数字
type SlaStats struct {
	Active           int `json:"active"`
	DueSoon          int `json:"dueSoon"`
	Overdue          int `json:"overdue"`
	ReturnedThisWeek int `json:"returnedThisWeek"`

	// 无任何归还记录时为 nil（前端显示 "--"），避免除零
	AvgDurationDays *float64 `json:"avgDurationDays,omitempty"`
}

// ComputeStats 对一次快照做聚合，不查库
func ComputeStats(requests []models.BorrowRequest, now time.Time) SlaStats {
	cl := Classify(requests, now)
	st := SlaStats{
		DueSoon: len(cl.DueSoon),
		Overdue: len(cl.Overdue),
	}

	weekAgo := now.Add(-7 * 24 * time.Hour)
	var totalDur time.Duration
	var returned int
	for _, r := range requests {
		if r.Status != models.StatusReturned {
			st.Active++
		}
		if r.ReturnedAt == nil {
			continue
		}
		if !r.ReturnedAt.Before(weekAgo) {
			st.ReturnedThisWeek++
		}
		totalDur += r.ReturnedAt.Sub(r.BorrowedAt)
		returned++
	}
	if returned > 0 {
		days := totalDur.Hours() / 24 / float64(returned)
		st.AvgDurationDays = &days
	}
	return st
}
