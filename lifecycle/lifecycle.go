// lifecycle 是纯函数层：分类、SLA 统计、状态流转都在这里算，
// 不碰数据库；落库交给 db.Repo 的事务。
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"asset_borrow_ledger/models"
)

// 到期提醒窗口：未来 24 小时内算 due-soon
const DueSoonWindow = 24 * time.Hour

type Classification struct {
	Overdue []models.BorrowRequest
	DueSoon []models.BorrowRequest
	OnTrack []models.BorrowRequest

	// due_at 为零值（无法解析）的记录数，跳过不分类，调用方负责打日志
	Skipped int
}

// Classify 把未归还的借用单分到 overdue / due-soon / on-track 三个桶。
// 边界：due_at == now 算 due-soon 不算 overdue（overdue 是严格小于）。
// 已归还（status=returned）的不进任何桶。
func Classify(requests []models.BorrowRequest, now time.Time) Classification {
	var cl Classification
	soon := now.Add(DueSoonWindow)
	for _, r := range requests {
		if r.Status == models.StatusReturned {
			continue
		}
		if r.DueAt.IsZero() {
			cl.Skipped++
			continue
		}
		switch {
		case r.DueAt.Before(now):
			cl.Overdue = append(cl.Overdue, r)
		case !r.DueAt.After(soon): // now <= due_at <= now+24h
			cl.DueSoon = append(cl.DueSoon, r)
		default:
			cl.OnTrack = append(cl.OnTrack, r)
		}
	}
	return cl
}

type TransitionKind string

const (
	Return TransitionKind = "return"
	Extend TransitionKind = "extend"
	Lost   TransitionKind = "lost"
)

type TransitionPayload struct {
	DueAt *time.Time // extend 必填
	Notes string
}

// ValidationError 在任何落库之前就拦下非法输入
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Msg) }

// 重复归还：不允许二次落日志
var ErrAlreadyReturned = errors.New("request already returned")

// ApplyTransition 校验并应用一次流转，返回更新后的副本和对应的活动日志条目。
// 不修改入参，也不做任何持久化。
func ApplyTransition(r models.BorrowRequest, kind TransitionKind, p TransitionPayload, actorID *string, now time.Time) (models.BorrowRequest, models.ActivityEntry, error) {
	entry := models.ActivityEntry{
		BorrowRequestID: r.ID,
		ActorID:         actorID,
		Notes:           p.Notes,
		CreatedAt:       now,
	}

	switch kind {
	case Return:
		if r.Status == models.StatusReturned {
			return r, models.ActivityEntry{}, ErrAlreadyReturned
		}
		r.Status = models.StatusReturned
		t := now
		r.ReturnedAt = &t
		entry.Action = models.ActionReturned

	case Lost:
		if r.Status == models.StatusReturned {
			return r, models.ActivityEntry{}, ErrAlreadyReturned
		}
		r.Status = models.StatusLost
		// returned_at 保持空
		entry.Action = models.ActionLost

	case Extend:
		if p.DueAt == nil || p.DueAt.IsZero() {
			return r, models.ActivityEntry{}, &ValidationError{Field: "due_at", Msg: "due date is required for extension"}
		}
		// 不要求新到期时间在未来，IT 有时会回填修正
		r.DueAt = *p.DueAt
		entry.Action = models.ActionExtend

	default:
		return r, models.ActivityEntry{}, &ValidationError{Field: "kind", Msg: "unknown transition"}
	}

	r.UpdatedAt = now
	return r, entry, nil
}
