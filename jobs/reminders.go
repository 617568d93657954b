// jobs 里是定时批处理：拉未归还的单子 → 分类 → 按借用人分组发提醒，
// 再给 IT 员工发一封汇总。单次执行，跑完就退出。
package jobs

import (
	"context"
	"time"

	"asset_borrow_ledger/lifecycle"
	"asset_borrow_ledger/mailer"
	"asset_borrow_ledger/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store 提醒任务依赖的查询面，*db.Repo 原样实现
type Store interface {
	ListActiveRequests(ctx context.Context) ([]models.BorrowRequest, error)
	ListStaffEmails(ctx context.Context, roles []string) ([]string, error)
}

type Runner struct {
	Store  Store
	Mailer mailer.Mailer
	Log    *zap.Logger

	From     string // 发件地址，员工列表为空时兜底收这封汇总
	TestMode bool   // true: 跳过借用人邮件，员工汇总照发

	// 可选：防止调度重叠的 best-effort 锁，nil 则不加锁
	Lock *redis.Client
}

type Summary struct {
	Overdue       int
	DueSoon       int
	Skipped       int
	BorrowerSends int
	StaffSends    int
	SendFailures  int
}

const lockKey = "abl:reminders:lock"

// Run 一次完整的提醒流程。拉取阶段出错整个任务失败；
// 单个收件人发送失败只记数，不中断后面的发送。
func (j *Runner) Run(ctx context.Context, now time.Time) (Summary, error) {
	var sum Summary

	if j.Lock != nil {
		ok, err := j.Lock.SetNX(ctx, lockKey, now.Unix(), 10*time.Minute).Result()
		if err != nil {
			j.Log.Warn("reminder lock unavailable, continuing without it", zap.Error(err))
		} else if !ok {
			j.Log.Info("another reminder run holds the lock, skipping")
			return sum, nil
		}
	}

	rows, err := j.Store.ListActiveRequests(ctx)
	if err != nil {
		return sum, err
	}

	cl := lifecycle.Classify(rows, now)
	sum.Overdue = len(cl.Overdue)
	sum.DueSoon = len(cl.DueSoon)
	sum.Skipped = cl.Skipped
	if cl.Skipped > 0 {
		j.Log.Warn("requests with unusable due_at skipped from classification",
			zap.Int("skipped", cl.Skipped))
	}

	if len(cl.Overdue) == 0 && len(cl.DueSoon) == 0 {
		j.Log.Info("no due or overdue items, exiting")
		return sum, nil
	}

	staff, err := j.Store.ListStaffEmails(ctx, []string{models.RoleStaff, models.RoleManager})
	if err != nil {
		return sum, err
	}

	j.notifyBorrowers(ctx, cl, &sum)
	j.notifyStaff(ctx, cl, staff, &sum)

	j.Log.Info("completed reminder run",
		zap.Int("overdue", sum.Overdue),
		zap.Int("dueSoon", sum.DueSoon),
		zap.Int("borrowerSends", sum.BorrowerSends),
		zap.Int("staffSends", sum.StaffSends),
		zap.Int("sendFailures", sum.SendFailures))
	return sum, nil
}

type borrowerBatch struct {
	overdue []models.BorrowRequest
	dueSoon []models.BorrowRequest
}

// 按 borrower_email 分组；没邮箱的进不了个人提醒，但员工汇总里仍然有
func groupByBorrower(cl lifecycle.Classification) (map[string]*borrowerBatch, []string) {
	grouped := map[string]*borrowerBatch{}
	var order []string
	get := func(email string) *borrowerBatch {
		b, ok := grouped[email]
		if !ok {
			b = &borrowerBatch{}
			grouped[email] = b
			order = append(order, email)
		}
		return b
	}
	for _, r := range cl.Overdue {
		if r.BorrowerEmail == "" {
			continue
		}
		b := get(r.BorrowerEmail)
		b.overdue = append(b.overdue, r)
	}
	for _, r := range cl.DueSoon {
		if r.BorrowerEmail == "" {
			continue
		}
		b := get(r.BorrowerEmail)
		b.dueSoon = append(b.dueSoon, r)
	}
	return grouped, order
}

func (j *Runner) notifyBorrowers(ctx context.Context, cl lifecycle.Classification, sum *Summary) {
	if j.TestMode {
		j.Log.Info("test mode, skipping borrower emails")
		return
	}
	grouped, order := groupByBorrower(cl)
	for _, email := range order {
		b := grouped[email]
		msg := mailer.Message{
			To:      []string{email},
			Subject: "Asset Borrow Reminder",
			Text:    "Please return or extend your borrowed asset(s):\n\n" + buildSections(b.overdue, b.dueSoon),
			HTML:    "<p>Please return or extend your borrowed asset(s):</p>" + buildHTML(b.overdue, b.dueSoon),
		}
		if err := j.Mailer.Send(ctx, msg); err != nil {
			sum.SendFailures++
			j.Log.Error("borrower reminder failed",
				zap.String("recipient", email),
				zap.Error(err))
			continue
		}
		sum.BorrowerSends++
	}
}

func (j *Runner) notifyStaff(ctx context.Context, cl lifecycle.Classification, staff []string, sum *Summary) {
	targets := staff
	if len(targets) == 0 && j.From != "" {
		// 没有任何员工档案时退回发件地址
		j.Log.Info("no staff profiles found, falling back to from-address",
			zap.String("fallback", j.From))
		targets = []string{j.From}
	}
	if len(targets) == 0 {
		return
	}

	msg := mailer.Message{
		To:      targets,
		Subject: "Borrow queue summary (due/overdue)",
		Text:    "Daily summary of due/overdue items:\n\n" + buildSections(cl.Overdue, cl.DueSoon),
		HTML:    "<p>Daily summary of due/overdue items:</p>" + buildHTML(cl.Overdue, cl.DueSoon),
	}
	if err := j.Mailer.Send(ctx, msg); err != nil {
		sum.SendFailures++
		j.Log.Error("staff summary failed",
			zap.Strings("recipients", targets),
			zap.Error(err))
		return
	}
	sum.StaffSends++
}
