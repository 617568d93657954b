// app/bootstrap.go
package app

import (
	"context"
	"log"

	"asset_borrow_ledger/db"

	"github.com/google/uuid"
)

// BootstrapStaff 把 STAFF_EMAILS 里的邮箱建档并升为 staff，
// 这样提醒任务第一天就有汇总收件人。
func BootstrapStaff(ctx context.Context, cfg Config, repo *db.Repo) {
	for _, email := range cfg.StaffEmails {
		if err := repo.EnsureStaffProfile(ctx, email, uuid.NewString()); err != nil {
			log.Printf("bootstrap staff %s failed: %v", email, err)
			continue
		}
		log.Printf("[BOOTSTRAP] staff profile ready: %s", email)
	}
}
