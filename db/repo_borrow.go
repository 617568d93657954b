package db

import (
	"context"
	"fmt"
	"time"

	"asset_borrow_ledger/lifecycle"
	"asset_borrow_ledger/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const requestCodePrefix = "ABL"

// 单号：ABL-YYYYMMDD-NNNN，按天递增。并发撞号靠 request_code 唯一索引兜底。
func mintRequestCode(tx *gorm.DB, now time.Time) (string, error) {
	day := now.UTC().Format("20060102")
	like := fmt.Sprintf("%s-%s-%%", requestCodePrefix, day)
	var n int64
	if err := tx.Model(&models.BorrowRequest{}).
		Where("request_code LIKE ?", like).
		Count(&n).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%04d", requestCodePrefix, day, n+1), nil
}

// 公开表单创建：status 固定 pending，单号在事务里生成
func (r *Repo) CreateRequest(ctx context.Context, req *models.BorrowRequest) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		if req.BorrowedAt.IsZero() {
			req.BorrowedAt = now
		}
		req.Status = models.StatusPending
		code, err := mintRequestCode(tx, now)
		if err != nil {
			return err
		}
		req.RequestCode = code
		return tx.Create(req).Error
	})
}

func (r *Repo) FindRequestByID(ctx context.Context, id string) (*models.BorrowRequest, error) {
	var req models.BorrowRequest
	if err := r.DB.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// 提醒任务的输入：所有未归还的单子
func (r *Repo) ListActiveRequests(ctx context.Context) ([]models.BorrowRequest, error) {
	var rows []models.BorrowRequest
	err := r.DB.WithContext(ctx).
		Where("returned_at IS NULL").
		Order("due_at ASC").
		Find(&rows).Error
	return rows, err
}

// 面板列表，status 可选 active|returned
func (r *Repo) ListRequests(ctx context.Context, status string) ([]models.BorrowRequest, error) {
	q := r.DB.WithContext(ctx).Model(&models.BorrowRequest{}).Order("created_at DESC")
	if status == "active" {
		q = q.Where("returned_at IS NULL")
	} else if status == "returned" {
		q = q.Where("returned_at IS NOT NULL")
	}
	var rows []models.BorrowRequest
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ApplyTransition 一次流转 = 锁行 → 引擎校验 → 更新单子 + 写活动日志，同一事务。
// 部分写入（改了单子没日志、或反过来）在这里不可能发生。
func (r *Repo) ApplyTransition(ctx context.Context, id string, kind lifecycle.TransitionKind, p lifecycle.TransitionPayload, actorID *string) (*models.BorrowRequest, *models.ActivityEntry, error) {
	now := time.Now().UTC()
	var updated models.BorrowRequest
	var logged models.ActivityEntry

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 锁住该单子（sqlite 不认 FOR UPDATE，测试库跳过）
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var cur models.BorrowRequest
		if err := q.First(&cur, "id = ?", id).Error; err != nil {
			return err
		}

		// 2) 纯函数校验 + 计算新状态
		next, entry, err := lifecycle.ApplyTransition(cur, kind, p, actorID, now)
		if err != nil {
			return err
		}

		// 3) 落库
		if err := tx.Model(&models.BorrowRequest{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":      next.Status,
				"due_at":      next.DueAt,
				"returned_at": next.ReturnedAt,
				"updated_at":  now,
			}).Error; err != nil {
			return err
		}

		// 4) 写日志
		entry.ID = uuid.NewString()
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		updated, logged = next, entry
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &updated, &logged, nil
}
