package db

import (
	"asset_borrow_ledger/models"
	"context"
	"fmt"

	"github.com/google/uuid"
)

func (r *Repo) AppendActivity(ctx context.Context, entry *models.ActivityEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if err := r.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("insert activity entry: %w", err)
	}
	return nil
}

func (r *Repo) ListActivity(ctx context.Context, requestID string) ([]models.ActivityEntry, error) {
	var rows []models.ActivityEntry
	err := r.DB.WithContext(ctx).
		Where("borrow_request_id = ?", requestID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
