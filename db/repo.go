package db

import (
	"asset_borrow_ledger/models"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Profiles

func (r *Repo) TouchProfileLogin(ctx context.Context, profileID string) error {
	// 用数据库时间，避免并发覆盖
	return r.DB.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", profileID).
		Updates(map[string]interface{}{
			"last_login_at": gorm.Expr("NOW()"),
			"last_seen_at":  gorm.Expr("NOW()"),
			"login_count":   gorm.Expr("COALESCE(login_count, 0) + 1"),
		}).Error
}

func (r *Repo) TouchProfileSeen(ctx context.Context, profileID string) error {
	return r.DB.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", profileID).
		Update("last_seen_at", gorm.Expr("NOW()")).Error
}

func (r *Repo) FindProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	if err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) FindProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var p models.Profile
	if err := r.DB.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// 魔法链接验证通过后调用；邮箱统一小写
func (r *Repo) FindOrCreateProfile(ctx context.Context, email, newID string) (*models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var p models.Profile
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		p = models.Profile{ID: newID, Email: email, Name: email, Role: models.RoleMember}
		if err := r.DB.WithContext(ctx).Create(&p).Error; err != nil {
			return nil, err
		}
		return &p, nil
	}
	return &p, err
}

// 启动引导：把配置里的员工邮箱建档/升级为 staff
func (r *Repo) EnsureStaffProfile(ctx context.Context, email, newID string) error {
	p, err := r.FindOrCreateProfile(ctx, email, newID)
	if err != nil {
		return err
	}
	if p.IsStaff() {
		return nil
	}
	return r.DB.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", p.ID).
		Update("role", models.RoleStaff).Error
}

// 提醒任务的收件人：staff/manager 且邮箱非空，去重
func (r *Repo) ListStaffEmails(ctx context.Context, roles []string) ([]string, error) {
	if len(roles) == 0 {
		roles = []string{models.RoleStaff, models.RoleManager}
	}
	var rows []string
	if err := r.DB.WithContext(ctx).Model(&models.Profile{}).
		Distinct("email").
		Where("role IN ?", roles).
		Where("email IS NOT NULL AND email <> ''").
		Pluck("email", &rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// 列表（分页 + 关键词，匹配邮箱/显示名）
type ListProfilesResult struct {
	Profiles []models.Profile `json:"profiles"`
	Total    int64            `json:"total"`
}

func (r *Repo) ListProfiles(ctx context.Context, q string, page, size int) (ListProfilesResult, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.Profile{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListProfilesResult{}, err
	}

	var profiles []models.Profile
	if err := tx.
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&profiles).Error; err != nil {
		return ListProfilesResult{}, err
	}
	return ListProfilesResult{Profiles: profiles, Total: total}, nil
}
