package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"asset_borrow_ledger/lifecycle"
	"asset_borrow_ledger/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRepo(t *testing.T) *Repo {
	t.Helper()
	// 每个测试独立的共享缓存内存库，避免连接池拿到空库
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRepo(conn)
}

func seedRequest(t *testing.T, r *Repo, email string, due time.Time) *models.BorrowRequest {
	t.Helper()
	req := &models.BorrowRequest{
		TicketID:      "IT-10001",
		BorrowerName:  "Alex Reyes",
		BorrowerEmail: email,
		AssetType:     "laptop",
		Reason:        "home connectivity issue",
		DueAt:         due,
	}
	if err := r.CreateRequest(context.Background(), req); err != nil {
		t.Fatalf("create request: %v", err)
	}
	return req
}

func TestCreateRequestMintsCode(t *testing.T) {
	r := setupRepo(t)
	day := time.Now().UTC().Format("20060102")

	for i := 1; i <= 3; i++ {
		req := seedRequest(t, r, "a@example.com", time.Now().UTC().Add(24*time.Hour))
		want := fmt.Sprintf("ABL-%s-%04d", day, i)
		if req.RequestCode != want {
			t.Errorf("request code = %s, want %s", req.RequestCode, want)
		}
		if req.Status != models.StatusPending {
			t.Errorf("status = %s, want pending", req.Status)
		}
	}
}

func TestListActiveRequests(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	open := seedRequest(t, r, "a@example.com", time.Now().UTC().Add(2*time.Hour))
	closed := seedRequest(t, r, "b@example.com", time.Now().UTC().Add(2*time.Hour))
	if _, _, err := r.ApplyTransition(ctx, closed.ID, lifecycle.Return, lifecycle.TransitionPayload{}, nil); err != nil {
		t.Fatalf("return: %v", err)
	}

	rows, err := r.ListActiveRequests(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != open.ID {
		t.Fatalf("active rows = %+v, want only %s", rows, open.ID)
	}
}

func TestApplyTransitionWritesBothRows(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()
	req := seedRequest(t, r, "a@example.com", time.Now().UTC().Add(2*time.Hour))
	actor := "11111111-2222-3333-4444-555555555555"

	updated, entry, err := r.ApplyTransition(ctx, req.ID, lifecycle.Return, lifecycle.TransitionPayload{Notes: "ok"}, &actor)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if updated.Status != models.StatusReturned || updated.ReturnedAt == nil {
		t.Errorf("updated = %+v", updated)
	}
	if entry.Action != models.ActionReturned || entry.Notes != "ok" {
		t.Errorf("entry = %+v", entry)
	}

	// 读回来校验确实落库
	got, err := r.FindRequestByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != models.StatusReturned || got.ReturnedAt == nil {
		t.Errorf("persisted = %+v", got)
	}
	log, err := r.ListActivity(ctx, req.ID)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if len(log) != 1 || log[0].ActorID == nil || *log[0].ActorID != actor {
		t.Fatalf("activity = %+v, want one entry by %s", log, actor)
	}
}

func TestApplyTransitionSecondReturnNoDoubleLog(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()
	req := seedRequest(t, r, "a@example.com", time.Now().UTC().Add(2*time.Hour))

	if _, _, err := r.ApplyTransition(ctx, req.ID, lifecycle.Return, lifecycle.TransitionPayload{}, nil); err != nil {
		t.Fatalf("first return: %v", err)
	}
	_, _, err := r.ApplyTransition(ctx, req.ID, lifecycle.Return, lifecycle.TransitionPayload{}, nil)
	if !errors.Is(err, lifecycle.ErrAlreadyReturned) {
		t.Fatalf("second return err = %v, want ErrAlreadyReturned", err)
	}

	log, _ := r.ListActivity(ctx, req.ID)
	if len(log) != 1 {
		t.Fatalf("activity entries = %d, want 1", len(log))
	}
}

func TestApplyTransitionExtendValidationSkipsStore(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()
	req := seedRequest(t, r, "a@example.com", time.Now().UTC().Add(2*time.Hour))

	_, _, err := r.ApplyTransition(ctx, req.ID, lifecycle.Extend, lifecycle.TransitionPayload{}, nil)
	var ve *lifecycle.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}

	got, _ := r.FindRequestByID(ctx, req.ID)
	if !got.DueAt.Equal(req.DueAt) || got.Status != models.StatusPending {
		t.Errorf("request mutated by failed extend: %+v", got)
	}
	log, _ := r.ListActivity(ctx, req.ID)
	if len(log) != 0 {
		t.Errorf("failed extend must not log, got %d entries", len(log))
	}
}
