package lifecycle

import (
	"errors"
	"testing"
	"time"

	"asset_borrow_ledger/models"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func req(id string, status models.BorrowStatus, dueAt time.Time) models.BorrowRequest {
	return models.BorrowRequest{
		ID:            id,
		RequestCode:   "ABL-20260830-0001",
		BorrowerEmail: id + "@example.com",
		Status:        status,
		BorrowedAt:    testNow.Add(-48 * time.Hour),
		DueAt:         dueAt,
	}
}

func TestClassifyBuckets(t *testing.T) {
	cases := []struct {
		name   string
		dueAt  time.Time
		bucket string
	}{
		{"overdue strict past", testNow.Add(-time.Hour), "overdue"},
		{"one ms past is overdue", testNow.Add(-time.Millisecond), "overdue"},
		{"exactly now is due soon", testNow, "dueSoon"},
		{"within window", testNow.Add(20 * time.Hour), "dueSoon"},
		{"window upper bound inclusive", testNow.Add(DueSoonWindow), "dueSoon"},
		{"past the window", testNow.Add(DueSoonWindow + time.Millisecond), "onTrack"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cl := Classify([]models.BorrowRequest{req("a", models.StatusBorrowed, tc.dueAt)}, testNow)
			got := map[string]int{
				"overdue": len(cl.Overdue),
				"dueSoon": len(cl.DueSoon),
				"onTrack": len(cl.OnTrack),
			}
			for bucket, n := range got {
				want := 0
				if bucket == tc.bucket {
					want = 1
				}
				if n != want {
					t.Errorf("bucket %s: got %d want %d", bucket, n, want)
				}
			}
		})
	}
}

func TestClassifyExcludesReturned(t *testing.T) {
	cl := Classify([]models.BorrowRequest{
		req("a", models.StatusReturned, testNow.Add(-time.Hour)),
		req("b", models.StatusReturned, testNow.Add(time.Hour)),
	}, testNow)
	if len(cl.Overdue)+len(cl.DueSoon)+len(cl.OnTrack) != 0 {
		t.Fatalf("returned requests must not be classified: %+v", cl)
	}
}

func TestClassifyPartitionsNonReturned(t *testing.T) {
	in := []models.BorrowRequest{
		req("a", models.StatusBorrowed, testNow.Add(-time.Hour)),
		req("b", models.StatusPending, testNow.Add(time.Hour)),
		req("c", models.StatusApproved, testNow.Add(72*time.Hour)),
		req("d", models.StatusLost, testNow.Add(-30*time.Hour)),
	}
	cl := Classify(in, testNow)
	total := len(cl.Overdue) + len(cl.DueSoon) + len(cl.OnTrack)
	if total != len(in) {
		t.Fatalf("buckets must partition input: got %d of %d", total, len(in))
	}
	seen := map[string]int{}
	for _, r := range cl.Overdue {
		seen[r.ID]++
	}
	for _, r := range cl.DueSoon {
		seen[r.ID]++
	}
	for _, r := range cl.OnTrack {
		seen[r.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("request %s appeared in %d buckets", id, n)
		}
	}
}

func TestClassifySkipsZeroDueAt(t *testing.T) {
	cl := Classify([]models.BorrowRequest{
		req("a", models.StatusBorrowed, time.Time{}),
		req("b", models.StatusBorrowed, testNow.Add(time.Hour)),
	}, testNow)
	if cl.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1", cl.Skipped)
	}
	if len(cl.Overdue)+len(cl.DueSoon)+len(cl.OnTrack) != 1 {
		t.Fatalf("zero due_at must not be bucketed")
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	st := ComputeStats(nil, testNow)
	if st.Active != 0 || st.DueSoon != 0 || st.Overdue != 0 || st.ReturnedThisWeek != 0 {
		t.Fatalf("empty input must yield zero counts: %+v", st)
	}
	if st.AvgDurationDays != nil {
		t.Fatalf("avg duration must be undefined with no returns, got %v", *st.AvgDurationDays)
	}
}

func TestComputeStats(t *testing.T) {
	returnedRecently := req("a", models.StatusReturned, testNow.Add(-time.Hour))
	ra := testNow.Add(-24 * time.Hour)
	returnedRecently.ReturnedAt = &ra
	returnedRecently.BorrowedAt = ra.Add(-3 * 24 * time.Hour) // 3 天

	returnedLongAgo := req("b", models.StatusReturned, testNow.Add(-200*time.Hour))
	rb := testNow.Add(-10 * 24 * time.Hour)
	returnedLongAgo.ReturnedAt = &rb
	returnedLongAgo.BorrowedAt = rb.Add(-1 * 24 * time.Hour) // 1 天

	in := []models.BorrowRequest{
		returnedRecently,
		returnedLongAgo,
		req("c", models.StatusBorrowed, testNow.Add(-time.Hour)),   // overdue
		req("d", models.StatusBorrowed, testNow.Add(2*time.Hour)),  // due soon
		req("e", models.StatusPending, testNow.Add(90*time.Hour)),  // on track
	}
	st := ComputeStats(in, testNow)
	if st.Active != 3 {
		t.Errorf("active = %d, want 3", st.Active)
	}
	if st.Overdue != 1 || st.DueSoon != 1 {
		t.Errorf("overdue/dueSoon = %d/%d, want 1/1", st.Overdue, st.DueSoon)
	}
	if st.ReturnedThisWeek != 1 {
		t.Errorf("returnedThisWeek = %d, want 1", st.ReturnedThisWeek)
	}
	if st.AvgDurationDays == nil {
		t.Fatal("avg duration must be defined")
	}
	if got := *st.AvgDurationDays; got < 1.99 || got > 2.01 {
		t.Errorf("avgDurationDays = %v, want ~2", got)
	}
}

func TestApplyTransitionReturn(t *testing.T) {
	actor := "9f0b8f3a-0000-0000-0000-000000000001"
	in := req("a", models.StatusBorrowed, testNow.Add(time.Hour))
	out, entry, err := ApplyTransition(in, Return, TransitionPayload{Notes: "ok"}, &actor, testNow)
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if out.Status != models.StatusReturned {
		t.Errorf("status = %s, want returned", out.Status)
	}
	if out.ReturnedAt == nil || !out.ReturnedAt.Equal(testNow) {
		t.Errorf("returnedAt = %v, want %v", out.ReturnedAt, testNow)
	}
	if entry.Action != models.ActionReturned || entry.Notes != "ok" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.ActorID == nil || *entry.ActorID != actor {
		t.Errorf("actorId = %v, want %s", entry.ActorID, actor)
	}
	// 入参不被修改
	if in.Status != models.StatusBorrowed || in.ReturnedAt != nil {
		t.Errorf("input mutated: %+v", in)
	}
}

func TestApplyTransitionReturnTwice(t *testing.T) {
	in := req("a", models.StatusReturned, testNow.Add(time.Hour))
	_, _, err := ApplyTransition(in, Return, TransitionPayload{}, nil, testNow)
	if !errors.Is(err, ErrAlreadyReturned) {
		t.Fatalf("second return must fail with ErrAlreadyReturned, got %v", err)
	}
}

func TestApplyTransitionLost(t *testing.T) {
	out, entry, err := ApplyTransition(req("a", models.StatusBorrowed, testNow), Lost, TransitionPayload{Notes: ""}, nil, testNow)
	if err != nil {
		t.Fatalf("lost: %v", err)
	}
	if out.Status != models.StatusLost {
		t.Errorf("status = %s, want lost", out.Status)
	}
	if out.ReturnedAt != nil {
		t.Errorf("lost must leave returnedAt nil")
	}
	if entry.Action != models.ActionLost || entry.ActorID != nil {
		t.Errorf("entry = %+v", entry)
	}
}

func TestApplyTransitionExtendRequiresDueAt(t *testing.T) {
	_, _, err := ApplyTransition(req("a", models.StatusBorrowed, testNow), Extend, TransitionPayload{}, nil, testNow)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("extend without due_at must be a ValidationError, got %v", err)
	}
	if ve.Field != "due_at" {
		t.Errorf("field = %s, want due_at", ve.Field)
	}
}

func TestApplyTransitionExtend(t *testing.T) {
	newDue := testNow.Add(-5 * time.Hour) // 允许回填过去的时间
	out, entry, err := ApplyTransition(req("a", models.StatusBorrowed, testNow.Add(time.Hour)), Extend,
		TransitionPayload{DueAt: &newDue, Notes: "corrected"}, nil, testNow)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if out.Status != models.StatusBorrowed {
		t.Errorf("extend must not change status, got %s", out.Status)
	}
	if !out.DueAt.Equal(newDue) {
		t.Errorf("dueAt = %v, want %v", out.DueAt, newDue)
	}
	if entry.Action != models.ActionExtend || entry.Notes != "corrected" {
		t.Errorf("entry = %+v", entry)
	}
}
