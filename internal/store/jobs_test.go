package store

import (
	"context"
	"testing"
	"time"

	"github.com/rcliao/med-reminder/internal/model"
)

func TestScheduleReplacesByKey(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Schedule(ctx, model.Job{Key: "medicine_1_reminder_0", MedicineID: 1, Reminder: "08:00", FireAt: 100})
	s.Schedule(ctx, model.Job{Key: "medicine_1_reminder_0", MedicineID: 1, Reminder: "09:00", FireAt: 200})

	jobs, err := s.Jobs(ctx, 1)
	if err != nil {
		t.Fatalf("jobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job after replace, got %d", len(jobs))
	}
	if jobs[0].Reminder != "09:00" || jobs[0].FireAt != 200 {
		t.Errorf("job not replaced: %+v", jobs[0])
	}
}

func TestDueOrdersByFireTime(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.UnixMilli(1_000)
	s.Schedule(ctx, model.Job{Key: "late", MedicineID: 1, FireAt: 900})
	s.Schedule(ctx, model.Job{Key: "early", MedicineID: 1, Slot: 1, FireAt: 100})
	s.Schedule(ctx, model.Job{Key: "exact", MedicineID: 2, FireAt: 1_000})
	s.Schedule(ctx, model.Job{Key: "future", MedicineID: 2, Slot: 1, FireAt: 1_001})

	due, err := s.Due(ctx, now)
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 3 {
		t.Fatalf("expected 3 due jobs, got %d", len(due))
	}
	if due[0].Key != "early" || due[1].Key != "late" || due[2].Key != "exact" {
		t.Errorf("unexpected order: %v %v %v", due[0].Key, due[1].Key, due[2].Key)
	}
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Schedule(ctx, model.Job{Key: "k", MedicineID: 1, FireAt: 1})
	if err := s.Cancel(ctx, "k"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := s.Cancel(ctx, "missing"); err != nil {
		t.Errorf("cancel of missing key should succeed, got %v", err)
	}

	jobs, _ := s.Jobs(ctx, 1)
	if len(jobs) != 0 {
		t.Errorf("expected no jobs, got %d", len(jobs))
	}
}

func TestCancelMedicine(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Schedule(ctx, model.Job{Key: "a", MedicineID: 1, FireAt: 1})
	s.Schedule(ctx, model.Job{Key: "b", MedicineID: 1, Slot: 1, FireAt: 1})
	s.Schedule(ctx, model.Job{Key: "c", MedicineID: 2, FireAt: 1})

	n, err := s.CancelMedicine(ctx, 1)
	if err != nil {
		t.Fatalf("cancel medicine: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 cancelled, got %d", n)
	}

	other, _ := s.Jobs(ctx, 2)
	if len(other) != 1 {
		t.Errorf("other medicine's jobs should survive, got %d", len(other))
	}
}

func TestNotificationHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	first, err := s.RecordNotification(ctx, model.Notification{MedicineID: 1, Title: "one", Body: "b", Action: "open_app", FiredAt: base})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if first.ID == "" {
		t.Error("expected ULID assigned")
	}
	s.RecordNotification(ctx, model.Notification{MedicineID: 2, Title: "two", Body: "b", Action: "open_app", FiredAt: base.Add(time.Hour)})
	s.RecordNotification(ctx, model.Notification{MedicineID: 1, Title: "three", Body: "b", Action: "open_app", FiredAt: base.Add(2 * time.Hour)})

	all, _ := s.Notifications(ctx, NotificationParams{})
	if len(all) != 3 || all[0].Title != "three" || all[2].Title != "one" {
		t.Fatalf("unexpected history order: %+v", all)
	}
	if !all[2].FiredAt.Equal(base) {
		t.Errorf("fired_at not round-tripped: %v", all[2].FiredAt)
	}

	only, _ := s.Notifications(ctx, NotificationParams{MedicineID: 1})
	if len(only) != 2 {
		t.Errorf("expected 2 for medicine 1, got %d", len(only))
	}
}

func TestRescheduleOnlyMovesJobStillOnRecord(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Schedule(ctx, model.Job{Key: "k", MedicineID: 1, Reminder: "09:00", FireAt: 100})

	moved, err := s.Reschedule(ctx, "k", 100, 200)
	if err != nil || !moved {
		t.Fatalf("expected move, got moved=%v err=%v", moved, err)
	}

	// Stale fire time: the job was replaced since it was read.
	if moved, _ := s.Reschedule(ctx, "k", 100, 300); moved {
		t.Error("expected stale reschedule to be refused")
	}

	s.Cancel(ctx, "k")
	moved, err = s.Reschedule(ctx, "k", 200, 300)
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if moved {
		t.Error("expected cancelled job to stay cancelled")
	}
	if jobs, _ := s.Jobs(ctx, 1); len(jobs) != 0 {
		t.Errorf("expected no jobs, got %+v", jobs)
	}
}

func TestPruneOrphanJobs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	m, _ := s.Insert(ctx, aspirin(1))
	s.Schedule(ctx, model.Job{Key: "kept", MedicineID: m.ID, Reminder: "09:00", FireAt: 1})
	s.Schedule(ctx, model.Job{Key: "orphan", MedicineID: m.ID + 100, Reminder: "09:00", FireAt: 1})

	n, err := s.PruneOrphanJobs(ctx)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 pruned, got %d", n)
	}
	if jobs, _ := s.Jobs(ctx, m.ID); len(jobs) != 1 || jobs[0].Key != "kept" {
		t.Errorf("expected only kept job, got %+v", jobs)
	}
}
