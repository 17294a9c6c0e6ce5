package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rcliao/med-reminder/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func aspirin(createdAt int64) model.Medicine {
	return model.Medicine{
		Name:         "Aspirin",
		Dosage:       1,
		Reminders:    []string{"09:00"},
		RefillDays:   30,
		LastRefillAt: createdAt,
		CreatedAt:    createdAt,
	}
}

func TestInsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	m, err := s.Insert(ctx, aspirin(1000))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if m.ID == 0 {
		t.Fatal("expected assigned ID")
	}

	got, err := s.Get(ctx, m.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Aspirin" || got.Dosage != 1 || got.RefillDays != 30 {
		t.Errorf("unexpected medicine: %+v", got)
	}
	if len(got.Reminders) != 1 || got.Reminders[0] != "09:00" {
		t.Errorf("expected reminders [09:00], got %v", got.Reminders)
	}
	if got.CreatedAt != 1000 || got.LastRefillAt != 1000 {
		t.Errorf("timestamps not persisted: %+v", got)
	}
}

func TestRemindersStoredAsDelimitedText(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	m := aspirin(1)
	m.Reminders = []string{"08:00", "", "20:00"}
	saved, _ := s.Insert(ctx, m)

	var raw string
	if err := s.db.QueryRow(`SELECT reminders FROM medicines WHERE id = ?`, saved.ID).Scan(&raw); err != nil {
		t.Fatalf("raw select: %v", err)
	}
	if raw != "08:00,,20:00" {
		t.Errorf("expected raw column %q, got %q", "08:00,,20:00", raw)
	}

	got, _ := s.Get(ctx, saved.ID)
	if len(got.Reminders) != 2 || got.Reminders[0] != "08:00" || got.Reminders[1] != "20:00" {
		t.Errorf("expected blanks filtered, got %v", got.Reminders)
	}
}

func TestUpdateKeepsID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	m, _ := s.Insert(ctx, aspirin(1000))
	m.Name = "Aspirin 81mg"
	m.Reminders = []string{"09:00", "21:00"}
	m.Dosage = 2

	if _, err := s.Update(ctx, *m); err != nil {
		t.Fatalf("update: %v", err)
	}

	list, _ := s.List(ctx, ListParams{})
	if len(list) != 1 {
		t.Fatalf("expected 1 medicine after update, got %d", len(list))
	}
	if list[0].ID != m.ID || list[0].Name != "Aspirin 81mg" || len(list[0].Reminders) != 2 {
		t.Errorf("update not applied in place: %+v", list[0])
	}
}

func TestUpdateWithoutIDInserts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	m, err := s.Update(ctx, aspirin(1))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if m.ID == 0 {
		t.Error("expected ID assigned on insert through update")
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := aspirin(100)
	a.Name = "old"
	b := aspirin(300)
	b.Name = "new"
	c := aspirin(200)
	c.Name = "middle"
	s.Insert(ctx, a)
	s.Insert(ctx, b)
	s.Insert(ctx, c)

	list, err := s.List(ctx, ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var names []string
	for _, m := range list {
		names = append(names, m.Name)
	}
	if len(names) != 3 || names[0] != "new" || names[1] != "middle" || names[2] != "old" {
		t.Errorf("expected [new middle old], got %v", names)
	}

	limited, _ := s.List(ctx, ListParams{Limit: 2})
	if len(limited) != 2 {
		t.Errorf("expected 2 with limit, got %d", len(limited))
	}
}

func TestListQuery(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Insert(ctx, aspirin(1))
	ib := aspirin(2)
	ib.Name = "Ibuprofen"
	s.Insert(ctx, ib)

	list, _ := s.List(ctx, ListParams{Query: "prof"})
	if len(list) != 1 || list[0].Name != "Ibuprofen" {
		t.Errorf("expected only Ibuprofen, got %+v", list)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	m, _ := s.Insert(ctx, aspirin(1))
	if err := s.Delete(ctx, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := s.Get(ctx, m.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := s.Delete(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	m := aspirin(1)
	m.Reminders = []string{"08:00", "20:00"}
	saved, _ := s.Insert(ctx, m)
	s.Schedule(ctx, model.Job{Key: "a", MedicineID: saved.ID, Reminder: "08:00", FireAt: 1})
	s.Schedule(ctx, model.Job{Key: "b", MedicineID: 999, Reminder: "08:00", FireAt: 1})
	s.RecordNotification(ctx, model.Notification{MedicineID: saved.ID, Title: "t", Body: "b", Action: "open_app"})

	st, err := s.Stats(ctx, "")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Medicines != 1 || st.ReminderSlots != 2 || st.PendingJobs != 2 || st.OrphanJobs != 1 || st.Notifications != 1 {
		t.Errorf("unexpected stats: %+v", st)
	}
}

func TestWatchEmitsOnChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := newTestStore(t)

	updates := s.Watch(ctx)

	first := recv(t, updates)
	if len(first) != 0 {
		t.Fatalf("expected empty initial list, got %d", len(first))
	}

	m, _ := s.Insert(ctx, aspirin(1))
	waitFor(t, updates, func(list []model.Medicine) bool { return len(list) == 1 })

	s.Delete(ctx, m.ID)
	waitFor(t, updates, func(list []model.Medicine) bool { return len(list) == 0 })

	cancel()
	for range updates {
	}
}

func TestWatchSeesOtherConnections(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPath := filepath.Join(t.TempDir(), "shared.db")
	watcher, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("open watcher: %v", err)
	}
	defer watcher.Close()
	watcher.WatchInterval = 20 * time.Millisecond

	writer, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("open writer: %v", err)
	}
	defer writer.Close()

	updates := watcher.Watch(ctx)
	recv(t, updates)

	writer.Insert(ctx, aspirin(1))
	waitFor(t, updates, func(list []model.Medicine) bool { return len(list) == 1 })

	cancel()
	for range updates {
	}
}

func recv(t *testing.T, ch <-chan []model.Medicine) []model.Medicine {
	t.Helper()
	select {
	case list := <-ch:
		return list
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch update")
		return nil
	}
}

func waitFor(t *testing.T, ch <-chan []model.Medicine, ok func([]model.Medicine) bool) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case list := <-ch:
			if ok(list) {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for expected watch update")
		}
	}
}
