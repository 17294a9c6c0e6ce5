package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/med-reminder/internal/model"
)

// DefaultWatchInterval is how often a watcher checks for commits made by
// other connections or processes.
const DefaultWatchInterval = time.Second

// SQLiteStore implements Store and JobQueue using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
	idMu    sync.Mutex

	// WatchInterval overrides DefaultWatchInterval when set.
	WatchInterval time.Duration

	mu       sync.Mutex
	watchers map[chan struct{}]struct{}
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:       db,
		entropy:  rand.New(rand.NewSource(time.Now().UnixNano())),
		watchers: map[chan struct{}]struct{}{},
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID(t time.Time) string {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS medicines (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		name           TEXT NOT NULL,
		dosage         INTEGER NOT NULL DEFAULT 0,
		reminders      TEXT NOT NULL DEFAULT '',
		refill_days    INTEGER NOT NULL DEFAULT 0,
		last_refill_at INTEGER NOT NULL,
		notes          TEXT NOT NULL DEFAULT '',
		created_at     INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_medicines_created ON medicines(created_at DESC);

	CREATE TABLE IF NOT EXISTS jobs (
		key           TEXT PRIMARY KEY,
		medicine_id   INTEGER NOT NULL,
		slot          INTEGER NOT NULL,
		reminder      TEXT NOT NULL,
		medicine_name TEXT NOT NULL,
		fire_at       INTEGER NOT NULL,
		updated_at    INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_jobs_fire_at ON jobs(fire_at);
	CREATE INDEX IF NOT EXISTS idx_jobs_medicine ON jobs(medicine_id);

	CREATE TABLE IF NOT EXISTS notifications (
		id          TEXT PRIMARY KEY,
		medicine_id INTEGER NOT NULL,
		slot        INTEGER NOT NULL,
		title       TEXT NOT NULL,
		body        TEXT NOT NULL,
		action      TEXT NOT NULL,
		fired_at    TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_notifications_medicine ON notifications(medicine_id, fired_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Insert(ctx context.Context, m model.Medicine) (*model.Medicine, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO medicines (name, dosage, reminders, refill_days, last_refill_at, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.Name, m.Dosage, model.JoinReminders(m.Reminders), m.RefillDays, m.LastRefillAt, m.Notes, m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert medicine: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert medicine: %w", err)
	}
	m.ID = id
	m.Reminders = model.SplitReminders(model.JoinReminders(m.Reminders))
	s.changed()
	return &m, nil
}

func (s *SQLiteStore) Update(ctx context.Context, m model.Medicine) (*model.Medicine, error) {
	if m.ID == 0 {
		return s.Insert(ctx, m)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO medicines (id, name, dosage, reminders, refill_days, last_refill_at, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   dosage = excluded.dosage,
		   reminders = excluded.reminders,
		   refill_days = excluded.refill_days,
		   last_refill_at = excluded.last_refill_at,
		   notes = excluded.notes,
		   created_at = excluded.created_at`,
		m.ID, m.Name, m.Dosage, model.JoinReminders(m.Reminders), m.RefillDays, m.LastRefillAt, m.Notes, m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("update medicine %d: %w", m.ID, err)
	}
	m.Reminders = model.SplitReminders(model.JoinReminders(m.Reminders))
	s.changed()
	return &m, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (*model.Medicine, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, dosage, reminders, refill_days, last_refill_at, notes, created_at
		 FROM medicines WHERE id = ?`, id)
	m, err := scanMedicine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.Medicine, error) {
	var where []string
	var args []interface{}

	if p.Query != "" {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+p.Query+"%")
	}

	query := `SELECT id, name, dosage, reminders, refill_days, last_refill_at, notes, created_at
	          FROM medicines`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if p.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, p.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	medicines := []model.Medicine{}
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		medicines = append(medicines, m)
	}
	return medicines, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM medicines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete medicine %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	s.changed()
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMedicine(row scanner) (model.Medicine, error) {
	var m model.Medicine
	var reminders string
	err := row.Scan(&m.ID, &m.Name, &m.Dosage, &reminders, &m.RefillDays, &m.LastRefillAt, &m.Notes, &m.CreatedAt)
	if err != nil {
		return m, err
	}
	m.Reminders = model.SplitReminders(reminders)
	return m, nil
}
