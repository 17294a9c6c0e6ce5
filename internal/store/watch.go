package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rcliao/med-reminder/internal/model"
)

// Watch streams the medicine list. The current list is sent immediately and
// again after every change, whether made through this store or committed by
// another process. A slow reader only ever sees the latest list. The channel
// is closed when ctx is done.
func (s *SQLiteStore) Watch(ctx context.Context) <-chan []model.Medicine {
	out := make(chan []model.Medicine, 1)
	kick := make(chan struct{}, 1)

	s.mu.Lock()
	s.watchers[kick] = struct{}{}
	s.mu.Unlock()

	interval := s.WatchInterval
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	go func() {
		defer close(out)
		defer func() {
			s.mu.Lock()
			delete(s.watchers, kick)
			s.mu.Unlock()
		}()

		// A dedicated connection sees data_version bump on commits from any
		// other connection.
		conn, err := s.db.Conn(ctx)
		if err != nil {
			conn = nil
		} else {
			defer conn.Close()
		}
		version := dataVersion(ctx, conn)

		s.publish(ctx, out)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-kick:
				s.publish(ctx, out)
			case <-ticker.C:
				if v := dataVersion(ctx, conn); v != version {
					version = v
					s.publish(ctx, out)
				}
			}
		}
	}()

	return out
}

// changed wakes every watcher of this store.
func (s *SQLiteStore) changed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for kick := range s.watchers {
		select {
		case kick <- struct{}{}:
		default:
		}
	}
}

func (s *SQLiteStore) publish(ctx context.Context, out chan []model.Medicine) {
	list, err := s.List(ctx, ListParams{})
	if err != nil {
		return
	}
	// Replace an unread snapshot with the fresh one.
	select {
	case <-out:
	default:
	}
	select {
	case out <- list:
	default:
	}
}

func dataVersion(ctx context.Context, conn *sql.Conn) int64 {
	if conn == nil {
		return 0
	}
	var v int64
	if err := conn.QueryRowContext(ctx, `PRAGMA data_version`).Scan(&v); err != nil {
		return 0
	}
	return v
}
