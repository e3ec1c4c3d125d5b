// Package history persists the settled-wager ledger in a WAL and serves
// paginated, newest-first read views over it.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
	"github.com/vadiminshakov/redbet/internal/domain"
	"go.uber.org/zap"
)

const (
	// DefaultDir keeps history under the same wal root the rest of the app uses.
	DefaultDir = "./wal/history"
	// DefaultPageSize mirrors the dashboard's history page.
	DefaultPageSize = 30

	walPrefix        = "history_"
	segmentThreshold = 1000
	maxSegments      = 100
	dirPermissions   = 0o755

	wagerKeyPrefix = "wager_"
)

// Store is the append-only wager history. Records are held newest-first in
// memory and mirrored to a WAL; on restart the sequence is rebuilt from disk.
// History only grows: individual records are never removed, the whole
// sequence can be discarded with Clear.
type Store struct {
	mu      sync.RWMutex
	dir     string
	wal     *gowal.Wal
	records []domain.WagerRecord // newest-first
	logger  *zap.Logger
}

// NewStore opens (or creates) the history WAL in dir and replays it.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	wal, err := openWAL(dir)
	if err != nil {
		return nil, err
	}

	s := &Store{dir: dir, wal: wal, logger: logger}
	s.replay()

	return s, nil
}

func openWAL(dir string) (*gowal.Wal, error) {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, errors.Wrapf(err, "ensure history dir %s", dir)
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           walPrefix,
		SegmentThreshold: segmentThreshold,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init history WAL")
	}

	return wal, nil
}

// replay rebuilds the newest-first sequence from the WAL. Disk order is
// oldest-first, so each decoded record is prepended. Undecodable entries are
// skipped: a damaged record must not take the rest of the history with it.
func (s *Store) replay() {
	for msg := range s.wal.Iterator() {
		var record domain.WagerRecord
		if err := json.Unmarshal(msg.Value, &record); err != nil {
			s.logger.Warn("skipping undecodable history entry",
				zap.String("key", msg.Key), zap.Error(err))
			continue
		}
		s.records = append([]domain.WagerRecord{record}, s.records...)
	}
}

// Append prepends the record to the history and persists it synchronously.
func (s *Store) Append(record domain.WagerRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "marshal wager record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wal == nil {
		return errors.New("history store is closed")
	}

	key := fmt.Sprintf("%s%d", wagerKeyPrefix, record.ID)
	nextIndex := s.wal.CurrentIndex() + 1
	if err := s.wal.Write(nextIndex, key, payload); err != nil {
		return errors.Wrap(err, "write wager record")
	}

	s.records = append([]domain.WagerRecord{record}, s.records...)

	return nil
}

// Paginate returns the half-open slice [page*pageSize, page*pageSize+pageSize)
// of the newest-first history. Out-of-range pages yield an empty slice with
// consistent metadata.
func (s *Store) Paginate(page, pageSize int) domain.HistoryPage {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if page < 0 {
		page = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.records)
	start := page * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	records := make([]domain.WagerRecord, end-start)
	copy(records, s.records[start:end])

	return domain.HistoryPage{
		Records:     records,
		CurrentPage: page,
		TotalPages:  (total + pageSize - 1) / pageSize,
		TotalItems:  total,
		HasPrev:     page > 0,
		HasNext:     (page+1)*pageSize < total,
	}
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Clear discards the entire history, on disk and in memory. Irreversible.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wal == nil {
		return errors.New("history store is closed")
	}

	if err := s.wal.Close(); err != nil {
		return errors.Wrap(err, "close history WAL before clear")
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return errors.Wrapf(err, "remove history dir %s", s.dir)
	}

	wal, err := openWAL(s.dir)
	if err != nil {
		return err
	}

	s.wal = wal
	s.records = nil

	return nil
}

// Close closes the underlying WAL. Safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wal == nil {
		return nil
	}
	err := s.wal.Close()
	s.wal = nil
	return err
}
