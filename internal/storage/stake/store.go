// Package stake remembers the last stake amount the user wagered with, so a
// restart pre-fills the dashboard form the way the previous session left it.
package stake

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/redbet/internal/domain"
)

const (
	defaultStateDir = "./wal/state"
	stateFileName   = "last_stake.json"
)

// Store persists the last-used stake amount as a small JSON state file.
type Store struct {
	path     string
	fallback int64
}

type state struct {
	Amount string `json:"amount"`
}

// NewStore creates a stake store under dir. fallback is returned whenever the
// file is absent, unreadable or holds an invalid amount.
func NewStore(dir string, fallback int64) (*Store, error) {
	if dir == "" {
		dir = defaultStateDir
	}
	if fallback < 1 {
		fallback = 1
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create stake state dir")
	}

	return &Store{path: filepath.Join(dir, stateFileName), fallback: fallback}, nil
}

// Load reads the saved stake. Any failure degrades to the fallback; a missing
// or corrupt state file must never block wagering.
func (s *Store) Load() int64 {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		return s.fallback
	}

	var st state
	if err := json.Unmarshal(payload, &st); err != nil {
		return s.fallback
	}

	return domain.SanitizeStake(st.Amount, s.fallback)
}

// Save writes the stake to disk atomically via temp file. The amount goes
// through the same clamping as every other stake input.
func (s *Store) Save(amount int64) error {
	sanitized := domain.SanitizeStake(strconv.FormatInt(amount, 10), s.fallback)

	payload, err := json.Marshal(state{Amount: strconv.FormatInt(sanitized, 10)})
	if err != nil {
		return errors.Wrap(err, "encode stake state")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write stake state temp file")
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "persist stake state")
	}

	return nil
}
