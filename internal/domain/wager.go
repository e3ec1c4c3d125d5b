package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// WagerKind enumerates wager variants the bot understands. Adding a kind does
// not change ledger logic, only the dispatcher's command mapping.
type WagerKind string

const (
	// KindRed bets on the next game being red.
	KindRed WagerKind = "red"
	// KindLo bets on the next game staying under a low multiplier.
	KindLo WagerKind = "lo"
	// KindUt is the under-threshold variant, disabled by default.
	KindUt WagerKind = "ut"
)

// String returns the kind name.
func (k WagerKind) String() string {
	return string(k)
}

// Valid reports whether the kind is one of the known variants.
func (k WagerKind) Valid() bool {
	switch k {
	case KindRed, KindLo, KindUt:
		return true
	}
	return false
}

// WagerStatus is the lifecycle state of a wager record.
type WagerStatus string

const (
	StatusPending   WagerStatus = "pending"
	StatusWon       WagerStatus = "won"
	StatusLost      WagerStatus = "lost"
	StatusNotPlaced WagerStatus = "not_placed"
)

// Terminal reports whether the status is final.
func (s WagerStatus) Terminal() bool {
	return s == StatusWon || s == StatusLost || s == StatusNotPlaced
}

// WagerRecord is one wager attempt, tracked from placement to settlement.
// Settlement is signed: positive for a win, negative for a loss, nil while
// pending or when the round closed before the wager was placed.
type WagerRecord struct {
	ID         int64            `json:"id"`
	CreatedAt  time.Time        `json:"created_at"`
	Amount     int64            `json:"amount"`
	Kind       WagerKind        `json:"kind"`
	Status     WagerStatus      `json:"status"`
	Settlement *decimal.Decimal `json:"settlement,omitempty"`
}

// SanitizeStake coerces a raw stake string to a whole number of bits.
// Unparseable input or anything below 1 falls back to def; fractional stakes
// are truncated. There is no error path: bad input always yields a usable
// stake.
func SanitizeStake(raw string, def int64) int64 {
	if def < 1 {
		def = 1
	}

	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	if value.LessThan(decimal.NewFromInt(1)) {
		return def
	}

	return value.IntPart()
}
