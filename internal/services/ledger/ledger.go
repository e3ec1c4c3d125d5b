// Package ledger tracks the single in-flight wager and hands settled records
// to the history store.
package ledger

import (
	"sync"
	"time"

	"github.com/vadiminshakov/redbet/internal/domain"
	"github.com/vadiminshakov/redbet/internal/events"
	"github.com/vadiminshakov/redbet/internal/metrics"
	"go.uber.org/zap"
)

type historyAppender interface {
	Append(record domain.WagerRecord) error
	Clear() error
}

type stakeSaver interface {
	Save(amount int64) error
}

// Ledger holds at most one pending wager at a time. Settled records leave the
// ledger immediately: it hands them to the history store and folds back to
// the idle state. Persistence failures are logged and do not unwind the
// triggering operation.
type Ledger struct {
	mu           sync.Mutex
	pending      *domain.WagerRecord
	history      historyAppender
	stakes       stakeSaver
	notifier     *events.Broadcaster
	defaultStake int64
	lastID       int64
	logger       *zap.Logger
}

// New creates a ledger writing settled records to history and publishing
// change notifications to notifier.
func New(history historyAppender, stakes stakeSaver, notifier *events.Broadcaster, defaultStake int64, logger *zap.Logger) *Ledger {
	if defaultStake < 1 {
		defaultStake = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Ledger{
		history:      history,
		stakes:       stakes,
		notifier:     notifier,
		defaultStake: defaultStake,
		logger:       logger,
	}
}

// Open creates a new pending wager. The raw amount is clamped, never
// rejected. An already-pending wager is silently replaced: the remote side
// only tracks one in-flight wager, so the last open wins.
func (l *Ledger) Open(rawAmount string, kind domain.WagerKind) domain.WagerRecord {
	amount := domain.SanitizeStake(rawAmount, l.defaultStake)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pending != nil {
		l.logger.Info("replacing pending wager",
			zap.Int64("discarded_id", l.pending.ID),
			zap.Int64("discarded_amount", l.pending.Amount))
	}

	record := domain.WagerRecord{
		ID:        l.nextID(),
		CreatedAt: time.Now(),
		Amount:    amount,
		Kind:      kind,
		Status:    domain.StatusPending,
	}
	l.pending = &record

	if l.stakes != nil {
		if err := l.stakes.Save(amount); err != nil {
			l.logger.Warn("failed to persist last stake", zap.Error(err))
		}
	}

	metrics.WagersOpened.WithLabelValues(kind.String()).Inc()
	l.logger.Info("wager opened",
		zap.Int64("id", record.ID),
		zap.Int64("amount", amount),
		zap.String("kind", kind.String()))

	return record
}

// nextID derives a unique id from the wall clock. Two opens in the same
// millisecond still get strictly increasing ids.
func (l *Ledger) nextID() int64 {
	id := time.Now().UnixMilli()
	if id <= l.lastID {
		id = l.lastID + 1
	}
	l.lastID = id

	return id
}

// Resolve settles the pending wager with the classified outcome. Without a
// pending record it is a defensive no-op, not an error: the croupier can
// announce results for rounds the user never entered. The returned record is
// the settled wager, ok reports whether anything was resolved.
func (l *Ledger) Resolve(outcome domain.Outcome) (domain.WagerRecord, bool) {
	status, terminal := outcome.TerminalStatus()
	if !terminal {
		return domain.WagerRecord{}, false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pending == nil {
		l.logger.Debug("outcome with no pending wager ignored",
			zap.String("outcome", outcome.Kind.String()))
		return domain.WagerRecord{}, false
	}

	record := *l.pending
	record.Status = status
	if outcome.HasSettlement() {
		settlement := outcome.Amount
		record.Settlement = &settlement
	}

	if err := l.history.Append(record); err != nil {
		// the record still settles in memory for this cycle
		l.logger.Warn("failed to persist settled wager", zap.Error(err),
			zap.Int64("id", record.ID))
	}

	l.pending = nil

	metrics.WagersSettled.WithLabelValues(string(status)).Inc()
	l.logger.Info("wager settled",
		zap.Int64("id", record.ID),
		zap.String("status", string(status)),
		zap.String("settlement", settlementString(record)))

	if l.notifier != nil {
		l.notifier.Publish(events.Change{Kind: events.ChangeSettled, Record: &record})
	}

	return record, true
}

// Pending returns a copy of the in-flight wager, if any.
func (l *Ledger) Pending() (domain.WagerRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pending == nil {
		return domain.WagerRecord{}, false
	}
	return *l.pending, true
}

// ClearHistory discards the whole settled-wager history and notifies the UI.
func (l *Ledger) ClearHistory() error {
	if err := l.history.Clear(); err != nil {
		return err
	}

	l.logger.Info("wager history cleared")
	if l.notifier != nil {
		l.notifier.Publish(events.Change{Kind: events.ChangeCleared})
	}

	return nil
}

// DefaultStake returns the configured fallback stake.
func (l *Ledger) DefaultStake() int64 {
	return l.defaultStake
}

// Close tears the ledger down. A still-pending wager is abandoned: it never
// reaches history and never resolves. The gap is deliberate, matching the
// behavior of losing the page mid-round.
func (l *Ledger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pending != nil {
		l.logger.Warn("abandoning pending wager on shutdown",
			zap.Int64("id", l.pending.ID),
			zap.Int64("amount", l.pending.Amount))
		l.pending = nil
	}
}

func settlementString(record domain.WagerRecord) string {
	if record.Settlement == nil {
		return "none"
	}
	return record.Settlement.String()
}
