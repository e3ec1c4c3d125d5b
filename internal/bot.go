package internal

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/redbet/config"
	"github.com/vadiminshakov/redbet/internal/clients"
	"github.com/vadiminshakov/redbet/internal/domain"
	"github.com/vadiminshakov/redbet/internal/events"
	"github.com/vadiminshakov/redbet/internal/metrics"
	"github.com/vadiminshakov/redbet/internal/services/classifier"
	"github.com/vadiminshakov/redbet/internal/services/dispatcher"
	"github.com/vadiminshakov/redbet/internal/services/ledger"
	"github.com/vadiminshakov/redbet/internal/storage/history"
	"github.com/vadiminshakov/redbet/internal/storage/stake"
	"go.uber.org/zap"
)

// ChatFeed is the observation layer: it supplies raw chat lines and carries
// dispatched commands back into the chat.
type ChatFeed interface {
	Run(ctx context.Context, handle clients.MessageHandler) error
	Send(ctx context.Context, text string) error
}

// Bot wires the chat feed into the classifier and ledger, and exposes the
// user action path for opening wagers.
type Bot struct {
	classifier *classifier.Classifier
	dedup      classifier.Dedup
	ledger     *ledger.Ledger
	dispatcher *dispatcher.Dispatcher
	feed       ChatFeed
	history    *history.Store
	stakes     *stake.Store
	notifier   *events.Broadcaster
	enableUt   bool
	logger     *zap.Logger
}

// NewBot builds the full pipeline from config: stores, ledger, classifier,
// chat client and dispatcher.
func NewBot(cfg config.Config, logger *zap.Logger) (*Bot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	historyStore, err := history.NewStore(filepath.Join(cfg.DataDir, "history"), logger)
	if err != nil {
		return nil, errors.Wrap(err, "create history store")
	}

	stakeStore, err := stake.NewStore(filepath.Join(cfg.DataDir, "state"), cfg.DefaultStake)
	if err != nil {
		return nil, errors.Wrap(err, "create stake store")
	}

	notifier := events.NewBroadcaster(256)
	feed := clients.NewChatClient(cfg.ChatURL, cfg.Channel, logger)

	return &Bot{
		classifier: classifier.New(cfg.Sender, logger),
		ledger:     ledger.New(historyStore, stakeStore, notifier, cfg.DefaultStake, logger),
		dispatcher: dispatcher.New(feed, logger),
		feed:       feed,
		history:    historyStore,
		stakes:     stakeStore,
		notifier:   notifier,
		enableUt:   cfg.EnableUt,
		logger:     logger,
	}, nil
}

// Run consumes the chat feed until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("starting chat observation")
	return b.feed.Run(ctx, b.OnMessage)
}

// OnMessage is the inbound entry point for one observed chat line. The whole
// pipeline runs synchronously on the caller's goroutine.
func (b *Bot) OnMessage(username, text string) {
	if !b.classifier.IsDesignatedSender(username) {
		return
	}

	if b.dedup.Duplicate(text) {
		metrics.MessagesSuppressed.Inc()
		b.logger.Debug("duplicate chat line suppressed")
		return
	}

	outcome := b.classifier.Classify(username, text)
	metrics.MessagesClassified.WithLabelValues(outcome.Kind.String()).Inc()

	if _, terminal := outcome.TerminalStatus(); terminal {
		b.ledger.Resolve(outcome)
	}
}

// OpenWager records a new pending wager and dispatches the chat command.
// The record is created before dispatch; a failed send leaves the wager
// pending for the croupier to close out.
func (b *Bot) OpenWager(ctx context.Context, rawAmount string, kind domain.WagerKind) (domain.WagerRecord, error) {
	if !kind.Valid() {
		return domain.WagerRecord{}, errors.Errorf("unknown wager kind: %s", kind)
	}
	if kind == domain.KindUt && !b.enableUt {
		return domain.WagerRecord{}, errors.New("under-threshold wagers are disabled")
	}

	record := b.ledger.Open(rawAmount, kind)

	if err := b.dispatcher.PlaceWager(ctx, kind, record.Amount); err != nil {
		return record, err
	}

	return record, nil
}

// CheckBalance dispatches a balance query into the chat.
func (b *Bot) CheckBalance(ctx context.Context) error {
	return b.dispatcher.CheckBalance(ctx)
}

// ClearHistory discards the settled-wager history.
func (b *Bot) ClearHistory() error {
	return b.ledger.ClearHistory()
}

// LastStake returns the persisted stake for pre-filling the wager form.
func (b *Bot) LastStake() int64 {
	return b.stakes.Load()
}

// History exposes the paginated read view of the ledger.
func (b *Bot) History() *history.Store {
	return b.history
}

// Events exposes the ledger change notifications.
func (b *Bot) Events() *events.Broadcaster {
	return b.notifier
}

// Close tears the bot down. A pending wager is abandoned, never recorded.
func (b *Bot) Close() error {
	b.ledger.Close()
	return b.history.Close()
}
