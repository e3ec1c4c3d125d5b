package internal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/redbet/config"
	"github.com/vadiminshakov/redbet/internal/clients"
	"github.com/vadiminshakov/redbet/internal/domain"
	"github.com/vadiminshakov/redbet/internal/services/dispatcher"
)

type fakeFeed struct {
	sent []string
}

func (f *fakeFeed) Run(ctx context.Context, handle clients.MessageHandler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeFeed) Send(_ context.Context, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func newTestBot(t *testing.T, enableUt bool) (*Bot, *fakeFeed) {
	t.Helper()

	cfg := config.Config{
		ChatURL:      "wss://example.test/chat",
		Channel:      "spam",
		Sender:       "redbot",
		DefaultStake: 2,
		PageSize:     30,
		DataDir:      t.TempDir(),
		EnableUt:     enableUt,
	}

	bot, err := NewBot(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { bot.Close() })

	feed := &fakeFeed{}
	bot.feed = feed
	bot.dispatcher = dispatcher.New(feed, zap.NewNop())
	return bot, feed
}

func TestOpenThenWinFlow(t *testing.T) {
	bot, feed := newTestBot(t, false)

	record, err := bot.OpenWager(context.Background(), "10", domain.KindRed)
	require.NoError(t, err)
	assert.Equal(t, int64(10), record.Amount)
	require.Equal(t, []string{"$bet 10"}, feed.sent)

	bot.OnMessage("redbot", "You have bet 10 bits on the next game being red")
	bot.OnMessage("redbot", "The game was red. You won 20 bits!")

	page := bot.History().Paginate(0, 30)
	require.Equal(t, 1, page.TotalItems)
	settled := page.Records[0]
	assert.Equal(t, domain.StatusWon, settled.Status)
	require.NotNil(t, settled.Settlement)
	assert.Equal(t, "20", settled.Settlement.String())

	_, pending := bot.ledger.Pending()
	assert.False(t, pending)
}

func TestForeignSenderCausesNoMutation(t *testing.T) {
	bot, _ := newTestBot(t, false)

	_, err := bot.OpenWager(context.Background(), "5", domain.KindRed)
	require.NoError(t, err)

	bot.OnMessage("impostor", "The game was red. You won 10 bits!")

	_, pending := bot.ledger.Pending()
	assert.True(t, pending, "foreign sender must not settle a wager")
	assert.Equal(t, 0, bot.History().Paginate(0, 30).TotalItems)
}

func TestDuplicateLineSuppressed(t *testing.T) {
	bot, _ := newTestBot(t, false)

	_, err := bot.OpenWager(context.Background(), "5", domain.KindRed)
	require.NoError(t, err)
	bot.OnMessage("redbot", "The game was green. You lost 5 bits.")
	require.Equal(t, 1, bot.History().Paginate(0, 30).TotalItems)

	// the same line repeated back to back must not settle the next wager
	_, err = bot.OpenWager(context.Background(), "5", domain.KindRed)
	require.NoError(t, err)
	bot.OnMessage("redbot", "The game was green. You lost 5 bits.")

	_, pending := bot.ledger.Pending()
	assert.True(t, pending)
	assert.Equal(t, 1, bot.History().Paginate(0, 30).TotalItems)
}

func TestUnderThresholdGate(t *testing.T) {
	bot, _ := newTestBot(t, false)
	_, err := bot.OpenWager(context.Background(), "5", domain.KindUt)
	assert.Error(t, err)

	botUt, feedUt := newTestBot(t, true)
	_, err = botUt.OpenWager(context.Background(), "5", domain.KindUt)
	require.NoError(t, err)
	assert.Equal(t, []string{"$ut 5"}, feedUt.sent)
}

func TestUnknownWagerKindRejected(t *testing.T) {
	bot, feed := newTestBot(t, false)

	_, err := bot.OpenWager(context.Background(), "5", domain.WagerKind("green"))
	assert.Error(t, err)
	assert.Empty(t, feed.sent)
}

func TestLastStakeSurvivesWagers(t *testing.T) {
	bot, _ := newTestBot(t, false)
	assert.Equal(t, int64(2), bot.LastStake())

	_, err := bot.OpenWager(context.Background(), "17", domain.KindLo)
	require.NoError(t, err)
	assert.Equal(t, int64(17), bot.LastStake())

	// invalid input falls back to the default stake and persists it
	_, err = bot.OpenWager(context.Background(), "garbage", domain.KindRed)
	require.NoError(t, err)
	assert.Equal(t, int64(2), bot.LastStake())
}

func TestCloseAbandonsPending(t *testing.T) {
	bot, _ := newTestBot(t, false)

	_, err := bot.OpenWager(context.Background(), "5", domain.KindRed)
	require.NoError(t, err)
	require.NoError(t, bot.Close())

	assert.Equal(t, 0, bot.History().Paginate(0, 30).TotalItems)
}
