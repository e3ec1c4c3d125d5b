// Package classifier turns raw chat lines into tagged wager outcomes.
// Matching is an ordered rule table: the first rule that matches wins, and
// a line that matches nothing is explicitly "no outcome", not an error.
package classifier

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/redbet/internal/domain"
	"go.uber.org/zap"
)

var (
	placedPattern = regexp.MustCompile(`(?i)You have bet (\d+(?:\.\d+)?) bits on the next game being (red|under \d+(?:\.\d+)?x)`)
	winPattern    = regexp.MustCompile(`(?i)(?:The game was red\. You won|The game was a low red\. You won) ([\d.]+) bits!`)
	lossPattern   = regexp.MustCompile(`(?i)(?:The game was green\. You lost|The game was not a low red\. You lost) ([\d.]+) bits\.`)
)

const closedPhrase = "bets are now closed"

type rule struct {
	name  string
	match func(text string) (domain.Outcome, bool)
}

// Classifier matches croupier messages against the outcome rule table.
// Lines from any other sender are ignored before a single rule runs.
type Classifier struct {
	sender string
	rules  []rule
	logger *zap.Logger
}

// New creates a classifier bound to the designated automated sender.
func New(sender string, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Classifier{
		sender: strings.ToLower(strings.TrimSpace(sender)),
		logger: logger,
	}

	// priority order matters: confirmations first, then the round-closed
	// phrase, then settlements
	c.rules = []rule{
		{name: "placed", match: c.matchPlaced},
		{name: "closed", match: matchClosed},
		{name: "win", match: c.matchWin},
		{name: "loss", match: c.matchLoss},
	}

	return c
}

// IsDesignatedSender reports whether the label belongs to the tracked bot.
func (c *Classifier) IsDesignatedSender(label string) bool {
	return strings.ToLower(strings.TrimSpace(label)) == c.sender
}

// Classify runs the rule table over one chat line. It returns an Outcome with
// Kind OutcomeNone for foreign senders, unmatched text and unparseable
// amounts; it never fails.
func (c *Classifier) Classify(sender, text string) domain.Outcome {
	if !c.IsDesignatedSender(sender) {
		return domain.Outcome{}
	}

	for _, r := range c.rules {
		if outcome, ok := r.match(text); ok {
			c.logger.Debug("chat line classified",
				zap.String("rule", r.name),
				zap.String("outcome", outcome.Kind.String()))
			return outcome
		}
	}

	return domain.Outcome{}
}

func (c *Classifier) matchPlaced(text string) (domain.Outcome, bool) {
	groups := placedPattern.FindStringSubmatch(text)
	if groups == nil {
		return domain.Outcome{}, false
	}

	outcome := domain.Outcome{Kind: domain.OutcomePlaced, Side: domain.KindRed}
	if strings.HasPrefix(strings.ToLower(groups[2]), "under") {
		outcome.Side = domain.KindLo
	}

	// stake extraction is telemetry only, so a parse failure here does not
	// demote the match
	if stake, err := decimal.NewFromString(groups[1]); err == nil {
		outcome.Stake = stake
	} else {
		c.logger.Debug("unparseable stake in confirmation", zap.String("raw", groups[1]))
	}

	return outcome, true
}

func matchClosed(text string) (domain.Outcome, bool) {
	if !strings.Contains(strings.ToLower(text), closedPhrase) {
		return domain.Outcome{}, false
	}
	return domain.Outcome{Kind: domain.OutcomeClosed}, true
}

func (c *Classifier) matchWin(text string) (domain.Outcome, bool) {
	groups := winPattern.FindStringSubmatch(text)
	if groups == nil {
		return domain.Outcome{}, false
	}

	amount, err := decimal.NewFromString(groups[1])
	if err != nil {
		c.logger.Debug("unparseable win amount, line skipped", zap.String("raw", groups[1]))
		return domain.Outcome{}, false
	}

	return domain.Outcome{Kind: domain.OutcomeWin, Amount: amount}, true
}

func (c *Classifier) matchLoss(text string) (domain.Outcome, bool) {
	groups := lossPattern.FindStringSubmatch(text)
	if groups == nil {
		return domain.Outcome{}, false
	}

	amount, err := decimal.NewFromString(groups[1])
	if err != nil {
		c.logger.Debug("unparseable loss amount, line skipped", zap.String("raw", groups[1]))
		return domain.Outcome{}, false
	}

	return domain.Outcome{Kind: domain.OutcomeLoss, Amount: amount.Neg()}, true
}
