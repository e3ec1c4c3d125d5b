package domain

import "github.com/shopspring/decimal"

// OutcomeKind tags a classified chat message.
type OutcomeKind int

const (
	// OutcomeNone means no rule matched; nothing happens.
	OutcomeNone OutcomeKind = iota
	// OutcomePlaced is a stake confirmation. Informational only: placement
	// is recorded on the user-action path, not from chat text.
	OutcomePlaced
	// OutcomeClosed means the round closed before the wager went in.
	OutcomeClosed
	// OutcomeWin carries a positive settlement amount.
	OutcomeWin
	// OutcomeLoss carries a negative settlement amount.
	OutcomeLoss
)

var outcomeNames = map[OutcomeKind]string{
	OutcomeNone:   "none",
	OutcomePlaced: "placed",
	OutcomeClosed: "closed",
	OutcomeWin:    "win",
	OutcomeLoss:   "loss",
}

func (k OutcomeKind) String() string {
	if name, ok := outcomeNames[k]; ok {
		return name
	}
	return "unknown"
}

// Outcome is the classification result for one chat line. Amount is the
// signed settlement parsed from the text (set for win and loss). Stake and
// Side are optional telemetry extracted from placement confirmations.
type Outcome struct {
	Kind   OutcomeKind
	Amount decimal.Decimal
	Stake  decimal.Decimal
	Side   WagerKind
}

// TerminalStatus maps the outcome to the wager status it settles, if any.
func (o Outcome) TerminalStatus() (WagerStatus, bool) {
	switch o.Kind {
	case OutcomeClosed:
		return StatusNotPlaced, true
	case OutcomeWin:
		return StatusWon, true
	case OutcomeLoss:
		return StatusLost, true
	}
	return "", false
}

// HasSettlement reports whether the outcome carries a settlement value.
func (o Outcome) HasSettlement() bool {
	return o.Kind == OutcomeWin || o.Kind == OutcomeLoss
}
